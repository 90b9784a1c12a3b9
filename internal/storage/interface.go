package storage

import (
	"context"

	"github.com/hectoduel/hectoduel/internal/model"
)

// Storage defines the interface for data persistence.
//
// Duel sessions themselves are never persisted while live; only players
// and terminal duel summaries cross this boundary. CommitDuelResult is
// the single write path for duel outcomes and must be idempotent keyed
// by session ID, so an asynchronous retry can never double-apply a
// rating delta.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Duel result operations
	CommitDuelResult(ctx context.Context, summary *model.DuelSummary) error
	GetDuelSummary(ctx context.Context, id model.SessionID) (*model.DuelSummary, error)
	ListDuelSummariesForPlayer(ctx context.Context, id model.PlayerID) ([]*model.DuelSummary, error)
}
