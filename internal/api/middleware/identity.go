package middleware

import (
	"context"
	"net/http"

	"github.com/hectoduel/hectoduel/internal/api/apierr"
	"github.com/hectoduel/hectoduel/internal/model"
	"github.com/hectoduel/hectoduel/internal/storage"
)

// PlayerIDHeader carries the caller's identity. Authentication itself is
// an external collaborator; this service only checks that the id refers
// to a known player.
const PlayerIDHeader = "X-Player-ID"

type contextKey string

const playerContextKey contextKey = "player"

// Identity creates middleware that resolves the caller's player record
// from the identity header
func Identity(store storage.Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(PlayerIDHeader)
			if id == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			player, err := store.GetPlayer(r.Context(), model.PlayerID(id))
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, player)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPlayer returns the identified player from the request context
func GetPlayer(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey).(*model.Player)
	return player
}

// MustGetPlayer returns the identified player or panics
func MustGetPlayer(ctx context.Context) *model.Player {
	player := GetPlayer(ctx)
	if player == nil {
		panic("no player in context - identity middleware not applied?")
	}
	return player
}
