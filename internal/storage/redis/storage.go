package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hectoduel/hectoduel/internal/model"
	"github.com/hectoduel/hectoduel/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	return NewWithClient(redis.NewClient(opts), cfg), nil
}

// NewWithClient creates a Storage using an existing client (useful for tests)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close releases the underlying Redis client
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping verifies connectivity to Redis
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(player.ID), data, 0).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.client.Del(ctx, playerKey(id)).Err()
}

// Duel result operations

// commitTxRetries bounds optimistic retries when a watched key changes
// between the reads and the EXEC
const commitTxRetries = 3

func (s *Storage) CommitDuelResult(ctx context.Context, summary *model.DuelSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	watched := []string{appliedKey(summary.SessionID)}
	for _, part := range summary.Participants {
		watched = append(watched, playerKey(part.PlayerID))
	}

	commit := func(tx *redis.Tx) error {
		// An earlier attempt already landed the whole commit
		marked, err := tx.Exists(ctx, appliedKey(summary.SessionID)).Result()
		if err != nil {
			return err
		}
		if marked > 0 {
			return nil
		}

		// Read and update both players before queuing any write, so a
		// failure here leaves the commit entirely unapplied and a retry
		// starts from scratch
		updated := make(map[string][]byte, len(summary.Participants))
		for _, part := range summary.Participants {
			raw, err := tx.Get(ctx, playerKey(part.PlayerID)).Bytes()
			if errors.Is(err, redis.Nil) {
				continue // Player deleted since the duel started
			}
			if err != nil {
				return err
			}
			var player model.Player
			if err := json.Unmarshal(raw, &player); err != nil {
				return err
			}
			player.Rating += part.RatingDelta
			if summary.WinnerID != nil && *summary.WinnerID == part.PlayerID {
				player.WinStreak++
			} else {
				player.WinStreak = 0
			}
			player.UpdatedAt = time.Now()
			out, err := json.Marshal(&player)
			if err != nil {
				return err
			}
			updated[playerKey(player.ID)] = out
		}

		// Both ratings, the summary, and the applied marker land in one
		// MULTI/EXEC: a failed commit leaves no marker behind
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for key, val := range updated {
				pipe.Set(ctx, key, val, 0)
			}
			pipe.Set(ctx, summaryKey(summary.SessionID), data, s.cfg.SummaryTTL)
			for _, part := range summary.Participants {
				indexKey := summariesForPlayerKey(part.PlayerID)
				pipe.RPush(ctx, indexKey, string(summary.SessionID))
				pipe.Expire(ctx, indexKey, s.cfg.SummaryTTL)
			}
			pipe.Set(ctx, appliedKey(summary.SessionID), "1", s.cfg.SummaryTTL)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < commitTxRetries; attempt++ {
		err := s.client.Watch(ctx, commit, watched...)
		if errors.Is(err, redis.TxFailedErr) {
			continue // A watched key changed underneath us
		}
		return err
	}
	return redis.TxFailedErr
}

func (s *Storage) GetDuelSummary(ctx context.Context, id model.SessionID) (*model.DuelSummary, error) {
	data, err := s.client.Get(ctx, summaryKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrSummaryNotFound
	}
	if err != nil {
		return nil, err
	}
	var summary model.DuelSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Storage) ListDuelSummariesForPlayer(ctx context.Context, id model.PlayerID) ([]*model.DuelSummary, error) {
	sessionIDs, err := s.client.LRange(ctx, summariesForPlayerKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(sessionIDs) == 0 {
		return []*model.DuelSummary{}, nil
	}

	keys := make([]string, len(sessionIDs))
	for i, sid := range sessionIDs {
		keys[i] = summaryKey(model.SessionID(sid))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	summaries := make([]*model.DuelSummary, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Summary may have expired
		}
		var summary model.DuelSummary
		if err := json.Unmarshal([]byte(val.(string)), &summary); err != nil {
			continue // Skip invalid data
		}
		summaries = append(summaries, &summary)
	}
	return summaries, nil
}
