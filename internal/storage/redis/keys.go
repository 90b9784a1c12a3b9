package redis

import (
	"fmt"

	"github.com/hectoduel/hectoduel/internal/model"
)

// Key prefix for all duel-related data
const keyPrefix = "hectoduel"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// summaryKey returns the Redis key for a DuelSummary
func summaryKey(id model.SessionID) string {
	return fmt.Sprintf("%s:duel:%s", keyPrefix, id)
}

// appliedKey returns the Redis key marking a session's result as committed
func appliedKey(id model.SessionID) string {
	return fmt.Sprintf("%s:applied:%s", keyPrefix, id)
}

// summariesForPlayerKey returns the Redis key for the LIST of duel
// summaries involving a player
func summariesForPlayerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:duels_for_player:%s", keyPrefix, id)
}
