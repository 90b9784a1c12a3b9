package model

import "time"

// QueueEntry is a player waiting in the matchmaking pool.
// It exists only inside the coordinator's pool and is never persisted;
// the rating is a snapshot taken at enqueue time.
type QueueEntry struct {
	PlayerID    PlayerID
	DisplayName string
	Rating      int
	Ranked      bool
	EnqueuedAt  time.Time
}

// WaitTime returns how long the entry has been in the pool as of now
func (e QueueEntry) WaitTime(now time.Time) time.Duration {
	return now.Sub(e.EnqueuedAt)
}
