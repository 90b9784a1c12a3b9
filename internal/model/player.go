package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// DefaultRating is the rating assigned to newly created players
const DefaultRating = 1000

// Player represents a duel participant's profile.
// Identity and authentication live outside this service; the core reads
// the rating and win streak and writes them back through storage when a
// ranked duel resolves.
type Player struct {
	ID          PlayerID
	DisplayName string
	Rating      int
	WinStreak   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
