package matchmaking

import (
	"log/slog"
	"time"

	"github.com/hectoduel/hectoduel/internal/dependencies/clock"
	"github.com/hectoduel/hectoduel/internal/model"
)

// SessionStarter is the downstream consumer of committed pairs
type SessionStarter interface {
	HasActiveSession(playerID model.PlayerID) bool
	CreateSession(a, b model.QueueEntry) error
}

// EventSink delivers outbound events to a player's connection(s).
// Implementations must not block the caller.
type EventSink interface {
	SendToPlayer(id model.PlayerID, event model.EventType, payload any)
}

// Config holds matchmaking parameters
type Config struct {
	// BaseTolerance is the rating window at enqueue time
	BaseTolerance int
	// ToleranceStep widens the window by this much per ToleranceInterval waited
	ToleranceStep     int
	ToleranceInterval time.Duration
	// MatchTimeout evicts entries that waited this long; the window is
	// unbounded once an entry reaches it
	MatchTimeout time.Duration
	// TickInterval drives pairing, status, and timeout checks
	TickInterval time.Duration
	// StatusInterval is the cadence of matchmaking_status events per entry
	StatusInterval time.Duration
}

// DefaultConfig returns the standard matchmaking parameters
func DefaultConfig() Config {
	return Config{
		BaseTolerance:     100,
		ToleranceStep:     50,
		ToleranceInterval: 10 * time.Second,
		MatchTimeout:      60 * time.Second,
		TickInterval:      250 * time.Millisecond,
		StatusInterval:    time.Second,
	}
}

// poolEntry wraps a queue entry with coordinator-side bookkeeping
type poolEntry struct {
	model.QueueEntry
	lastStatusAt time.Time
}

// Coordinator owns the waiting pool. All enqueue, dequeue, and pairing
// operations are messages processed one at a time by its loop, so an
// entry can never be paired twice and the pool needs no locking.
type Coordinator struct {
	starter SessionStarter
	sink    EventSink
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger

	// pool is kept ordered by enqueue time, oldest first
	pool []*poolEntry

	enqueue chan enqueueMsg
	dequeue chan dequeueMsg
	queued  chan queuedMsg
	tick    chan struct{}
	done    chan struct{}
}

type enqueueMsg struct {
	entry model.QueueEntry
	reply chan error
}

type dequeueMsg struct {
	playerID model.PlayerID
	reply    chan struct{}
}

type queuedMsg struct {
	playerID model.PlayerID
	reply    chan bool
}

// New creates a matchmaking coordinator
func New(starter SessionStarter, sink EventSink, clk clock.Clock, cfg Config, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		starter: starter,
		sink:    sink,
		clock:   clk,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "matchmaking")),

		enqueue: make(chan enqueueMsg),
		dequeue: make(chan dequeueMsg),
		queued:  make(chan queuedMsg),
		tick:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run starts the coordinator's event loop. It returns when Stop is called.
func (c *Coordinator) Run() {
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	c.logger.Info("matchmaking coordinator started")
	for {
		select {
		case msg := <-c.enqueue:
			msg.reply <- c.handleEnqueue(msg.entry)
		case msg := <-c.dequeue:
			c.handleDequeue(msg.playerID)
			msg.reply <- struct{}{}
		case msg := <-c.queued:
			msg.reply <- c.find(msg.playerID) >= 0
		case <-ticker.C:
			c.handleTick()
		case <-c.tick:
			c.handleTick()
		case <-c.done:
			c.logger.Info("matchmaking coordinator stopped",
				slog.Int("pool_size", len(c.pool)))
			return
		}
	}
}

// Stop shuts down the coordinator's event loop
func (c *Coordinator) Stop() {
	close(c.done)
}

// TickNow forces an immediate pairing pass. Used by tests to drive time
// deterministically together with a mock clock.
func (c *Coordinator) TickNow() {
	c.tick <- struct{}{}
}

// Enqueue inserts a player into the waiting pool. A player may hold at
// most one entry and may not be in a live duel.
func (c *Coordinator) Enqueue(entry model.QueueEntry) error {
	reply := make(chan error, 1)
	c.enqueue <- enqueueMsg{entry: entry, reply: reply}
	return <-reply
}

// Dequeue removes a player's pending entry. Absent entries are a no-op
// so duplicate leave requests are harmless.
func (c *Coordinator) Dequeue(playerID model.PlayerID) {
	reply := make(chan struct{}, 1)
	c.dequeue <- dequeueMsg{playerID: playerID, reply: reply}
	<-reply
}

// IsQueued reports whether a player currently holds a pool entry
func (c *Coordinator) IsQueued(playerID model.PlayerID) bool {
	reply := make(chan bool, 1)
	c.queued <- queuedMsg{playerID: playerID, reply: reply}
	return <-reply
}

// Loop-side handlers. Only ever invoked from Run.

func (c *Coordinator) handleEnqueue(entry model.QueueEntry) error {
	if c.find(entry.PlayerID) >= 0 {
		return model.ErrAlreadyQueued
	}
	if c.starter.HasActiveSession(entry.PlayerID) {
		return model.ErrAlreadyInGame
	}

	c.insert(&poolEntry{QueueEntry: entry, lastStatusAt: entry.EnqueuedAt})
	c.logger.Info("player enqueued",
		slog.String("player_id", string(entry.PlayerID)),
		slog.Int("rating", entry.Rating),
		slog.Bool("ranked", entry.Ranked),
		slog.Int("pool_size", len(c.pool)))

	// A fresh entry may complete a pair immediately
	c.pair(c.clock.Now())
	return nil
}

func (c *Coordinator) handleDequeue(playerID model.PlayerID) {
	i := c.find(playerID)
	if i < 0 {
		return
	}
	c.remove(i)
	c.logger.Info("player dequeued",
		slog.String("player_id", string(playerID)),
		slog.Int("pool_size", len(c.pool)))
}

func (c *Coordinator) handleTick() {
	now := c.clock.Now()
	// Pairing runs before eviction so an entry reaching the unbounded
	// window gets one last chance to match before timing out
	c.pair(now)
	c.evictExpired(now)
	c.sendStatus(now)
}

// pair repeatedly matches the longest-waiting entry against the
// closest-rating candidate inside its tolerance window until no more
// pairs can be formed this pass
func (c *Coordinator) pair(now time.Time) {
	for {
		a, b := c.findPair(now)
		if a < 0 {
			return
		}
		if !c.commitPair(a, b) {
			// Leave the re-queued pair for the next pass rather than
			// spinning on a failing downstream
			return
		}
	}
}

// findPair returns indices of a matchable pair, or -1, -1. The seeker is
// the longest-waiting entry that has any compatible candidate; its wait
// time sets the tolerance window.
func (c *Coordinator) findPair(now time.Time) (int, int) {
	for i, seeker := range c.pool {
		tolerance, unlimited := c.tolerance(seeker.WaitTime(now))

		best := -1
		bestDistance := 0
		for j := i + 1; j < len(c.pool); j++ {
			candidate := c.pool[j]
			if candidate.Ranked != seeker.Ranked {
				continue
			}
			distance := seeker.Rating - candidate.Rating
			if distance < 0 {
				distance = -distance
			}
			if !unlimited && distance > tolerance {
				continue
			}
			// Ties in rating distance go to the longer wait; the pool
			// is ordered oldest first so the first hit wins
			if best < 0 || distance < bestDistance {
				best = j
				bestDistance = distance
			}
		}
		if best >= 0 {
			return i, best
		}
	}
	return -1, -1
}

// tolerance returns the rating window for an entry that has waited the
// given time, and whether the window is unbounded
func (c *Coordinator) tolerance(wait time.Duration) (int, bool) {
	if wait >= c.cfg.MatchTimeout {
		return 0, true
	}
	steps := int(wait / c.cfg.ToleranceInterval)
	return c.cfg.BaseTolerance + steps*c.cfg.ToleranceStep, false
}

// commitPair removes both entries from the pool and hands them to
// session creation. On failure both players are re-inserted with their
// original enqueue times so they lose no waiting credit.
func (c *Coordinator) commitPair(i, j int) bool {
	a, b := c.pool[i], c.pool[j]
	// Remove the higher index first so the lower stays valid
	c.remove(j)
	c.remove(i)

	if err := c.starter.CreateSession(a.QueueEntry, b.QueueEntry); err != nil {
		c.logger.Error("session creation failed, re-queueing pair",
			slog.String("player_a", string(a.PlayerID)),
			slog.String("player_b", string(b.PlayerID)),
			slog.String("error", err.Error()))
		for _, entry := range []*poolEntry{a, b} {
			if !c.starter.HasActiveSession(entry.PlayerID) {
				c.insert(entry)
			}
		}
		return false
	}

	c.logger.Info("pair matched",
		slog.String("player_a", string(a.PlayerID)),
		slog.String("player_b", string(b.PlayerID)),
		slog.Int("rating_a", a.Rating),
		slog.Int("rating_b", b.Rating),
		slog.Bool("ranked", a.Ranked))
	return true
}

// evictExpired removes entries past the matchmaking ceiling and notifies
// their owners; the player may re-enqueue
func (c *Coordinator) evictExpired(now time.Time) {
	kept := c.pool[:0]
	for _, entry := range c.pool {
		waited := entry.WaitTime(now)
		if waited < c.cfg.MatchTimeout {
			kept = append(kept, entry)
			continue
		}
		c.sink.SendToPlayer(entry.PlayerID, model.EventMatchmakingTimeout, model.MatchmakingTimeoutPayload{
			WaitedMS: waited.Milliseconds(),
		})
		c.logger.Info("entry timed out",
			slog.String("player_id", string(entry.PlayerID)),
			slog.Duration("waited", waited))
	}
	c.pool = kept
}

// sendStatus emits periodic matchmaking_status to waiting players
func (c *Coordinator) sendStatus(now time.Time) {
	for _, entry := range c.pool {
		if now.Sub(entry.lastStatusAt) < c.cfg.StatusInterval {
			continue
		}
		entry.lastStatusAt = now
		c.sink.SendToPlayer(entry.PlayerID, model.EventMatchmakingStatus, model.MatchmakingStatusPayload{
			TimeInQueueMS: entry.WaitTime(now).Milliseconds(),
			Ranked:        entry.Ranked,
		})
	}
}

// Pool helpers

func (c *Coordinator) find(playerID model.PlayerID) int {
	for i, entry := range c.pool {
		if entry.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// insert keeps the pool ordered by enqueue time, oldest first
func (c *Coordinator) insert(entry *poolEntry) {
	i := len(c.pool)
	for i > 0 && c.pool[i-1].EnqueuedAt.After(entry.EnqueuedAt) {
		i--
	}
	c.pool = append(c.pool, nil)
	copy(c.pool[i+1:], c.pool[i:])
	c.pool[i] = entry
}

func (c *Coordinator) remove(i int) {
	c.pool = append(c.pool[:i], c.pool[i+1:]...)
}
