package duel

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hectoduel/hectoduel/internal/dependencies/clock"
	"github.com/hectoduel/hectoduel/internal/model"
	"github.com/hectoduel/hectoduel/internal/services/puzzle"
	"github.com/hectoduel/hectoduel/internal/services/rating"
	"github.com/hectoduel/hectoduel/internal/storage"
)

// EventSink delivers outbound events to a player's connection(s).
// Implementations must not block the caller.
type EventSink interface {
	SendToPlayer(id model.PlayerID, event model.EventType, payload any)
}

// commitAttempts bounds asynchronous retries of the persistence write
const commitAttempts = 3

// Manager owns the active-session table. It is the single goroutine that
// mutates sessions: every create, submit, disconnect, and deadline check
// arrives as a message processed one at a time, so no duel can observe a
// concurrent mutation and no terminal outcome can fire twice.
type Manager struct {
	storage   storage.Storage
	rating    *rating.Service
	generator puzzle.Generator
	sink      EventSink
	clock     clock.Clock
	cfg       Config
	logger    *slog.Logger

	sessions map[model.SessionID]*Session
	byPlayer map[model.PlayerID]model.SessionID

	create   chan createMsg
	submit   chan submitMsg
	progress chan progressMsg
	snapshot chan snapshotMsg
	presence chan presenceMsg
	active   chan activeMsg
	evict    chan model.SessionID
	tick     chan struct{}
	done     chan struct{}
}

type createMsg struct {
	a, b  model.QueueEntry
	reply chan error
}

type submitMsg struct {
	sessionID model.SessionID
	playerID  model.PlayerID
	text      string
	reply     chan submitReply
}

type submitReply struct {
	result SubmitResult
	err    error
}

type progressMsg struct {
	sessionID model.SessionID
	playerID  model.PlayerID
	progress  int
	reply     chan error
}

type snapshotMsg struct {
	sessionID model.SessionID
	playerID  model.PlayerID
	reply     chan snapshotReply
}

type snapshotReply struct {
	session model.DuelSession
	err     error
}

type presenceMsg struct {
	playerID  model.PlayerID
	connected bool
}

type activeMsg struct {
	playerID model.PlayerID
	reply    chan bool
}

// NewManager creates a duel session manager
func NewManager(
	store storage.Storage,
	ratingService *rating.Service,
	generator puzzle.Generator,
	sink EventSink,
	clk clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		storage:   store,
		rating:    ratingService,
		generator: generator,
		sink:      sink,
		clock:     clk,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "duel")),

		sessions: make(map[model.SessionID]*Session),
		byPlayer: make(map[model.PlayerID]model.SessionID),

		create:   make(chan createMsg),
		submit:   make(chan submitMsg),
		progress: make(chan progressMsg),
		snapshot: make(chan snapshotMsg),
		presence: make(chan presenceMsg, 64),
		active:   make(chan activeMsg),
		evict:    make(chan model.SessionID),
		tick:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run starts the manager's event loop. It returns when Stop is called.
func (m *Manager) Run() {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	m.logger.Info("duel manager started")
	for {
		select {
		case msg := <-m.create:
			msg.reply <- m.handleCreate(msg.a, msg.b)
		case msg := <-m.submit:
			result, err := m.handleSubmit(msg.sessionID, msg.playerID, msg.text)
			msg.reply <- submitReply{result: result, err: err}
		case msg := <-m.progress:
			msg.reply <- m.handleProgress(msg.sessionID, msg.playerID, msg.progress)
		case msg := <-m.snapshot:
			msg.reply <- m.handleSnapshot(msg.sessionID, msg.playerID)
		case msg := <-m.presence:
			m.handlePresence(msg.playerID, msg.connected)
		case msg := <-m.active:
			_, ok := m.byPlayer[msg.playerID]
			msg.reply <- ok
		case id := <-m.evict:
			m.handleEvict(id)
		case <-ticker.C:
			m.handleTick()
		case <-m.tick:
			m.handleTick()
		case <-m.done:
			m.logger.Info("duel manager stopped",
				slog.Int("active_sessions", len(m.sessions)))
			return
		}
	}
}

// Stop shuts down the manager's event loop
func (m *Manager) Stop() {
	close(m.done)
}

// TickNow forces an immediate deadline check. Used by tests to drive
// time deterministically together with a mock clock.
func (m *Manager) TickNow() {
	m.tick <- struct{}{}
}

// CreateSession pairs two queue entries into a new duel session.
// Called by the matchmaking coordinator once a pair is committed.
func (m *Manager) CreateSession(a, b model.QueueEntry) error {
	reply := make(chan error, 1)
	m.create <- createMsg{a: a, b: b, reply: reply}
	return <-reply
}

// SubmitSolution evaluates a participant's candidate solution
func (m *Manager) SubmitSolution(sessionID model.SessionID, playerID model.PlayerID, text string) (SubmitResult, error) {
	reply := make(chan submitReply, 1)
	m.submit <- submitMsg{sessionID: sessionID, playerID: playerID, text: text, reply: reply}
	r := <-reply
	return r.result, r.err
}

// ReportProgress records a participant's display-only progress estimate
func (m *Manager) ReportProgress(sessionID model.SessionID, playerID model.PlayerID, progress int) error {
	reply := make(chan error, 1)
	m.progress <- progressMsg{sessionID: sessionID, playerID: playerID, progress: progress, reply: reply}
	return <-reply
}

// GetSession returns a participant's view of an active session
func (m *Manager) GetSession(sessionID model.SessionID, playerID model.PlayerID) (model.DuelSession, error) {
	reply := make(chan snapshotReply, 1)
	m.snapshot <- snapshotMsg{sessionID: sessionID, playerID: playerID, reply: reply}
	r := <-reply
	return r.session, r.err
}

// HasActiveSession reports whether a player is in a live duel
func (m *Manager) HasActiveSession(playerID model.PlayerID) bool {
	reply := make(chan bool, 1)
	m.active <- activeMsg{playerID: playerID, reply: reply}
	return <-reply
}

// PlayerConnected signals that a player's connection came online.
// Never blocks the transport.
func (m *Manager) PlayerConnected(playerID model.PlayerID) {
	select {
	case m.presence <- presenceMsg{playerID: playerID, connected: true}:
	default:
		m.logger.Warn("presence message dropped", slog.String("player_id", string(playerID)))
	}
}

// PlayerDisconnected signals that a player's last connection dropped
func (m *Manager) PlayerDisconnected(playerID model.PlayerID) {
	select {
	case m.presence <- presenceMsg{playerID: playerID, connected: false}:
	default:
		m.logger.Warn("presence message dropped", slog.String("player_id", string(playerID)))
	}
}

// Loop-side handlers. Only ever invoked from Run.

func (m *Manager) handleCreate(a, b model.QueueEntry) error {
	if _, busy := m.byPlayer[a.PlayerID]; busy {
		return model.ErrAlreadyInGame
	}
	if _, busy := m.byPlayer[b.PlayerID]; busy {
		return model.ErrAlreadyInGame
	}

	p, optimal, err := m.generator.Generate()
	if err != nil {
		return err
	}

	now := m.clock.Now()
	id := model.SessionID(uuid.NewString())
	session := NewSession(id, a, b, p, optimal, m.cfg, now)

	m.sessions[id] = session
	m.byPlayer[a.PlayerID] = id
	m.byPlayer[b.PlayerID] = id

	m.logger.Info("duel created",
		slog.String("session_id", string(id)),
		slog.String("player_a", string(a.PlayerID)),
		slog.String("player_b", string(b.PlayerID)),
		slog.Bool("ranked", a.Ranked),
		slog.String("puzzle", p.DigitString()),
	)

	m.announceCreated(session, a, b)
	m.announceCreated(session, b, a)
	return nil
}

func (m *Manager) announceCreated(session *Session, to, opponent model.QueueEntry) {
	state := session.Snapshot()
	m.sink.SendToPlayer(to.PlayerID, model.EventGameCreated, model.GameCreatedPayload{
		SessionID: state.ID,
		Puzzle:    state.Puzzle.DigitString(),
		Target:    state.Puzzle.Target,
		Opponent: model.OpponentSummary{
			PlayerID:    opponent.PlayerID,
			DisplayName: opponent.DisplayName,
			Rating:      opponent.Rating,
		},
		Ranked:      state.Ranked,
		StartsInMS:  state.StartsAt.Sub(m.clock.Now()).Milliseconds(),
		TimeLimitMS: state.TimeLimit.Milliseconds(),
	})
}

func (m *Manager) handleSubmit(sessionID model.SessionID, playerID model.PlayerID, text string) (SubmitResult, error) {
	session, ok := m.sessions[sessionID]
	if !ok {
		return SubmitResult{}, model.ErrSessionNotFound
	}

	now := m.clock.Now()
	result, outcome, err := session.Submit(playerID, text, now)
	if err != nil {
		return SubmitResult{}, err
	}

	solution := model.GameSolutionPayload{
		SessionID:   sessionID,
		PlayerID:    playerID,
		Correct:     result.Correct,
		Reason:      string(result.Reason),
		SolveTimeMS: result.SolveTime.Milliseconds(),
	}
	if result.Correct {
		// Both participants learn about a winning solution
		state := session.Snapshot()
		for _, id := range state.PlayerIDs() {
			m.sink.SendToPlayer(id, model.EventGameSolution, solution)
		}
	} else {
		// Incorrect attempts go only to the submitter
		m.sink.SendToPlayer(playerID, model.EventGameSolution, solution)
	}

	if outcome != nil {
		m.finalize(session, outcome, now)
	}
	return result, nil
}

func (m *Manager) handleProgress(sessionID model.SessionID, playerID model.PlayerID, progress int) error {
	session, ok := m.sessions[sessionID]
	if !ok {
		return model.ErrSessionNotFound
	}
	if err := session.SetProgress(playerID, progress); err != nil {
		return err
	}

	state := session.Snapshot()
	if opponent := state.Opponent(playerID); opponent != nil {
		m.sink.SendToPlayer(opponent.PlayerID, model.EventGameUpdate, model.GameUpdatePayload{
			SessionID:        sessionID,
			OpponentProgress: progress,
		})
	}
	return nil
}

func (m *Manager) handleSnapshot(sessionID model.SessionID, playerID model.PlayerID) snapshotReply {
	session, ok := m.sessions[sessionID]
	if !ok {
		return snapshotReply{err: model.ErrSessionNotFound}
	}
	state := session.Snapshot()
	if state.Participant(playerID) == nil {
		return snapshotReply{err: model.ErrNotParticipant}
	}
	return snapshotReply{session: state}
}

func (m *Manager) handlePresence(playerID model.PlayerID, connected bool) {
	sessionID, ok := m.byPlayer[playerID]
	if !ok {
		return
	}
	session := m.sessions[sessionID]
	now := m.clock.Now()
	if connected {
		session.Reconnect(playerID, now)
		m.logger.Info("participant reconnected",
			slog.String("session_id", string(sessionID)),
			slog.String("player_id", string(playerID)))
	} else {
		session.Disconnect(playerID, now)
		m.logger.Info("participant disconnected, grace armed",
			slog.String("session_id", string(sessionID)),
			slog.String("player_id", string(playerID)))
	}
}

func (m *Manager) handleTick() {
	now := m.clock.Now()
	for _, session := range m.sessions {
		started, outcome := session.Tick(now)
		if started {
			state := session.Snapshot()
			for _, id := range state.PlayerIDs() {
				m.sink.SendToPlayer(id, model.EventGameStarted, model.GameStartedPayload{
					SessionID:   state.ID,
					TimeLimitMS: state.TimeLimit.Milliseconds(),
				})
			}
		}
		if outcome != nil {
			m.finalize(session, outcome, now)
		}
	}
}

// finalize is the single resolution path for every terminal cause.
// It applies the outcome, computes rating deltas, broadcasts the
// terminal event, and dispatches the persistence commit asynchronously;
// eviction follows once the commit settles.
func (m *Manager) finalize(session *Session, outcome *model.Outcome, now time.Time) {
	if err := session.resolve(outcome, now); err != nil {
		// A second terminal outcome is a programming error; the session
		// table must never let this happen.
		m.logger.Error("illegal duel resolution",
			slog.String("session_id", string(session.ID())),
			slog.String("error", err.Error()))
		return
	}

	state := session.Snapshot()
	m.applyRatings(session, &state, outcome)
	state = session.Snapshot()

	payload := model.GameEndPayload{
		SessionID:       state.ID,
		WinnerID:        outcome.Winner,
		Cause:           outcome.Cause,
		OptimalSolution: state.OptimalSolution,
	}
	for _, p := range state.Participants {
		payload.Players = append(payload.Players, model.PlayerResult{
			PlayerID:    p.PlayerID,
			Correct:     p.Correct,
			SolveTimeMS: p.SolveTime.Milliseconds(),
			RatingDelta: p.RatingDelta,
		})
	}
	for _, id := range state.PlayerIDs() {
		m.sink.SendToPlayer(id, model.EventGameEnd, payload)
	}

	winnerID := ""
	if outcome.Winner != nil {
		winnerID = string(*outcome.Winner)
	}
	m.logger.Info("duel completed",
		slog.String("session_id", string(state.ID)),
		slog.String("cause", string(outcome.Cause)),
		slog.String("winner", winnerID),
	)

	// The completed session stays in the tables until the persistence
	// write is acknowledged or has failed and been logged. A participant
	// who tries to re-queue in that window is still "in game", so a new
	// pairing can never snapshot a rating the commit has yet to apply.
	// The broadcast above already happened; clients never wait on storage.
	go func() {
		m.commitResult(buildSummary(&state, outcome))
		select {
		case m.evict <- state.ID:
		case <-m.done:
		}
	}()
}

// handleEvict tears down a committed session. The tables are only
// touched from the loop, so the commit goroutine signals back here.
func (m *Manager) handleEvict(sessionID model.SessionID) {
	session, ok := m.sessions[sessionID]
	if !ok {
		return
	}
	state := session.Snapshot()
	delete(m.sessions, sessionID)
	for _, id := range state.PlayerIDs() {
		delete(m.byPlayer, id)
	}
}

// applyRatings computes and records rating deltas on the session.
// A forfeit with no winner carries no rating change so abandoned duels
// cannot churn ratings; every other terminal cause feeds Elo.
func (m *Manager) applyRatings(session *Session, state *model.DuelSession, outcome *model.Outcome) {
	if !state.Ranked {
		return
	}
	if outcome.Cause == model.CauseForfeit && outcome.Winner == nil {
		return
	}

	result := rating.OutcomeDraw
	if outcome.Winner != nil {
		if *outcome.Winner == state.Participants[0].PlayerID {
			result = rating.OutcomeAWins
		} else {
			result = rating.OutcomeBWins
		}
	}

	deltaA, deltaB := m.rating.Deltas(
		state.Participants[0].Rating,
		state.Participants[1].Rating,
		result,
	)
	session.state.Participants[0].RatingDelta = deltaA
	session.state.Participants[1].RatingDelta = deltaB
}

func buildSummary(state *model.DuelSession, outcome *model.Outcome) *model.DuelSummary {
	summary := &model.DuelSummary{
		SessionID:       state.ID,
		Ranked:          state.Ranked,
		Cause:           outcome.Cause,
		WinnerID:        outcome.Winner,
		Puzzle:          state.Puzzle,
		OptimalSolution: state.OptimalSolution,
		CompletedAt:     state.CompletedAt,
	}
	for i, p := range state.Participants {
		summary.Participants[i] = model.ParticipantResult{
			PlayerID:    p.PlayerID,
			Correct:     p.Correct,
			SolveTime:   *p.SolveTime,
			RatingDelta: p.RatingDelta,
		}
	}
	return summary
}

// commitResult persists a duel outcome with bounded retries. The commit
// is idempotent keyed by session ID, so a retry after a partial failure
// can never double-apply rating deltas. Runs outside the manager loop.
func (m *Manager) commitResult(summary *model.DuelSummary) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	for attempt := 1; attempt <= commitAttempts; attempt++ {
		if err = m.storage.CommitDuelResult(ctx, summary); err == nil {
			return
		}
		m.logger.Warn("duel result commit failed",
			slog.String("session_id", string(summary.SessionID)),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		time.Sleep(time.Duration(attempt) * 250 * time.Millisecond)
	}

	m.logger.Error("duel result abandoned after retries",
		slog.String("session_id", string(summary.SessionID)),
		slog.String("error", err.Error()))
}
