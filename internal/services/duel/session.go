package duel

import (
	"time"

	"github.com/hectoduel/hectoduel/internal/model"
	"github.com/hectoduel/hectoduel/internal/services/evaluator"
)

// Config holds timing parameters for duel sessions
type Config struct {
	// StartDelay is the countdown between pairing and the clock starting
	StartDelay time.Duration
	// TimeLimit is how long participants have to solve the puzzle
	TimeLimit time.Duration
	// DisconnectGrace is how long a disconnected participant may
	// reconnect before forfeiting
	DisconnectGrace time.Duration
	// TickInterval drives deadline checks in the manager loop
	TickInterval time.Duration
}

// DefaultConfig returns the standard duel timing
func DefaultConfig() Config {
	return Config{
		StartDelay:      3 * time.Second,
		TimeLimit:       60 * time.Second,
		DisconnectGrace: 10 * time.Second,
		TickInterval:    250 * time.Millisecond,
	}
}

// ReasonDeadlinePassed rejects a submission that arrived at or after
// the session deadline. It is a timing verdict, not an evaluator one.
const ReasonDeadlinePassed = evaluator.Reason("deadline_passed")

// SubmitResult is the verdict on a single submission
type SubmitResult struct {
	Correct   bool
	Reason    evaluator.Reason
	SolveTime time.Duration
}

// Session owns one duel's lifecycle. All methods are invoked only from
// the manager's loop, so the state needs no locking; callers pass the
// current time explicitly so the machine is deterministic under test.
type Session struct {
	state *model.DuelSession
	cfg   Config
}

// NewSession creates a session in the Waiting state from two matched
// queue entries. Both participant slots are created together; a partial
// session is never observable.
func NewSession(
	id model.SessionID,
	a, b model.QueueEntry,
	p model.Puzzle,
	optimalSolution string,
	cfg Config,
	now time.Time,
) *Session {
	state := &model.DuelSession{
		ID:              id,
		Status:          model.DuelStatusWaiting,
		Puzzle:          p,
		Ranked:          a.Ranked,
		OptimalSolution: optimalSolution,
		TimeLimit:       cfg.TimeLimit,
		StartsAt:        now.Add(cfg.StartDelay),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	state.Participants[0] = newParticipant(a)
	state.Participants[1] = newParticipant(b)

	return &Session{state: state, cfg: cfg}
}

func newParticipant(e model.QueueEntry) model.ParticipantState {
	return model.ParticipantState{
		PlayerID:    e.PlayerID,
		DisplayName: e.DisplayName,
		Rating:      e.Rating,
		Connected:   true,
	}
}

// ID returns the session identifier
func (s *Session) ID() model.SessionID {
	return s.state.ID
}

// Status returns the current lifecycle phase
func (s *Session) Status() model.DuelStatus {
	return s.state.Status
}

// Snapshot returns a copy of the session state for read-only use
func (s *Session) Snapshot() model.DuelSession {
	return *s.state
}

// Tick advances time-driven behavior. It returns whether the session
// just transitioned to Active, and a terminal outcome if one fired.
// At most one terminal deadline fires; if several expired between ticks
// the earliest one wins so termination is deterministic.
func (s *Session) Tick(now time.Time) (started bool, outcome *model.Outcome) {
	switch s.state.Status {
	case model.DuelStatusWaiting:
		if forfeited := s.expiredForfeit(now); forfeited != nil {
			return false, forfeited
		}
		if !now.Before(s.state.StartsAt) {
			s.state.Status = model.DuelStatusActive
			s.state.StartedAt = s.state.StartsAt
			s.state.Deadline = s.state.StartedAt.Add(s.cfg.TimeLimit)
			s.state.UpdatedAt = now
			return true, nil
		}
		return false, nil

	case model.DuelStatusActive:
		forfeited := s.expiredForfeit(now)
		timedOut := !now.Before(s.state.Deadline)

		switch {
		case forfeited != nil && timedOut:
			// Both deadlines passed between ticks; earliest wins
			if s.earliestGrace().Before(s.state.Deadline) {
				return false, forfeited
			}
			return false, &model.Outcome{Cause: model.CauseTimeout}
		case forfeited != nil:
			return false, forfeited
		case timedOut:
			return false, &model.Outcome{Cause: model.CauseTimeout}
		}
		return false, nil

	default:
		return false, nil
	}
}

// expiredForfeit returns a forfeit outcome if any disconnect grace has
// run out, or nil
func (s *Session) expiredForfeit(now time.Time) *model.Outcome {
	expired := 0
	var remaining *model.PlayerID
	for i := range s.state.Participants {
		p := &s.state.Participants[i]
		if !p.Connected && p.GraceDeadline != nil && !now.Before(*p.GraceDeadline) {
			expired++
		} else {
			id := p.PlayerID
			remaining = &id
		}
	}
	switch expired {
	case 0:
		return nil
	case 1:
		return &model.Outcome{Cause: model.CauseForfeit, Winner: remaining}
	default:
		// Both gone: forfeit with no winner
		return &model.Outcome{Cause: model.CauseForfeit}
	}
}

// earliestGrace returns the earliest expired grace deadline. Only called
// when at least one grace deadline is set and expired.
func (s *Session) earliestGrace() time.Time {
	var earliest time.Time
	for i := range s.state.Participants {
		p := &s.state.Participants[i]
		if p.GraceDeadline == nil {
			continue
		}
		if earliest.IsZero() || p.GraceDeadline.Before(earliest) {
			earliest = *p.GraceDeadline
		}
	}
	return earliest
}

// Submit evaluates a candidate solution for a participant. Submissions
// are valid only while Active; a correct one resolves the session
// immediately with the submitter as winner. Incorrect attempts are
// recorded and the participant may resubmit until the clock expires;
// resubmission never resets the clock. A submission at or past the
// deadline resolves as a timeout regardless of correctness.
func (s *Session) Submit(playerID model.PlayerID, text string, now time.Time) (SubmitResult, *model.Outcome, error) {
	if s.state.Status != model.DuelStatusActive {
		return SubmitResult{}, nil, model.ErrIllegalStateTransition
	}

	participant := s.state.Participant(playerID)
	if participant == nil {
		return SubmitResult{}, nil, model.ErrNotParticipant
	}

	if !now.Before(s.state.Deadline) {
		// The tick loop only observes the deadline once per interval;
		// a submission arriving in that window is already too late and
		// resolves the duel as a timeout, never a win.
		s.state.UpdatedAt = now
		return SubmitResult{Reason: ReasonDeadlinePassed, SolveTime: now.Sub(s.state.StartedAt)},
			&model.Outcome{Cause: model.CauseTimeout}, nil
	}

	verdict := evaluator.Evaluate(s.state.Puzzle, text)
	elapsed := now.Sub(s.state.StartedAt)

	participant.Solution = text
	participant.Attempts++
	s.state.UpdatedAt = now

	if !verdict.Correct {
		return SubmitResult{Reason: verdict.Reason, SolveTime: elapsed}, nil, nil
	}

	participant.Correct = true
	participant.SolveTime = &elapsed

	winner := playerID
	outcome := &model.Outcome{Cause: model.CauseSolved, Winner: &winner}
	return SubmitResult{Correct: true, SolveTime: elapsed}, outcome, nil
}

// SetProgress records a display-only progress estimate for a participant.
// Never affects the outcome.
func (s *Session) SetProgress(playerID model.PlayerID, progress int) error {
	if s.state.Status == model.DuelStatusCompleted {
		return model.ErrIllegalStateTransition
	}
	participant := s.state.Participant(playerID)
	if participant == nil {
		return model.ErrNotParticipant
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	participant.Progress = progress
	return nil
}

// Disconnect marks a participant as disconnected and arms the grace
// deadline checked by Tick
func (s *Session) Disconnect(playerID model.PlayerID, now time.Time) {
	if s.state.Status == model.DuelStatusCompleted {
		return
	}
	participant := s.state.Participant(playerID)
	if participant == nil {
		return
	}
	deadline := now.Add(s.cfg.DisconnectGrace)
	participant.Connected = false
	participant.GraceDeadline = &deadline
	s.state.UpdatedAt = now
}

// Reconnect clears a participant's grace deadline
func (s *Session) Reconnect(playerID model.PlayerID, now time.Time) {
	participant := s.state.Participant(playerID)
	if participant == nil {
		return
	}
	participant.Connected = true
	participant.GraceDeadline = nil
	s.state.UpdatedAt = now
}

// resolve applies a terminal outcome. Exactly one outcome is ever
// applied; a second call is a programming error surfaced to the caller.
func (s *Session) resolve(outcome *model.Outcome, now time.Time) error {
	if s.state.Status == model.DuelStatusCompleted {
		return model.ErrIllegalStateTransition
	}

	s.state.Status = model.DuelStatusCompleted
	s.state.Outcome = outcome
	s.state.CompletedAt = now
	s.state.UpdatedAt = now

	// Participants without a winning solution are charged the full limit
	limit := s.state.TimeLimit
	for i := range s.state.Participants {
		p := &s.state.Participants[i]
		if p.SolveTime == nil {
			t := limit
			p.SolveTime = &t
		}
	}
	return nil
}
