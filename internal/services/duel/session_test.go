package duel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hectoduel/hectoduel/internal/model"
	"github.com/hectoduel/hectoduel/internal/services/evaluator"
)

type SessionSuite struct {
	suite.Suite
	base    time.Time
	cfg     Config
	session *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.cfg = DefaultConfig()
	s.session = NewSession(
		"session-1",
		model.QueueEntry{PlayerID: "player-a", DisplayName: "Alice", Rating: 1000, Ranked: true},
		model.QueueEntry{PlayerID: "player-b", DisplayName: "Bob", Rating: 1000, Ranked: true},
		model.Puzzle{Digits: [6]int{1, 2, 3, 4, 5, 6}, Target: 100},
		"1+(2+3+4)*(5+6)",
		s.cfg,
		s.base,
	)
}

// start returns the time at which the duel clock begins
func (s *SessionSuite) start() time.Time {
	return s.base.Add(s.cfg.StartDelay)
}

// activate drives the session into the Active state
func (s *SessionSuite) activate() {
	started, outcome := s.session.Tick(s.start())
	s.Require().True(started)
	s.Require().Nil(outcome)
}

// Lifecycle tests

func (s *SessionSuite) TestNewSessionIsWaiting() {
	state := s.session.Snapshot()
	s.Equal(model.DuelStatusWaiting, state.Status)
	s.Equal(s.base.Add(s.cfg.StartDelay), state.StartsAt)
	s.True(state.Participants[0].Connected)
	s.True(state.Participants[1].Connected)
	s.True(state.Ranked)
}

func (s *SessionSuite) TestTickBeforeStartDoesNothing() {
	started, outcome := s.session.Tick(s.base.Add(time.Second))
	s.False(started)
	s.Nil(outcome)
	s.Equal(model.DuelStatusWaiting, s.session.Status())
}

func (s *SessionSuite) TestTickStartsSessionAtCountdownEnd() {
	s.activate()

	state := s.session.Snapshot()
	s.Equal(model.DuelStatusActive, state.Status)
	s.Equal(s.start(), state.StartedAt)
	s.Equal(s.start().Add(s.cfg.TimeLimit), state.Deadline)
}

func (s *SessionSuite) TestLateTickAnchorsClockToScheduledStart() {
	// The tick loop may fire late; the deadline is still measured from
	// the scheduled start, not the tick that observed it
	started, _ := s.session.Tick(s.start().Add(700 * time.Millisecond))
	s.Require().True(started)

	state := s.session.Snapshot()
	s.Equal(s.start(), state.StartedAt)
	s.Equal(s.start().Add(s.cfg.TimeLimit), state.Deadline)
}

func (s *SessionSuite) TestTimeoutResolvesWithNoWinner() {
	s.activate()

	_, outcome := s.session.Tick(s.start().Add(s.cfg.TimeLimit))
	s.Require().NotNil(outcome)
	s.Equal(model.CauseTimeout, outcome.Cause)
	s.Nil(outcome.Winner)
}

func (s *SessionSuite) TestTickJustBeforeDeadlineDoesNotTimeout() {
	s.activate()

	_, outcome := s.session.Tick(s.start().Add(s.cfg.TimeLimit - time.Millisecond))
	s.Nil(outcome)
}

func (s *SessionSuite) TestCorrectSubmissionAfterDeadlineTimesOut() {
	s.activate()

	// The tick loop has not observed the deadline yet; a correct answer
	// landing in that window must not win
	at := s.start().Add(s.cfg.TimeLimit + 100*time.Millisecond)
	result, outcome, err := s.session.Submit("player-a", "1+(2+3+4)*(5+6)", at)
	s.Require().NoError(err)
	s.False(result.Correct)
	s.Equal(ReasonDeadlinePassed, result.Reason)

	s.Require().NotNil(outcome)
	s.Equal(model.CauseTimeout, outcome.Cause)
	s.Nil(outcome.Winner)
	s.False(s.session.Snapshot().Participants[0].Correct)
}

func (s *SessionSuite) TestSubmissionExactlyAtDeadlineTimesOut() {
	s.activate()

	_, outcome, err := s.session.Submit("player-a", "1+(2+3+4)*(5+6)", s.start().Add(s.cfg.TimeLimit))
	s.Require().NoError(err)
	s.Require().NotNil(outcome)
	s.Equal(model.CauseTimeout, outcome.Cause)
}

func (s *SessionSuite) TestSubmissionJustBeforeDeadlineStillWins() {
	s.activate()

	at := s.start().Add(s.cfg.TimeLimit - time.Millisecond)
	result, outcome, err := s.session.Submit("player-a", "1+(2+3+4)*(5+6)", at)
	s.Require().NoError(err)
	s.True(result.Correct)
	s.Require().NotNil(outcome)
	s.Equal(model.CauseSolved, outcome.Cause)
}

// Submission tests

func (s *SessionSuite) TestCorrectSubmissionWins() {
	s.activate()
	at := s.start().Add(10 * time.Second)

	result, outcome, err := s.session.Submit("player-a", "1+(2+3+4)*(5+6)", at)
	s.Require().NoError(err)
	s.True(result.Correct)
	s.Equal(10*time.Second, result.SolveTime)

	s.Require().NotNil(outcome)
	s.Equal(model.CauseSolved, outcome.Cause)
	s.Require().NotNil(outcome.Winner)
	s.Equal(model.PlayerID("player-a"), *outcome.Winner)
}

func (s *SessionSuite) TestIncorrectSubmissionAllowsResubmission() {
	s.activate()

	result, outcome, err := s.session.Submit("player-a", "123456", s.start().Add(5*time.Second))
	s.Require().NoError(err)
	s.False(result.Correct)
	s.Equal(evaluator.ReasonWrongResult, result.Reason)
	s.Nil(outcome)

	// Same player tries again and succeeds; the clock never reset
	result, outcome, err = s.session.Submit("player-a", "1+(2+3+4)*(5+6)", s.start().Add(20*time.Second))
	s.Require().NoError(err)
	s.True(result.Correct)
	s.Equal(20*time.Second, result.SolveTime)
	s.Require().NotNil(outcome)

	state := s.session.Snapshot()
	s.Equal(2, state.Participants[0].Attempts)
}

func (s *SessionSuite) TestSubmitBeforeStartIsIllegal() {
	_, _, err := s.session.Submit("player-a", "1+(2+3+4)*(5+6)", s.base.Add(time.Second))
	s.Require().ErrorIs(err, model.ErrIllegalStateTransition)
}

func (s *SessionSuite) TestSubmitAfterCompletionIsIllegal() {
	s.activate()
	_, outcome, err := s.session.Submit("player-a", "1+(2+3+4)*(5+6)", s.start().Add(time.Second))
	s.Require().NoError(err)
	s.Require().NoError(s.session.resolve(outcome, s.start().Add(time.Second)))

	_, _, err = s.session.Submit("player-b", "1+(2+3+4)*(5+6)", s.start().Add(2*time.Second))
	s.Require().ErrorIs(err, model.ErrIllegalStateTransition)
}

func (s *SessionSuite) TestSubmitByStrangerIsRejected() {
	s.activate()
	_, _, err := s.session.Submit("player-c", "1+(2+3+4)*(5+6)", s.start().Add(time.Second))
	s.Require().ErrorIs(err, model.ErrNotParticipant)
}

// Progress tests

func (s *SessionSuite) TestProgressIsClampedAndDisplayOnly() {
	s.activate()

	s.Require().NoError(s.session.SetProgress("player-a", 150))
	s.Require().NoError(s.session.SetProgress("player-b", -5))

	state := s.session.Snapshot()
	s.Equal(100, state.Participants[0].Progress)
	s.Equal(0, state.Participants[1].Progress)
	s.Equal(model.DuelStatusActive, state.Status)
}

func (s *SessionSuite) TestProgressAfterCompletionIsIllegal() {
	s.activate()
	s.Require().NoError(s.session.resolve(&model.Outcome{Cause: model.CauseTimeout}, s.start().Add(time.Minute)))

	err := s.session.SetProgress("player-a", 50)
	s.Require().ErrorIs(err, model.ErrIllegalStateTransition)
}

// Disconnect tests

func (s *SessionSuite) TestDisconnectGraceForfeitsToRemainingPlayer() {
	s.activate()
	at := s.start().Add(5 * time.Second)
	s.session.Disconnect("player-b", at)

	// Within grace nothing happens
	_, outcome := s.session.Tick(at.Add(s.cfg.DisconnectGrace - time.Millisecond))
	s.Nil(outcome)

	_, outcome = s.session.Tick(at.Add(s.cfg.DisconnectGrace))
	s.Require().NotNil(outcome)
	s.Equal(model.CauseForfeit, outcome.Cause)
	s.Require().NotNil(outcome.Winner)
	s.Equal(model.PlayerID("player-a"), *outcome.Winner)
}

func (s *SessionSuite) TestReconnectDisarmsGrace() {
	s.activate()
	at := s.start().Add(5 * time.Second)
	s.session.Disconnect("player-b", at)
	s.session.Reconnect("player-b", at.Add(3*time.Second))

	_, outcome := s.session.Tick(at.Add(s.cfg.DisconnectGrace + time.Second))
	s.Nil(outcome)

	state := s.session.Snapshot()
	s.True(state.Participants[1].Connected)
	s.Nil(state.Participants[1].GraceDeadline)
}

func (s *SessionSuite) TestBothDisconnectedForfeitsWithNoWinner() {
	s.activate()
	at := s.start().Add(5 * time.Second)
	s.session.Disconnect("player-a", at)
	s.session.Disconnect("player-b", at)

	_, outcome := s.session.Tick(at.Add(s.cfg.DisconnectGrace))
	s.Require().NotNil(outcome)
	s.Equal(model.CauseForfeit, outcome.Cause)
	s.Nil(outcome.Winner)
}

func (s *SessionSuite) TestDisconnectDuringCountdownForfeits() {
	s.session.Disconnect("player-b", s.base)

	// No tick observed the countdown end, so the expired grace is
	// checked before the start transition
	at := s.base.Add(s.cfg.DisconnectGrace)
	started, outcome := s.session.Tick(at)
	s.False(started)
	s.Require().NotNil(outcome)
	s.Equal(model.CauseForfeit, outcome.Cause)
	s.Require().NotNil(outcome.Winner)
	s.Equal(model.PlayerID("player-a"), *outcome.Winner)
}

func (s *SessionSuite) TestEarlierGraceWinsOverTimeoutOnSameTick() {
	s.activate()
	// Grace deadline lands before the duel deadline, but the observing
	// tick arrives after both have passed
	disconnectAt := s.start().Add(s.cfg.TimeLimit - s.cfg.DisconnectGrace - time.Second)
	s.session.Disconnect("player-b", disconnectAt)

	_, outcome := s.session.Tick(s.start().Add(s.cfg.TimeLimit + time.Minute))
	s.Require().NotNil(outcome)
	s.Equal(model.CauseForfeit, outcome.Cause)
}

func (s *SessionSuite) TestTimeoutWinsOverLaterGraceOnSameTick() {
	s.activate()
	// Grace deadline lands after the duel deadline
	disconnectAt := s.start().Add(s.cfg.TimeLimit - time.Second)
	s.session.Disconnect("player-b", disconnectAt)

	_, outcome := s.session.Tick(s.start().Add(s.cfg.TimeLimit + time.Minute))
	s.Require().NotNil(outcome)
	s.Equal(model.CauseTimeout, outcome.Cause)
}

// Resolution tests

func (s *SessionSuite) TestResolveFillsSolveTimes() {
	s.activate()
	winner := model.PlayerID("player-a")
	at := s.start().Add(12 * time.Second)
	_, outcome, err := s.session.Submit("player-a", "1+(2+3+4)*(5+6)", at)
	s.Require().NoError(err)

	s.Require().NoError(s.session.resolve(outcome, at))

	state := s.session.Snapshot()
	s.Equal(model.DuelStatusCompleted, state.Status)
	s.Equal(at, state.CompletedAt)
	s.Require().NotNil(state.Outcome)
	s.Equal(winner, *state.Outcome.Winner)
	s.Equal(12*time.Second, *state.Participants[0].SolveTime)
	// The loser is charged the full limit
	s.Equal(s.cfg.TimeLimit, *state.Participants[1].SolveTime)
}

func (s *SessionSuite) TestDoubleResolveIsRejected() {
	s.activate()
	outcome := &model.Outcome{Cause: model.CauseTimeout}
	s.Require().NoError(s.session.resolve(outcome, s.start().Add(time.Minute)))

	err := s.session.resolve(outcome, s.start().Add(time.Minute))
	s.Require().ErrorIs(err, model.ErrIllegalStateTransition)
}
