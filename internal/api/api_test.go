package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hectoduel/hectoduel/internal/api"
	"github.com/hectoduel/hectoduel/internal/api/response"
	"github.com/hectoduel/hectoduel/internal/factory"
	"github.com/hectoduel/hectoduel/internal/model"
)

// testServer wires the router against a deterministic application
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp()
	app.Start()
	t.Cleanup(app.Stop)

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Storage:     app.Storage,
		Clock:       app.Clock,
		Coordinator: app.Coordinator,
		DuelManager: app.DuelManager,
		HubManager:  app.HubManager,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, playerID string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// createPlayer registers a player through the API and returns its ID
func (ts *testServer) createPlayer(t *testing.T, name string) string {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"display_name": name}, "")
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())

	var resp response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.ID
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreatePlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"display_name": "Alice"}, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Alice", resp.DisplayName)
	assert.Equal(t, model.DefaultRating, resp.Rating)
	assert.NotEmpty(t, resp.ID)
}

func TestCreatePlayerRequiresName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_REQUEST")
}

func TestGetPlayer(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createPlayer(t, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/players/"+id, nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.ID)
}

func TestGetUnknownPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "PLAYER_NOT_FOUND")
}

func TestIdentityRequired(t *testing.T) {
	ts := newTestServer(t)

	// No identity header
	rr := ts.request(http.MethodPost, "/api/v1/queue/join", map[string]bool{"ranked": true}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNAUTHORIZED")

	// Unknown player in the header
	rr = ts.request(http.MethodPost, "/api/v1/queue/join", map[string]bool{"ranked": true}, "ghost")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "PLAYER_NOT_FOUND")
}

func TestQueueJoinAndLeave(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createPlayer(t, "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/queue/join", map[string]bool{"ranked": true}, id)
	assert.Equal(t, http.StatusAccepted, rr.Code)

	var status response.QueueStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "queued", status.Status)
	assert.True(t, status.Ranked)

	// Duplicate join is rejected
	rr = ts.request(http.MethodPost, "/api/v1/queue/join", map[string]bool{"ranked": true}, id)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "ALREADY_QUEUED")

	// Leaving is idempotent
	rr = ts.request(http.MethodPost, "/api/v1/queue/leave", nil, id)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/queue/leave", nil, id)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestGetUnknownDuel(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createPlayer(t, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/duels/nope", nil, id)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "SESSION_NOT_FOUND")
}

// pairPlayers queues both players and extracts the session ID from the
// game_created frame on Alice's event stream
func pairPlayers(t *testing.T, ts *testServer, aliceID, bobID string) string {
	t.Helper()

	client := ts.app.HubManager.Connect(model.PlayerID(aliceID))
	frames := make(chan string, 64)
	go func() {
		for frame := range client.Receive() {
			frames <- string(frame)
		}
	}()

	rr := ts.request(http.MethodPost, "/api/v1/queue/join", map[string]bool{"ranked": true}, aliceID)
	require.Equal(t, http.StatusAccepted, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/queue/join", map[string]bool{"ranked": true}, bobID)
	require.Equal(t, http.StatusAccepted, rr.Code)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case frame := <-frames:
			if !strings.HasPrefix(frame, "event: game_created\n") {
				continue
			}
			const key = `"session_id":"`
			i := strings.Index(frame, key)
			require.GreaterOrEqual(t, i, 0)
			rest := frame[i+len(key):]
			return rest[:strings.Index(rest, `"`)]
		case <-deadline:
			t.Fatal("no game_created frame")
		}
	}
}

func TestDuelFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	aliceID := ts.createPlayer(t, "Alice")
	bobID := ts.createPlayer(t, "Bob")

	sessionID := pairPlayers(t, ts, aliceID, bobID)

	// Submitting during the countdown is rejected
	rr := ts.request(http.MethodPost, "/api/v1/duels/"+sessionID+"/submit",
		map[string]string{"text": factory.TestPuzzleSolution}, aliceID)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "ILLEGAL_STATE_TRANSITION")

	// Start the duel
	ts.app.MockClock.Advance(3 * time.Second)
	ts.app.DuelManager.TickNow()
	require.Eventually(t, func() bool {
		rr := ts.request(http.MethodGet, "/api/v1/duels/"+sessionID, nil, aliceID)
		if rr.Code != http.StatusOK {
			return false
		}
		var session response.DuelSession
		if json.Unmarshal(rr.Body.Bytes(), &session) != nil {
			return false
		}
		return session.Status == "active"
	}, 2*time.Second, 10*time.Millisecond)

	// A session snapshot is only visible to participants
	strangerID := ts.createPlayer(t, "Mallory")
	rr = ts.request(http.MethodGet, "/api/v1/duels/"+sessionID, nil, strangerID)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "NOT_PARTICIPANT")

	// Wrong answers come back as verdicts, not errors
	rr = ts.request(http.MethodPost, "/api/v1/duels/"+sessionID+"/submit",
		map[string]string{"text": "1+2+3+4+5+6"}, aliceID)
	assert.Equal(t, http.StatusOK, rr.Code)
	var verdict response.SubmitVerdict
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &verdict))
	assert.False(t, verdict.Correct)
	assert.NotEmpty(t, verdict.Reason)

	// Empty submissions are rejected outright
	rr = ts.request(http.MethodPost, "/api/v1/duels/"+sessionID+"/submit",
		map[string]string{"text": "   "}, aliceID)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_SUBMISSION")

	// Progress reports are accepted silently
	rr = ts.request(http.MethodPost, "/api/v1/duels/"+sessionID+"/progress",
		map[string]int{"progress": 50}, bobID)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	// The winning submission resolves the duel
	ts.app.MockClock.Advance(10 * time.Second)
	rr = ts.request(http.MethodPost, "/api/v1/duels/"+sessionID+"/submit",
		map[string]string{"text": factory.TestPuzzleSolution}, bobID)
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &verdict))
	assert.True(t, verdict.Correct)
	assert.Equal(t, (10 * time.Second).Milliseconds(), verdict.SolveTimeMS)

	// The session is gone and the summary lands in history
	require.Eventually(t, func() bool {
		rr := ts.request(http.MethodGet, "/api/v1/players/"+bobID+"/duels", nil, "")
		if rr.Code != http.StatusOK {
			return false
		}
		var summaries []response.DuelSummary
		if json.Unmarshal(rr.Body.Bytes(), &summaries) != nil {
			return false
		}
		return len(summaries) == 1 && summaries[0].SessionID == sessionID
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		rr := ts.request(http.MethodGet, "/api/v1/duels/"+sessionID, nil, aliceID)
		return rr.Code == http.StatusNotFound
	}, 2*time.Second, 10*time.Millisecond)
}
