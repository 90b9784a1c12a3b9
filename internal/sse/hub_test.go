package sse

import (
	"testing"
	"time"

	"github.com/hectoduel/hectoduel/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "game_update",
			data:      `{"session_id":"abc","opponent_progress_estimate":40}`,
			expected:  "event: game_update\ndata: {\"session_id\":\"abc\",\"opponent_progress_estimate\":40}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "game_end",
			data:      "line1\nline2",
			expected:  "event: game_end\ndata: line1\ndata: line2\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub("player-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "player-1")
	hub.Register(client)

	// Give the hub time to process registration
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Broadcast([]byte("event: test\ndata: hello\n\n"))

	select {
	case msg := <-client.send:
		if string(msg) != "event: test\ndata: hello\n\n" {
			t.Errorf("received %q", string(msg))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestHub_BroadcastReachesAllConnections(t *testing.T) {
	hub := NewHub("player-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	first := NewClient(hub, "player-1")
	second := NewClient(hub, "player-1")
	hub.Register(first)
	hub.Register(second)
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast([]byte("event: test\ndata: x\n\n"))

	for _, client := range []*Client{first, second} {
		select {
		case <-client.send:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub("player-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "player-1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Unregister(client)

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
}

func TestHub_SlowClientDoesNotBlockBroadcast(t *testing.T) {
	hub := NewHub("player-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "player-1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	// Nobody reads client.send; overflow past the buffer must not hang
	msg := []byte("event: test\ndata: x\n\n")
	for i := 0; i < sendBufferSize+10; i++ {
		hub.Broadcast(msg)
	}
	time.Sleep(10 * time.Millisecond)
}
