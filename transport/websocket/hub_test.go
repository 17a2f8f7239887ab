package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

func testState(t *testing.T) *engine.LevelState {
	t.Helper()
	level, err := engine.NewLevel(4, 4, engine.Position{X: 0, Y: 0}, engine.Position{X: 0, Y: -1})
	if err != nil {
		t.Fatalf("Failed to create level: %v", err)
	}
	state, err := engine.NewState(level)
	if err != nil {
		t.Fatalf("Failed to create state: %v", err)
	}
	return state
}

func dialHub(t *testing.T, hub *Hub, sessionID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, sessionID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForClients polls until the session has the wanted client count.
func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(hub.sessions[sessionID]) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d clients in session %s", want, sessionID)
}

func TestHub_BroadcastToSession(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	conn := dialHub(t, hub, "ab12")
	waitForClients(t, hub, "ab12", 1)

	hub.BroadcastToSession("ab12", testState(t))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to decode message: %v", err)
	}
	if msg.SessionID != "ab12" || msg.Event != "state_update" {
		t.Errorf("Unexpected message %+v", msg)
	}
	if msg.GameState == nil || msg.GameState.Status != engine.StatusPlaying {
		t.Errorf("Expected a playing game state, got %+v", msg.GameState)
	}
}

func TestHub_BroadcastEvent(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	conn := dialHub(t, hub, "cd34")
	waitForClients(t, hub, "cd34", 1)

	hub.BroadcastEvent("cd34", "level_solved", map[string]int{"moves": 3})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to decode message: %v", err)
	}
	if msg.Event != "level_solved" {
		t.Errorf("Expected event 'level_solved', got %q", msg.Event)
	}
}

func TestHub_SessionIsolation(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	connA := dialHub(t, hub, "aaaa")
	dialHub(t, hub, "bbbb")
	waitForClients(t, hub, "aaaa", 1)
	waitForClients(t, hub, "bbbb", 1)

	hub.BroadcastToSession("bbbb", testState(t))

	// The client of session aaaa must not see bbbb's update.
	connA.SetReadDeadline(time.Now().Add(250 * time.Millisecond))
	if _, _, err := connA.ReadMessage(); err == nil {
		t.Error("Expected no message for the other session")
	}
}
