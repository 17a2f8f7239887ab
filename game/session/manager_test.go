package session

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

func testLevel(t *testing.T) *engine.Level {
	t.Helper()
	level, err := engine.NewLevel(4, 4, engine.Position{X: 3, Y: 3}, engine.Position{X: 0, Y: -1})
	if err != nil {
		t.Fatalf("Failed to create level: %v", err)
	}
	return level
}

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager()

	sess, err := m.Create("", "classic", testLevel(t))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if len(sess.ID) != 4 {
		t.Errorf("Expected a 4-character session ID, got %q", sess.ID)
	}
	if sess.PresetName != "classic" {
		t.Errorf("Expected preset 'classic', got %s", sess.PresetName)
	}

	got, err := m.Get(sess.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("Expected session %s, got %s", sess.ID, got.ID)
	}

	if _, err := m.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_CaseInsensitiveIDs(t *testing.T) {
	m := NewManager()

	if _, err := m.Create("AbCd", "classic", testLevel(t)); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if _, err := m.Get("ABCD"); err != nil {
		t.Errorf("Expected case-insensitive lookup to succeed, got %v", err)
	}
	if _, err := m.Create("abcd", "classic", testLevel(t)); !errors.Is(err, ErrSessionAlreadyExists) {
		t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	m := NewManager()

	first, err := m.GetOrCreate("game", "classic", testLevel(t))
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	second, err := m.GetOrCreate("game", "classic", testLevel(t))
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if first != second {
		t.Error("Expected the same session on the second call")
	}
	if m.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", m.Count())
	}
}

func TestManager_Delete(t *testing.T) {
	m := NewManager()

	sess, err := m.Create("", "classic", testLevel(t))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if err := m.Delete(sess.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if err := m.Delete(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	m := NewManager()

	old, err := m.Create("old1", "classic", testLevel(t))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := m.Create("new1", "classic", testLevel(t)); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	removed := m.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 removed session, got %d", removed)
	}
	if m.Count() != 1 {
		t.Errorf("Expected 1 remaining session, got %d", m.Count())
	}
	if _, err := m.Get("old1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected the stale session to be gone, got %v", err)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	m := NewManager()

	sess, err := m.Create("live", "classic", testLevel(t))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	before := sess.LastAccessedAt

	time.Sleep(5 * time.Millisecond)
	if err := m.UpdateLastAccessed("live"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !sess.LastAccessedAt.After(before) {
		t.Error("Expected the last-accessed timestamp to advance")
	}
}

func TestManager_Persistence(t *testing.T) {
	fp, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	m := NewManagerWithPersistence(fp, zerolog.Nop())

	sess, err := m.Create("pers", "classic", testLevel(t))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	sess.Engine.Move(engine.MoveLeft)
	if err := m.Save("pers"); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	// A fresh manager on the same storage sees the session.
	m2 := NewManagerWithPersistence(fp, zerolog.Nop())
	if err := m2.LoadPersistedSessions(); err != nil {
		t.Fatalf("LoadPersistedSessions failed: %v", err)
	}
	loaded, err := m2.Get("pers")
	if err != nil {
		t.Fatalf("Failed to get persisted session: %v", err)
	}
	if loaded.Engine.GetPlayerPosition() != (engine.Position{X: 0, Y: 3}) {
		t.Errorf("Expected restored player position (0,3), got %+v", loaded.Engine.GetPlayerPosition())
	}
	if len(loaded.Engine.GetMoveHistory()) != 1 {
		t.Errorf("Expected 1 restored move, got %d", len(loaded.Engine.GetMoveHistory()))
	}
}
