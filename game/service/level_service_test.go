package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/config"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

// fakeSessions is an in-memory SessionManager for tests.
type fakeSessions struct {
	sessions map[string]*Session
	next     int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]*Session)}
}

func (f *fakeSessions) Create(id, presetName string, level *engine.Level) (*Session, error) {
	if id == "" {
		f.next++
		id = fmt.Sprintf("s%03d", f.next)
	}
	eng, err := engine.NewEngine(level)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:             id,
		Engine:         eng,
		Level:          level,
		PresetName:     presetName,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	f.sessions[id] = sess
	return sess, nil
}

func (f *fakeSessions) Get(id string) (*Session, error) {
	sess, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found")
	}
	return sess, nil
}

func (f *fakeSessions) GetOrCreate(id, presetName string, level *engine.Level) (*Session, error) {
	if sess, err := f.Get(id); err == nil {
		return sess, nil
	}
	return f.Create(id, presetName, level)
}

func (f *fakeSessions) List() []*Session {
	out := make([]*Session, 0, len(f.sessions))
	for _, sess := range f.sessions {
		out = append(out, sess)
	}
	return out
}

func (f *fakeSessions) Delete(id string) error {
	if _, ok := f.sessions[id]; !ok {
		return fmt.Errorf("session not found")
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) UpdateLastAccessed(id string) error { return nil }
func (f *fakeSessions) Save(id string) error               { return nil }

// fakePresets is an in-memory PresetManager for tests.
type fakePresets struct {
	presets map[string]*config.Preset
}

func newFakePresets() *fakePresets {
	return &fakePresets{presets: map[string]*config.Preset{
		"classic": {
			Name: "classic", Description: "test preset",
			Width: 4, Height: 4, Steps: 3, MoveBudget: 9, Seed: 42,
		},
	}}
}

func (f *fakePresets) LoadPreset(name string) (*config.Preset, error) {
	p, ok := f.presets[name]
	if !ok {
		return nil, config.ErrPresetNotFound
	}
	return p, nil
}

func (f *fakePresets) ListPresets() ([]*config.PresetInfo, error) {
	var infos []*config.PresetInfo
	for id, p := range f.presets {
		infos = append(infos, &config.PresetInfo{
			PresetID: id, Name: p.Name, Description: p.Description,
			Width: p.Width, Height: p.Height, Steps: p.Steps,
		})
	}
	return infos, nil
}

func (f *fakePresets) GetDefault() *config.Preset { return f.presets["classic"] }

func (f *fakePresets) SavePreset(name string, preset *config.Preset) error {
	f.presets[name] = preset
	return nil
}

func newTestService() LevelService {
	return NewLevelService(newFakeSessions(), newFakePresets(), zerolog.Nop())
}

func TestGenerateLevel(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	out, err := svc.GenerateLevel(ctx, "classic", 0)
	if err != nil {
		t.Fatalf("GenerateLevel failed: %v", err)
	}
	if err := out.Level.Validate(); err != nil {
		t.Errorf("Generated level does not validate: %v", err)
	}
	if out.ID == "" {
		t.Error("Expected a level ID")
	}
}

func TestGenerateLevel_UnknownPreset(t *testing.T) {
	svc := newTestService()

	if _, err := svc.GenerateLevel(context.Background(), "missing", 0); err == nil {
		t.Error("Expected error for unknown preset")
	}
}

func TestValidateLevel(t *testing.T) {
	svc := newTestService()

	level, err := engine.NewLevel(4, 4, engine.Position{X: 3, Y: 2}, engine.Position{X: 4, Y: 1})
	if err != nil {
		t.Fatalf("Failed to create level: %v", err)
	}
	level.SetTile(engine.FieldBlack, engine.Position{X: 1, Y: 0}, engine.Block)
	level.SetTile(engine.FieldBlack, engine.Position{X: 3, Y: 2}, engine.Block)

	moves := []engine.Move{
		engine.MoveLeft, engine.MoveDown, engine.MoveRight, engine.MoveUp,
		engine.MoveLeft, engine.MoveChange, engine.MoveRight, engine.MoveDown,
		engine.MoveRight,
	}

	res, err := svc.ValidateLevel(context.Background(), level, moves, 9)
	if err != nil {
		t.Fatalf("ValidateLevel failed: %v", err)
	}
	if res.Verdict != engine.VerdictUndetermined {
		t.Errorf("Expected undetermined, got %s", res.Verdict)
	}
	if !res.Result.LimitExceeded {
		t.Error("Expected the budget to be exhausted")
	}
}

func TestSolveLevel(t *testing.T) {
	svc := newTestService()

	level, err := engine.NewLevel(4, 4, engine.Position{X: 3, Y: 3}, engine.Position{X: 0, Y: -1})
	if err != nil {
		t.Fatalf("Failed to create level: %v", err)
	}

	sol, err := svc.SolveLevel(context.Background(), level, 0)
	if err != nil {
		t.Fatalf("SolveLevel failed: %v", err)
	}
	if sol.Verdict != engine.VerdictSolved {
		t.Errorf("Expected solved, got %s", sol.Verdict)
	}
}

func TestSessionLifecycle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "classic")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.PresetName != "classic" {
		t.Errorf("Expected preset 'classic', got %s", info.PresetName)
	}

	got, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != info.ID {
		t.Errorf("Expected session %s, got %s", info.ID, got.ID)
	}

	list, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 session, got %d", len(list))
	}

	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, info.ID); err == nil {
		t.Error("Expected error after deleting session")
	}
}

func TestMove(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "classic")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	res, err := svc.Move(ctx, info.ID, "UP", false)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if res.GameState == nil {
		t.Fatal("Expected game state in result")
	}

	if _, err := svc.Move(ctx, info.ID, "sideways", false); err == nil {
		t.Error("Expected error for unknown move")
	}
}

func TestBulkMove(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "classic")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	res, err := svc.BulkMove(ctx, info.ID, []string{"up", "down", "left"}, false)
	if err != nil {
		t.Fatalf("BulkMove failed: %v", err)
	}
	if res.RequestedMoves != 3 {
		t.Errorf("Expected 3 requested moves, got %d", res.RequestedMoves)
	}
	if res.MovesExecuted == 0 && !res.Finished {
		t.Error("Expected at least one executed move on a fresh session")
	}
	if len(res.Steps) != res.MovesExecuted {
		t.Errorf("Expected %d step records, got %d", res.MovesExecuted, len(res.Steps))
	}
}

func TestBulkMove_Truncation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "classic")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	moves := make([]string, engine.MaxBulkMoves+5)
	for i := range moves {
		moves[i] = "change"
	}
	res, err := svc.BulkMove(ctx, info.ID, moves, false)
	if err != nil {
		t.Fatalf("BulkMove failed: %v", err)
	}
	if !res.Truncated {
		t.Error("Expected the move list to be truncated")
	}
	if res.Limit != engine.MaxBulkMoves {
		t.Errorf("Expected limit %d, got %d", engine.MaxBulkMoves, res.Limit)
	}
}

func TestResetAndHistory(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "classic")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Field switches never finish a generated level whose black layer is
	// empty, so both moves always land in the history.
	svc.Move(ctx, info.ID, "change", false)
	svc.Move(ctx, info.ID, "change", false)

	state, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.Status != engine.StatusPlaying {
		t.Errorf("Expected playing after reset, got %s", state.Status)
	}

	hist, err := svc.GetMoveHistory(ctx, info.ID, HistoryOptions{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("GetMoveHistory failed: %v", err)
	}
	// History is cumulative across resets.
	if hist.TotalMoves != 2 {
		t.Errorf("Expected 2 historical moves, got %d", hist.TotalMoves)
	}
	if hist.TotalPages != 1 || hist.HasNext {
		t.Errorf("Unexpected pagination %+v", hist)
	}
}
