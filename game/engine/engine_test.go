package engine

import (
	"testing"
)

// testLevel builds the small playground used by the engine tests:
//
//	white          black
//	. . # .        . . . .
//	. . . .        . # . .
//	p . . .        . . . .
//
// start (0,2), exit (3,-1) above the top-right corner.
func testLevel(t *testing.T) *Level {
	t.Helper()
	level := mustLevel(t, 4, 3, Position{X: 0, Y: 2}, Position{X: 3, Y: -1})
	level.SetTile(FieldWhite, Position{X: 2, Y: 0}, Block)
	level.SetTile(FieldBlack, Position{X: 1, Y: 1}, Block)
	return level
}

func TestNewEngine(t *testing.T) {
	eng, err := NewEngine(testLevel(t))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if eng.Status() != StatusPlaying {
		t.Errorf("Expected status playing, got %s", eng.Status())
	}
	if eng.IsSolved() {
		t.Error("Expected level not to be solved initially")
	}
	if eng.GetActiveField() != FieldWhite {
		t.Errorf("Expected white field active, got %s", eng.GetActiveField())
	}
	if eng.GetPlayerPosition() != (Position{X: 0, Y: 2}) {
		t.Errorf("Unexpected player position %+v", eng.GetPlayerPosition())
	}
}

func TestNewEngine_InvalidLevel(t *testing.T) {
	level := testLevel(t)
	level.Exit = Position{X: 1, Y: 1}

	if _, err := NewEngine(level); err == nil {
		t.Error("Expected error for invalid level")
	}
}

func TestEngine_BasicMovement(t *testing.T) {
	eng, err := NewEngine(testLevel(t))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if !eng.Move(MoveRight) {
		t.Error("Expected successful move")
	}
	if eng.GetPlayerPosition() != (Position{X: 3, Y: 2}) {
		t.Errorf("Expected slide to (3,2), got %+v", eng.GetPlayerPosition())
	}

	history := eng.GetMoveHistory()
	if len(history) != 1 {
		t.Errorf("Expected 1 move in history, got %d", len(history))
	}
	lastMove := eng.GetLastMove()
	if lastMove == nil {
		t.Fatal("Expected last move to be non-nil")
	}
	if lastMove.Move != MoveRight {
		t.Errorf("Expected last move 'right', got '%s'", lastMove.Move)
	}
}

func TestEngine_CanMove(t *testing.T) {
	eng, _ := NewEngine(testLevel(t))

	if !eng.CanMove(MoveRight) {
		t.Error("Expected to be able to move right")
	}
	if eng.CanMove(MoveLeft) {
		t.Error("Expected left against the wall to be unavailable")
	}
	if eng.CanMove(MoveDown) {
		t.Error("Expected down against the wall to be unavailable")
	}
	if !eng.CanMove(MoveChange) {
		t.Error("Expected field switch to be available")
	}
	if eng.CanMove(Move("invalid")) {
		t.Error("Expected invalid move to be unavailable")
	}
}

func TestEngine_GetPossibleMoves(t *testing.T) {
	eng, _ := NewEngine(testLevel(t))

	possible := eng.GetPossibleMoves()
	expected := map[Move]bool{MoveUp: true, MoveRight: true, MoveChange: true}

	if len(possible) != len(expected) {
		t.Errorf("Expected %d possible moves, got %d: %v", len(expected), len(possible), possible)
	}
	for _, m := range possible {
		if !expected[m] {
			t.Errorf("Unexpected possible move %s", m)
		}
	}
}

func TestEngine_Reset(t *testing.T) {
	eng, _ := NewEngine(testLevel(t))

	eng.Move(MoveRight)
	eng.Move(MoveUp)

	if len(eng.GetMoveHistory()) != 2 {
		t.Fatalf("Expected 2 moves before reset, got %d", len(eng.GetMoveHistory()))
	}

	state := eng.Reset()
	if state == nil {
		t.Fatal("Expected reset to return state")
	}
	if eng.GetPlayerPosition() != (Position{X: 0, Y: 2}) {
		t.Errorf("Expected player back at start, got %+v", eng.GetPlayerPosition())
	}
	if eng.GetActiveField() != FieldWhite {
		t.Errorf("Expected white field after reset, got %s", eng.GetActiveField())
	}
	// Move history is cumulative across resets, the current segment is not.
	if len(eng.GetMoveHistory()) != 2 {
		t.Errorf("Expected cumulative history retained, got %d moves", len(eng.GetMoveHistory()))
	}
	if len(state.CurrentMoves) != 0 || state.CurrentMovesCount != 0 {
		t.Errorf("Expected current moves cleared, got len=%d count=%d", len(state.CurrentMoves), state.CurrentMovesCount)
	}
}

func TestEngine_BulkMove(t *testing.T) {
	eng, _ := NewEngine(testLevel(t))

	// Right slides to (3,2), up slides off the board into the exit.
	results := eng.BulkMove([]Move{MoveRight, MoveUp, MoveDown})
	if len(results) != 2 {
		t.Fatalf("Expected bulk move to stop after solving, got %d results", len(results))
	}
	if !eng.IsSolved() {
		t.Error("Expected level solved after bulk move")
	}
}

func TestEngine_SetState(t *testing.T) {
	eng, _ := NewEngine(testLevel(t))

	if err := eng.SetState(nil); err == nil {
		t.Error("Expected error when setting nil state")
	}

	other := mustState(t, testLevel(t))
	other.Apply(MoveRight)
	if err := eng.SetState(other); err != nil {
		t.Errorf("Failed to set state: %v", err)
	}
	if eng.GetPlayerPosition() != (Position{X: 3, Y: 2}) {
		t.Errorf("Expected restored position (3,2), got %+v", eng.GetPlayerPosition())
	}
}

func TestEngine_MoveAfterFinish(t *testing.T) {
	eng, _ := NewEngine(testLevel(t))
	eng.BulkMove([]Move{MoveRight, MoveUp})

	if eng.Move(MoveDown) {
		t.Error("Expected move to fail after level is finished")
	}
	if eng.Move(Move("")) {
		t.Error("Expected empty move to fail")
	}
}
