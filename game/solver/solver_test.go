package solver

import (
	"errors"
	"testing"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

func mustLevel(t *testing.T, width, height int, start, exit engine.Position) *engine.Level {
	t.Helper()
	level, err := engine.NewLevel(width, height, start, exit)
	if err != nil {
		t.Fatalf("Failed to create level: %v", err)
	}
	return level
}

func TestSolve_FindsWitness(t *testing.T) {
	// Two moves: slide left across the row, then up into the exit.
	level := mustLevel(t, 4, 4, engine.Position{X: 3, Y: 3}, engine.Position{X: 0, Y: -1})

	sol, err := Solve(level, 10)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Verdict != engine.VerdictSolved {
		t.Fatalf("Expected solved, got %s", sol.Verdict)
	}
	if len(sol.Moves) != 2 {
		t.Errorf("Expected a 2-move witness, got %v", sol.Moves)
	}

	res, err := engine.Simulate(level, sol.Moves, 10)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if res.Status != engine.StatusSolved {
		t.Errorf("Witness does not solve the level: %s", res.Status)
	}
}

func TestSolve_RequiresFieldSwitch(t *testing.T) {
	// The white row to the exit is walled off; switching to the black
	// field opens it up.
	level := mustLevel(t, 4, 4, engine.Position{X: 3, Y: 3}, engine.Position{X: 3, Y: -1})
	level.SetTile(engine.FieldWhite, engine.Position{X: 3, Y: 0}, engine.Block)
	level.SetTile(engine.FieldWhite, engine.Position{X: 3, Y: 1}, engine.Block)
	level.SetTile(engine.FieldWhite, engine.Position{X: 3, Y: 2}, engine.Block)

	sol, err := Solve(level, 10)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Verdict != engine.VerdictSolved {
		t.Fatalf("Expected solved, got %s", sol.Verdict)
	}
	hasChange := false
	for _, m := range sol.Moves {
		if m == engine.MoveChange {
			hasChange = true
		}
	}
	if !hasChange {
		t.Errorf("Expected the witness to switch fields, got %v", sol.Moves)
	}
}

func TestSolve_Unsolvable(t *testing.T) {
	// The player is boxed in on white and crushed on black.
	level := mustLevel(t, 2, 1, engine.Position{X: 0, Y: 0}, engine.Position{X: 2, Y: 0})
	level.SetTile(engine.FieldWhite, engine.Position{X: 1, Y: 0}, engine.Block)
	level.SetTile(engine.FieldBlack, engine.Position{X: 0, Y: 0}, engine.Block)

	sol, err := Solve(level, 10)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Verdict != engine.VerdictUnsolvable {
		t.Errorf("Expected unsolvable, got %s", sol.Verdict)
	}
	if sol.Moves != nil {
		t.Errorf("Expected no witness, got %v", sol.Moves)
	}
}

func TestSolve_BudgetTooSmall(t *testing.T) {
	level := mustLevel(t, 4, 4, engine.Position{X: 3, Y: 3}, engine.Position{X: 0, Y: -1})

	sol, err := Solve(level, 1)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if sol.Verdict != engine.VerdictUndetermined {
		t.Errorf("Expected undetermined under a 1-move budget, got %s", sol.Verdict)
	}
}

func TestSolve_InvalidBudget(t *testing.T) {
	level := mustLevel(t, 4, 4, engine.Position{X: 0, Y: 0}, engine.Position{X: 0, Y: -1})

	if _, err := Solve(level, 0); !errors.Is(err, ErrInvalidBudget) {
		t.Errorf("Expected ErrInvalidBudget, got %v", err)
	}
}

func TestSolve_InvalidLevel(t *testing.T) {
	level := mustLevel(t, 4, 4, engine.Position{X: 0, Y: 0}, engine.Position{X: 0, Y: -1})
	level.Exit = engine.Position{X: 1, Y: 1}

	if _, err := Solve(level, 5); err == nil {
		t.Error("Expected error for invalid level")
	}
}
