package engine

import "fmt"

// Engine provides the main interface for level simulation operations.
type Engine interface {
	// State management
	GetState() *LevelState
	SetState(state *LevelState) error
	Reset() *LevelState
	Status() Status
	IsSolved() bool
	GetPlayerPosition() Position
	GetActiveField() Field

	// Move operations
	Move(move Move) bool
	CanMove(move Move) bool
	GetPossibleMoves() []Move
	BulkMove(moves []Move) []bool

	// History
	GetMoveHistory() []MoveRecord
	GetLastMove() *MoveRecord

	// Level access
	GetLevel() *Level
}

// LevelEngine implements the Engine interface. It keeps the pristine
// level so Reset can rebuild the state from scratch.
type LevelEngine struct {
	level *Level
	state *LevelState
}

// NewEngine creates an engine for the provided level.
func NewEngine(level *Level) (*LevelEngine, error) {
	state, err := NewState(level)
	if err != nil {
		return nil, err
	}
	return &LevelEngine{level: level.Clone(), state: state}, nil
}

// GetState returns the current simulation state.
func (e *LevelEngine) GetState() *LevelState {
	return e.state
}

// SetState sets the simulation state (used for persistence loading).
func (e *LevelEngine) SetState(state *LevelState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	e.state = state
	return nil
}

// Reset rebuilds the state from the pristine level. The cumulative move
// history and total count survive the reset; only the current segment is
// cleared.
func (e *LevelEngine) Reset() *LevelState {
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	state, err := NewState(e.level)
	if err != nil {
		// The level validated at construction time; it cannot stop doing so.
		panic(fmt.Sprintf("reset of validated level failed: %v", err))
	}
	state.MoveHistory = prevHistory
	state.TotalMoves = prevTotal
	e.state = state
	return e.state
}

// Status returns the simulator state machine state.
func (e *LevelEngine) Status() Status {
	return e.state.Status
}

// IsSolved reports whether the player has reached the exit.
func (e *LevelEngine) IsSolved() bool {
	return e.state.Status == StatusSolved
}

// GetPlayerPosition returns the player's current cell.
func (e *LevelEngine) GetPlayerPosition() Position {
	return e.state.Player
}

// GetActiveField returns the currently active field.
func (e *LevelEngine) GetActiveField() Field {
	return e.state.Active
}

// GetLevel returns a copy of the pristine level.
func (e *LevelEngine) GetLevel() *Level {
	return e.level.Clone()
}

// Move applies a single move. It returns false when the move is unknown,
// the level is finished, or the move changed nothing.
func (e *LevelEngine) Move(move Move) bool {
	outcome, err := e.state.Apply(move)
	if err != nil {
		return false
	}
	return outcome != OutcomeNothing
}

// CanMove reports whether the move would change the state: a direction
// whose first step is open (or the exit), or any field switch.
func (e *LevelEngine) CanMove(move Move) bool {
	if e.state.Status.Terminal() {
		return false
	}
	if move == MoveChange {
		return true
	}
	dx, dy, ok := move.Delta()
	if !ok {
		return false
	}
	next := Position{X: e.state.Player.X + dx, Y: e.state.Player.Y + dy}
	return e.state.Level.IsExit(next) || !e.state.stoppingAt(next)
}

// GetPossibleMoves returns all moves that would change the state.
func (e *LevelEngine) GetPossibleMoves() []Move {
	moves := []Move{MoveUp, MoveDown, MoveLeft, MoveRight, MoveChange}
	var possible []Move
	for _, m := range moves {
		if e.CanMove(m) {
			possible = append(possible, m)
		}
	}
	return possible
}

// BulkMove executes moves in sequence, returning success status for
// each. It stops early once the level is finished.
func (e *LevelEngine) BulkMove(moves []Move) []bool {
	results := make([]bool, 0, len(moves))
	for _, m := range moves {
		if e.state.Status.Terminal() {
			break
		}
		results = append(results, e.Move(m))
	}
	return results
}

// GetMoveHistory returns the complete move history.
func (e *LevelEngine) GetMoveHistory() []MoveRecord {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves.
func (e *LevelEngine) GetLastMove() *MoveRecord {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}
