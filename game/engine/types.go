package engine

// Tile represents the content of a single cell in one field layer.
type Tile string

const (
	Blank  Tile = "blank"
	Block  Tile = "block"
	Spiral Tile = "spiral"
	Enemy  Tile = "enemy"

	// Validation constants
	MinGridSize  = 1
	MaxGridSize  = 64
	MaxBulkMoves = 50

	// DefaultMoveBudget bounds a simulation when the caller does not
	// supply its own step budget.
	DefaultMoveBudget = 100
)

// Field identifies one of the two overlaid obstacle layers.
type Field string

const (
	FieldWhite Field = "white"
	FieldBlack Field = "black"
)

// Other returns the opposite field.
func (f Field) Other() Field {
	if f == FieldWhite {
		return FieldBlack
	}
	return FieldWhite
}

// Move is one of the five player actions. Directional moves slide every
// entity in the active field until it is stopped; Change toggles the
// active field in place.
type Move string

const (
	MoveUp     Move = "up"
	MoveDown   Move = "down"
	MoveLeft   Move = "left"
	MoveRight  Move = "right"
	MoveChange Move = "change"
)

// Delta returns the per-step offset of a directional move. The third
// return is false for Change and for unknown moves.
func (m Move) Delta() (dx, dy int, ok bool) {
	switch m {
	case MoveUp:
		return 0, -1, true
	case MoveDown:
		return 0, 1, true
	case MoveLeft:
		return -1, 0, true
	case MoveRight:
		return 1, 0, true
	}
	return 0, 0, false
}

// Valid reports whether m is one of the five known moves.
func (m Move) Valid() bool {
	_, _, ok := m.Delta()
	return ok || m == MoveChange
}

// Position represents x,y coordinates. x is the column, y the row; the
// exit cell deliberately lies one step outside the grid bounds.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MoveOutcome describes what a single applied move did.
type MoveOutcome string

const (
	OutcomeNothing       MoveOutcome = "nothing"
	OutcomeMoved         MoveOutcome = "moved"
	OutcomeChanged       MoveOutcome = "changed"
	OutcomePlayerWon     MoveOutcome = "player_won"
	OutcomeEnemyWon      MoveOutcome = "enemy_won"
	OutcomePlayerCrushed MoveOutcome = "player_crushed"
	OutcomePlayerKilled  MoveOutcome = "player_killed"
)

// Terminal reports whether the outcome ends the level.
func (o MoveOutcome) Terminal() bool {
	switch o {
	case OutcomePlayerWon, OutcomeEnemyWon, OutcomePlayerCrushed, OutcomePlayerKilled:
		return true
	}
	return false
}

// Status is the simulator state machine state.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusSolved  Status = "solved"
	StatusLost    Status = "lost"
	StatusStuck   Status = "stuck"
)

// Terminal reports whether no further moves are accepted.
func (s Status) Terminal() bool {
	return s != StatusPlaying
}

// Verdict is the three-way classification of a simulated level.
type Verdict string

const (
	VerdictSolved       Verdict = "solved"
	VerdictUnsolvable   Verdict = "unsolvable"
	VerdictUndetermined Verdict = "undetermined"
)

// TraceStep is one visited (cell, field) pair of a simulation trace.
type TraceStep struct {
	Pos   Position `json:"pos"`
	Field Field    `json:"field"`
}

// MoveRecord represents a single move in the history.
type MoveRecord struct {
	Move       Move        `json:"move"`
	From       Position    `json:"from"`
	To         Position    `json:"to"`
	Field      Field       `json:"field"`
	Outcome    MoveOutcome `json:"outcome"`
	Timestamp  int64       `json:"timestamp"`
	MoveNumber int         `json:"move_number"`
}
