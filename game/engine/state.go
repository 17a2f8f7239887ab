package engine

// LevelState represents the complete simulation state of one level run.
// The embedded level is a private copy: enemy movement rewrites layer
// tiles, so the caller's level is never touched.
type LevelState struct {
	Level       *Level       `json:"level"`
	Player      Position     `json:"player"`
	Active      Field        `json:"active_field"`
	Status      Status       `json:"status"`
	LastOutcome MoveOutcome  `json:"last_outcome"`
	Trace       []TraceStep  `json:"trace"`
	Message     string       `json:"message"`
	MoveHistory []MoveRecord `json:"move_history"`
	TotalMoves  int          `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors
	// MoveHistory entries but gets cleared on reset while MoveHistory
	// remains cumulative.
	CurrentMoves      []MoveRecord `json:"current_moves"`
	CurrentMovesCount int          `json:"current_moves_count"`
}

// NewState validates the level and builds a fresh Playing state with the
// player on the start cell and the start field active. The trace opens
// with the starting (cell, field) pair.
func NewState(level *Level) (*LevelState, error) {
	if err := level.Validate(); err != nil {
		return nil, err
	}
	s := &LevelState{
		Level:       level.Clone(),
		Player:      level.Start,
		Active:      level.StartField,
		Status:      StatusPlaying,
		LastOutcome: OutcomeNothing,
		Trace:       []TraceStep{{Pos: level.Start, Field: level.StartField}},
		Message:     "playing",
		MoveHistory: []MoveRecord{},
	}
	return s, nil
}

// Clone returns a deep copy of the state, history excluded. Used by the
// solver to branch without sharing layers.
func (s *LevelState) Clone() *LevelState {
	c := &LevelState{
		Level:       s.Level.Clone(),
		Player:      s.Player,
		Active:      s.Active,
		Status:      s.Status,
		LastOutcome: s.LastOutcome,
		Message:     s.Message,
	}
	c.Trace = make([]TraceStep, len(s.Trace))
	copy(c.Trace, s.Trace)
	return c
}

// ActiveTile returns the tile of the active field at p, treating
// out-of-bounds as Blank. Only movement code may rely on that treatment;
// external queries go through Level.At.
func (s *LevelState) activeTile(p Position) Tile {
	if !s.Level.InBounds(p) {
		return Blank
	}
	return s.Level.Layer(s.Active)[p.Y][p.X]
}
