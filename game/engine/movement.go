package engine

import (
	"fmt"
	"time"
)

// entity is a movable piece of the active field during one directional
// cascade: the player plus every enemy tile.
type entity struct {
	pos     Position
	player  bool
	stopped bool
}

// stoppingAt reports whether an entity sliding onto p must rest one cell
// short: outside the grid or a Block in the active field.
func (s *LevelState) stoppingAt(p Position) bool {
	if !s.Level.InBounds(p) {
		return true
	}
	return s.activeTile(p) == Block
}

// killingAt reports whether the player stepping onto p dies there.
func (s *LevelState) killingAt(p Position) bool {
	if !s.Level.InBounds(p) {
		return false
	}
	t := s.activeTile(p)
	return t == Enemy || t == Spiral
}

// collectEntities lists the player first, then every enemy of the active
// field in row-major order, so cascades are deterministic.
func (s *LevelState) collectEntities() []entity {
	ents := []entity{{pos: s.Player, player: true}}
	layer := s.Level.Layer(s.Active)
	for y := range layer {
		for x := range layer[y] {
			if layer[y][x] == Enemy {
				ents = append(ents, entity{pos: Position{X: x, Y: y}})
			}
		}
	}
	return ents
}

// applyDirection slides every entity of the active field one step per
// round until all are stopped. Win and death conditions are checked
// before the stop check, so sliding into the exit wins even though the
// exit cell itself is out of bounds.
func (s *LevelState) applyDirection(dx, dy int) MoveOutcome {
	ents := s.collectEntities()
	overall := OutcomeNothing

	for {
		progressed := false
		for i := range ents {
			e := &ents[i]
			if e.stopped {
				continue
			}
			next := Position{X: e.pos.X + dx, Y: e.pos.Y + dy}

			if e.player {
				if s.Level.IsExit(next) {
					s.Player = next
					return OutcomePlayerWon
				}
				if s.killingAt(next) {
					return OutcomePlayerKilled
				}
			} else {
				if s.Level.IsExit(next) {
					return OutcomeEnemyWon
				}
				if next == s.Player {
					return OutcomePlayerKilled
				}
				// Enemies stop short of each other and of spirals.
				if s.Level.InBounds(next) && s.activeTile(next) != Blank {
					e.stopped = true
					continue
				}
			}

			if s.stoppingAt(next) {
				e.stopped = true
				continue
			}

			if e.player {
				s.Player = next
			} else {
				s.Level.SetTile(s.Active, e.pos, Blank)
				s.Level.SetTile(s.Active, next, Enemy)
			}
			e.pos = next
			progressed = true
			overall = OutcomeMoved
		}
		if !progressed {
			return overall
		}
	}
}

// applyChange toggles the active field in place. The switch always
// happens; an unsafe landing is a losing terminal, not a refused move.
func (s *LevelState) applyChange() MoveOutcome {
	s.Active = s.Active.Other()
	switch s.activeTile(s.Player) {
	case Block:
		return OutcomePlayerCrushed
	case Enemy, Spiral:
		return OutcomePlayerKilled
	}
	return OutcomeChanged
}

// HasLegalMove reports whether any single move can still advance or
// rescue the player: a direction whose first step is not stopping (or is
// the exit), or a survivable field switch.
func (s *LevelState) HasLegalMove() bool {
	deltas := []struct{ dx, dy int }{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	for _, d := range deltas {
		next := Position{X: s.Player.X + d.dx, Y: s.Player.Y + d.dy}
		if s.Level.IsExit(next) || !s.stoppingAt(next) {
			return true
		}
	}
	other := s.Active.Other()
	if t, err := s.Level.At(other, s.Player); err == nil && t == Blank {
		return true
	}
	return false
}

// Apply executes one move against the state, updating the player
// position, active field, status, trace, and history. Applying to a
// terminal state fails with ErrLevelFinished; a blocked directional move
// is a legal no-op, not an error.
func (s *LevelState) Apply(m Move) (MoveOutcome, error) {
	if !m.Valid() {
		return OutcomeNothing, fmt.Errorf("%w: %q", ErrUnknownMove, m)
	}
	if s.Status.Terminal() {
		return OutcomeNothing, ErrLevelFinished
	}

	from := s.Player
	var outcome MoveOutcome
	if dx, dy, ok := m.Delta(); ok {
		outcome = s.applyDirection(dx, dy)
	} else {
		outcome = s.applyChange()
	}

	switch outcome {
	case OutcomePlayerWon:
		s.Status = StatusSolved
		s.Message = "player reached the exit"
	case OutcomeEnemyWon:
		s.Status = StatusLost
		s.Message = "an enemy reached the exit"
	case OutcomePlayerCrushed:
		s.Status = StatusLost
		s.Message = "player crushed by the other field"
	case OutcomePlayerKilled:
		s.Status = StatusLost
		s.Message = "player killed"
	default:
		if !s.HasLegalMove() {
			s.Status = StatusStuck
			s.Message = "no legal move left"
		}
	}

	s.LastOutcome = outcome
	s.Trace = append(s.Trace, TraceStep{Pos: s.Player, Field: s.Active})
	s.addRecord(m, from, outcome)
	return outcome, nil
}

// addRecord appends a move to the cumulative history and to the current
// segment.
func (s *LevelState) addRecord(m Move, from Position, outcome MoveOutcome) {
	rec := MoveRecord{
		Move:       m,
		From:       from,
		To:         s.Player,
		Field:      s.Active,
		Outcome:    outcome,
		Timestamp:  time.Now().Unix(),
		MoveNumber: s.TotalMoves + 1,
	}
	s.MoveHistory = append(s.MoveHistory, rec)
	s.TotalMoves++
	s.CurrentMoves = append(s.CurrentMoves, rec)
	s.CurrentMovesCount++
}
