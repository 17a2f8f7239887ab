package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLevel marks a level whose dimensions, exit, or start cell
	// are unusable. It aborts the current generation attempt only.
	ErrInvalidLevel = errors.New("invalid level")

	// ErrOutOfBounds marks a coordinate query outside the grid extents.
	// Internal callers are expected never to trigger it.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrLevelFinished is returned when a move is applied to a terminal state.
	ErrLevelFinished = errors.New("level already finished")

	// ErrUnknownMove is returned for a move outside the closed enumeration.
	ErrUnknownMove = errors.New("unknown move")
)

// Level holds the two passability layers, the start cell with its start
// field, and the exit cell. The exit always lies one step outside the
// grid on the border; stepping onto it wins.
type Level struct {
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	White      [][]Tile `json:"white"`
	Black      [][]Tile `json:"black"`
	Start      Position `json:"start"`
	StartField Field    `json:"start_field"`
	Exit       Position `json:"exit"`
}

// NewLevel creates a level with two blank layers. It fails with
// ErrInvalidLevel if the dimensions, start, or exit are unusable.
func NewLevel(width, height int, start, exit Position) (*Level, error) {
	l := &Level{
		Width:      width,
		Height:     height,
		White:      blankLayer(width, height),
		Black:      blankLayer(width, height),
		Start:      start,
		StartField: FieldWhite,
		Exit:       exit,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func blankLayer(width, height int) [][]Tile {
	layer := make([][]Tile, height)
	for y := range layer {
		layer[y] = make([]Tile, width)
		for x := range layer[y] {
			layer[y][x] = Blank
		}
	}
	return layer
}

// Validate checks dimensional consistency of both layers, that the exit
// sits on the border just outside the grid, and that the start cell is
// in bounds and passable in the start field.
func (l *Level) Validate() error {
	if l.Width < MinGridSize || l.Width > MaxGridSize || l.Height < MinGridSize || l.Height > MaxGridSize {
		return fmt.Errorf("%w: dimensions %dx%d outside [%d,%d]", ErrInvalidLevel, l.Width, l.Height, MinGridSize, MaxGridSize)
	}
	for name, layer := range map[string][][]Tile{"white": l.White, "black": l.Black} {
		if len(layer) != l.Height {
			return fmt.Errorf("%w: %s layer has %d rows, want %d", ErrInvalidLevel, name, len(layer), l.Height)
		}
		for y, row := range layer {
			if len(row) != l.Width {
				return fmt.Errorf("%w: %s layer row %d has %d cells, want %d", ErrInvalidLevel, name, y, len(row), l.Width)
			}
		}
	}
	if !l.onBorder(l.Exit) {
		return fmt.Errorf("%w: exit (%d,%d) not on the outer border", ErrInvalidLevel, l.Exit.X, l.Exit.Y)
	}
	if !l.InBounds(l.Start) {
		return fmt.Errorf("%w: start (%d,%d) out of bounds", ErrInvalidLevel, l.Start.X, l.Start.Y)
	}
	if l.StartField != FieldWhite && l.StartField != FieldBlack {
		return fmt.Errorf("%w: start field %q", ErrInvalidLevel, l.StartField)
	}
	if !l.IsPassable(l.Start, l.StartField) {
		return fmt.Errorf("%w: start (%d,%d) impassable in %s field", ErrInvalidLevel, l.Start.X, l.Start.Y, l.StartField)
	}
	return nil
}

// onBorder reports whether p lies exactly one step outside the grid,
// adjacent to it. Corners do not qualify: one coordinate is outside by
// one, the other is in range.
func (l *Level) onBorder(p Position) bool {
	if (p.X == -1 || p.X == l.Width) && p.Y >= 0 && p.Y < l.Height {
		return true
	}
	if (p.Y == -1 || p.Y == l.Height) && p.X >= 0 && p.X < l.Width {
		return true
	}
	return false
}

// InBounds reports whether p lies inside the grid.
func (l *Level) InBounds(p Position) bool {
	return p.X >= 0 && p.X < l.Width && p.Y >= 0 && p.Y < l.Height
}

// Layer returns the tile layer for the given field.
func (l *Level) Layer(f Field) [][]Tile {
	if f == FieldBlack {
		return l.Black
	}
	return l.White
}

// At returns the tile of field f at p, or ErrOutOfBounds.
func (l *Level) At(f Field, p Position) (Tile, error) {
	if !l.InBounds(p) {
		return Blank, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, p.X, p.Y)
	}
	return l.Layer(f)[p.Y][p.X], nil
}

// SetTile places a tile into field f at p.
func (l *Level) SetTile(f Field, p Position, t Tile) error {
	if !l.InBounds(p) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, p.X, p.Y)
	}
	l.Layer(f)[p.Y][p.X] = t
	return nil
}

// IsPassable reports whether the player may occupy p while field f is
// active: p must be in bounds and not a Block in f. Spiral and Enemy
// cells are passable but fatal.
func (l *Level) IsPassable(p Position, f Field) bool {
	if !l.InBounds(p) {
		return false
	}
	return l.Layer(f)[p.Y][p.X] != Block
}

// IsExit reports whether p is the exit cell.
func (l *Level) IsExit(p Position) bool {
	return p == l.Exit
}

// StartCell returns the player's start cell.
func (l *Level) StartCell() Position {
	return l.Start
}

// Clone returns a deep copy of the level.
func (l *Level) Clone() *Level {
	c := &Level{
		Width:      l.Width,
		Height:     l.Height,
		White:      cloneLayer(l.White),
		Black:      cloneLayer(l.Black),
		Start:      l.Start,
		StartField: l.StartField,
		Exit:       l.Exit,
	}
	return c
}

func cloneLayer(layer [][]Tile) [][]Tile {
	c := make([][]Tile, len(layer))
	for y, row := range layer {
		c[y] = make([]Tile, len(row))
		copy(c[y], row)
	}
	return c
}
