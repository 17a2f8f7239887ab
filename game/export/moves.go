package export

import (
	"fmt"
	"strings"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

// Glyph returns the arrow notation of a move. Unknown moves render '?'.
func Glyph(m engine.Move) string {
	switch m {
	case engine.MoveUp:
		return "↑"
	case engine.MoveDown:
		return "↓"
	case engine.MoveLeft:
		return "←"
	case engine.MoveRight:
		return "→"
	case engine.MoveChange:
		return "⇄"
	}
	return "?"
}

// Letter returns the ASCII notation of a move. Unknown moves render '?'.
func Letter(m engine.Move) string {
	switch m {
	case engine.MoveUp:
		return "U"
	case engine.MoveDown:
		return "D"
	case engine.MoveLeft:
		return "L"
	case engine.MoveRight:
		return "R"
	case engine.MoveChange:
		return "C"
	}
	return "?"
}

// GlyphString renders a move sequence in arrow notation, e.g. "←↓→⇄".
func GlyphString(moves []engine.Move) string {
	var b strings.Builder
	for _, m := range moves {
		b.WriteString(Glyph(m))
	}
	return b.String()
}

// LetterString renders a move sequence in ASCII notation, e.g. "LDRC".
func LetterString(moves []engine.Move) string {
	var b strings.Builder
	for _, m := range moves {
		b.WriteString(Letter(m))
	}
	return b.String()
}

// ParseMoves reads a move sequence in ASCII letter notation, case
// insensitively. Whitespace and commas are ignored.
func ParseMoves(s string) ([]engine.Move, error) {
	var moves []engine.Move
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', ',':
			continue
		case 'U', 'u':
			moves = append(moves, engine.MoveUp)
		case 'D', 'd':
			moves = append(moves, engine.MoveDown)
		case 'L', 'l':
			moves = append(moves, engine.MoveLeft)
		case 'R', 'r':
			moves = append(moves, engine.MoveRight)
		case 'C', 'c':
			moves = append(moves, engine.MoveChange)
		default:
			return nil, fmt.Errorf("%w: %q", engine.ErrUnknownMove, string(r))
		}
	}
	return moves, nil
}
