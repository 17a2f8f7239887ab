package export

import (
	"fmt"
	"strings"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

// tileGlyph maps a tile to its single-character report glyph.
func tileGlyph(t engine.Tile) byte {
	switch t {
	case engine.Blank:
		return '.'
	case engine.Block:
		return '#'
	case engine.Spiral:
		return '@'
	case engine.Enemy:
		return '!'
	}
	return '?'
}

// LayerString renders one layer as rows of glyphs. The player marker is
// drawn at the start cell when markStart is set.
func LayerString(level *engine.Level, field engine.Field, markStart bool) string {
	rows := make([]string, level.Height)
	for y := 0; y < level.Height; y++ {
		var b strings.Builder
		for x := 0; x < level.Width; x++ {
			p := engine.Position{X: x, Y: y}
			if markStart && field == level.StartField && p == level.Start {
				b.WriteByte('p')
				continue
			}
			tile, _ := level.At(field, p)
			b.WriteByte(tileGlyph(tile))
		}
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}

// Report renders the full human-readable level report: both fields with
// the player marker, the start, and the exit.
func Report(level *engine.Level) string {
	return fmt.Sprintf(" White Field:\n%s\n Black Field:\n%s\n Start: (%d,%d) on %s\n Exit: (%d,%d)",
		LayerString(level, engine.FieldWhite, true),
		LayerString(level, engine.FieldBlack, true),
		level.Start.X, level.Start.Y, level.StartField,
		level.Exit.X, level.Exit.Y)
}
