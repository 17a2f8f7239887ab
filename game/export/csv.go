// Package export renders levels into their interchange formats: the
// line-based occupancy dump consumed by the game client, a plain text
// field report, and the move glyph notation.
package export

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

var ErrBadDump = errors.New("malformed level dump")

// WriteDump writes the occupancy dump of a level: one `col,row,value`
// line per cell of the white layer, a blank line, the same for the
// black layer, a blank line, the start triple `col,row,field`, a blank
// line, and the exit pair `col,row`. A cell's value is 1 when it holds
// anything non-blank; the start cell counts as occupied in its start
// field.
func WriteDump(w io.Writer, level *engine.Level) error {
	if err := level.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, f := range []engine.Field{engine.FieldWhite, engine.FieldBlack} {
		for x := 0; x < level.Width; x++ {
			for y := 0; y < level.Height; y++ {
				p := engine.Position{X: x, Y: y}
				tile, _ := level.At(f, p)
				value := 0
				if tile != engine.Blank || (f == level.StartField && p == level.Start) {
					value = 1
				}
				fmt.Fprintf(bw, "%d,%d,%d\n", x, y, value)
			}
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintf(bw, "%d,%d,%s\n\n", level.Start.X, level.Start.Y, level.StartField)
	fmt.Fprintf(bw, "%d,%d\n", level.Exit.X, level.Exit.Y)
	return bw.Flush()
}

// MarshalDump renders the dump into a byte slice.
func MarshalDump(level *engine.Level) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDump(&buf, level); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseDump reads a dump back into a level. The dump stores occupancy
// only, so every occupied cell other than the start comes back as a
// block.
func ParseDump(r io.Reader) (*engine.Level, error) {
	sections, err := splitSections(r)
	if err != nil {
		return nil, err
	}
	if len(sections) != 4 {
		return nil, fmt.Errorf("%w: want 4 sections, got %d", ErrBadDump, len(sections))
	}

	white, err := parseLayer(sections[0])
	if err != nil {
		return nil, err
	}
	black, err := parseLayer(sections[1])
	if err != nil {
		return nil, err
	}
	if len(sections[2]) != 1 || len(sections[3]) != 1 {
		return nil, fmt.Errorf("%w: start and exit sections must be single lines", ErrBadDump)
	}
	start, startField, err := parseStart(sections[2][0])
	if err != nil {
		return nil, err
	}
	exit, err := parsePair(sections[3][0])
	if err != nil {
		return nil, err
	}

	width, height := layerExtent(white)
	bw, bh := layerExtent(black)
	if bw != width || bh != height {
		return nil, fmt.Errorf("%w: layer extents differ (%dx%d vs %dx%d)", ErrBadDump, width, height, bw, bh)
	}

	level, err := engine.NewLevel(width, height, engine.Position{}, exit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDump, err)
	}
	level.Start = start
	level.StartField = startField

	for f, cells := range map[engine.Field]map[engine.Position]bool{
		engine.FieldWhite: white,
		engine.FieldBlack: black,
	} {
		for p, occupied := range cells {
			if !occupied {
				continue
			}
			if f == startField && p == start {
				continue
			}
			if err := level.SetTile(f, p, engine.Block); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadDump, err)
			}
		}
	}

	if err := level.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDump, err)
	}
	return level, nil
}

// splitSections groups the dump's lines into blank-line separated
// sections.
func splitSections(r io.Reader) ([][]string, error) {
	var sections [][]string
	var current []string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			if len(current) > 0 {
				sections = append(sections, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(current) > 0 {
		sections = append(sections, current)
	}
	return sections, nil
}

func parseLayer(lines []string) (map[engine.Position]bool, error) {
	cells := make(map[engine.Position]bool, len(lines))
	for _, line := range lines {
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: layer line %q", ErrBadDump, line)
		}
		x, err1 := strconv.Atoi(parts[0])
		y, err2 := strconv.Atoi(parts[1])
		v, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || (v != 0 && v != 1) {
			return nil, fmt.Errorf("%w: layer line %q", ErrBadDump, line)
		}
		cells[engine.Position{X: x, Y: y}] = v == 1
	}
	return cells, nil
}

func parseStart(line string) (engine.Position, engine.Field, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return engine.Position{}, "", fmt.Errorf("%w: start line %q", ErrBadDump, line)
	}
	x, err1 := strconv.Atoi(parts[0])
	y, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return engine.Position{}, "", fmt.Errorf("%w: start line %q", ErrBadDump, line)
	}
	field := engine.Field(strings.TrimSpace(parts[2]))
	if field != engine.FieldWhite && field != engine.FieldBlack {
		return engine.Position{}, "", fmt.Errorf("%w: start field %q", ErrBadDump, parts[2])
	}
	return engine.Position{X: x, Y: y}, field, nil
}

func parsePair(line string) (engine.Position, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return engine.Position{}, fmt.Errorf("%w: exit line %q", ErrBadDump, line)
	}
	x, err1 := strconv.Atoi(parts[0])
	y, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return engine.Position{}, fmt.Errorf("%w: exit line %q", ErrBadDump, line)
	}
	return engine.Position{X: x, Y: y}, nil
}

// layerExtent derives the grid extent from the largest coordinates seen.
func layerExtent(cells map[engine.Position]bool) (width, height int) {
	for p := range cells {
		if p.X+1 > width {
			width = p.X + 1
		}
		if p.Y+1 > height {
			height = p.Y + 1
		}
	}
	return width, height
}
