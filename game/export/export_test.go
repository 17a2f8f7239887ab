package export

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

// sampleLevel is the level from the project README: empty white layer,
// black blocks at (1,0) and (3,2), start (3,2) on white, exit (4,1).
func sampleLevel(t *testing.T) *engine.Level {
	t.Helper()
	level, err := engine.NewLevel(4, 4, engine.Position{X: 3, Y: 2}, engine.Position{X: 4, Y: 1})
	if err != nil {
		t.Fatalf("Failed to create level: %v", err)
	}
	level.SetTile(engine.FieldBlack, engine.Position{X: 1, Y: 0}, engine.Block)
	level.SetTile(engine.FieldBlack, engine.Position{X: 3, Y: 2}, engine.Block)
	return level
}

func TestWriteDump(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDump(&buf, sampleLevel(t)); err != nil {
		t.Fatalf("WriteDump failed: %v", err)
	}
	dump := buf.String()

	sections := strings.Split(strings.TrimSpace(dump), "\n\n")
	if len(sections) != 4 {
		t.Fatalf("Expected 4 sections, got %d", len(sections))
	}

	// The start cell counts as occupied in its start field.
	if !strings.Contains(sections[0], "3,2,1") {
		t.Error("Expected the white section to mark the start cell occupied")
	}
	if !strings.Contains(sections[1], "1,0,1") || !strings.Contains(sections[1], "3,2,1") {
		t.Error("Expected the black section to mark both blocks occupied")
	}
	if sections[2] != "3,2,white" {
		t.Errorf("Unexpected start section %q", sections[2])
	}
	if sections[3] != "4,1" {
		t.Errorf("Unexpected exit section %q", sections[3])
	}

	// 16 cells per layer, every cell listed.
	if got := len(strings.Split(sections[0], "\n")); got != 16 {
		t.Errorf("Expected 16 white lines, got %d", got)
	}
}

func TestDumpRoundTrip(t *testing.T) {
	level := sampleLevel(t)

	data, err := MarshalDump(level)
	if err != nil {
		t.Fatalf("MarshalDump failed: %v", err)
	}
	parsed, err := ParseDump(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseDump failed: %v", err)
	}

	if !reflect.DeepEqual(parsed, level) {
		t.Errorf("Round trip changed the level:\n got %+v\nwant %+v", parsed, level)
	}
}

func TestParseDump_Malformed(t *testing.T) {
	cases := []string{
		"",
		"0,0,1\n\n0,0,0\n\n0,0,white",
		"0,0,2\n\n0,0,0\n\n0,0,white\n\n0,-1",
		"0,0,1\n\n0,0,0\n\n0,0,purple\n\n0,-1",
	}
	for _, dump := range cases {
		if _, err := ParseDump(strings.NewReader(dump)); !errors.Is(err, ErrBadDump) {
			t.Errorf("Expected ErrBadDump for %q, got %v", dump, err)
		}
	}
}

func TestReport(t *testing.T) {
	report := Report(sampleLevel(t))

	if !strings.Contains(report, "White Field:") || !strings.Contains(report, "Black Field:") {
		t.Error("Expected both field headings")
	}
	if !strings.Contains(report, "p") {
		t.Error("Expected the player marker in the start field")
	}
	if !strings.Contains(report, "#") {
		t.Error("Expected block glyphs in the black field")
	}
	if !strings.Contains(report, "Exit: (4,1)") {
		t.Errorf("Expected the exit coordinates, got:\n%s", report)
	}
}

func TestLayerString_Glyphs(t *testing.T) {
	level, err := engine.NewLevel(3, 1, engine.Position{X: 0, Y: 0}, engine.Position{X: -1, Y: 0})
	if err != nil {
		t.Fatalf("Failed to create level: %v", err)
	}
	level.SetTile(engine.FieldWhite, engine.Position{X: 1, Y: 0}, engine.Spiral)
	level.SetTile(engine.FieldWhite, engine.Position{X: 2, Y: 0}, engine.Enemy)

	if got := LayerString(level, engine.FieldWhite, true); got != "p@!" {
		t.Errorf("Expected \"p@!\", got %q", got)
	}
	if got := LayerString(level, engine.FieldWhite, false); got != ".@!" {
		t.Errorf("Expected \".@!\", got %q", got)
	}
}

func TestMoveNotation(t *testing.T) {
	moves := []engine.Move{
		engine.MoveLeft, engine.MoveDown, engine.MoveRight,
		engine.MoveUp, engine.MoveChange,
	}

	if got := GlyphString(moves); got != "←↓→↑⇄" {
		t.Errorf("Unexpected glyph string %q", got)
	}
	if got := LetterString(moves); got != "LDRUC" {
		t.Errorf("Unexpected letter string %q", got)
	}

	parsed, err := ParseMoves("l d,R\nuC")
	if err != nil {
		t.Fatalf("ParseMoves failed: %v", err)
	}
	if !reflect.DeepEqual(parsed, moves) {
		t.Errorf("Expected %v, got %v", moves, parsed)
	}

	if _, err := ParseMoves("LDX"); !errors.Is(err, engine.ErrUnknownMove) {
		t.Errorf("Expected ErrUnknownMove, got %v", err)
	}
}
