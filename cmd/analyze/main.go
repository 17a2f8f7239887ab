// Command analyze prints quick, human-readable difficulty heuristics for
// preset files in the project's presets directory. It generates a level per
// preset, runs the exhaustive solver on it and summarizes the shortest
// solution against the construction plan, the searched state space and the
// board composition.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/generator"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/solver"
)

// AnalysisPreset is a light struct for reading preset files used by analysis.
type AnalysisPreset struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Steps        int    `json:"steps"`
	MoveBudget   int    `json:"move_budget"`
	EnableSpiral bool   `json:"enable_spiral"`
	EnableEnemy  bool   `json:"enable_enemy"`
	Seed         int64  `json:"seed"`
}

func main() {
	presetDir := "presets"
	if len(os.Args) > 1 {
		presetDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(presetDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding preset files: %v\n", err)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzePreset(file)
	}
}

func analyzePreset(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var preset AnalysisPreset
	if err := json.Unmarshal(data, &preset); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", preset.Name)
	fmt.Printf("Grid Size: %d x %d\n", preset.Width, preset.Height)
	fmt.Printf("Planned Steps: %d\n", preset.Steps)

	gen := generator.New(&generator.Options{
		Width:        preset.Width,
		Height:       preset.Height,
		Steps:        preset.Steps,
		MoveBudget:   preset.MoveBudget,
		EnableSpiral: preset.EnableSpiral,
		EnableEnemy:  preset.EnableEnemy,
		Seed:         preset.Seed,
	})
	out, err := gen.Generate()
	if err != nil {
		fmt.Printf("Error generating level: %v\n", err)
		return
	}

	fmt.Printf("Plan Length: %d moves\n", len(out.Moves))
	white := out.Level.Layer(engine.FieldWhite)
	black := out.Level.Layer(engine.FieldBlack)
	fmt.Printf("White Blocks: %d\n", engine.CountTiles(white, engine.Block))
	fmt.Printf("Black Blocks: %d\n", engine.CountTiles(black, engine.Block))
	spirals := engine.CountTiles(white, engine.Spiral) + engine.CountTiles(black, engine.Spiral)
	enemies := engine.CountTiles(white, engine.Enemy) + engine.CountTiles(black, engine.Enemy)
	if spirals > 0 {
		fmt.Printf("Spirals: %d\n", spirals)
	}
	if enemies > 0 {
		fmt.Printf("Enemies: %d\n", enemies)
	}

	depth := len(out.Moves) + 8
	sol, err := solver.Solve(out.Level, depth)
	if err != nil {
		fmt.Printf("Error solving level: %v\n", err)
		return
	}

	switch sol.Verdict {
	case engine.VerdictSolved:
		fmt.Printf("Shortest Solution: %d moves (explored %d states)\n", len(sol.Moves), sol.Explored)
		if slack := len(out.Moves) - len(sol.Moves); slack > 0 {
			fmt.Printf("⚠️  The solver beats the plan by %d moves\n", slack)
		} else {
			fmt.Printf("✅ The construction plan is already shortest\n")
		}
		if needsFieldSwitch(sol.Moves) {
			fmt.Printf("Field switches in solution: %d\n", countFieldSwitches(sol.Moves))
		}
	case engine.VerdictUnsolvable:
		fmt.Printf("⚠️  CRITICAL: generated level is unsolvable\n")
	default:
		fmt.Printf("⚠️  Undetermined within depth %d (explored %d states)\n", depth, sol.Explored)
	}
}

func needsFieldSwitch(moves []engine.Move) bool {
	return countFieldSwitches(moves) > 0
}

func countFieldSwitches(moves []engine.Move) int {
	n := 0
	for _, m := range moves {
		if m == engine.MoveChange {
			n++
		}
	}
	return n
}
