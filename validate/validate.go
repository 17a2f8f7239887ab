// Command validate provides a small CLI that validates generation preset JSON
// files in the ../presets directory. It checks:
//   - JSON structure and required fields
//   - Grid dimensions within the engine limits
//   - Step and move budget constraints
//   - Generation: the preset actually yields a solvable level
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/config"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
	"github.com/maximaximal/ShadeChange-Level-Generator/game/generator"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validatePresetFile loads and validates a single preset JSON file. It
// performs structural checks and then a generation smoke test.
func validatePresetFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var preset config.Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := config.ValidatePreset(&preset); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
	}

	// Generation validation: the preset must produce a level whose
	// construction plan the simulator confirms as solved.
	if result.Valid {
		genResult := validateGeneration(&preset)
		result.Errors = append(result.Errors, genResult.Errors...)
		if !genResult.Valid {
			result.Valid = false
		}
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", preset.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", preset.Width, preset.Height))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Steps: %d", preset.Steps))
		if preset.MoveBudget > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Move budget: %d", preset.MoveBudget))
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Move budget: default (%d)", engine.DefaultMoveBudget))
		}
	}

	return result
}

// validateGeneration runs the generator once with the preset's parameters
// and checks the produced level's verdict.
func validateGeneration(preset *config.Preset) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	opts := generator.Options{
		Width:        preset.Width,
		Height:       preset.Height,
		Steps:        preset.Steps,
		MoveBudget:   preset.MoveBudget,
		EnableSpiral: preset.EnableSpiral,
		EnableEnemy:  preset.EnableEnemy,
		Seed:         preset.Seed,
	}

	gen := generator.New(&opts)
	out, err := gen.Generate()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Generation failed: %v", err))
		return result
	}

	if out.Verdict != engine.VerdictSolved {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Generated level is not solved by its own plan: %s", out.Verdict))
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Generation: %d-move plan confirmed solvable", len(out.Moves)))
	return result
}

// main scans ../presets for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	presetDir := "../presets"
	if len(os.Args) > 1 {
		presetDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(presetDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding preset files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validatePresetFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
