package generator

import (
	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

// Options configures level generation behavior.
type Options struct {
	Width        int              // Grid width in cells
	Height       int              // Grid height in cells
	Steps        int              // Number of moves the planned solution should take
	MoveBudget   int              // Step budget for verdict simulation (0 = engine default)
	EnableSpiral bool             // EnableSpiral sprinkles a spiral tile off the planned path
	EnableEnemy  bool             // EnableEnemy sprinkles an enemy off the planned path
	Seed         int64            // Seed for reproducible levels (0 = random)
	Exit         *engine.Position // Exit fixes the exit cell. nil means a random border cell.
	MaxAttempts  int              // Retry limit for attempts that produce an unusable start
}

// DefaultOptions returns standard generator options: a 4x4 grid solvable
// in three moves.
func DefaultOptions() *Options {
	return &Options{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Steps:       DefaultSteps,
		MaxAttempts: DefaultMaxAttempts,
	}
}
