package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

const (
	DefaultWidth       = 4
	DefaultHeight      = 4
	DefaultSteps       = 3
	DefaultMaxAttempts = 32
)

var (
	ErrInvalidOptions   = errors.New("invalid generator options")
	ErrGenerationFailed = errors.New("failed to generate valid level")
)

// Generated is one produced level together with its planned solution and
// the verdict obtained by simulating that solution. Generate only
// returns levels whose plan replays to a solved verdict.
type Generated struct {
	ID      string         `json:"id"`
	Level   *engine.Level  `json:"level"`
	Moves   []engine.Move  `json:"moves"`
	Verdict engine.Verdict `json:"verdict"`
	Result  *engine.Result `json:"result"`
}

// Generator creates levels by walking backwards from the exit: each step
// picks a cell the player could have slid from and places a block
// stopper just past the destination, unless the grid edge already stops
// the slide there.
type Generator struct {
	options *Options
	rng     *rand.Rand
}

// New creates a level generator with the given options. A nil options
// value falls back to DefaultOptions.
func New(options *Options) *Generator {
	if options == nil {
		options = DefaultOptions()
	}
	if options.MaxAttempts <= 0 {
		options.MaxAttempts = DefaultMaxAttempts
	}

	seed := options.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		options: options,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// validateOptions rejects option sets no level can satisfy.
func (g *Generator) validateOptions() error {
	o := g.options
	if o.Width < engine.MinGridSize || o.Width > engine.MaxGridSize ||
		o.Height < engine.MinGridSize || o.Height > engine.MaxGridSize {
		return fmt.Errorf("%w: dimensions %dx%d outside [%d,%d]",
			ErrInvalidOptions, o.Width, o.Height, engine.MinGridSize, engine.MaxGridSize)
	}
	if o.Steps < 1 {
		return fmt.Errorf("%w: steps must be at least 1", ErrInvalidOptions)
	}
	if o.MoveBudget != 0 && o.MoveBudget < o.Steps {
		return fmt.Errorf("%w: move budget %d below planned steps %d",
			ErrInvalidOptions, o.MoveBudget, o.Steps)
	}
	if o.Exit != nil {
		ok := false
		for _, p := range engine.BorderPositions(o.Width, o.Height) {
			if p == *o.Exit {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: exit (%d,%d) not on the outer border",
				ErrInvalidOptions, o.Exit.X, o.Exit.Y)
		}
	}
	return nil
}

// Generate creates a new level. The returned verdict comes from
// simulating the planned moves under the configured budget.
func (g *Generator) Generate() (*Generated, error) {
	if err := g.validateOptions(); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < g.options.MaxAttempts; attempt++ {
		exit := g.pickExit()
		start, blocks, moves := g.walkBack(exit)

		level, err := g.buildLevel(start, exit, blocks)
		if err != nil {
			// A later stopper landed on the start cell. Try again.
			continue
		}

		if g.options.EnableSpiral || g.options.EnableEnemy {
			g.decorate(level, moves)
		}

		res, err := engine.Simulate(level, moves, g.options.MoveBudget)
		if err != nil {
			continue
		}
		// A stopper placed for a later slide can intrude on an earlier
		// slide's corridor and derail the plan. Discard such attempts.
		if engine.Classify(res) != engine.VerdictSolved {
			continue
		}

		return &Generated{
			ID:      uuid.NewString(),
			Level:   level,
			Moves:   moves,
			Verdict: engine.Classify(res),
			Result:  res,
		}, nil
	}

	return nil, ErrGenerationFailed
}

// pickExit returns the configured exit, or a random border cell.
func (g *Generator) pickExit() engine.Position {
	if g.options.Exit != nil {
		return *g.options.Exit
	}
	border := engine.BorderPositions(g.options.Width, g.options.Height)
	return border[g.rng.Intn(len(border))]
}

// slideSource is one candidate origin of the player's previous slide:
// sliding from source in the direction of move ends on the current cell,
// held there by a block at stopper (or by the grid edge when stopper is
// out of bounds).
type slideSource struct {
	source  engine.Position
	stopper engine.Position
	move    engine.Move
}

// slideSources lists every cell the player could have slid from to rest
// on p. p may be the exit cell, one step outside the grid.
func (g *Generator) slideSources(p engine.Position) []slideSource {
	w, h := g.options.Width, g.options.Height
	var out []slideSource

	if p.X > 0 && p.Y >= 0 && p.Y < h {
		for x := 0; x < p.X && x < w; x++ {
			out = append(out, slideSource{
				source:  engine.Position{X: x, Y: p.Y},
				stopper: engine.Position{X: p.X + 1, Y: p.Y},
				move:    engine.MoveRight,
			})
		}
	}
	if p.X < w-1 && p.Y >= 0 && p.Y < h {
		for x := p.X + 1; x < w; x++ {
			if x < 0 {
				continue
			}
			out = append(out, slideSource{
				source:  engine.Position{X: x, Y: p.Y},
				stopper: engine.Position{X: p.X - 1, Y: p.Y},
				move:    engine.MoveLeft,
			})
		}
	}
	if p.Y > 0 && p.X >= 0 && p.X < w {
		for y := 0; y < p.Y && y < h; y++ {
			out = append(out, slideSource{
				source:  engine.Position{X: p.X, Y: y},
				stopper: engine.Position{X: p.X, Y: p.Y + 1},
				move:    engine.MoveDown,
			})
		}
	}
	if p.Y < h-1 && p.X >= 0 && p.X < w {
		for y := p.Y + 1; y < h; y++ {
			if y < 0 {
				continue
			}
			out = append(out, slideSource{
				source:  engine.Position{X: p.X, Y: y},
				stopper: engine.Position{X: p.X, Y: p.Y - 1},
				move:    engine.MoveUp,
			})
		}
	}

	return out
}

// walkBack performs the backward walk from the exit. It returns the
// start cell the walk ended on, the stopper blocks it placed, and the
// planned move list in play order. The walk ends early when no further
// source exists, so the plan may be shorter than the requested steps.
func (g *Generator) walkBack(exit engine.Position) (engine.Position, map[engine.Position]bool, []engine.Move) {
	pos := exit
	blocks := make(map[engine.Position]bool)
	var moves []engine.Move

	for step := 0; step < g.options.Steps; step++ {
		sources := g.slideSources(pos)
		if len(sources) == 0 {
			break
		}
		pick := sources[g.rng.Intn(len(sources))]

		if g.inBounds(pick.stopper) {
			blocks[pick.stopper] = true
		}

		pos = pick.source
		moves = append([]engine.Move{pick.move}, moves...)
	}

	return pos, blocks, moves
}

func (g *Generator) inBounds(p engine.Position) bool {
	return p.X >= 0 && p.X < g.options.Width && p.Y >= 0 && p.Y < g.options.Height
}

// buildLevel assembles the level from the walk products. It fails when a
// stopper ended up on the start cell.
func (g *Generator) buildLevel(start, exit engine.Position, blocks map[engine.Position]bool) (*engine.Level, error) {
	level, err := engine.NewLevel(g.options.Width, g.options.Height, start, exit)
	if err != nil {
		return nil, err
	}
	for p := range blocks {
		if err := level.SetTile(engine.FieldWhite, p, engine.Block); err != nil {
			return nil, err
		}
	}
	if err := level.Validate(); err != nil {
		return nil, err
	}
	return level, nil
}

// decorate sprinkles the enabled special tiles onto blank cells off the
// planned path. A tile is kept only if the planned moves still simulate
// to the same status with it in place.
func (g *Generator) decorate(level *engine.Level, moves []engine.Move) {
	base, err := engine.Simulate(level, moves, g.options.MoveBudget)
	if err != nil {
		return
	}

	onPath := make(map[engine.Position]bool, len(base.Trace))
	for _, step := range base.Trace {
		onPath[step.Pos] = true
	}

	var cells []engine.Position
	for y := 0; y < level.Height; y++ {
		for x := 0; x < level.Width; x++ {
			p := engine.Position{X: x, Y: y}
			if onPath[p] || p == level.Start {
				continue
			}
			if t, err := level.At(engine.FieldWhite, p); err != nil || t != engine.Blank {
				continue
			}
			cells = append(cells, p)
		}
	}
	g.rng.Shuffle(len(cells), func(i, j int) {
		cells[i], cells[j] = cells[j], cells[i]
	})

	var wanted []engine.Tile
	if g.options.EnableSpiral {
		wanted = append(wanted, engine.Spiral)
	}
	if g.options.EnableEnemy {
		wanted = append(wanted, engine.Enemy)
	}

	for i, tile := range wanted {
		if i >= len(cells) {
			break
		}
		p := cells[i]
		level.SetTile(engine.FieldWhite, p, tile)
		check, err := engine.Simulate(level, moves, g.options.MoveBudget)
		if err != nil || check.Status != base.Status {
			level.SetTile(engine.FieldWhite, p, engine.Blank)
		}
	}
}
