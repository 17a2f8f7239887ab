// Package solver exhaustively explores a level's reachable states to
// decide whether it can be solved within a step budget.
package solver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/maximaximal/ShadeChange-Level-Generator/game/engine"
)

const DefaultMaxDepth = 32

var ErrInvalidBudget = errors.New("search budget must be positive")

// Options configures the search.
type Options struct {
	MaxDepth int // MaxDepth bounds the solution length searched for
}

// Solution is the outcome of one search. Moves holds a shortest witness
// when the verdict is solved, and is nil otherwise.
type Solution struct {
	Verdict  engine.Verdict `json:"verdict"`
	Moves    []engine.Move  `json:"moves,omitempty"`
	Explored int            `json:"explored"`
	MaxDepth int            `json:"max_depth"`
}

// Solver runs a breadth-first search over (player position, active
// field, layer contents) states. Layer contents are part of the state
// because enemies slide along with the player.
type Solver struct {
	level   *engine.Level
	options *Options
}

// New creates a solver for the level. A nil options value falls back to
// DefaultMaxDepth.
func New(level *engine.Level, options *Options) *Solver {
	if options == nil {
		options = &Options{MaxDepth: DefaultMaxDepth}
	}
	return &Solver{level: level, options: options}
}

// Solve searches for a move sequence reaching the exit. Reaching it
// yields a solved verdict with a shortest witness; exhausting every
// reachable state within the budget yields unsolvable; running into the
// depth budget with states left unexpanded yields undetermined.
func (s *Solver) Solve() (*Solution, error) {
	if s.options.MaxDepth < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBudget, s.options.MaxDepth)
	}

	start, err := engine.NewState(s.level)
	if err != nil {
		return nil, err
	}

	type node struct {
		state *engine.LevelState
		moves []engine.Move
		depth int
	}

	allMoves := []engine.Move{
		engine.MoveUp, engine.MoveDown, engine.MoveLeft, engine.MoveRight, engine.MoveChange,
	}

	seen := map[string]bool{stateKey(start): true}
	queue := []node{{state: start}}
	explored := 0
	budgetHit := false

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		explored++

		if n.depth >= s.options.MaxDepth {
			budgetHit = true
			continue
		}

		for _, m := range allMoves {
			next := n.state.Clone()
			outcome, err := next.Apply(m)
			if err != nil {
				continue
			}
			if next.Status == engine.StatusSolved {
				witness := make([]engine.Move, len(n.moves)+1)
				copy(witness, n.moves)
				witness[len(n.moves)] = m
				return &Solution{
					Verdict:  engine.VerdictSolved,
					Moves:    witness,
					Explored: explored,
					MaxDepth: s.options.MaxDepth,
				}, nil
			}
			if next.Status.Terminal() {
				continue
			}
			if outcome == engine.OutcomeNothing {
				// Nothing moved, so the state did not change.
				continue
			}
			k := stateKey(next)
			if seen[k] {
				continue
			}
			seen[k] = true

			path := make([]engine.Move, len(n.moves)+1)
			copy(path, n.moves)
			path[len(n.moves)] = m
			queue = append(queue, node{state: next, moves: path, depth: n.depth + 1})
		}
	}

	verdict := engine.VerdictUnsolvable
	if budgetHit {
		verdict = engine.VerdictUndetermined
	}
	return &Solution{
		Verdict:  verdict,
		Explored: explored,
		MaxDepth: s.options.MaxDepth,
	}, nil
}

// Solve is a convenience wrapper around New and Solver.Solve.
func Solve(level *engine.Level, maxDepth int) (*Solution, error) {
	return New(level, &Options{MaxDepth: maxDepth}).Solve()
}

func tileByte(t engine.Tile) byte {
	switch t {
	case engine.Block:
		return '#'
	case engine.Spiral:
		return '@'
	case engine.Enemy:
		return '!'
	}
	return '.'
}

// stateKey serializes everything about a state that can affect future
// moves.
func stateKey(s *engine.LevelState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d,%d,%s;", s.Player.X, s.Player.Y, s.Active)
	for _, layer := range [][][]engine.Tile{s.Level.White, s.Level.Black} {
		for _, row := range layer {
			for _, t := range row {
				b.WriteByte(tileByte(t))
			}
		}
		b.WriteByte('|')
	}
	return b.String()
}
