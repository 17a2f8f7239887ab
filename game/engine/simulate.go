package engine

// Result is the immutable outcome of one simulation run.
type Result struct {
	Status        Status      `json:"status"`
	LastOutcome   MoveOutcome `json:"last_outcome"`
	Trace         []TraceStep `json:"trace"`
	MovesApplied  int         `json:"moves_applied"`
	LimitExceeded bool        `json:"limit_exceeded"`
}

// Simulate deterministically applies the move sequence to the level from
// its start cell and start field, bounded by the step budget. A budget
// of zero or less falls back to DefaultMoveBudget. Budget exhaustion is
// a normal result, reported via LimitExceeded, never an error.
func Simulate(level *Level, moves []Move, budget int) (*Result, error) {
	if budget <= 0 {
		budget = DefaultMoveBudget
	}
	state, err := NewState(level)
	if err != nil {
		return nil, err
	}

	applied := 0
	for _, m := range moves {
		if state.Status.Terminal() {
			break
		}
		if applied >= budget {
			break
		}
		if _, err := state.Apply(m); err != nil {
			return nil, err
		}
		applied++
	}

	return &Result{
		Status:        state.Status,
		LastOutcome:   state.LastOutcome,
		Trace:         state.Trace,
		MovesApplied:  applied,
		LimitExceeded: applied >= budget && !state.Status.Terminal(),
	}, nil
}

// Classify maps a simulation result to the three-way verdict: reaching
// the exit solves, any losing terminal or a stuck player is unsolvable,
// and running out of moves or budget while still playing is
// undetermined.
func Classify(r *Result) Verdict {
	switch r.Status {
	case StatusSolved:
		return VerdictSolved
	case StatusLost, StatusStuck:
		return VerdictUnsolvable
	}
	return VerdictUndetermined
}
