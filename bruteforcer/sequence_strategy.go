package main

// SequenceEnumerator produces candidate move sequences in length order,
// pruning sequences a slide puzzle can never need:
//   - the same direction twice in a row is a no-op, the player already
//     slid as far as possible
//   - two field switches in a row cancel out
type SequenceEnumerator struct {
	moves []string
}

func NewSequenceEnumerator() *SequenceEnumerator {
	return &SequenceEnumerator{
		moves: []string{"up", "down", "left", "right", "change"},
	}
}

// SequencesOfLength returns every unpruned sequence of exactly n moves.
func (e *SequenceEnumerator) SequencesOfLength(n int) [][]string {
	if n <= 0 {
		return nil
	}

	var out [][]string
	seq := make([]string, 0, n)
	e.extend(seq, n, &out)
	return out
}

func (e *SequenceEnumerator) extend(seq []string, n int, out *[][]string) {
	if len(seq) == n {
		candidate := make([]string, n)
		copy(candidate, seq)
		*out = append(*out, candidate)
		return
	}

	for _, m := range e.moves {
		if len(seq) > 0 && seq[len(seq)-1] == m {
			// Repeating a direction is dead after a full slide, and a
			// double switch restores the previous field.
			continue
		}
		e.extend(append(seq, m), n, out)
	}
}

// CountSequences reports how many sequences a depth produces, useful for
// estimating runtime before an attack.
func (e *SequenceEnumerator) CountSequences(n int) int {
	if n <= 0 {
		return 0
	}
	count := len(e.moves)
	for i := 1; i < n; i++ {
		count *= len(e.moves) - 1
	}
	return count
}
