// internal/digits/score.go
//
// Score evaluation shared by both play directions: whoever holds the secret
// (computer or human) scores a guess with Evaluate.

package digits

// Evaluate scores guess against reference.
//
// For each position: an equal digit counts as exact; otherwise, a digit that
// appears anywhere in reference counts as partial.
//
// Both arguments must hold distinct digits. Under that precondition each
// reference digit satisfies at most one partial match, so no used-marker
// bookkeeping is needed. The precondition is not re-checked here.
func Evaluate(guess, reference Combination) Score {
	var s Score
	for i := 0; i < Length; i++ {
		if guess[i] == reference[i] {
			s.Exact++
			continue
		}
		for j := 0; j < Length; j++ {
			if guess[i] == reference[j] {
				s.Partial++
				break
			}
		}
	}
	return s
}
