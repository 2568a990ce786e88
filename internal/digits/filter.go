package digits

// Filter returns a new slice holding the members c of set for which
// Evaluate(guess, c) == score. set is not modified.
//
// The secret survives whenever score is its true score against guess, and
// applying the same filter twice is a no-op. An empty result means the
// feedback history is contradictory.
func Filter(set []Combination, guess Combination, score Score) []Combination {
	out := make([]Combination, 0, len(set))
	for _, c := range set {
		if Evaluate(guess, c) == score {
			out = append(out, c)
		}
	}
	return out
}
