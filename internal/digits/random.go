// internal/digits/random.go
//
// Uniform random selection over a candidate set.
// Not used for anything security-sensitive, so a math/rand/v2 PCG source is
// enough; NewPicker seeds it from the runtime's OS-entropy-seeded global
// source. NewSeededPicker gives reproducible picks for tests and replays.

package digits

import "math/rand/v2"

// Picker chooses combinations uniformly at random.
// A Picker is not safe for concurrent use; give each session its own.
type Picker struct {
	rng *rand.Rand
}

// NewPicker returns a Picker seeded from non-deterministic entropy.
func NewPicker() *Picker {
	return NewSeededPicker(rand.Uint64(), rand.Uint64())
}

// NewSeededPicker returns a deterministic Picker.
func NewSeededPicker(seed1, seed2 uint64) *Picker {
	return &Picker{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Pick returns one member of set, each with probability 1/len(set).
// Picking from an empty set is a programming error and panics.
func (p *Picker) Pick(set []Combination) Combination {
	if len(set) == 0 {
		panic("digits: Pick from empty candidate set")
	}
	return set[p.rng.IntN(len(set))]
}
