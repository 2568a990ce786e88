// internal/digits/types.go
//
// Core value types for the digit deduction game.
// Defines:
//   - Combination: 4 pairwise-distinct digits drawn from [0, level-1].
//   - Score: (exact, partial) feedback for a guess against a reference.
//   - Level bounds for the alphabet size.

package digits

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Length is the number of digits in every combination.
	Length = 4

	MinLevel = 4
	MaxLevel = 10
)

var (
	ErrInvalidLevel       = errors.New("level must be between 4 and 10")
	ErrInvalidCombination = errors.New("invalid combination")
	ErrInvalidScore       = errors.New("invalid score")
)

// Combination is an ordered sequence of Length distinct digits.
// It is an array so copies never alias.
type Combination [Length]int

// Score is the feedback for one guess.
type Score struct {
	Exact   int `json:"exact"`   // right digit, right position
	Partial int `json:"partial"` // right digit, wrong position
}

// Solved is the only score a guess can get against itself.
var Solved = Score{Exact: Length}

// ValidateLevel rejects alphabet sizes outside [MinLevel, MaxLevel].
func ValidateLevel(level int) error {
	if level < MinLevel || level > MaxLevel {
		return fmt.Errorf("%w: got %d", ErrInvalidLevel, level)
	}
	return nil
}

// Validate checks the range invariants of a score:
// both counts in [0, Length] and exact+partial <= Length.
func (s Score) Validate() error {
	if s.Exact < 0 || s.Exact > Length || s.Partial < 0 || s.Partial > Length {
		return fmt.Errorf("%w: (%d,%d) out of range", ErrInvalidScore, s.Exact, s.Partial)
	}
	if s.Exact+s.Partial > Length {
		return fmt.Errorf("%w: exact+partial = %d exceeds %d", ErrInvalidScore, s.Exact+s.Partial, Length)
	}
	return nil
}

// IsSolved reports whether every position matched.
func (s Score) IsSolved() bool { return s.Exact == Length }

func (s Score) String() string { return fmt.Sprintf("(%d,%d)", s.Exact, s.Partial) }

// Valid reports whether c has distinct digits, all within [0, level-1].
func (c Combination) Valid(level int) bool {
	var seen [MaxLevel]bool
	for _, d := range c {
		if d < 0 || d >= level || d >= MaxLevel || seen[d] {
			return false
		}
		seen[d] = true
	}
	return true
}

// String renders the digits without separators, e.g. "0123".
func (c Combination) String() string {
	var b strings.Builder
	for _, d := range c {
		b.WriteByte(byte('0' + d))
	}
	return b.String()
}

// Parse reads a combination like "0123" (surrounding spaces ignored) and
// checks it against level.
func Parse(s string, level int) (Combination, error) {
	var c Combination
	s = strings.TrimSpace(s)
	if len(s) != Length {
		return c, fmt.Errorf("%w: want %d digits, got %q", ErrInvalidCombination, Length, s)
	}
	for i := 0; i < Length; i++ {
		if s[i] < '0' || s[i] > '9' {
			return c, fmt.Errorf("%w: %q is not a digit", ErrInvalidCombination, s[i])
		}
		c[i] = int(s[i] - '0')
	}
	if !c.Valid(level) {
		return c, fmt.Errorf("%w: %q needs %d distinct digits between 0 and %d", ErrInvalidCombination, s, Length, level-1)
	}
	return c, nil
}

// MarshalText encodes the combination as its digit string.
func (c Combination) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText accepts any combination valid at MaxLevel; callers
// re-check against the session level.
func (c *Combination) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b), MaxLevel)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
