// internal/solver/solver.go
//
// Code-breaking engine: the computer guesses a hidden combination using only
// the (exact, partial) feedback it receives.
//
// States:
//   Init → AwaitingFeedback → (filter → AwaitingFeedback)* → Solved | Contradiction
//
// Each non-winning round removes at least the disproven guess from the
// candidate set (a candidate always scores exact=4 against itself), so the
// loop ends within len(initial set) rounds when feedback is honest.

package solver

import (
	"errors"
	"fmt"

	"github.com/robalobadob/digitmind/internal/digits"
)

// State is the position of a Solver in its guess/feedback cycle.
type State int

const (
	StateInit State = iota
	StateAwaitingFeedback
	StateSolved
	StateContradiction
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAwaitingFeedback:
		return "awaiting_feedback"
	case StateSolved:
		return "solved"
	case StateContradiction:
		return "contradiction"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further guesses will be made.
func (s State) Terminal() bool { return s == StateSolved || s == StateContradiction }

var (
	// ErrContradiction means no combination is consistent with the feedback
	// history. Only the session is over; start a new one.
	ErrContradiction = errors.New("feedback is inconsistent with every possible combination")
	ErrInvalidScore  = digits.ErrInvalidScore
	ErrFinished      = errors.New("solver already finished")
	ErrNoGuess       = errors.New("no guess awaiting feedback")
)

// Turn is one guess together with the feedback it received.
type Turn struct {
	Guess digits.Combination `json:"guess"`
	Score digits.Score       `json:"score"`
}

// Solver drives the guess/feedback/filter loop for one session.
// It is not safe for concurrent use.
type Solver struct {
	level      int
	picker     *digits.Picker
	candidates []digits.Combination
	guess      digits.Combination
	state      State
	history    []Turn
}

// New builds a Solver over the full universe for level.
// A nil picker gets an entropy-seeded one.
func New(level int, picker *digits.Picker) (*Solver, error) {
	if err := digits.ValidateLevel(level); err != nil {
		return nil, err
	}
	return NewWithCandidates(level, digits.Generate(level), picker)
}

// NewWithCandidates starts from an explicit candidate set instead of the
// full universe. The set must be non-empty.
func NewWithCandidates(level int, candidates []digits.Combination, picker *digits.Picker) (*Solver, error) {
	if len(candidates) == 0 {
		return nil, ErrContradiction
	}
	if picker == nil {
		picker = digits.NewPicker()
	}
	return &Solver{
		level:      level,
		picker:     picker,
		candidates: candidates,
		state:      StateInit,
	}, nil
}

// Guess returns the guess awaiting feedback, choosing one first when the
// solver is in Init. Repeated calls return the same guess until Feedback.
// After Solved it returns the winning combination.
func (s *Solver) Guess() (digits.Combination, error) {
	switch s.state {
	case StateInit:
		s.guess = s.picker.Pick(s.candidates)
		s.state = StateAwaitingFeedback
		return s.guess, nil
	case StateAwaitingFeedback, StateSolved:
		return s.guess, nil
	default:
		return digits.Combination{}, ErrContradiction
	}
}

// Feedback applies the judge's score for the current guess.
//
// An invalid score is rejected and the state is left unchanged. exact == 4
// moves to Solved. Otherwise the candidates are filtered; an empty result
// moves to Contradiction and returns ErrContradiction, else a new guess is
// chosen and the solver awaits feedback again.
func (s *Solver) Feedback(score digits.Score) (State, error) {
	switch s.state {
	case StateInit:
		return s.state, ErrNoGuess
	case StateSolved, StateContradiction:
		return s.state, ErrFinished
	}
	if err := score.Validate(); err != nil {
		return s.state, err
	}

	s.history = append(s.history, Turn{Guess: s.guess, Score: score})
	if score.IsSolved() {
		s.state = StateSolved
		s.candidates = []digits.Combination{s.guess}
		return s.state, nil
	}

	next := digits.Filter(s.candidates, s.guess, score)
	s.candidates = next
	if len(next) == 0 {
		s.state = StateContradiction
		return s.state, ErrContradiction
	}
	s.guess = s.picker.Pick(next)
	return s.state, nil
}

// State returns the current state.
func (s *Solver) State() State { return s.state }

// Level returns the alphabet size.
func (s *Solver) Level() int { return s.level }

// Remaining is the number of candidates still consistent with all feedback.
func (s *Solver) Remaining() int { return len(s.candidates) }

// Rounds is the number of feedback values accepted so far.
func (s *Solver) Rounds() int { return len(s.history) }

// History returns a copy of the accepted turns, oldest first.
func (s *Solver) History() []Turn {
	return append([]Turn(nil), s.history...)
}
