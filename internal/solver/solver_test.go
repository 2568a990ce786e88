package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/digitmind/internal/digits"
)

// play runs a solver against a mechanized judge holding secret.
func play(t *testing.T, s *Solver, secret digits.Combination) int {
	t.Helper()
	limit := s.Remaining()
	for round := 1; ; round++ {
		require.LessOrEqual(t, round, limit, "did not converge")
		g, err := s.Guess()
		require.NoError(t, err)
		before := s.Remaining()
		state, err := s.Feedback(digits.Evaluate(g, secret))
		require.NoError(t, err)
		if state == StateSolved {
			assert.Equal(t, secret, g)
			return round
		}
		require.Equal(t, StateAwaitingFeedback, state)
		require.Less(t, s.Remaining(), before, "candidate set must strictly shrink")
	}
}

func TestSolverConvergesAllLevels(t *testing.T) {
	p := digits.NewSeededPicker(42, 99)
	for level := digits.MinLevel; level <= digits.MaxLevel; level++ {
		all := digits.Generate(level)
		for i := 0; i < 5; i++ {
			secret := p.Pick(all)
			s, err := New(level, digits.NewSeededPicker(uint64(level), uint64(i)))
			require.NoError(t, err)
			rounds := play(t, s, secret)
			assert.Equal(t, rounds, s.Rounds())
			assert.Equal(t, 1, s.Remaining())
		}
	}
}

func TestSolverLevelFourEverySecret(t *testing.T) {
	for _, secret := range digits.Generate(4) {
		s, err := New(4, digits.NewSeededPicker(3, 4))
		require.NoError(t, err)
		assert.LessOrEqual(t, play(t, s, secret), 24)
	}
}

func TestSolverSolvedOnFirstRound(t *testing.T) {
	only := digits.Combination{1, 0, 3, 2}
	s, err := NewWithCandidates(4, []digits.Combination{only}, nil)
	require.NoError(t, err)
	assert.Equal(t, StateInit, s.State())

	g, err := s.Guess()
	require.NoError(t, err)
	assert.Equal(t, only, g)
	state, err := s.Feedback(digits.Solved)
	require.NoError(t, err)
	assert.Equal(t, StateSolved, state)
	assert.True(t, state.Terminal())

	g, err = s.Guess()
	require.NoError(t, err)
	assert.Equal(t, only, g)
	_, err = s.Feedback(digits.Solved)
	assert.ErrorIs(t, err, ErrFinished)
}

func TestSolverGuessIsStable(t *testing.T) {
	s, err := New(6, digits.NewSeededPicker(5, 5))
	require.NoError(t, err)
	a, err := s.Guess()
	require.NoError(t, err)
	b, err := s.Guess()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSolverContradiction(t *testing.T) {
	s, err := New(5, digits.NewSeededPicker(1, 1))
	require.NoError(t, err)
	_, err = s.Guess()
	require.NoError(t, err)

	state, err := s.Feedback(digits.Score{Exact: 3, Partial: 1})
	assert.ErrorIs(t, err, ErrContradiction)
	assert.Equal(t, StateContradiction, state)
	assert.Zero(t, s.Remaining())

	_, err = s.Guess()
	assert.ErrorIs(t, err, ErrContradiction)
	_, err = s.Feedback(digits.Score{})
	assert.ErrorIs(t, err, ErrFinished)
}

func TestSolverContradictionFromInconsistentHistory(t *testing.T) {
	s, err := New(4, digits.NewSeededPicker(9, 9))
	require.NoError(t, err)
	_, err = s.Guess()
	require.NoError(t, err)

	// With an alphabet of four, every digit is always present.
	state, err := s.Feedback(digits.Score{Exact: 0, Partial: 0})
	assert.ErrorIs(t, err, ErrContradiction)
	assert.Equal(t, StateContradiction, state)
}

func TestSolverRejectsInvalidScore(t *testing.T) {
	s, err := New(7, digits.NewSeededPicker(2, 3))
	require.NoError(t, err)

	_, err = s.Feedback(digits.Score{})
	assert.ErrorIs(t, err, ErrNoGuess)

	g, err := s.Guess()
	require.NoError(t, err)
	before := s.Remaining()
	for _, bad := range []digits.Score{{Exact: 5}, {Partial: -1}, {Exact: 2, Partial: 3}} {
		state, err := s.Feedback(bad)
		assert.ErrorIs(t, err, ErrInvalidScore)
		assert.Equal(t, StateAwaitingFeedback, state)
	}
	assert.Equal(t, before, s.Remaining())
	assert.Zero(t, s.Rounds())
	again, _ := s.Guess()
	assert.Equal(t, g, again)
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(3, nil)
	assert.ErrorIs(t, err, digits.ErrInvalidLevel)
	_, err = New(11, nil)
	assert.ErrorIs(t, err, digits.ErrInvalidLevel)
}

func TestHistoryIsACopy(t *testing.T) {
	s, err := New(4, digits.NewSeededPicker(8, 8))
	require.NoError(t, err)
	secret := digits.Combination{2, 3, 0, 1}
	play(t, s, secret)

	h := s.History()
	require.NotEmpty(t, h)
	assert.Equal(t, digits.Solved, h[len(h)-1].Score)
	h[0].Score = digits.Score{Exact: 9}
	assert.NotEqual(t, h[0].Score, s.History()[0].Score)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_feedback", StateAwaitingFeedback.String())
	assert.Equal(t, "contradiction", StateContradiction.String())
	assert.False(t, StateInit.Terminal())
}
