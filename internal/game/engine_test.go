package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/digitmind/internal/digits"
	"github.com/robalobadob/digitmind/internal/solver"
)

func TestApplyGuessFlow(t *testing.T) {
	g, err := WithSecret(4, digits.Combination{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, StatePlaying, g.State())

	sc, state, err := g.ApplyGuess("3210")
	require.NoError(t, err)
	assert.Equal(t, digits.Score{Exact: 0, Partial: 4}, sc)
	assert.Equal(t, StatePlaying, state)

	_, _, err = g.ApplyGuess("3214")
	assert.ErrorIs(t, err, digits.ErrInvalidCombination)
	assert.Equal(t, 1, g.GuessCount(), "rejected guesses are not recorded")

	sc, state, err = g.ApplyGuess("0123")
	require.NoError(t, err)
	assert.True(t, sc.IsSolved())
	assert.Equal(t, StateWon, state)
	assert.True(t, g.Finished)

	_, _, err = g.ApplyGuess("0123")
	assert.ErrorIs(t, err, ErrFinished)
	assert.Len(t, g.History(), 2)
}

func TestNewGuessPicksValidSecret(t *testing.T) {
	g, err := NewGuess(9, digits.NewSeededPicker(1, 2))
	require.NoError(t, err)
	assert.True(t, g.Secret.Valid(9))
	assert.NotEmpty(t, g.ID)

	_, err = NewGuess(2, nil)
	assert.ErrorIs(t, err, digits.ErrInvalidLevel)
}

func TestWithSecretRejectsOutOfLevel(t *testing.T) {
	_, err := WithSecret(5, digits.Combination{0, 1, 2, 7})
	assert.ErrorIs(t, err, digits.ErrInvalidCombination)
}

func TestSolveFlow(t *testing.T) {
	secret := digits.Combination{4, 0, 5, 2}
	g, err := New(ModeSolve, 6, digits.NewSeededPicker(10, 20))
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingFeedback, g.State())

	_, _, err = g.ApplyGuess("0123")
	assert.ErrorIs(t, err, ErrWrongMode)

	for !g.Finished {
		guess, err := g.Next()
		require.NoError(t, err)
		_, err = g.Feedback(digits.Evaluate(guess, secret))
		require.NoError(t, err)
	}
	assert.Equal(t, StateSolved, g.State())
	assert.True(t, g.Won)
	last, err := g.Next()
	require.NoError(t, err)
	assert.Equal(t, secret, last)
	assert.Equal(t, g.GuessCount(), len(g.History()))
}

func TestSolveContradictionFinishes(t *testing.T) {
	g, err := NewSolve(4, digits.NewSeededPicker(3, 3))
	require.NoError(t, err)
	_, err = g.Next()
	require.NoError(t, err)

	state, err := g.Feedback(digits.Score{})
	assert.ErrorIs(t, err, solver.ErrContradiction)
	assert.Equal(t, StateContradiction, state)
	assert.True(t, g.Finished)
	assert.False(t, g.Won)

	_, err = g.Feedback(digits.Score{})
	assert.ErrorIs(t, err, ErrFinished)
}

func TestNewRejectsUnknownMode(t *testing.T) {
	_, err := New("cheat", 4, nil)
	assert.ErrorIs(t, err, ErrBadMode)
}

func TestGiveUp(t *testing.T) {
	g, err := WithSecret(5, digits.Combination{4, 3, 2, 1})
	require.NoError(t, err)
	require.NoError(t, g.GiveUp())
	assert.Equal(t, StateLost, g.State())
	assert.ErrorIs(t, g.GiveUp(), ErrFinished)
	_, _, err = g.ApplyGuess("4321")
	assert.ErrorIs(t, err, ErrFinished)

	s, err := NewSolve(5, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.GiveUp(), ErrWrongMode)
}

func TestActionsTouchUpdatedAt(t *testing.T) {
	g, err := WithSecret(5, digits.Combination{4, 3, 2, 1})
	require.NoError(t, err)
	g.UpdatedAt = time.Time{}

	_, _, err = g.ApplyGuess("4321x")
	require.Error(t, err)
	assert.True(t, g.UpdatedAt.IsZero(), "rejected guesses are not activity")

	_, _, err = g.ApplyGuess("0123")
	require.NoError(t, err)
	assert.False(t, g.UpdatedAt.IsZero())

	s, err := NewSolve(4, digits.NewSeededPicker(3, 3))
	require.NoError(t, err)
	s.UpdatedAt = time.Time{}
	_, err = s.Feedback(digits.Score{Exact: 5})
	require.Error(t, err)
	assert.True(t, s.UpdatedAt.IsZero())
	_, err = s.Feedback(digits.Score{})
	assert.ErrorIs(t, err, solver.ErrContradiction)
	assert.False(t, s.UpdatedAt.IsZero())
}
