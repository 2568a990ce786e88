package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/digitmind/internal/digits"
	"github.com/robalobadob/digitmind/internal/game"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	g, err := game.NewGuess(5, digits.NewSeededPicker(1, 1))
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, g))

	got, err := st.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Same(t, g, got)
	assert.Equal(t, 1, st.Len())

	require.NoError(t, st.Delete(ctx, g.ID))
	_, err = st.Get(ctx, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := game.NewSolve(4, nil)
			if err == nil {
				_ = st.Save(ctx, g)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 32, st.Len())
}

func TestMemoryStoreUpdateSerialises(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	g, err := game.WithSecret(6, digits.Combination{5, 4, 3, 2})
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, g))

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.Update(ctx, g.ID, func(g *game.Game) error {
				_, _, err := g.ApplyGuess("0123")
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NoError(t, st.Update(ctx, g.ID, func(g *game.Game) error {
		assert.Equal(t, n, g.GuessCount())
		return nil
	}))
}

func TestMemoryStoreUpdateErrors(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	assert.ErrorIs(t, st.Update(ctx, "missing", func(*game.Game) error { return nil }), ErrNotFound)

	g, err := game.NewSolve(4, digits.NewSeededPicker(2, 2))
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, g))
	boom := errors.New("boom")
	assert.ErrorIs(t, st.Update(ctx, g.ID, func(*game.Game) error { return boom }), boom)
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	done, err := game.WithSecret(4, digits.Combination{0, 1, 2, 3})
	require.NoError(t, err)
	_, _, err = done.ApplyGuess("0123")
	require.NoError(t, err)
	live, err := game.NewGuess(4, digits.NewSeededPicker(1, 1))
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, done))
	require.NoError(t, st.Save(ctx, live))

	removed := st.Sweep(ctx, func(g *game.Game) bool { return g.Finished })
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, st.Len())

	_, err = st.Get(ctx, done.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.Update(ctx, done.ID, func(*game.Game) error { return nil }), ErrNotFound)

	_, err = st.Get(ctx, live.ID)
	assert.NoError(t, err)
}
