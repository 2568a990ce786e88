// internal/game/engine.go
//
// Game engine for a single DigitMind session.
// Responsibilities:
//   - Create sessions for either play direction with a validated level.
//   - ModeGuess: parse and validate player guesses, score them against the
//     computer's secret, finish on an all-exact score.
//   - ModeSolve: expose the solver's guess-out/score-in boundary.
//   - Report a coarse state string for clients.
//
// Both directions score with digits.Evaluate, so they agree on what a score means.

package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/digitmind/internal/digits"
	"github.com/robalobadob/digitmind/internal/solver"
)

var (
	ErrFinished  = errors.New("game finished")
	ErrWrongMode = errors.New("operation not available in this mode")
	ErrBadMode   = errors.New("mode must be \"guess\" or \"solve\"")
)

// NewGuess starts a session where the player breaks the computer's code.
// The secret is picked uniformly from the universe for level.
func NewGuess(level int, p *digits.Picker) (*Game, error) {
	if err := digits.ValidateLevel(level); err != nil {
		return nil, err
	}
	if p == nil {
		p = digits.NewPicker()
	}
	return WithSecret(level, p.Pick(digits.Generate(level)))
}

// WithSecret starts a ModeGuess session with a fixed secret (daily challenge, tests).
func WithSecret(level int, secret digits.Combination) (*Game, error) {
	if err := digits.ValidateLevel(level); err != nil {
		return nil, err
	}
	if !secret.Valid(level) {
		return nil, fmt.Errorf("%w: secret %s for level %d", digits.ErrInvalidCombination, secret, level)
	}
	now := time.Now().UTC()
	return &Game{
		ID:        uuid.NewString(),
		Mode:      ModeGuess,
		Level:     level,
		Secret:    secret,
		Turns:     []Turn{},
		StartedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewSolve starts a session where the computer breaks the player's code.
func NewSolve(level int, p *digits.Picker) (*Game, error) {
	s, err := solver.New(level, p)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Game{
		ID:        uuid.NewString(),
		Mode:      ModeSolve,
		Level:     level,
		StartedAt: now,
		UpdatedAt: now,
		solver:    s,
	}, nil
}

// New dispatches on mode.
func New(mode Mode, level int, p *digits.Picker) (*Game, error) {
	switch mode {
	case ModeGuess:
		return NewGuess(level, p)
	case ModeSolve:
		return NewSolve(level, p)
	}
	return nil, ErrBadMode
}

// ApplyGuess validates and scores a player guess, mutating the game state.
// Returns the score and the new state ("playing"/"won"/"lost").
func (g *Game) ApplyGuess(guess string) (digits.Score, string, error) {
	if g.Mode != ModeGuess {
		return digits.Score{}, g.State(), ErrWrongMode
	}
	if g.Finished {
		return digits.Score{}, g.State(), ErrFinished
	}
	c, err := digits.Parse(guess, g.Level)
	if err != nil {
		return digits.Score{}, g.State(), err
	}

	score := digits.Evaluate(c, g.Secret)
	g.Turns = append(g.Turns, Turn{Guess: c, Score: score})
	g.UpdatedAt = time.Now().UTC()
	if score.IsSolved() {
		g.Finished, g.Won = true, true
	}
	return score, g.State(), nil
}

// GiveUp ends a ModeGuess session as lost; the secret may then be revealed.
func (g *Game) GiveUp() error {
	if g.Mode != ModeGuess {
		return ErrWrongMode
	}
	if g.Finished {
		return ErrFinished
	}
	g.Finished = true
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// Next returns the computer's current guess (ModeSolve).
func (g *Game) Next() (digits.Combination, error) {
	if g.Mode != ModeSolve {
		return digits.Combination{}, ErrWrongMode
	}
	return g.solver.Guess()
}

// Feedback passes the player's score for the current computer guess to the
// solver (ModeSolve). On contradiction the session is finished and
// solver.ErrContradiction is returned alongside the "contradiction" state.
func (g *Game) Feedback(score digits.Score) (string, error) {
	if g.Mode != ModeSolve {
		return g.State(), ErrWrongMode
	}
	if g.Finished {
		return g.State(), ErrFinished
	}
	st, err := g.solver.Feedback(score)
	if err == nil || errors.Is(err, solver.ErrContradiction) {
		g.UpdatedAt = time.Now().UTC()
	}
	switch st {
	case solver.StateSolved:
		g.Finished, g.Won = true, true
	case solver.StateContradiction:
		g.Finished = true
	}
	return g.State(), err
}

// Remaining is the solver's candidate count (ModeSolve), or 0.
func (g *Game) Remaining() int {
	if g.solver == nil {
		return 0
	}
	return g.solver.Remaining()
}

// GuessCount is the number of scored guesses in either mode.
func (g *Game) GuessCount() int {
	if g.solver != nil {
		return g.solver.Rounds()
	}
	return len(g.Turns)
}

// History returns the scored guesses in either mode, oldest first.
func (g *Game) History() []Turn {
	if g.solver == nil {
		return append([]Turn(nil), g.Turns...)
	}
	h := g.solver.History()
	out := make([]Turn, len(h))
	for i, t := range h {
		out[i] = Turn{Guess: t.Guess, Score: t.Score}
	}
	return out
}

// State reports a coarse string representation of the current game state.
func (g *Game) State() string {
	if g.Mode == ModeSolve {
		switch g.solver.State() {
		case solver.StateSolved:
			return StateSolved
		case solver.StateContradiction:
			return StateContradiction
		}
		return StateAwaitingFeedback
	}
	if g.Finished {
		if g.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}
