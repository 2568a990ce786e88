// internal/game/types.go
//
// Core type definitions for a DigitMind session.
// Defines:
//   - Mode: which side holds the secret (guess vs. solve).
//   - Turn: one scored guess.
//   - Game: state for a single in-progress or finished session.

package game

import (
	"time"

	"github.com/robalobadob/digitmind/internal/digits"
	"github.com/robalobadob/digitmind/internal/solver"
)

// Mode selects the play direction.
//   - "guess": the computer holds the secret and scores the player's guesses.
//   - "solve": the player holds the secret and the computer guesses.
type Mode string

const (
	ModeGuess Mode = "guess"
	ModeSolve Mode = "solve"
)

// Coarse session states reported to clients.
const (
	StatePlaying          = "playing"
	StateWon              = "won"
	StateLost             = "lost"
	StateAwaitingFeedback = "awaiting_feedback"
	StateSolved           = "solved"
	StateContradiction    = "contradiction"
)

// Turn is one guess and the score it received.
type Turn struct {
	Guess digits.Combination `json:"guess"`
	Score digits.Score       `json:"score"`
}

// Game holds the state of a single session.
type Game struct {
	ID        string             // Unique session identifier (UUID).
	Mode      Mode               // Play direction.
	Level     int                // Alphabet size (4..10).
	Secret    digits.Combination // Computer-held secret (ModeGuess only).
	Turns     []Turn             // Guesses made so far (ModeGuess only).
	Finished  bool               // True once the session is over.
	Won       bool               // True if the session ended with the secret found.
	Owner     string             // User or anonymous id that started the session.
	StartedAt time.Time
	UpdatedAt time.Time // Last accepted action; drives eviction.

	solver *solver.Solver // ModeSolve only.
}
