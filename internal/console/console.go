// internal/console/console.go
//
// Line-oriented terminal play for both directions:
//   1. the computer breaks a combination the player keeps in mind;
//   2. the player breaks the computer's secret.
//
// Input is read token by token, so answers may share a line or span several.
// Malformed answers are re-asked; a contradiction ends the session and returns
// to the menu.

package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/digitmind/internal/digits"
	"github.com/robalobadob/digitmind/internal/game"
	"github.com/robalobadob/digitmind/internal/solver"
)

// Console runs games over an input and output stream.
type Console struct {
	in        *bufio.Scanner
	out       io.Writer
	newPicker func() *digits.Picker
}

// New builds a Console. A nil picker factory gets entropy-seeded pickers.
func New(in io.Reader, out io.Writer, newPicker func() *digits.Picker) *Console {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)
	if newPicker == nil {
		newPicker = digits.NewPicker
	}
	return &Console{in: sc, out: out, newPicker: newPicker}
}

func (c *Console) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(c.out, format, a...)
}

// token returns the next whitespace-separated word.
func (c *Console) token() (string, error) {
	if c.in.Scan() {
		return c.in.Text(), nil
	}
	if err := c.in.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// readInt keeps prompting until an integer in [lo, hi] is entered.
func (c *Console) readInt(lo, hi int, retry string) (int, error) {
	for {
		tok, err := c.token()
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(tok); err == nil && n >= lo && n <= hi {
			return n, nil
		}
		c.printf("%s", retry)
	}
}

// Run shows the menu until the player quits or input ends.
func (c *Console) Run() error {
	c.printf("-- Welcome to DigitMind --\n")
	for {
		c.printf("\nChoose game mode:\n" +
			"0. Quit\n" +
			"1. Computer guesses your combination\n" +
			"2. You guess the combination the computer has selected\n" +
			"\nEnter the number of your chosen option: ")
		choice, err := c.readInt(0, 2, "Enter 0, 1 or 2: ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if choice == 0 {
			return nil
		}

		c.printf("Please enter the difficulty level (from %d to %d): ", digits.MinLevel, digits.MaxLevel)
		level, err := c.readInt(digits.MinLevel, digits.MaxLevel,
			fmt.Sprintf("Invalid input. Please enter a number between %d and %d: ", digits.MinLevel, digits.MaxLevel))
		if err != nil {
			return eofIsUnexpected(err)
		}

		if choice == 1 {
			_, err = c.ComputerGuesses(level)
		} else {
			err = c.HumanGuesses(level)
		}
		if err != nil {
			return eofIsUnexpected(err)
		}
	}
}

// ComputerGuesses lets the solver break the player's combination.
// It returns the final state: game.StateSolved or game.StateContradiction.
func (c *Console) ComputerGuesses(level int) (string, error) {
	g, err := game.NewSolve(level, c.newPicker())
	if err != nil {
		return "", err
	}
	c.printf("Think of %d distinct digits between 0 and %d.\n", digits.Length, level-1)
	for {
		guess, err := g.Next()
		if err != nil {
			return "", err
		}
		c.printf("Computer's guess: %s\n", guess)

		var score digits.Score
		c.printf("Enter number of digits in the correct position: ")
		if score.Exact, err = c.readInt(0, digits.Length, "Enter a number between 0 and 4: "); err != nil {
			return "", err
		}
		if !score.IsSolved() {
			c.printf("Enter number of correct digits in the wrong position: ")
			if score.Partial, err = c.readInt(0, digits.Length-score.Exact,
				fmt.Sprintf("Enter a number between 0 and %d: ", digits.Length-score.Exact)); err != nil {
				return "", err
			}
		}

		state, err := g.Feedback(score)
		switch {
		case errors.Is(err, solver.ErrContradiction):
			log.Debug().Str("gameId", g.ID).Int("rounds", g.GuessCount()).Msg("console contradiction")
			c.printf("Input error detected, restarting game...\n")
			return state, nil
		case err != nil:
			return "", err
		case state == game.StateSolved:
			c.printf("The computer has guessed your combination in %d guesses!\n", g.GuessCount())
			return state, nil
		}
		c.printf("(%d combinations remain)\n", g.Remaining())
	}
}

// HumanGuesses lets the player break a random secret.
func (c *Console) HumanGuesses(level int) error {
	g, err := game.NewGuess(level, c.newPicker())
	if err != nil {
		return err
	}
	for !g.Finished {
		c.printf("Enter your guess (%d distinct digits between 0 and %d): ", digits.Length, level-1)
		tok, err := c.token()
		if err != nil {
			return err
		}
		score, _, err := g.ApplyGuess(tok)
		if err != nil {
			c.printf("%v\n", err)
			continue
		}
		c.printf("Digits in the right position: %d\n", score.Exact)
		c.printf("Correct digits in wrong position: %d\n", score.Partial)
	}
	c.printf("Congratulations, you have guessed the combination in %d guesses!\n", g.GuessCount())
	return nil
}

func eofIsUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
