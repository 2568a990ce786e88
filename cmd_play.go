// cmd_play.go
//
// `digitmind play`: the terminal game on stdin/stdout.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/robalobadob/digitmind/internal/console"
	"github.com/robalobadob/digitmind/internal/digits"
)

var (
	playSeed uint64

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			newPicker := digits.NewPicker
			if cmd.Flags().Changed("seed") {
				// one shared stream, so successive games still differ
				p := digits.NewSeededPicker(playSeed, playSeed)
				newPicker = func() *digits.Picker { return p }
			}
			return console.New(os.Stdin, os.Stdout, newPicker).Run()
		},
	}
)

func init() {
	playCmd.Flags().Uint64Var(&playSeed, "seed", 0, "seed the random picker for a reproducible session")
}
