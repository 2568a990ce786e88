// main.go
//
// digitmind entrypoint. `serve` (the default) runs the HTTP API, `play` runs a
// game in the terminal.

package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/digitmind/internal/config"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "digitmind",
		Short: "Four-digit code-breaking game server and terminal client",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}
			cfg = c
			setupLogging(cfg)
			return nil
		},
		SilenceUsage: true,
		RunE:         runServe,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, playCmd)
}

func setupLogging(c *config.Config) {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if c.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("digitmind exited")
	}
}
