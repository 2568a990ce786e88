// cmd_serve.go
//
// `digitmind serve`: config, sqlite, session store and the HTTP API.

package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/digitmind/internal/db"
	"github.com/robalobadob/digitmind/internal/httpserver"
	"github.com/robalobadob/digitmind/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	conn, err := db.OpenMigrated(cfg.DBPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	srv := httpserver.New(store.NewMemoryStore(), conn, cfg)
	log.Info().Str("port", cfg.Port).Str("db", cfg.DBPath).Msg("starting digitmind")
	return srv.Start(":" + cfg.Port)
}
