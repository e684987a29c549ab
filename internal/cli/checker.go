// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"github.com/alvinbaena/pwd-advisor/internal/api"
	"github.com/alvinbaena/pwd-advisor/internal/config"
	"github.com/alvinbaena/pwd-advisor/internal/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	checkerCmd = &cobra.Command{
		Use:   "checker",
		Short: "Serve the breach lookup API",
		Long: "Serve the breach lookup API over a GCS file, a PostgreSQL database or a SQLite database. " +
			"POST /check answers {leaked, count} for a password, POST /check/hash for a SHA1 hash " +
			"and GET /health reports the number of leaked hashes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkerCommand(cmd)
		},
	}
)

func init() {
	checkerCmd.Flags().Uint16P("port", "p", 8000, "Port to be used by the server")
	checkerCmd.Flags().String("store", "postgres", "Breach store: gcs, postgres or sqlite")
	checkerCmd.Flags().String("gcs-file", "", "Pwned Passwords GCS file, for the gcs store")
	checkerCmd.Flags().String("sqlite-file", "", "SQLite database file, for the sqlite store")
	checkerCmd.Flags().String("database-url", "", "PostgreSQL URL, for the postgres store. Defaults to one built from the POSTGRES_* variables")
	addTLSFlags(checkerCmd)

	rootCmd.AddCommand(checkerCmd)
}

func checkerCommand(cmd *cobra.Command) error {
	cfg, err := config.LoadChecker(cmd.Flags())
	if err != nil {
		return err
	}
	applyServerMode(cfg.Debug)

	source, err := cfg.Source()
	if err != nil {
		return err
	}

	s, err := store.Open(cmd.Context(), cfg.Store, source)
	if err != nil {
		return fmt.Errorf("error initializing %s store: %w", cfg.Store, err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Error().Err(err).Msg("error closing breach store")
		}
	}()

	if n, err := s.Len(cmd.Context()); err == nil {
		p := message.NewPrinter(language.English)
		log.Info().Msgf("%s store ready with %s leaked hashes", cfg.Store, p.Sprintf("%d", n))
	}

	router := api.NewRouter()
	api.RegisterCheckerApi(router, s)
	api.RegisterCheckerApi(router.Group("/v1"), s)

	return runServer(router, cfg.Port, serverTLS{cert: cfg.TLSCert, key: cfg.TLSKey, self: cfg.SelfTLS})
}
