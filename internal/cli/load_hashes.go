// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"errors"
	"fmt"
	"github.com/alvinbaena/pwd-advisor/internal/config"
	"github.com/alvinbaena/pwd-advisor/internal/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"os"
	"time"
)

var (
	loadCmd = &cobra.Command{
		Use:   "load",
		Short: "Load a SHA1 hash list into a PostgreSQL or SQLite breach store",
		Long: "Load a SHA1 hash list, one HASH or HASH:COUNT per line, into the leaked_passwords table. " +
			"Hashes already in the table are ignored. The table is created when missing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return loadCommand(cmd)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	loadCmd.Flags().StringVarP(&inputFile, "in-file", "i", "", "SHA1 hash list file (required)")
	loadCmd.MarkFlagRequired("in-file")
	loadCmd.Flags().String("store", "postgres", "Breach store: postgres or sqlite")
	loadCmd.Flags().String("sqlite-file", "", "SQLite database file, for the sqlite store")
	loadCmd.Flags().String("database-url", "", "PostgreSQL URL, for the postgres store. Defaults to one built from the POSTGRES_* variables")
	loadCmd.Flags().IntVarP(&loadThreads, "threads", "t", 4, "Concurrent inserts")
	loadCmd.Flags().IntVar(&chunkSize, "chunk-size", 10*1024, "Hashes per insert")

	rootCmd.AddCommand(loadCmd)
}

func loadCommand(cmd *cobra.Command) error {
	applyCliSettings()

	cfg, err := config.LoadChecker(cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Store == "gcs" {
		return errors.New("GCS files are read only, use the create command to build one")
	}

	source, err := cfg.Source()
	if err != nil {
		return err
	}

	in, err := os.Open(inputFile)
	if err != nil {
		return err
	}
	defer in.Close()

	s, err := store.Open(cmd.Context(), cfg.Store, source)
	if err != nil {
		return fmt.Errorf("error initializing %s store: %w", cfg.Store, err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Error().Err(err).Msg("error closing breach store")
		}
	}()

	sink, ok := s.(store.Sink)
	if !ok {
		return fmt.Errorf("the %s store does not accept new hashes", cfg.Store)
	}

	start := time.Now()
	log.Info().Msgf("loading %s into the %s store. This might take a while, be patient :)", inputFile, cfg.Store)
	stats, err := store.NewLoader(sink, chunkSize, loadThreads).Load(cmd.Context(), in)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	log.Info().Msgf("read %s lines, inserted %s new hashes, skipped %s invalid lines in %v",
		p.Sprintf("%d", stats.Lines), p.Sprintf("%d", stats.Inserted), p.Sprintf("%d", stats.Invalid), time.Since(start))
	return nil
}
