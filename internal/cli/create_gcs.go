// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"github.com/alvinbaena/pwd-advisor/pkg/gcs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	_ "net/http/pprof"
	"os"
)

var (
	createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a GCS database from a Pwned Passwords file (SHA1)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return createCommand()
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	createCmd.Flags().Uint64VarP(&probability, "false-positive-rate", "p", 16777216, "False positive rate for queries, 1-in-p.")
	createCmd.Flags().Uint64VarP(&indexGranularity, "index-granularity", "g", 1024, "Entries per index point (16 bytes each).")
	createCmd.Flags().StringVarP(&inputFile, "in-file", "i", "", "Pwned passwords input file path (required)")
	createCmd.MarkFlagRequired("in-file")
	createCmd.Flags().StringVarP(&gcsOutFile, "out-file", "o", "./pwned.gcs", "GCS file output path")
	createCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite any existing files while writing the results.")
	createCmd.Flags().BoolVarP(&skipWait, "yes", "y", false, "Start right away, without the grace period to cancel.")

	rootCmd.AddCommand(createCmd)
}

func createCommand() error {
	applyCliSettings()

	file, err := os.Open(inputFile)
	if err != nil {
		return err
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing Pwned Passwords file")
		}
	}(file)

	out, err := createOutFile(gcsOutFile, overwrite)
	if err != nil {
		return err
	}

	defer func(out *os.File) {
		if err := out.Close(); err != nil {
			log.Error().Err(err).Msg("error closing GCS file")
		}
	}(out)

	builder := gcs.NewBuilder(file, out, probability, indexGranularity)
	return builder.Process(skipWait)
}
