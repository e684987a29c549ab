// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"github.com/alvinbaena/pwd-advisor/pkg/hibp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"os"
)

var (
	downloadCmd = &cobra.Command{
		Use:   "download",
		Short: "Download the latest haveibeenpwned hashes (SHA1) to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return downloadCommand(cmd)
		},
	}
)

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutFile, "out-file", "o", "./pwned-sha1.txt", "Output file path. Can be absolute or relative.")
	downloadCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite any existing files while writing the results.")
	downloadCmd.Flags().IntVarP(&downloadThreads, "threads", "t", 0, "Number of threads to use for the download. If omitted or less than 1, defaults to eight times the number of logical processors of the machine.")
	downloadCmd.Flags().IntVar(&ranges, "ranges", hibp.RangeCount, "Number of hash ranges to download, from 00000 onwards. Useful for partial test corpora.")
	downloadCmd.Flags().BoolVarP(&skipWait, "yes", "y", false, "Start right away, without the grace period to cancel.")

	rootCmd.AddCommand(downloadCmd)
}

func downloadCommand(cmd *cobra.Command) error {
	applyCliSettings()

	file, err := createOutFile(downloadOutFile, overwrite)
	if err != nil {
		return err
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing Pwned Passwords file")
		}
	}(file)

	d := hibp.NewDownloader(file, downloadThreads)
	return d.ProcessRanges(cmd.Context(), ranges, skipWait)
}
