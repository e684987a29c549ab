// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"bufio"
	"github.com/alvinbaena/pwd-advisor/internal/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"io"
	"os"
	"strings"
)

var (
	hashCmd = &cobra.Command{
		Use:   "hash",
		Short: "Hash a plain text password list into a SHA1 hash list",
		Long: "Hash a plain text password list, one password per line, into uppercase hex SHA1 hashes. " +
			"The output can be loaded with the load or create commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return hashCommand()
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	hashCmd.Flags().StringVarP(&inputFile, "in-file", "i", "", "Plain text password list (required)")
	hashCmd.MarkFlagRequired("in-file")
	hashCmd.Flags().StringVarP(&hashOutFile, "out-file", "o", "./leaked-sha1.txt", "SHA1 hash list output path")
	hashCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite any existing files while writing the results.")

	rootCmd.AddCommand(hashCmd)
}

func hashCommand() error {
	applyCliSettings()

	in, err := os.Open(inputFile)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := createOutFile(hashOutFile, overwrite)
	if err != nil {
		return err
	}
	defer func(out *os.File) {
		if err := out.Close(); err != nil {
			log.Error().Err(err).Msg("error closing hash list file")
		}
	}(out)

	n, err := hashList(in, out)
	if err != nil {
		return err
	}

	log.Info().Msgf("wrote %d hashes to %s", n, out.Name())
	return nil
}

// hashList writes the SHA1 of every non-blank line of in to out, one per
// line. Trailing carriage returns are not part of the password.
func hashList(in io.Reader, out io.Writer) (int, error) {
	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)

	n := 0
	for scanner.Scan() {
		password := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(password) == "" {
			continue
		}

		if _, err := w.WriteString(store.HashPassword(password) + "\n"); err != nil {
			return n, err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, err
	}

	return n, w.Flush()
}
