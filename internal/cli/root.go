// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"github.com/alvinbaena/pwd-advisor/internal/util"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "pwd-advisor [COMMAND] [OPTIONS]",
		Short: "Score passwords and check them against breach data",
		Long: "Evaluate the strength of a password with a rule based score and actionable recommendations, " +
			"and check it against the Pwned Passwords (haveibeenpwned.com) breach data. " +
			"This command also serves the advisor and breach lookup APIs, and builds the breach stores they use.",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print more information on the processing")
	rootCmd.PersistentFlags().BoolVar(&profile, "profile", false, "Enable the profiling server (pprof) when running commands")
	rootCmd.PersistentFlags().Uint16Var(&pprofPort, "profile-port", 6060, "The port to use for the pprof server. Only used if the profile flag is set")
}

func Execute() error {
	return rootCmd.Execute()
}

func applyCliSettings() {
	util.ApplyCliSettings(verbose, profile, pprofPort)
}
