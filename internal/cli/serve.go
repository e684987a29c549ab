// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"github.com/alvinbaena/pwd-advisor/internal/api"
	"github.com/alvinbaena/pwd-advisor/internal/config"
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/alvinbaena/pwd-advisor/pkg/breach"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the password advisor API",
		Long: "Serve the password advisor API. POST /evaluate scores a password and checks it against the " +
			"breach lookup service, GET /health reports liveness. Both are also served under /v1. " +
			"Every flag can also be set with its environment variable, e.g. --checker-url and CHECKER_URL.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCommand(cmd)
		},
	}
)

func init() {
	serveCmd.Flags().Uint16P("port", "p", 3100, "Port to be used by the server")
	addCheckerFlags(serveCmd)
	addTLSFlags(serveCmd)

	rootCmd.AddCommand(serveCmd)
}

func addCheckerFlags(cmd *cobra.Command) {
	cmd.Flags().String("checker-url", breach.DefaultURL, "URL of the breach lookup service check endpoint")
	cmd.Flags().Duration("checker-timeout", breach.DefaultTimeout, "Time limit for a breach lookup, retries included")
	cmd.Flags().Int("checker-retries", 0, "Times a failed breach lookup is retried")
}

func addTLSFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("self-tls", false,
		"If the server should use a self-signed certificate when starting. The certificate is renewed on each server restart")
	cmd.Flags().String("tls-cert", "", "Path to the PEM encoded TLS certificate to be used by the server")
	cmd.Flags().String("tls-key", "", "Path to the PEM encoded TLS private key to be used by the server")
	cmd.Flags().Bool("debug", false, "Debug logging and gin debug mode")
}

func newBreachClient(cfg config.Advisor) *breach.Client {
	return breach.NewClient(cfg.CheckerURL,
		breach.WithTimeout(cfg.CheckerTimeout),
		breach.WithRetries(cfg.CheckerRetries),
	)
}

func serveCommand(cmd *cobra.Command) error {
	cfg, err := config.LoadAdvisor(cmd.Flags())
	if err != nil {
		return err
	}
	applyServerMode(cfg.Debug)

	log.Info().Msgf("breach lookups go to %s with a %s time limit", cfg.CheckerURL, cfg.CheckerTimeout)
	evaluator := advisor.NewEvaluator(newBreachClient(cfg))

	router := api.NewRouter()
	api.RegisterAdvisorApi(router, evaluator)
	api.RegisterAdvisorApi(router.Group("/v1"), evaluator)

	return runServer(router, cfg.Port, serverTLS{cert: cfg.TLSCert, key: cfg.TLSKey, self: cfg.SelfTLS})
}
