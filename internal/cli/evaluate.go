// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"errors"
	"github.com/alvinbaena/pwd-advisor/internal/config"
	"github.com/alvinbaena/pwd-advisor/internal/report"
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"io"
	"strings"
)

var (
	evaluateCmd = &cobra.Command{
		Use:   "evaluate [PASSWORD]",
		Short: "Evaluate a password locally",
		Long: "Score a password, list the rules it passes and the recommendations to improve it, and check it " +
			"against the breach lookup service at --checker-url. Use --interactive to type passwords in a masked prompt " +
			"instead of passing them as an argument, which keeps them out of the shell history.",
		Args: func(cmd *cobra.Command, args []string) error {
			if !interactive {
				if err := cobra.ExactArgs(1)(cmd, args); err != nil {
					return err
				}
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			applyCliSettings()

			w, err := report.New(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			evaluator, err := newLocalEvaluator(cmd)
			if err != nil {
				return err
			}

			if interactive {
				return runInteractiveSession(cmd.Context(), evaluator, w)
			}
			return evaluatePassword(cmd.Context(), evaluator, w, args[0])
		},
	}
)

func init() {
	evaluateCmd.Flags().BoolVarP(&interactive, "interactive", "n", false, "Interactive mode.")
	evaluateCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: "+strings.Join(report.Formats, ", "))
	evaluateCmd.Flags().BoolVar(&offline, "offline", false, "Skip the breach lookup, the breach status is reported as unknown")
	addCheckerFlags(evaluateCmd)

	rootCmd.AddCommand(evaluateCmd)
}

func newLocalEvaluator(cmd *cobra.Command) (*advisor.Evaluator, error) {
	if offline {
		return advisor.NewEvaluator(nil), nil
	}

	cfg, err := config.LoadAdvisor(cmd.Flags())
	if err != nil {
		return nil, err
	}

	return advisor.NewEvaluator(newBreachClient(cfg)), nil
}

func evaluatePassword(ctx context.Context, evaluator *advisor.Evaluator, w report.Writer, password string) error {
	r, err := evaluator.Evaluate(ctx, advisor.Password(password))
	if err != nil {
		return err
	}

	return w.Write(r)
}

func runInteractiveSession(ctx context.Context, evaluator *advisor.Evaluator, w report.Writer) error {
	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if len(input) == 0 {
				return errors.New("please enter a password")
			}
			return nil
		},
	}

	log.Info().Msgf("Running interactive session. ^C to exit")
	for {
		result, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, io.EOF) {
				log.Info().Msgf("Goodbye")
				return nil
			}
			return err
		}

		if err = evaluatePassword(ctx, evaluator, w, result); err != nil {
			log.Error().Err(err).Msg("Error evaluating password")
		}
	}
}
