package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"prodpipe/internal/checks"
	"prodpipe/internal/config"
	"prodpipe/internal/logging"
	"prodpipe/internal/notifications"
	"prodpipe/internal/pipeline"
	"prodpipe/internal/review"
	"prodpipe/internal/store"
	"prodpipe/internal/validation"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Image validation scoring",
	}

	validateCmd.AddCommand(newValidateScoresCommand(ctx))
	validateCmd.AddCommand(newValidateDigestCommand())

	return validateCmd
}

func newValidateScoresCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		jsonOutput   bool
		dryRun       bool
		priorityHint int
	)

	cmd := &cobra.Command{
		Use:   "scores SKU IMAGE_REF CHECK=SCORE [CHECK=SCORE...]",
		Short: "Score pre-computed check results and route the image",
		Long: "Computes the weighted overall score for an image from named check\n" +
			"scores and routes it: accepted images pass through, review candidates\n" +
			"become pending tasks. With --dry-run the image is scored but never\n" +
			"routed or persisted.",
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, imageRef := args[0], args[1]
			scores, err := parseScores(args[2:])
			if err != nil {
				return err
			}

			if dryRun {
				cfg, err := cmdCtx.ensureConfig()
				if err != nil {
					return err
				}
				thresholds := validation.Thresholds{
					Accept: cfg.Validation.AcceptThreshold,
					Review: cfg.Validation.ReviewThreshold,
				}
				result, err := validation.Score(scores, cfg.Validation.Weights, thresholds)
				if err != nil {
					return err
				}
				return printOutcome(cmd, jsonOutput, pipeline.Outcome{SKU: sku, ImageRef: imageRef, Result: result})
			}

			return cmdCtx.withStore(cmd, func(ctx context.Context, st *store.Store, cfg *config.Config) error {
				logger := logging.NewNop()
				reviews := review.NewManager(st, cfg.Review, logger)
				p := pipeline.New(cfg, cmdCtx.generator(st, cfg), reviews, nil, notifications.NewService(cfg), logger)

				outcome, err := p.RouteScores(ctx, sku, imageRef, scores, priorityHint)
				if err != nil {
					return err
				}
				return printOutcome(cmd, jsonOutput, outcome)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Score without routing or persisting")
	cmd.Flags().IntVar(&priorityHint, "priority", 0, "Priority tier override (1-5) for a routed task")
	return cmd
}

func newValidateDigestCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "digest FILE",
		Short:       "Print the SHA-256 digest of an image file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			digest, err := checks.FileSHA256(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	}
}

func parseScores(pairs []string) (map[string]float64, error) {
	scores := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("expected CHECK=SCORE, got %q", pair)
		}
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid score for check %q: %w", name, err)
		}
		scores[name] = score
	}
	return scores, nil
}

func printOutcome(cmd *cobra.Command, jsonOutput bool, outcome pipeline.Outcome) error {
	if jsonOutput {
		payload := map[string]any{
			"sku":         outcome.SKU,
			"image_ref":   outcome.ImageRef,
			"overall":     outcome.Result.Overall,
			"used_weight": outcome.Result.UsedWeight,
			"status":      string(outcome.Result.Status),
			"reason":      outcome.Result.Reason,
			"checks":      outcome.Result.Checks,
		}
		if outcome.Task != nil {
			payload["task_id"] = outcome.Task.ID
			payload["priority"] = outcome.Task.Priority
			payload["due_by"] = outcome.Task.DueBy
		}
		return writeJSON(cmd, payload)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Image:   %s (sku %s)\n", outcome.ImageRef, outcome.SKU)
	fmt.Fprintf(out, "Overall: %.4f (weight used %.2f)\n", outcome.Result.Overall, outcome.Result.UsedWeight)
	fmt.Fprintf(out, "Status:  %s\n", outcome.Result.Status)
	if outcome.Result.Reason != "" {
		fmt.Fprintf(out, "Reason:  %s\n", outcome.Result.Reason)
	}
	if outcome.Task != nil {
		fmt.Fprintf(out, "Review:  task %s, priority %d, due %s\n",
			outcome.Task.ID, outcome.Task.Priority, formatTime(outcome.Task.DueBy))
	}
	return nil
}
