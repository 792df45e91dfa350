package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"prodpipe/internal/config"
	"prodpipe/internal/logging"
	"prodpipe/internal/notifications"
	"prodpipe/internal/review"
	"prodpipe/internal/store"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Human review queue",
	}

	reviewCmd.AddCommand(newReviewPendingCommand(ctx))
	reviewCmd.AddCommand(newReviewShowCommand(ctx))
	reviewCmd.AddCommand(newReviewAssignCommand(ctx))
	reviewCmd.AddCommand(newReviewDecideCommand(ctx))
	reviewCmd.AddCommand(newReviewReleaseCommand(ctx))
	reviewCmd.AddCommand(newReviewMineCommand(ctx))
	reviewCmd.AddCommand(newReviewOverdueCommand(ctx))
	reviewCmd.AddCommand(newReviewStatsCommand(ctx))

	return reviewCmd
}

func newReviewPendingCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		jsonOutput bool
		limit      int
		priority   int
	)

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List pending tasks ordered by priority and deadline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withReviews(cmd, func(ctx context.Context, reviews *review.Manager) error {
				tasks, err := reviews.ListPending(ctx, review.PendingFilter{
					Priority: priority,
					Limit:    limit,
				})
				if err != nil {
					return err
				}
				return printTaskList(cmd, jsonOutput, tasks, "No pending review tasks")
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum tasks to list (0 = all)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Only list one priority tier (1-5)")
	return cmd
}

func newReviewShowCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show TASK_ID",
		Short: "Show one task with its recorded feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withReviews(cmd, func(ctx context.Context, reviews *review.Manager) error {
				task, err := reviews.Get(ctx, args[0])
				if err != nil {
					return err
				}
				feedback, err := reviews.Feedback(ctx, task.ID)
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, map[string]any{
						"task":     task,
						"feedback": feedback,
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Task:     %s\n", task.ID)
				fmt.Fprintf(out, "SKU:      %s\n", task.SKU)
				fmt.Fprintf(out, "Image:    %s\n", task.ImageRef)
				fmt.Fprintf(out, "Status:   %s\n", task.Status)
				fmt.Fprintf(out, "Priority: %d\n", task.Priority)
				fmt.Fprintf(out, "Score:    %.4f\n", task.Score)
				if len(task.Reasons) > 0 {
					fmt.Fprintf(out, "Reasons:  %s\n", strings.Join(task.Reasons, "; "))
				}
				if task.Assignee != "" {
					fmt.Fprintf(out, "Assignee: %s\n", task.Assignee)
				}
				fmt.Fprintf(out, "Created:  %s\n", formatTime(task.CreatedAt))
				fmt.Fprintf(out, "Due:      %s (%s)\n", formatTime(task.DueBy), formatDue(task.DueBy, time.Now().UTC()))
				if task.DecidedAt != nil {
					fmt.Fprintf(out, "Decided:  %s\n", formatTime(*task.DecidedAt))
				}

				for _, record := range feedback {
					fmt.Fprintf(out, "\nDecision by %s at %s\n", record.Reviewer, formatTime(record.CreatedAt))
					fmt.Fprintf(out, "  %s (confidence %d/5)\n", record.Decision, record.Confidence)
					if record.Notes != "" {
						fmt.Fprintf(out, "  %s\n", record.Notes)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newReviewAssignCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assign TASK_ID REVIEWER",
		Short: "Assign a pending task to a reviewer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withReviews(cmd, func(ctx context.Context, reviews *review.Manager) error {
				task, err := reviews.Assign(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s assigned to %s (due %s)\n",
					task.ID, task.Assignee, formatTime(task.DueBy))
				return nil
			})
		},
	}
}

func newReviewDecideCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		confidence int
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "decide TASK_ID REVIEWER DECISION",
		Short: "Record a reviewer's verdict on an assigned task",
		Long: "Resolves an in-progress task with accepted, rejected, or requires_edit.\n" +
			"Only the assigned reviewer may decide, and a task accepts exactly one\n" +
			"decision.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(cmd, func(ctx context.Context, st *store.Store, cfg *config.Config) error {
				reviews := review.NewManager(st, cfg.Review, logging.NewNop())
				task, err := reviews.SubmitDecision(ctx, args[0], args[1], review.Decision(args[2]), confidence, notes)
				if err != nil {
					return err
				}

				notifier := notifications.NewService(cfg)
				if err := notifier.NotifyDecision(ctx, task.ID, task.SKU, args[1], args[2]); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "decision notification failed: %v\n", err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", task.ID, task.Status)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&confidence, "confidence", 3, "Reviewer confidence (1-5)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form reviewer notes")
	return cmd
}

func newReviewReleaseCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "release TASK_ID",
		Short: "Return an in-progress task to the pending pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withReviews(cmd, func(ctx context.Context, reviews *review.Manager) error {
				task, err := reviews.Release(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s released back to pending (due %s)\n",
					task.ID, formatTime(task.DueBy))
				return nil
			})
		},
	}
}

func newReviewMineCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "mine REVIEWER",
		Short: "List the tasks currently assigned to a reviewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withReviews(cmd, func(ctx context.Context, reviews *review.Manager) error {
				tasks, err := reviews.AssignedTasks(ctx, args[0])
				if err != nil {
					return err
				}
				return printTaskList(cmd, jsonOutput, tasks, "No assigned tasks")
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newReviewOverdueCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List tasks past their SLA deadline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withReviews(cmd, func(ctx context.Context, reviews *review.Manager) error {
				tasks, err := reviews.OverdueTasks(ctx)
				if err != nil {
					return err
				}
				return printTaskList(cmd, jsonOutput, tasks, "No overdue tasks")
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newReviewStatsCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show queue counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withReviews(cmd, func(ctx context.Context, reviews *review.Manager) error {
				stats, err := reviews.Stats(ctx)
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, stats)
				}

				rows := [][]string{
					{"Pending", fmt.Sprintf("%d", stats.Pending)},
					{"In progress", fmt.Sprintf("%d", stats.InProgress)},
					{"Accepted", fmt.Sprintf("%d", stats.Accepted)},
					{"Rejected", fmt.Sprintf("%d", stats.Rejected)},
					{"Requires edit", fmt.Sprintf("%d", stats.RequiresEdit)},
					{"Overdue", fmt.Sprintf("%d", stats.Overdue)},
					{"Total", fmt.Sprintf("%d", stats.Total)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Status", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func printTaskList(cmd *cobra.Command, jsonOutput bool, tasks []*review.Task, emptyMessage string) error {
	if jsonOutput {
		return writeJSON(cmd, map[string]any{"tasks": tasks})
	}
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), emptyMessage)
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, []string{
			task.ID,
			task.SKU,
			fmt.Sprintf("%d", task.Priority),
			fmt.Sprintf("%.2f", task.Score),
			string(task.Status),
			task.Assignee,
			formatDue(task.DueBy, now),
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Task", "SKU", "Pri", "Score", "Status", "Assignee", "Due"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
	))
	return nil
}
