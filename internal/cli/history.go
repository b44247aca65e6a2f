package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/keelbuild/keel/internal/pipeline"
	"github.com/keelbuild/keel/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Failed   bool
	Event    string
	Run      string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded pipeline runs",
		Long: `List pipeline runs recorded with keel ci --db, newest first, or show
one run's per-stage outcomes with --run.

Example:
  keel history --db ./keel.db
  keel history --db ./keel.db --failed
  keel history --db ./keel.db --run 0192d1f0-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to run history database (required)")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "only failed runs")
	cmd.Flags().StringVar(&opts.Event, "event", "", "only runs for this trigger event")
	cmd.Flags().StringVar(&opts.Run, "run", "", "show per-stage detail for one run token")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of runs to list (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		Env:       opts.Env,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing history database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()

	if opts.Run != "" {
		summary, stages, err := st.GetRun(ctx, opts.Run)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("no run recorded with token %q", opts.Run))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}

		if opts.Format == "json" {
			return formatter.Success(map[string]any{"run": summary, "stages": stages})
		}

		fmt.Fprintf(cmd.OutOrStdout(), "run %s (%s, event %s, recorded %s)\n",
			summary.RunToken, summary.Outcome, summary.Event, summary.RecordedAt)
		for _, stage := range stages {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %s\n", stage.Name, stageStatusLine(stage))
		}
		return nil
	}

	runs, err := st.ListRuns(ctx, store.ListFilter{
		FailedOnly: opts.Failed,
		Event:      opts.Event,
		Limit:      opts.Limit,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
		return nil
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s  %-9s %-13s %s", r.RunToken, r.Outcome, r.Event, r.RecordedAt)
		if r.FailedStage != "" {
			line += fmt.Sprintf("  (failed at %s: %s)", r.FailedStage, r.ExitInfo)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func stageStatusLine(stage pipeline.StageOutcome) string {
	switch stage.Status {
	case pipeline.StageFailed:
		if stage.Reason != "" {
			return fmt.Sprintf("failed (%s)", stage.Reason)
		}
		return fmt.Sprintf("failed (exit code %d)", stage.ExitCode)
	default:
		return string(stage.Status)
	}
}
