package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keelbuild/keel/internal/config"
	"github.com/keelbuild/keel/internal/pipeline"
	"github.com/keelbuild/keel/internal/store"
)

// CIOptions holds flags for the ci command.
type CIOptions struct {
	*RootOptions
	Event    string
	Database string

	// Runner allows overriding the pipeline runner (for testing).
	// If nil, a production runner is built from the root options.
	Runner *pipeline.Runner
}

// NewCICommand creates the ci command.
func NewCICommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CIOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ci <policy-dir>",
		Short: "Run the CI pipeline",
		Long: `Run the policy's fixed stage sequence (typically format-check,
lint-check, build, test), one toolchain subprocess per stage, strictly
in order. The first failing stage halts the pipeline and is named in
the report; no later stage runs and nothing is retried.

With --db, the run and its per-stage outcomes are recorded for
inspection with keel history.

Example:
  keel ci ./policy
  keel ci ./policy --event merge-request --db ./keel.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCI(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Event, "event", pipeline.EventManual, "trigger event (push|merge-request|manual)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to run history database (optional)")

	return cmd
}

func runCI(opts *CIOptions, dir string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	if !pipeline.ValidEvents[opts.Event] {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid event %q: must be push, merge-request, or manual", opts.Event))
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		Env:       opts.Env,
	}

	p, err := loadPolicy(dir)
	if err != nil {
		return err
	}

	// Configuration errors are fatal before any stage runs.
	report, err := config.Validate(p)
	if err != nil {
		return WrapExitError(ExitCommandError, "policy validation failed", err)
	}
	for _, o := range report.Overrides {
		formatter.VerboseLog("warning: lint %q severity overridden: %s -> %s", o.Name, o.From, o.To)
	}

	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(opts.Env)
	}

	// An interrupt during a running stage kills the in-flight process
	// and fails that stage with a cancellation reason.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, cancelling run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("pipeline starting", "policy_dir", dir, "event", opts.Event, "stages", len(p.Stages))
	result, err := runner.Run(ctx, p, opts.Event)
	if err != nil {
		return WrapExitError(ExitCommandError, "pipeline could not start", err)
	}

	if opts.Database != "" {
		if err := recordRun(ctx, opts.Database, result); err != nil {
			// History is best-effort observability; the run outcome stands.
			slog.Error("failed to record run history", "error", err)
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		printRunReport(formatter, result)
	}

	if result.Failed() {
		return NewExitError(ExitFailure, fmt.Sprintf("stage %q failed: %s", result.FailedStage, result.ExitInfo))
	}
	return nil
}

func recordRun(ctx context.Context, dbPath string, result *pipeline.PipelineResult) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing history database", "error", closeErr)
		}
	}()
	return st.RecordRun(ctx, result)
}

func printRunReport(f *OutputFormatter, result *pipeline.PipelineResult) {
	fmt.Fprintf(f.Writer, "run %s (policy %.12s, event %s)\n", result.RunToken, result.PolicyHash, result.Event)
	for _, stage := range result.Stages {
		fmt.Fprintf(f.Writer, "  %-12s %s\n", stage.Name, f.colorStatus(stage))
	}
	if result.Failed() {
		fmt.Fprintf(f.Writer, "pipeline %s at stage %q: %s\n",
			f.Colorize("failed", ansiRed), result.FailedStage, result.ExitInfo)
		return
	}
	fmt.Fprintf(f.Writer, "pipeline %s\n", f.Colorize("succeeded", ansiGreen))
}

func (f *OutputFormatter) colorStatus(stage pipeline.StageOutcome) string {
	switch stage.Status {
	case pipeline.StageSucceeded:
		return f.Colorize(string(stage.Status), ansiGreen)
	case pipeline.StageFailed:
		if stage.Reason != "" {
			return f.Colorize(string(stage.Status), ansiRed) + " (" + stage.Reason + ")"
		}
		return f.Colorize(fmt.Sprintf("%s (exit code %d)", stage.Status, stage.ExitCode), ansiRed)
	default:
		return f.Colorize(string(stage.Status), ansiDim)
	}
}
