package cli

import (
	"log/slog"
	"os"

	"github.com/keelbuild/keel/internal/config"
	"github.com/keelbuild/keel/internal/policy"
)

// loadPolicy loads and compiles the policy directory, wrapping load
// failures with the command-error exit code. Loading is fatal before
// any stage runs; resolution-time errors are handled per command.
func loadPolicy(dir string) (*policy.Policy, error) {
	p, err := config.Load(dir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load policy", err)
	}
	return p, nil
}

// setupLogging configures the process-wide slog handler from the
// verbose flag. Logs go to stderr so JSON output stays clean.
func setupLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
