package cli

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/keelbuild/keel/internal/policy"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions

	// LintFlags appends the effective lint flags to the invocation.
	LintFlags bool
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <alias> <policy-dir> [-- extra args]",
		Short: "Resolve an alias and run the toolchain",
		Long: `Resolve an alias and execute the underlying toolchain binary with the
resolved token sequence, passing stdout/stderr through. Tokens after --
are appended verbatim. The toolchain's exit code is the exit code of
the invocation.

When the policy enables vendoring, the vendor directory is checked
before the toolchain is spawned; a missing entry is a hard error, never
a silent fallback to the network.

Example:
  keel exec v-check ./policy
  keel exec t ./policy -- --nocapture`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			extra := []string{}
			if at := cmd.ArgsLenAtDash(); at >= 0 && at < len(args) {
				extra = args[at:]
				args = args[:at]
			}
			if len(args) != 2 {
				return NewExitError(ExitCommandError, "exec requires <alias> and <policy-dir>")
			}
			return runExec(opts, args[0], args[1], extra, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.LintFlags, "lint-flags", false, "append the effective lint flags")

	return cmd
}

func runExec(opts *ExecOptions, name, dir string, extra []string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	p, err := loadPolicy(dir)
	if err != nil {
		return err
	}

	tokens, err := p.Aliases.Resolve(name)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("cannot resolve alias %q", name), err)
	}

	// Frozen/offline contract: verify the vendor directory before the
	// toolchain can spawn any compilation.
	if err := p.Vendor.Check(); err != nil {
		return WrapExitError(ExitCommandError, "vendor check failed", err)
	}

	argv := append([]string{p.Toolchain}, tokens...)
	if opts.LintFlags {
		effective, _ := policy.EffectivePolicy(p.Lints)
		argv = append(argv, effective.Flags()...)
	}
	argv = append(argv, extra...)

	slog.Debug("executing toolchain", "alias", name, "argv", argv)

	proc := exec.CommandContext(cmd.Context(), argv[0], argv[1:]...)
	proc.Stdin = cmd.InOrStdin()
	proc.Stdout = cmd.OutOrStdout()
	proc.Stderr = cmd.ErrOrStderr()

	if err := proc.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			// The toolchain's exit code is the alias invocation's exit code.
			return &ExitError{
				Code:    exitErr.ExitCode(),
				Message: fmt.Sprintf("%s exited with code %d", p.Toolchain, exitErr.ExitCode()),
			}
		}
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to run %s", p.Toolchain), err)
	}
	return nil
}
