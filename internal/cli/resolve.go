package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keelbuild/keel/internal/policy"
)

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <alias> <policy-dir>",
		Short: "Print the resolved token sequence for an alias",
		Long: `Expand an alias through the alias table and print the flat literal
token sequence that would be passed to the toolchain, one invocation
line. Nested aliases are spliced in place; cycles and dangling
references are reported, never silently truncated.

Example:
  keel resolve v-check ./policy
  keel resolve v-check ./policy --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runResolve(opts *RootOptions, name, dir string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

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

	tokens, err := p.Aliases.Resolve(name)
	if err != nil {
		// Resolution errors are fatal for this alias only; name the
		// failure precisely so it can be reproduced.
		var cyclic *policy.CyclicAliasError
		var unknown *policy.UnknownAliasError
		switch {
		case errors.As(err, &cyclic), errors.As(err, &unknown):
			return WrapExitError(ExitCommandError, fmt.Sprintf("cannot resolve alias %q", name), err)
		default:
			return WrapExitError(ExitCommandError, "resolution failed", err)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"alias":     name,
			"toolchain": p.Toolchain,
			"tokens":    tokens,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(append([]string{p.Toolchain}, tokens...), " "))
	return nil
}
