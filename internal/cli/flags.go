package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keelbuild/keel/internal/policy"
)

// NewLintFlagsCommand creates the lint-flags command.
func NewLintFlagsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint-flags <policy-dir>",
		Short: "Print the effective lint flags",
		Long: `Fold the policy's lint rules left-to-right (last entry wins for a
repeated diagnostic) and print the flag list injected into compile
invocations: --deny=<name> for build-breaking diagnostics, --warn=<name>
for reported-only ones.

Example:
  keel lint-flags ./policy`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLintFlags(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runLintFlags(opts *RootOptions, dir string, cmd *cobra.Command) error {
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

	effective, overrides := policy.EffectivePolicy(p.Lints)
	for _, o := range overrides {
		formatter.VerboseLog("warning: lint %q severity overridden: %s -> %s", o.Name, o.From, o.To)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"flags":     effective.Flags(),
			"overrides": overrides,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(effective.Flags(), " "))
	return nil
}
