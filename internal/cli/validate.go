package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelbuild/keel/internal/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <policy-dir>",
		Short: "Validate a policy directory",
		Long: `Load and compile the policy, resolve every alias (surfacing cycles
and dangling references), check the vendor directory, and report lint
severity overrides. Prints the policy fingerprint on success.

Example:
  keel validate ./policy
  keel validate ./policy --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
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

	report, err := config.Validate(p)
	if err != nil {
		return WrapExitError(ExitCommandError, "policy validation failed", err)
	}

	for _, o := range report.Overrides {
		formatter.VerboseLog("warning: lint %q severity overridden: %s -> %s", o.Name, o.From, o.To)
	}

	if opts.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "policy ok: %d aliases, %d lints, %d stages\n",
		report.AliasCount, report.LintCount, report.StageCount)
	if len(report.Overrides) > 0 {
		for _, o := range report.Overrides {
			fmt.Fprintf(cmd.OutOrStdout(), "warning: lint %q severity overridden: %s -> %s\n", o.Name, o.From, o.To)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "fingerprint: %s\n", report.Fingerprint)
	return nil
}
