// Command keel enforces reproducible-build policy: it compiles a CUE
// policy directory, resolves command aliases against it, and runs the
// CI pipeline it declares.
package main

import (
	"fmt"
	"os"

	"github.com/keelbuild/keel/internal/cli"
	"github.com/keelbuild/keel/internal/policy"
)

func main() {
	env := policy.EnvFromLookup(os.LookupEnv)

	cmd := cli.NewRootCommand(env)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err, env.Backtrace))
		os.Exit(cli.GetExitCode(err))
	}
}
