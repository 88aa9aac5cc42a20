package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run [test files or directories...]",
		Short: "Run test files and report the outcome",
		Long: `Builds every specification declared in the given test files and runs
them one after the other. Directories are searched for *.toml, *.yaml and
*.yml files. Exits 1 when any specification fails.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args)
		},
	}
}

func runTests(cmd *cobra.Command, opts *rootOptions, args []string) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	files, err := a.testFiles(args)
	if err != nil {
		return err
	}
	reporter, err := a.newReporter(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	summary := a.newRunner(reporter).Run(cmd.Context(), files)
	if !summary.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d specification(s) failed", summary.Failed, summary.Total()))
	}
	return nil
}
