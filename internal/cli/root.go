// Package cli is the command line surface of filecheck.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fjglira/filecheck/internal/config"
)

// rootOptions holds the global flags.
type rootOptions struct {
	configFile string
	verbosity  int
	logFile    string
	logLevel   string
	format     string
}

// NewRootCommand creates the filecheck command tree. Without a
// subcommand it behaves like "run".
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "filecheck [test files or directories...]",
		Short: "Compare produced files against reference files",
		Long: `filecheck runs declarative file comparison tests.

A test file (TOML or YAML) names a source file, a comparison file and the
pipeline that extracts comparable values from both. Values are paired in
order and checked by a verifier such as relative_error or strict.

Runner settings come from filecheck.yaml when it exists.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", config.DefaultConfigFile, "config file path")
	cmd.PersistentFlags().IntVarP(&opts.verbosity, "verbose", "v", 0, "verbosity: 0 status lines, 1 error preview, 2 everything")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "log file, truncated on start (\"-\" for stderr)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "", "output format (text|json)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return GetExitCode(err)
}
