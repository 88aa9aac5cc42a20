package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fjglira/filecheck/internal/builder"
	"github.com/fjglira/filecheck/internal/config"
	"github.com/fjglira/filecheck/internal/logging"
	"github.com/fjglira/filecheck/internal/pipeline"
	"github.com/fjglira/filecheck/internal/report"
	"github.com/fjglira/filecheck/internal/runner"
	"github.com/fjglira/filecheck/internal/scanner"
	"github.com/fjglira/filecheck/internal/table"
)

// app wires the components shared by the commands.
type app struct {
	cfg      *config.Config
	log      *logging.Sink
	registry *pipeline.Registry
	decoders *table.DefaultRegistry
	builder  *builder.DefaultBuilder
}

// newApp loads the configuration, applies flag overrides and opens the
// log sink. The caller must Close the app.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.LoadOrDefault(opts.configFile, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Output.Verbosity = opts.verbosity
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = opts.logFile
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	sink, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open log", err)
	}

	registry := pipeline.DefaultRegistry()
	b, err := builder.NewBuilder(registry, &cfg.Setup)
	if err != nil {
		_ = sink.Close()
		return nil, WrapExitError(ExitCommandError, "failed to create builder", err)
	}

	sink.WithField("config", opts.configFile).Debug("Configuration loaded")
	return &app{
		cfg:      cfg,
		log:      sink,
		registry: registry,
		decoders: table.NewDefaultRegistry(),
		builder:  b,
	}, nil
}

func (a *app) Close() {
	_ = a.log.Close()
}

// testFiles expands args, or the configured run.files when args is empty.
func (a *app) testFiles(args []string) ([]string, error) {
	if len(args) == 0 {
		args = a.cfg.Run.Files
	}
	if len(args) == 0 {
		return nil, NewExitError(ExitCommandError, "no test files given: pass files or directories, or set run.files in filecheck.yaml")
	}

	recursive := true
	if a.cfg.Input.Recursive != nil {
		recursive = *a.cfg.Input.Recursive
	}
	files, err := scanner.Expand(scanner.NewScanner(recursive), args, a.cfg.Input.Include, a.cfg.Input.Exclude)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to collect test files", err)
	}
	if len(files) == 0 {
		return nil, NewExitError(ExitCommandError, "no test files found")
	}
	a.log.Infof("Found %d test file(s)", len(files))
	return files, nil
}

func (a *app) newRunner(observer runner.Observer) *runner.Runner {
	return runner.NewRunner(a.builder, a.decoders, a.cfg.Setup, a.log,
		runner.WithObserver(observer),
		runner.WithPathsRelativeToSpec(a.cfg.Run.RelativeToSpec))
}

func (a *app) newReporter(out io.Writer) (*report.Reporter, error) {
	opts := report.Options{
		Format:       a.cfg.Output.Format,
		Verbosity:    a.cfg.Output.Verbosity,
		PreviewLimit: a.cfg.Output.PreviewLimit,
	}
	if f, ok := out.(*os.File); ok && report.IsTerminal(f) {
		opts.Interactive = true
		opts.Width = report.TerminalWidth(f)
	}
	r, err := report.New(out, opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create reporter", err)
	}
	return r, nil
}
