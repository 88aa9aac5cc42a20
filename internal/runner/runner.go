// Package runner executes specifications one at a time and aggregates
// their outcomes.
package runner

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/filecheck/internal/builder"
	"github.com/fjglira/filecheck/internal/config"
	"github.com/fjglira/filecheck/internal/domain"
	"github.com/fjglira/filecheck/internal/pipeline"
	"github.com/fjglira/filecheck/internal/spec"
	"github.com/fjglira/filecheck/internal/table"
)

// Runner is the execution engine.
type Runner struct {
	builder        builder.Builder
	decoders       table.Registry
	setup          *SetupRunner
	relativeToSpec bool
	observer       Observer
	log            logrus.FieldLogger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithObserver reports progress to o.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithPathsRelativeToSpec resolves relative source and comparison paths,
// and runs setup, in the directory of the declaring test file.
func WithPathsRelativeToSpec(enabled bool) Option {
	return func(r *Runner) {
		r.relativeToSpec = enabled
	}
}

// NewRunner creates a Runner. Specifications are built by b from tables
// decoded through decoders.
func NewRunner(b builder.Builder, decoders table.Registry, setupCfg config.SetupConfig, log logrus.FieldLogger, opts ...Option) *Runner {
	r := &Runner{
		builder:  b,
		decoders: decoders,
		setup:    NewSetupRunner(setupCfg),
		observer: NopObserver{},
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every test file in order and returns the tally.
func (r *Runner) Run(ctx context.Context, paths []string) Summary {
	var summary Summary
	for _, path := range paths {
		if ctx.Err() != nil {
			r.log.Warn("Run cancelled")
			break
		}
		for _, res := range r.RunFile(ctx, path) {
			summary.Add(res)
		}
	}
	r.log.WithFields(logrus.Fields{
		"passed": summary.Passed,
		"failed": summary.Failed,
		"total":  summary.Total(),
	}).Info("Run complete")
	r.observer.RunFinished(summary)
	return summary
}

// RunFile loads, builds and executes the specifications of one test file.
func (r *Runner) RunFile(ctx context.Context, path string) []Result {
	r.observer.FileStarted(path)
	specs := r.Load(path)
	if len(specs) == 0 {
		r.log.Warnf("No test methods declared in %s", path)
		return nil
	}

	results := make([]Result, 0, len(specs))
	for _, s := range specs {
		results = append(results, r.Execute(ctx, s))
	}
	return results
}

// Load decodes and builds one test file without executing it. A file
// that cannot be decoded yields a single ErrorSpec.
func (r *Runner) Load(path string) []spec.Specification {
	r.log.Debugf("Loading: %s", path)
	t, err := table.Load(r.decoders, path)
	if err != nil {
		r.log.WithError(err).Errorf("Failed to load %s", path)
		return []spec.Specification{spec.ErrorSpec{
			Header:  spec.Header{ConfigFile: path},
			Message: err.Error(),
		}}
	}
	specs := r.builder.Build(path, t)
	r.log.Debugf("Built %d specification(s) from %s", len(specs), path)
	return specs
}

// Execute runs one specification to completion.
func (r *Runner) Execute(ctx context.Context, s spec.Specification) Result {
	start := time.Now()
	r.observer.SpecStarted(s)

	var res Result
	switch s := s.(type) {
	case spec.ErrorSpec:
		res = Result{
			Outcome: Failure,
			State:   StateErrorSpec,
			Errors:  []domain.Error{{Message: s.Message}},
		}
	case spec.FileComparison:
		res = r.executeFileComparison(ctx, s)
	default:
		res = Result{
			Outcome: Failure,
			State:   StateFailure,
			Errors:  []domain.Error{domain.Errorf("unsupported specification kind %q", s.Kind())},
		}
	}
	res.Spec = s
	res.Duration = time.Since(start)

	r.logResult(res)
	r.observer.SpecFinished(res)
	return res
}

func (r *Runner) executeFileComparison(ctx context.Context, s spec.FileComparison) Result {
	res := Result{State: StatePending}
	dir := r.baseDir(s.Header)

	if s.Setup != "" {
		res.State = StateSetupRunning
		r.observer.SetupStarted(s, s.Setup)
		out, err := r.setup.Run(ctx, dir, s.Setup)
		res.Setup = &out
		r.observer.SetupFinished(s, out)
		if err != nil {
			res.State = StateSetupFailed
			res.Outcome = Failure
			res.Errors = []domain.Error{{Message: err.Error()}}
			return res
		}
		res.State = StateSetupOK
	}

	sourcePath := resolve(dir, s.SourcePath)
	comparisonPath := resolve(dir, s.ComparisonFile)
	for _, p := range []string{sourcePath, comparisonPath} {
		if _, err := os.Stat(p); err != nil {
			res.State = StateMissingInput
			res.Outcome = Failure
			res.Errors = []domain.Error{domain.Errorf("Input file %s is not accessible: %v", p, err)}
			return res
		}
	}

	res.State = StateComparing
	res.Errors, res.Compared = r.compare(ctx, s, sourcePath, comparisonPath)
	if len(res.Errors) == 0 {
		res.State, res.Outcome = StateSuccess, Success
	} else {
		res.State, res.Outcome = StateFailure, Failure
	}
	return res
}

// compare zips both chunk sequences and verifies each pair. Verifier
// errors are relocated to the source chunk they came from.
func (r *Runner) compare(ctx context.Context, s spec.FileComparison, sourcePath, comparisonPath string) ([]domain.Error, int) {
	nextSource, stopSource := iter.Pull2(s.SourcePreprocessor(sourcePath))
	defer stopSource()
	nextRef, stopRef := iter.Pull2(s.ComparisonPreprocessor(comparisonPath))
	defer stopRef()

	var errs []domain.Error
	compared := 0
	for {
		if err := ctx.Err(); err != nil {
			return append(errs, domain.Errorf("Comparison interrupted: %v", err)), compared
		}

		c, cerr, cok := nextSource()
		if cerr != nil {
			return append(errs, domain.Error{Message: cerr.Error(), Location: c.Location}), compared
		}
		ref, rerr, rok := nextRef()
		if rerr != nil {
			return append(errs, domain.Error{Message: rerr.Error()}), compared
		}

		if !cok || !rok {
			if cok != rok && !s.AllowLengthMismatch {
				errs = append(errs, lengthMismatch(c, cok, compared))
			}
			return errs, compared
		}

		compared++
		for _, e := range s.Verifier(c.Value, ref.Value) {
			errs = append(errs, e.WithLocation(c.Location))
		}
	}
}

func lengthMismatch(c pipeline.Chunk, sourceLonger bool, compared int) domain.Error {
	if sourceLonger {
		return domain.Error{
			Message:  fmt.Sprintf("Length mismatch: source has more values than the comparison file (%d compared).", compared),
			Location: c.Location,
		}
	}
	return domain.Errorf("Length mismatch: comparison file has more values than the source (%d compared).", compared)
}

func (r *Runner) baseDir(h spec.Header) string {
	if !r.relativeToSpec || h.ConfigFile == "" {
		return ""
	}
	return filepath.Dir(h.ConfigFile)
}

func resolve(dir, path string) string {
	if dir == "" || path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func (r *Runner) logResult(res Result) {
	entry := r.log.WithFields(logrus.Fields{
		"spec":     spec.DisplayName(res.Spec),
		"state":    res.State,
		"compared": res.Compared,
		"errors":   len(res.Errors),
		"duration": res.Duration.String(),
	})
	if res.Passed() {
		entry.Info("PASS")
	} else {
		entry.Warn("FAIL")
	}
	for _, e := range res.Errors {
		entry.Debug(e.BriefSummary())
	}
	if res.Setup != nil {
		entry.WithField("exit_code", res.Setup.ExitCode).Debugf("setup stdout:\n%s\nsetup stderr:\n%s", res.Setup.Stdout, res.Setup.Stderr)
	}
}
