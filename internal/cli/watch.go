package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fjglira/filecheck/internal/runner"
)

// rerunDelay groups the burst of events an editor produces on save.
const rerunDelay = 200 * time.Millisecond

func newWatchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [test files or directories...]",
		Short: "Run test files and rerun them whenever one changes",
		Long: `Runs the given test files once, then watches them and reruns a test file
each time it is written. Stops on interrupt.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to start file watcher", err)
			}
			defer watcher.Close()

			for _, dir := range watchedDirs(files) {
				if err := watcher.Add(dir); err != nil {
					return WrapExitError(ExitCommandError, "failed to watch "+dir, err)
				}
			}

			r := a.newRunner(reporter)
			return watchLoop(cmd.Context(), watcher, files, r, a.log)
		},
	}
}

// watchLoop runs everything once and then reruns changed test files until
// ctx is done.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, files []string, r *runner.Runner, log logrus.FieldLogger) error {
	r.Run(ctx, files)

	watched := make(map[string]string, len(files))
	for _, f := range files {
		watched[cleanAbs(f)] = f
	}

	changed := make(map[string]bool)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if f, hit := watched[cleanAbs(ev.Name)]; hit && isRerunEvent(ev) {
				changed[f] = true
				fire = time.After(rerunDelay)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warnf("File watcher error: %v", err)
		case <-fire:
			fire = nil
			var rerun []string
			for _, f := range files {
				if changed[f] {
					rerun = append(rerun, f)
				}
			}
			clear(changed)
			log.Infof("Change detected, rerunning %d test file(s)", len(rerun))
			r.Run(ctx, rerun)
		}
	}
}

func isRerunEvent(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// watchedDirs returns the distinct directories holding files.
func watchedDirs(files []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		d := filepath.Dir(cleanAbs(f))
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func cleanAbs(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
