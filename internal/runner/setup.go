package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/fjglira/filecheck/internal/config"
	"github.com/fjglira/filecheck/internal/domain"
)

// pipeDrainDelay bounds the wait for output pipes once the shell is gone.
const pipeDrainDelay = time.Second

// SetupOutput is what a setup command left behind.
type SetupOutput struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// SetupRunner runs setup commands through a shell.
type SetupRunner struct {
	shell     string
	shellFlag string
	timeout   time.Duration
}

// NewSetupRunner creates a SetupRunner from the setup configuration.
func NewSetupRunner(cfg config.SetupConfig) *SetupRunner {
	shell, flag := cfg.Shell, cfg.ShellFlag
	if shell == "" {
		shell = "/bin/sh"
	}
	if flag == "" {
		flag = "-c"
	}
	return &SetupRunner{shell: shell, shellFlag: flag, timeout: cfg.SetupTimeout()}
}

// Run executes command in dir and waits for it. A non-zero exit, a start
// failure or an expired timeout is returned as an error; the captured
// output is returned in every case.
func (r *SetupRunner) Run(ctx context.Context, dir, command string) (SetupOutput, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.shell, r.shellFlag, command)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = pipeDrainDelay
	killProcessGroup(cmd)

	start := time.Now()
	err := cmd.Run()
	out := SetupOutput{
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err == nil {
		return out, nil
	}

	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return out, domain.NewErrorWithSuggestion("setup", "", 0,
			fmt.Sprintf("setup command timed out after %s", r.timeout),
			"raise setup.timeout in filecheck.yaml", err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, domain.NewError("setup", "", 0,
			fmt.Sprintf("setup command exited with status %d", out.ExitCode), nil)
	}
	return out, domain.NewErrorWithSuggestion("setup", "", 0, "failed to start setup command",
		fmt.Sprintf("check that %s exists or set setup.shell in filecheck.yaml", r.shell), err)
}
