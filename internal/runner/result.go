package runner

import (
	"time"

	"github.com/fjglira/filecheck/internal/domain"
	"github.com/fjglira/filecheck/internal/spec"
)

// Outcome is the verdict of one specification.
type Outcome string

const (
	Success Outcome = "SUCCESS"
	Failure Outcome = "FAILURE"
)

// State is the last state a specification reached while executing.
type State string

const (
	StatePending      State = "PENDING"
	StateSetupRunning State = "SETUP_RUNNING"
	StateSetupFailed  State = "SETUP_FAILED"
	StateSetupOK      State = "SETUP_OK"
	StateComparing    State = "COMPARING"
	StateSuccess      State = "SUCCESS"
	StateFailure      State = "FAILURE"
	StateErrorSpec    State = "ERROR_SPEC"
	StateMissingInput State = "MISSING_INPUT"
)

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	switch s {
	case StateSetupFailed, StateSuccess, StateFailure, StateErrorSpec, StateMissingInput:
		return true
	}
	return false
}

// Result is the outcome of executing one specification.
type Result struct {
	Spec    spec.Specification
	Outcome Outcome
	State   State
	Errors  []domain.Error
	// Setup holds the captured setup output, nil when no setup ran.
	Setup *SetupOutput
	// Compared counts the chunk pairs handed to the verifier.
	Compared int
	Duration time.Duration
}

// Passed reports whether the specification succeeded.
func (r Result) Passed() bool {
	return r.Outcome == Success
}

// Summary tallies outcomes across a run.
type Summary struct {
	Passed int
	Failed int
}

// Add counts one result.
func (s *Summary) Add(r Result) {
	if r.Passed() {
		s.Passed++
	} else {
		s.Failed++
	}
}

// Total is the number of counted results.
func (s Summary) Total() int {
	return s.Passed + s.Failed
}

// OK reports whether nothing failed.
func (s Summary) OK() bool {
	return s.Failed == 0
}
