package runner

import "github.com/fjglira/filecheck/internal/spec"

// Observer follows the progress of a run. Callbacks are made from the
// run loop, one at a time.
type Observer interface {
	FileStarted(path string)
	SpecStarted(s spec.Specification)
	SetupStarted(s spec.Specification, command string)
	SetupFinished(s spec.Specification, out SetupOutput)
	SpecFinished(r Result)
	RunFinished(summary Summary)
}

// NopObserver ignores every callback.
type NopObserver struct{}

func (NopObserver) FileStarted(string)                           {}
func (NopObserver) SpecStarted(spec.Specification)               {}
func (NopObserver) SetupStarted(spec.Specification, string)      {}
func (NopObserver) SetupFinished(spec.Specification, SetupOutput) {}
func (NopObserver) SpecFinished(Result)                          {}
func (NopObserver) RunFinished(Summary)                          {}
