package domain

import "fmt"

// CheckError is the operational error type with context. It covers failures
// around a test rather than mismatches found by one.
type CheckError struct {
	Phase      string // "config", "load", "build", "setup", "preprocess"
	File       string
	LineNumber int
	Message    string
	Suggestion string
	Cause      error
}

func (e *CheckError) Error() string {
	s := fmt.Sprintf("[%s]", e.Phase)
	if e.File != "" {
		s += fmt.Sprintf(" %s", e.File)
	}
	if e.LineNumber > 0 {
		s += fmt.Sprintf(":%d", e.LineNumber)
	}
	s += fmt.Sprintf(": %s", e.Message)
	if e.Cause != nil {
		s += fmt.Sprintf(": %v", e.Cause)
	}
	if e.Suggestion != "" {
		s += fmt.Sprintf(" (hint: %s)", e.Suggestion)
	}
	return s
}

func (e *CheckError) Unwrap() error {
	return e.Cause
}

// NewError creates a new CheckError.
func NewError(phase, file string, line int, message string, cause error) *CheckError {
	return &CheckError{
		Phase:      phase,
		File:       file,
		LineNumber: line,
		Message:    message,
		Cause:      cause,
	}
}

// NewErrorWithSuggestion creates a CheckError carrying a hint for the user.
func NewErrorWithSuggestion(phase, file string, line int, message, suggestion string, cause error) *CheckError {
	e := NewError(phase, file, line, message, cause)
	e.Suggestion = suggestion
	return e
}
