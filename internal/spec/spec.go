// Package spec holds the typed form of a declared test.
//
// A Specification is built once from a test file table, executed once and
// then discarded. Values are never modified after construction; running a
// test again means executing the same value again.
package spec

import (
	"github.com/fjglira/filecheck/internal/pipeline"
)

// Kind names the variant of a Specification.
type Kind string

const (
	KindFileComparison Kind = "file_comparison"
	KindError          Kind = "error"
)

// Header is the context shared by every variant.
type Header struct {
	Name       string // test method key, e.g. "file_comparison" or "file_comparison.2"
	ConfigFile string // test file the specification was declared in
	SourcePath string
	Setup      string // shell command run before the test body, empty for none
}

// Specification is one declared test.
type Specification interface {
	Head() Header
	Kind() Kind
	isSpecification()
}

// Declaration records the pipeline names and parameters of a file
// comparison after defaulting, as they were resolved.
type Declaration struct {
	SourcePreprocessor           string
	SourcePreprocessorParams     pipeline.Params
	ComparisonPreprocessor       string
	ComparisonPreprocessorParams pipeline.Params
	Verifier                     string
	VerifierParams               pipeline.Params
}

// FileComparison compares the chunks of the source file with those of a
// comparison file pair by pair.
type FileComparison struct {
	Header
	ComparisonFile         string
	SourcePreprocessor     pipeline.Preprocessor
	ComparisonPreprocessor pipeline.Preprocessor
	Verifier               pipeline.Verifier
	// AllowLengthMismatch restores silent truncation when the two
	// sequences have different lengths.
	AllowLengthMismatch bool
	Declared            Declaration
}

func (s FileComparison) Head() Header     { return s.Header }
func (s FileComparison) Kind() Kind       { return KindFileComparison }
func (s FileComparison) isSpecification() {}

// ErrorSpec stands in for a malformed declaration. It is not executable and
// always fails with Message.
type ErrorSpec struct {
	Header
	Message string
}

func (s ErrorSpec) Head() Header     { return s.Header }
func (s ErrorSpec) Kind() Kind       { return KindError }
func (s ErrorSpec) isSpecification() {}

// DisplayName identifies a specification in reports, e.g.
// "tests/a.toml#file_comparison.2".
func DisplayName(s Specification) string {
	h := s.Head()
	switch {
	case h.ConfigFile == "":
		return h.Name
	case h.Name == "":
		return h.ConfigFile
	default:
		return h.ConfigFile + "#" + h.Name
	}
}
