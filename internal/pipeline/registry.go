package pipeline

import (
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/fjglira/filecheck/internal/domain"
)

// Chunk is one value extracted from an artifact together with its location.
type Chunk struct {
	Location domain.Location
	Value    any
}

// Preprocessor turns a file into a lazy, single-pass sequence of chunks.
// Parameters are already bound. A failure is yielded as an error and ends
// the sequence.
type Preprocessor func(path string) iter.Seq2[Chunk, error]

// Verifier compares a computed value against a reference value. An empty
// result means the values match.
type Verifier func(computed, reference any) []domain.Error

// PreprocessorFactory validates params and binds them into a Preprocessor.
type PreprocessorFactory func(params Params) (Preprocessor, error)

// VerifierFactory validates params and binds them into a Verifier. The
// registry is passed along so composite verifiers can resolve their parts.
type VerifierFactory func(params Params, reg *Registry) (Verifier, error)

// UnknownNameError is returned when a lookup names nothing registered.
type UnknownNameError struct {
	Kind string // "preprocessor" or "verifier"
	Name string
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// Registry maps names to preprocessor and verifier factories.
type Registry struct {
	mu            sync.RWMutex
	preprocessors map[string]PreprocessorFactory
	verifiers     map[string]VerifierFactory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		preprocessors: make(map[string]PreprocessorFactory),
		verifiers:     make(map[string]VerifierFactory),
	}
}

// DefaultRegistry returns a Registry holding every built-in entry.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterPreprocessor("lines", linesPreprocessor)
	r.RegisterPreprocessor("blocks", blocksPreprocessor)
	r.RegisterPreprocessor("markdown_blocks", markdownBlocksPreprocessor)
	r.RegisterPreprocessor("asciidoc_blocks", asciidocBlocksPreprocessor)

	r.RegisterVerifier("relative_error", relativeErrorVerifier)
	r.RegisterVerifier("absolute_error", absoluteErrorVerifier)
	r.RegisterVerifier("strict", strictVerifier)
	r.RegisterVerifier("elementwise", elementwiseVerifier)
	r.RegisterVerifier("ignore", ignoreVerifier)
	return r
}

// RegisterPreprocessor adds or replaces a named preprocessor.
func (r *Registry) RegisterPreprocessor(name string, f PreprocessorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preprocessors[name] = f
}

// RegisterVerifier adds or replaces a named verifier.
func (r *Registry) RegisterVerifier(name string, f VerifierFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifiers[name] = f
}

// HasPreprocessor reports whether name is registered as a preprocessor.
func (r *Registry) HasPreprocessor(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.preprocessors[name]
	return ok
}

// HasVerifier reports whether name is registered as a verifier.
func (r *Registry) HasVerifier(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.verifiers[name]
	return ok
}

// Preprocessor resolves name and binds params.
func (r *Registry) Preprocessor(name string, params Params) (Preprocessor, error) {
	r.mu.RLock()
	f, ok := r.preprocessors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownNameError{Kind: "preprocessor", Name: name}
	}
	p, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("preprocessor %q: %w", name, err)
	}
	return p, nil
}

// Verifier resolves name and binds params.
func (r *Registry) Verifier(name string, params Params) (Verifier, error) {
	r.mu.RLock()
	f, ok := r.verifiers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownNameError{Kind: "verifier", Name: name}
	}
	v, err := f(params, r)
	if err != nil {
		return nil, fmt.Errorf("verifier %q: %w", name, err)
	}
	return v, nil
}

// PreprocessorNames lists registered preprocessors in sorted order.
func (r *Registry) PreprocessorNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.preprocessors))
	for n := range r.preprocessors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// VerifierNames lists registered verifiers in sorted order.
func (r *Registry) VerifierNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.verifiers))
	for n := range r.verifiers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
