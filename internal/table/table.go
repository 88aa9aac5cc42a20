// Package table decodes test files into generic tables. The decoder is
// chosen by file extension; the rest of the program only sees
// map[string]any.
package table

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fjglira/filecheck/internal/domain"
)

// Decoder turns the content of a test file into a table.
type Decoder interface {
	Decode(filePath string, content []byte) (map[string]any, error)
	SupportedExtensions() []string
}

// Registry maps file extensions to decoders.
type Registry interface {
	Register(decoder Decoder)
	DecoderFor(extension string) (Decoder, error)
}

// DefaultRegistry is a thread-safe decoder registry with fallback support.
type DefaultRegistry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
	fallback Decoder
}

// NewRegistry creates a new DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		decoders: make(map[string]Decoder),
	}
}

// NewDefaultRegistry returns a registry with the TOML and YAML decoders,
// TOML serving unknown extensions.
func NewDefaultRegistry() *DefaultRegistry {
	r := NewRegistry()
	toml := NewTOMLDecoder()
	r.Register(toml)
	r.Register(NewYAMLDecoder())
	r.SetFallback(toml)
	return r
}

// Register adds a decoder to the registry for each of its supported extensions.
func (r *DefaultRegistry) Register(d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range d.SupportedExtensions() {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		r.decoders[ext] = d
	}
}

// SetFallback sets the decoder used for unregistered extensions.
func (r *DefaultRegistry) SetFallback(d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = d
}

// DecoderFor returns the decoder registered for the given file extension.
// If no decoder is found, it returns the fallback decoder if set.
func (r *DefaultRegistry) DecoderFor(extension string) (Decoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	if d, ok := r.decoders[ext]; ok {
		return d, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("no decoder registered for extension %q", extension)
}

// Extensions lists the registered extensions with a leading dot.
func (r *DefaultRegistry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, "."+ext)
	}
	sort.Strings(exts)
	return exts
}

// Load reads and decodes the test file at path.
func Load(reg Registry, path string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewErrorWithSuggestion("load", path, 0, "failed to read test file",
			"check the path passed on the command line", err)
	}
	d, err := reg.DecoderFor(filepath.Ext(path))
	if err != nil {
		return nil, domain.NewError("load", path, 0, "unsupported test file", err)
	}
	t, err := d.Decode(path, content)
	if err != nil {
		return nil, err
	}
	if t == nil {
		t = map[string]any{}
	}
	return t, nil
}
