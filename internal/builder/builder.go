// Package builder turns decoded test file tables into specifications.
package builder

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/fjglira/filecheck/internal/config"
	"github.com/fjglira/filecheck/internal/pipeline"
	"github.com/fjglira/filecheck/internal/spec"
)

// Builder maps one test file table to its specifications.
type Builder interface {
	Build(configFile string, table map[string]any) []spec.Specification
}

// FileComparisonParams is the typed form of a [file_comparison.parameters] table.
type FileComparisonParams struct {
	ComparisonFile               string
	SourcePreprocessor           string
	ComparisonPreprocessor       string
	SourcePreprocessorParams     map[string]any
	ComparisonPreprocessorParams map[string]any
	Verifier                     string
	VerifierParams               map[string]any
	AllowLengthMismatch          bool
}

type fileComparisonTable struct {
	Description string
	Parameters  FileComparisonParams
}

// methodBuilder builds one specification from a test method table.
type methodBuilder func(header spec.Header, entry map[string]any) spec.Specification

// DefaultBuilder implements Builder.
type DefaultBuilder struct {
	registry        *pipeline.Registry
	blockedPatterns []*regexp.Regexp
	fileComparison  *jsonschema.Schema
	methods         map[string]methodBuilder
}

// NewBuilder creates a DefaultBuilder resolving names against registry.
func NewBuilder(registry *pipeline.Registry, setupCfg *config.SetupConfig) (*DefaultBuilder, error) {
	schema, err := compileSchema("file_comparison", fileComparisonSchema)
	if err != nil {
		return nil, err
	}
	b := &DefaultBuilder{
		registry:       registry,
		fileComparison: schema,
	}
	if setupCfg != nil {
		if b.blockedPatterns, err = CompilePatterns(setupCfg.BlockedPatterns); err != nil {
			return nil, err
		}
	}
	b.methods = map[string]methodBuilder{
		string(spec.KindFileComparison): b.buildFileComparison,
	}
	return b, nil
}

// Methods lists the known test method names.
func (b *DefaultBuilder) Methods() []string {
	names := make([]string, 0, len(b.methods))
	for n := range b.methods {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build produces the specifications declared by table. Configuration
// mistakes never abort the build: each one becomes an ErrorSpec, so a
// single run reports every independent mistake. Test methods are visited
// in key order.
func (b *DefaultBuilder) Build(configFile string, table map[string]any) []spec.Specification {
	header := spec.Header{ConfigFile: configFile}

	sourcePath, ok := table["source_path"].(string)
	if !ok || sourcePath == "" {
		header.Name = "source_path"
		return []spec.Specification{errorSpec(header, "Invalid specification: missing mandatory key `source_path`")}
	}
	header.SourcePath = sourcePath

	if raw, declared := table["setup"]; declared {
		setup, ok := raw.(string)
		if !ok {
			header.Name = "setup"
			return []spec.Specification{errorSpec(header, fmt.Sprintf("Invalid specification: `setup` must be a string, got %T", raw))}
		}
		if err := ValidateCommand(setup, b.blockedPatterns); err != nil {
			header.Name = "setup"
			return []spec.Specification{errorSpec(header, fmt.Sprintf("Invalid specification: %v", err))}
		}
		header.Setup = setup
	}

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var specs []spec.Specification
	for _, key := range keys {
		entry, ok := pipeline.AsParams(table[key])
		if !ok {
			continue
		}
		h := header
		h.Name = key

		build, known := b.methods[key]
		if !known {
			specs = append(specs, errorSpec(h, fmt.Sprintf("Invalid specification: unknown test method `%s`", key)))
			continue
		}

		repetitions := numericKeys(entry)
		if len(repetitions) == 0 {
			specs = append(specs, build(h, entry))
			continue
		}
		for _, n := range repetitions {
			rh := header
			rh.Name = key + "." + n
			sub, ok := pipeline.AsParams(entry[n])
			if !ok {
				specs = append(specs, errorSpec(rh, fmt.Sprintf("Invalid specification: `%s` must be a table, got %T", rh.Name, entry[n])))
				continue
			}
			specs = append(specs, build(rh, sub))
		}
	}
	return specs
}

// buildFileComparison validates the entry, applies the defaults and binds
// the named pipeline pieces.
func (b *DefaultBuilder) buildFileComparison(header spec.Header, entry map[string]any) spec.Specification {
	problems, err := validateTable(b.fileComparison, entry)
	if err != nil {
		return errorSpec(header, fmt.Sprintf("Invalid specification `%s`: %v", header.Name, err))
	}
	if len(problems) > 0 {
		return errorSpec(header, invalidMessage(header.Name, problems))
	}

	p := decodeFileComparison(entry).Parameters

	declared := spec.Declaration{
		SourcePreprocessor:           p.SourcePreprocessor,
		SourcePreprocessorParams:     paramsOrEmpty(p.SourcePreprocessorParams),
		ComparisonPreprocessor:       p.ComparisonPreprocessor,
		ComparisonPreprocessorParams: paramsOrEmpty(p.ComparisonPreprocessorParams),
		Verifier:                     p.Verifier,
		VerifierParams:               paramsOrEmpty(p.VerifierParams),
	}
	// Both sides share the extraction pipeline unless told otherwise.
	if declared.ComparisonPreprocessor == "" {
		declared.ComparisonPreprocessor = declared.SourcePreprocessor
	}
	if p.ComparisonPreprocessorParams == nil {
		declared.ComparisonPreprocessorParams = declared.SourcePreprocessorParams
	}

	var problemsFound []string
	sourcePre, err := b.registry.Preprocessor(declared.SourcePreprocessor, declared.SourcePreprocessorParams)
	if err != nil {
		problemsFound = append(problemsFound, "source_preprocessor: "+err.Error())
	}
	comparisonPre, err := b.registry.Preprocessor(declared.ComparisonPreprocessor, declared.ComparisonPreprocessorParams)
	if err != nil {
		problemsFound = append(problemsFound, "comparison_preprocessor: "+err.Error())
	}
	verifier, err := b.registry.Verifier(declared.Verifier, declared.VerifierParams)
	if err != nil {
		problemsFound = append(problemsFound, "verifier: "+err.Error())
	}
	if len(problemsFound) > 0 {
		return errorSpec(header, invalidMessage(header.Name, problemsFound))
	}

	return spec.FileComparison{
		Header:                 header,
		ComparisonFile:         p.ComparisonFile,
		SourcePreprocessor:     sourcePre,
		ComparisonPreprocessor: comparisonPre,
		Verifier:               verifier,
		AllowLengthMismatch:    p.AllowLengthMismatch,
		Declared:               declared,
	}
}

func errorSpec(header spec.Header, message string) spec.ErrorSpec {
	return spec.ErrorSpec{Header: header, Message: message}
}

func invalidMessage(name string, problems []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Invalid specification `%s`:", name)
	for _, p := range problems {
		sb.WriteString("\n  - ")
		sb.WriteString(p)
	}
	return sb.String()
}

func paramsOrEmpty(m map[string]any) pipeline.Params {
	if m == nil {
		return pipeline.Params{}
	}
	return pipeline.Params(m)
}

// numericKeys returns the purely numeric keys of entry in ascending
// numeric order.
func numericKeys(entry map[string]any) []string {
	var keys []string
	for k := range entry {
		if isDigits(k) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
