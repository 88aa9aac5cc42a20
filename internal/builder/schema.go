package builder

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fjglira/filecheck/internal/pipeline"
)

//go:embed schemas/file_comparison.json
var fileComparisonSchema string

var printer = message.NewPrinter(language.English)

// compileSchema compiles an embedded JSON schema document.
func compileSchema(name, schemaJSON string) (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s schema: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	url := "filecheck://schemas/" + name + ".json"
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("failed to add %s schema: %w", name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s schema: %w", name, err)
	}
	return schema, nil
}

// validateTable checks table against schema and returns one message per
// violated field, sorted. Nil means the table is valid.
func validateTable(schema *jsonschema.Schema, table map[string]any) ([]string, error) {
	if table == nil {
		table = map[string]any{}
	}
	err := schema.Validate(normalize(table))
	if err == nil {
		return nil, nil
	}

	var valErr *jsonschema.ValidationError
	if !errors.As(err, &valErr) {
		return nil, err
	}
	var problems []string
	collectLeaves(valErr, &problems)
	sort.Strings(problems)
	return problems, nil
}

func collectLeaves(e *jsonschema.ValidationError, out *[]string) {
	if len(e.Causes) == 0 {
		*out = append(*out, fmt.Sprintf("at %s: %s", instancePath(e.InstanceLocation), e.ErrorKind.LocalizedString(printer)))
		return
	}
	for _, c := range e.Causes {
		collectLeaves(c, out)
	}
}

func instancePath(location []string) string {
	if len(location) == 0 {
		return "/"
	}
	return "/" + strings.Join(location, "/")
}

// normalize converts a decoded table into the value shapes the validator
// understands. Numbers keep their decoded type, so int64 stays int64 and
// infinities are accepted; nested tables become map[string]any and
// decoder specific scalars such as TOML dates become strings.
func normalize(v any) any {
	switch t := v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return t
	case pipeline.Params:
		return normalize(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// decodeFileComparison reads a validated file_comparison table. Parameter
// tables are kept as declared.
func decodeFileComparison(entry map[string]any) fileComparisonTable {
	var decl fileComparisonTable
	decl.Description, _ = entry["description"].(string)

	params, _ := pipeline.AsParams(entry["parameters"])
	p := &decl.Parameters
	p.ComparisonFile, _ = params["comparison_file"].(string)
	p.SourcePreprocessor, _ = params["source_preprocessor"].(string)
	p.ComparisonPreprocessor, _ = params["comparison_preprocessor"].(string)
	p.Verifier, _ = params["verifier"].(string)
	p.AllowLengthMismatch, _ = params["allow_length_mismatch"].(bool)
	p.SourcePreprocessorParams = tableParam(params["source_preprocessor_params"])
	p.ComparisonPreprocessorParams = tableParam(params["comparison_preprocessor_params"])
	p.VerifierParams = tableParam(params["verifier_params"])
	return decl
}

func tableParam(v any) map[string]any {
	m, ok := pipeline.AsParams(v)
	if !ok {
		return nil
	}
	return map[string]any(m)
}
