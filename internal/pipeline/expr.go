package pipeline

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprEnv is the whole environment an expression can see: the current
// value and, when it is text, the same value as line.
func exprEnv(v any) map[string]any {
	line, _ := v.(string)
	return map[string]any{"value": v, "line": line}
}

func compileExpr(args Params, opts ...expr.Option) (*vm.Program, string, error) {
	if err := args.Only("expression"); err != nil {
		return nil, "", err
	}
	source, err := args.String("expression", "")
	if err != nil {
		return nil, "", err
	}
	if source == "" {
		return nil, "", fmt.Errorf("missing parameter %q", "expression")
	}
	// value is left untyped so expressions may treat it as text, number or list
	env := map[string]any{"value": nil, "line": ""}
	opts = append([]expr.Option{expr.Env(env)}, opts...)
	program, err := expr.Compile(source, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("invalid expression %q: %w", source, err)
	}
	return program, source, nil
}

// exprStage evaluates a sandboxed expr-lang expression over the value.
func exprStage(args Params) (Stage, error) {
	program, source, err := compileExpr(args)
	if err != nil {
		return nil, err
	}
	return func(v any) (any, error) {
		out, err := expr.Run(program, exprEnv(v))
		if err != nil {
			return nil, fmt.Errorf("expr %q: %w", source, err)
		}
		return out, nil
	}, nil
}

// exprPredicate is the predicate form of exprStage; the expression must
// yield a boolean, e.g. `line matches "^#"`.
func exprPredicate(args Params) (Predicate, error) {
	program, source, err := compileExpr(args, expr.AsBool())
	if err != nil {
		return nil, err
	}
	return func(line string) (bool, error) {
		out, err := expr.Run(program, exprEnv(line))
		if err != nil {
			return false, fmt.Errorf("expr %q: %w", source, err)
		}
		b, _ := out.(bool)
		return b, nil
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
