package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Stage is one named transform of a processing pipeline.
type Stage func(v any) (any, error)

// Predicate decides whether a line starts or stops extraction.
type Predicate func(line string) (bool, error)

type stageFactory func(args Params) (Stage, error)

type predicateFactory func(args Params) (Predicate, error)

var stageFactories map[string]stageFactory

var predicateFactories map[string]predicateFactory

func init() {
	stageFactories = map[string]stageFactory{
		"strip":         stringStage(strings.TrimSpace),
		"lstrip":        stringStage(func(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) }),
		"rstrip":        stringStage(func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }),
		"lower":         stringStage(strings.ToLower),
		"upper":         stringStage(strings.ToUpper),
		"split":         splitStage,
		"field":         fieldStage,
		"slice":         sliceStage,
		"regex_extract": regexExtractStage,
		"replace":       replaceStage,
		"trim_prefix":   trimStage("prefix", strings.TrimPrefix),
		"trim_suffix":   trimStage("suffix", strings.TrimSuffix),
		"to_float":      toFloatStage,
		"to_int":        toIntStage,
		"each":          eachStage,
		"expr":          exprStage,
	}
	predicateFactories = map[string]predicateFactory{
		"always":   constPredicate(true),
		"never":    constPredicate(false),
		"empty":    linePredicate(func(l string) bool { return strings.TrimSpace(l) == "" }),
		"nonempty": linePredicate(func(l string) bool { return strings.TrimSpace(l) != "" }),
		"contains": textPredicate(strings.Contains),
		"prefix":   textPredicate(strings.HasPrefix),
		"suffix":   textPredicate(strings.HasSuffix),
		"regex":    regexPredicate,
		"not":      notPredicate,
		"expr":     exprPredicate,
	}
}

// ParsePipeline builds the left-to-right composition of the declared stages.
// An empty pipeline is the identity.
func ParsePipeline(decl []any) (Stage, error) {
	stages := make([]Stage, 0, len(decl))
	for i, d := range decl {
		s, err := ParseStage(d)
		if err != nil {
			return nil, fmt.Errorf("processing_pipeline[%d]: %w", i, err)
		}
		stages = append(stages, s)
	}
	return func(v any) (any, error) {
		var err error
		for _, s := range stages {
			if v, err = s(v); err != nil {
				return nil, err
			}
		}
		return v, nil
	}, nil
}

// ParseStage builds one stage from a bare name or a {name, ...args} table.
func ParseStage(decl any) (Stage, error) {
	name, args, err := namedDecl(decl)
	if err != nil {
		return nil, err
	}
	f, ok := stageFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown stage %q", name)
	}
	s, err := f(args)
	if err != nil {
		return nil, fmt.Errorf("stage %q: %w", name, err)
	}
	return s, nil
}

// ParsePredicate builds a predicate. A nil or empty declaration yields def.
func ParsePredicate(decl any, def bool) (Predicate, error) {
	if decl == nil || decl == "" {
		return func(string) (bool, error) { return def, nil }, nil
	}
	name, args, err := namedDecl(decl)
	if err != nil {
		return nil, err
	}
	f, ok := predicateFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown predicate %q", name)
	}
	p, err := f(args)
	if err != nil {
		return nil, fmt.Errorf("predicate %q: %w", name, err)
	}
	return p, nil
}

// StageNames lists the available transforms.
func StageNames() []string {
	return sortedKeys(stageFactories)
}

// PredicateNames lists the available predicates.
func PredicateNames() []string {
	return sortedKeys(predicateFactories)
}

func namedDecl(decl any) (string, Params, error) {
	if name, ok := decl.(string); ok {
		return name, Params{}, nil
	}
	table, ok := AsParams(decl)
	if !ok {
		return "", nil, fmt.Errorf("expected a name or a {name = ...} table, got %T", decl)
	}
	name, err := table.String("name", "")
	if err != nil {
		return "", nil, err
	}
	if name == "" {
		return "", nil, fmt.Errorf("missing name")
	}
	args := make(Params, len(table)-1)
	for k, v := range table {
		if k != "name" {
			args[k] = v
		}
	}
	return name, args, nil
}

func stringStage(fn func(string) string) stageFactory {
	return func(args Params) (Stage, error) {
		if err := args.Only(); err != nil {
			return nil, err
		}
		return func(v any) (any, error) {
			s, err := asString(v)
			if err != nil {
				return nil, err
			}
			return fn(s), nil
		}, nil
	}
}

func trimStage(key string, fn func(s, affix string) string) stageFactory {
	return func(args Params) (Stage, error) {
		if err := args.Only(key); err != nil {
			return nil, err
		}
		affix, err := args.String(key, "")
		if err != nil {
			return nil, err
		}
		return func(v any) (any, error) {
			s, err := asString(v)
			if err != nil {
				return nil, err
			}
			return fn(s, affix), nil
		}, nil
	}
}

// splitStage splits on sep, or on runs of whitespace when sep is empty.
func splitStage(args Params) (Stage, error) {
	if err := args.Only("sep"); err != nil {
		return nil, err
	}
	sep, err := args.String("sep", "")
	if err != nil {
		return nil, err
	}
	return func(v any) (any, error) {
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		var parts []string
		if sep == "" {
			parts = strings.Fields(s)
		} else {
			parts = strings.Split(s, sep)
		}
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, nil
	}, nil
}

// fieldStage picks one list element; negative indexes count from the end.
func fieldStage(args Params) (Stage, error) {
	if err := args.Only("index"); err != nil {
		return nil, err
	}
	if !args.Has("index") {
		return nil, fmt.Errorf("missing parameter %q", "index")
	}
	index, err := args.Int("index", 0)
	if err != nil {
		return nil, err
	}
	return func(v any) (any, error) {
		l, ok := asList(v)
		if !ok {
			return nil, fmt.Errorf("field: expected a list, got %T", v)
		}
		i := index
		if i < 0 {
			i += len(l)
		}
		if i < 0 || i >= len(l) {
			return nil, fmt.Errorf("field: index %d out of range for %d values", index, len(l))
		}
		return l[i], nil
	}, nil
}

// sliceStage keeps list elements [start, end); an absent end means the rest.
func sliceStage(args Params) (Stage, error) {
	if err := args.Only("start", "end"); err != nil {
		return nil, err
	}
	start, err := args.Int("start", 0)
	if err != nil {
		return nil, err
	}
	end, err := args.Int("end", -1)
	if err != nil {
		return nil, err
	}
	hasEnd := args.Has("end")
	return func(v any) (any, error) {
		l, ok := asList(v)
		if !ok {
			return nil, fmt.Errorf("slice: expected a list, got %T", v)
		}
		hi := len(l)
		if hasEnd {
			hi = min(end, len(l))
			if end < 0 {
				hi = max(len(l)+end, 0)
			}
		}
		lo := min(max(start, 0), hi)
		return l[lo:hi], nil
	}, nil
}

func regexExtractStage(args Params) (Stage, error) {
	if err := args.Only("pattern", "group"); err != nil {
		return nil, err
	}
	pattern, err := args.String("pattern", "")
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	group, err := args.Int("group", 0)
	if err != nil {
		return nil, err
	}
	if group < 0 || group > re.NumSubexp() {
		return nil, fmt.Errorf("group %d out of range, pattern has %d group(s)", group, re.NumSubexp())
	}
	return func(v any) (any, error) {
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		m := re.FindStringSubmatch(s)
		if m == nil {
			return nil, fmt.Errorf("regex_extract: pattern %q does not match %q", pattern, s)
		}
		return m[group], nil
	}, nil
}

func replaceStage(args Params) (Stage, error) {
	if err := args.Only("old", "new"); err != nil {
		return nil, err
	}
	old, err := args.String("old", "")
	if err != nil {
		return nil, err
	}
	if old == "" {
		return nil, fmt.Errorf("missing parameter %q", "old")
	}
	repl, err := args.String("new", "")
	if err != nil {
		return nil, err
	}
	return func(v any) (any, error) {
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		return strings.ReplaceAll(s, old, repl), nil
	}, nil
}

func toFloatStage(args Params) (Stage, error) {
	if err := args.Only(); err != nil {
		return nil, err
	}
	return func(v any) (any, error) {
		if f, ok := toFloat(v); ok {
			return f, nil
		}
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("to_float: %q is not a number", s)
		}
		return f, nil
	}, nil
}

func toIntStage(args Params) (Stage, error) {
	if err := args.Only(); err != nil {
		return nil, err
	}
	return func(v any) (any, error) {
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("to_int: %q is not an integer", s)
		}
		return n, nil
	}, nil
}

// eachStage maps a stage over every element of a list.
func eachStage(args Params) (Stage, error) {
	if err := args.Only("stage"); err != nil {
		return nil, err
	}
	decl, ok := args["stage"]
	if !ok {
		return nil, fmt.Errorf("missing parameter %q", "stage")
	}
	inner, err := ParseStage(decl)
	if err != nil {
		return nil, err
	}
	return func(v any) (any, error) {
		l, ok := asList(v)
		if !ok {
			return nil, fmt.Errorf("each: expected a list, got %T", v)
		}
		out := make([]any, len(l))
		for i, e := range l {
			r, err := inner(e)
			if err != nil {
				return nil, fmt.Errorf("each[%d]: %w", i, err)
			}
			out[i] = r
		}
		return out, nil
	}, nil
}

func constPredicate(b bool) predicateFactory {
	return func(args Params) (Predicate, error) {
		if err := args.Only(); err != nil {
			return nil, err
		}
		return func(string) (bool, error) { return b, nil }, nil
	}
}

func linePredicate(fn func(string) bool) predicateFactory {
	return func(args Params) (Predicate, error) {
		if err := args.Only(); err != nil {
			return nil, err
		}
		return func(line string) (bool, error) { return fn(line), nil }, nil
	}
}

func textPredicate(fn func(s, text string) bool) predicateFactory {
	return func(args Params) (Predicate, error) {
		if err := args.Only("text"); err != nil {
			return nil, err
		}
		text, err := args.String("text", "")
		if err != nil {
			return nil, err
		}
		return func(line string) (bool, error) { return fn(line, text), nil }, nil
	}
}

func regexPredicate(args Params) (Predicate, error) {
	if err := args.Only("pattern"); err != nil {
		return nil, err
	}
	pattern, err := args.String("pattern", "")
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	return func(line string) (bool, error) { return re.MatchString(line), nil }, nil
}

func notPredicate(args Params) (Predicate, error) {
	if err := args.Only("predicate"); err != nil {
		return nil, err
	}
	decl, ok := args["predicate"]
	if !ok {
		return nil, fmt.Errorf("missing parameter %q", "predicate")
	}
	inner, err := ParsePredicate(decl, false)
	if err != nil {
		return nil, err
	}
	return func(line string) (bool, error) {
		b, err := inner(line)
		return !b, err
	}, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected text, got %v (%T)", v, v)
	}
	return s, nil
}
