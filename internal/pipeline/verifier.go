package pipeline

import (
	"fmt"
	"math"
	"reflect"

	"github.com/google/go-cmp/cmp"

	"github.com/fjglira/filecheck/internal/domain"
)

// relativeErrorVerifier fails when |calculated-reference|/|reference| >= max_error.
// A zero reference only matches a zero calculated value.
func relativeErrorVerifier(params Params, _ *Registry) (Verifier, error) {
	maxErr, err := maxErrorParam(params)
	if err != nil {
		return nil, err
	}
	return func(calculated, reference any) []domain.Error {
		c, r, err := numericPair(calculated, reference)
		if err != nil {
			return []domain.Error{domain.Errorf("Comparison failed: %v", err)}
		}
		if r == 0 {
			if c == 0 {
				return nil
			}
			return []domain.Error{domain.Errorf("Comparison failed: expected %v, got %v. "+
				"Relative error is undefined for a zero reference.", reference, calculated)}
		}
		rel := math.Abs(c-r) / math.Abs(r)
		if rel < maxErr {
			return nil
		}
		return []domain.Error{domain.Errorf("Comparison failed: expected %v, got %v. "+
			"Relative error of %v exceeds %v.", reference, calculated, rel, maxErr)}
	}, nil
}

// absoluteErrorVerifier fails when |calculated-reference| >= max_error.
func absoluteErrorVerifier(params Params, _ *Registry) (Verifier, error) {
	maxErr, err := maxErrorParam(params)
	if err != nil {
		return nil, err
	}
	return func(calculated, reference any) []domain.Error {
		c, r, err := numericPair(calculated, reference)
		if err != nil {
			return []domain.Error{domain.Errorf("Comparison failed: %v", err)}
		}
		abs := math.Abs(c - r)
		if abs < maxErr {
			return nil
		}
		return []domain.Error{domain.Errorf("Comparison failed: expected %v, got %v. "+
			"Absolute error of %v exceeds %v.", reference, calculated, abs, maxErr)}
	}, nil
}

// strictVerifier requires the same dynamic type and an equal value, so
// int64(1) and float64(1) do not match.
func strictVerifier(params Params, _ *Registry) (Verifier, error) {
	if err := params.Only(); err != nil {
		return nil, err
	}
	return func(calculated, reference any) []domain.Error {
		if cmp.Equal(calculated, reference) {
			return nil
		}
		if isList(calculated) || isList(reference) {
			return []domain.Error{domain.Errorf("Comparison failed: expected %v, got %v (-expected +got):\n%s",
				reference, calculated, cmp.Diff(reference, calculated))}
		}
		if calculated != nil && reference != nil && reflect.TypeOf(calculated) != reflect.TypeOf(reference) {
			return []domain.Error{domain.Errorf("Comparison failed: expected %v (%T), got %v (%T).",
				reference, reference, calculated, calculated)}
		}
		return []domain.Error{domain.Errorf("Comparison failed: expected %v, got %v.", reference, calculated)}
	}, nil
}

// elementwiseVerifier pairs two lists positionally and applies
// verifiers[i mod len(verifiers)] to the i-th pair.
func elementwiseVerifier(params Params, reg *Registry) (Verifier, error) {
	if err := params.Only("verifiers", "allow_length_mismatch"); err != nil {
		return nil, err
	}
	allowMismatch, err := params.Bool("allow_length_mismatch", false)
	if err != nil {
		return nil, err
	}
	descriptors, err := params.List("verifiers")
	if err != nil {
		return nil, err
	}
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("parameter \"verifiers\" must name at least one verifier")
	}

	verifiers := make([]Verifier, 0, len(descriptors))
	for i, d := range descriptors {
		name, args, err := verifierDescriptor(d)
		if err != nil {
			return nil, fmt.Errorf("verifiers[%d]: %w", i, err)
		}
		v, err := reg.Verifier(name, args)
		if err != nil {
			return nil, fmt.Errorf("verifiers[%d]: %w", i, err)
		}
		verifiers = append(verifiers, v)
	}

	return func(calculated, reference any) []domain.Error {
		cs, ok := asList(calculated)
		if !ok {
			return []domain.Error{domain.Errorf("Comparison failed: expected a list of computed values, got %T", calculated)}
		}
		rs, ok := asList(reference)
		if !ok {
			return []domain.Error{domain.Errorf("Comparison failed: expected a list of reference values, got %T", reference)}
		}

		var errs []domain.Error
		n := min(len(cs), len(rs))
		for i := 0; i < n; i++ {
			for _, e := range verifiers[i%len(verifiers)](cs[i], rs[i]) {
				e.Message = fmt.Sprintf("element %d: %s", i, e.Message)
				errs = append(errs, e)
			}
		}
		if len(cs) != len(rs) && !allowMismatch {
			errs = append(errs, domain.Errorf("Length mismatch: %d computed values, %d reference values.", len(cs), len(rs)))
		}
		return errs
	}, nil
}

func ignoreVerifier(params Params, _ *Registry) (Verifier, error) {
	if err := params.Only(); err != nil {
		return nil, err
	}
	return func(any, any) []domain.Error { return nil }, nil
}

func maxErrorParam(params Params) (float64, error) {
	if err := params.Only("max_error"); err != nil {
		return 0, err
	}
	maxErr, err := params.Float("max_error")
	if err != nil {
		return 0, err
	}
	if maxErr < 0 || math.IsNaN(maxErr) {
		return 0, fmt.Errorf("parameter \"max_error\" must be non-negative, got %v", maxErr)
	}
	return maxErr, nil
}

// verifierDescriptor accepts either a bare name or a {name, args} table.
func verifierDescriptor(d any) (string, Params, error) {
	if name, ok := d.(string); ok {
		return name, Params{}, nil
	}
	table, ok := AsParams(d)
	if !ok {
		return "", nil, fmt.Errorf("expected a verifier name or {name, args} table, got %T", d)
	}
	if err := table.Only("name", "args"); err != nil {
		return "", nil, err
	}
	name, err := table.String("name", "")
	if err != nil {
		return "", nil, err
	}
	if name == "" {
		return "", nil, fmt.Errorf("missing verifier name")
	}
	args, err := table.Map("args")
	if err != nil {
		return "", nil, err
	}
	return name, args, nil
}

func numericPair(calculated, reference any) (float64, float64, error) {
	c, ok := toFloat(calculated)
	if !ok {
		return 0, 0, fmt.Errorf("computed value %v (%T) is not a number", calculated, calculated)
	}
	r, ok := toFloat(reference)
	if !ok {
		return 0, 0, fmt.Errorf("reference value %v (%T) is not a number", reference, reference)
	}
	return c, r, nil
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	if !isList(v) {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
