// Package validate implements the strict-mode input validator: a coarse,
// defence-in-depth policy scan over a submitted function's textual form
// plus a reflection-based check that arguments are transport-safe.
//
// It is a policy hint, not a sandbox — isolation of the actual execution
// is the worker's job (internal/worker recovers from panics instead).
package validate

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/osmike/taskpool/internal/domain"
	"github.com/osmike/taskpool/internal/errs"
)

// disallowedPatterns are the case-insensitive substrings/patterns that
// fail a submission outright. Each entry names the policy it encodes.
var disallowedPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"dynamic module load", regexp.MustCompile(`(?i)require\s*\(`)},
	{"dynamic module load (import)", regexp.MustCompile(`(?i)import\s*\(`)},
	{"dynamic-function constructor", regexp.MustCompile(`(?i)new\s+function\s*\(`)},
	{"eval", regexp.MustCompile(`(?i)\beval\s*\(`)},
	{"process-global", regexp.MustCompile(`(?i)\bprocess\s*\.\s*(env|exit|kill)\b`)},
	{"in-process globals", regexp.MustCompile(`(?i)\bglobalThis\b`)},
	{"source-path globals", regexp.MustCompile(`(?i)__(dirname|filename)\b`)},
	{"subprocess module", regexp.MustCompile(`(?i)child_process`)},
	{"filesystem module", regexp.MustCompile(`(?i)\bfs\s*\.\s*(readfile|writefile|unlink|rm)`)},
}

var functionFormPattern = regexp.MustCompile(`(?is)^\s*(async\s+)?(function\b|\([^)]*\)\s*=>|[A-Za-z_$][\w$]*\s*=>)`)

// Validator runs the two submission-time checks. A zero-value Validator
// is usable; it exists as a type (rather than free functions) so a future
// caller can swap in a full static analyser while keeping the same
// submission-time contract.
type Validator struct{}

// New returns a ready-to-use strict-mode Validator.
func New() *Validator {
	return &Validator{}
}

// Validate runs the function-policy scan and the argument-shape check.
// It returns the first violation found, wrapped in errs.ErrValidation.
func (v *Validator) Validate(d domain.Descriptor, args []any) error {
	if err := v.checkFunctionForm(d.Source); err != nil {
		return err
	}
	if err := v.checkFunctionPolicy(d.Source); err != nil {
		return err
	}
	for i, arg := range args {
		if err := checkArgShape(arg); err != nil {
			return errs.New(errs.ErrValidation, fmt.Sprintf("argument %d: %v", i, err))
		}
	}
	return nil
}

func (v *Validator) checkFunctionForm(source string) error {
	if source == "" {
		// Descriptors built from registered Go callables (SubmitFunc)
		// have no meaningful source text; nothing to scan.
		return nil
	}
	if !functionFormPattern.MatchString(source) {
		return errs.New(errs.ErrValidation, "invalid function form: must be an arrow function or begin with a function keyword")
	}
	return nil
}

func (v *Validator) checkFunctionPolicy(source string) error {
	for _, p := range disallowedPatterns {
		if p.pattern.MatchString(source) {
			return errs.New(errs.ErrValidation, fmt.Sprintf("function text matched disallowed pattern: %s", p.name))
		}
	}
	return nil
}

// checkArgShape walks arg and rejects anything that is not transitively a
// primitive scalar, a plain sequence of such, or a plain string-keyed map
// of such.
func checkArgShape(arg any) error {
	return checkValue(reflect.ValueOf(arg))
}

func checkValue(v reflect.Value) error {
	if !v.IsValid() {
		// nil interface value: acceptable, same as a null payload.
		return nil
	}

	switch v.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return nil

	case reflect.Interface:
		return checkValue(v.Elem())

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return checkValue(v.Elem())

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := checkValue(v.Index(i)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil

	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("map with non-string key type %s is not transport-safe", v.Type().Key())
		}
		iter := v.MapRange()
		for iter.Next() {
			if err := checkValue(iter.Value()); err != nil {
				return fmt.Errorf("key %q: %w", iter.Key().String(), err)
			}
		}
		return nil

	default:
		return fmt.Errorf("value of kind %s is not transport-safe", v.Kind())
	}
}
