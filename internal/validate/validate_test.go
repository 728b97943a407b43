package validate

import (
	"testing"

	"github.com/osmike/taskpool/internal/domain"
	"github.com/osmike/taskpool/internal/errs"
	"github.com/stretchr/testify/assert"
)

func TestValidFunctionForms(t *testing.T) {
	v := New()
	sources := []string{
		"function(a, b) { return a + b }",
		"async function(a, b) { return a + b }",
		"(a, b) => a + b",
		"a => a + 1",
	}
	for _, src := range sources {
		err := v.Validate(domain.Descriptor{Source: src}, nil)
		assert.NoError(t, err, src)
	}
}

func TestRejectsInvalidFunctionForm(t *testing.T) {
	v := New()
	err := v.Validate(domain.Descriptor{Source: "return a + b"}, nil)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRejectsDisallowedPatterns(t *testing.T) {
	v := New()
	cases := []string{
		"function(a) { return require('fs') }",
		"function(a) { return eval(a) }",
		"function(a) { return process.env.SECRET }",
	}
	for _, src := range cases {
		err := v.Validate(domain.Descriptor{Source: src}, nil)
		assert.ErrorIs(t, err, errs.ErrValidation, src)
	}
}

func TestArgShapeAcceptsTransportSafeValues(t *testing.T) {
	v := New()
	args := []any{
		1, 2.5, "hello", true,
		[]int{1, 2, 3},
		map[string]any{"a": 1, "b": []string{"x", "y"}},
		nil,
	}
	err := v.Validate(domain.Descriptor{}, args)
	assert.NoError(t, err)
}

func TestArgShapeRejectsCallables(t *testing.T) {
	v := New()
	err := v.Validate(domain.Descriptor{}, []any{func() {}})
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), "argument 0")
}

func TestArgShapeRejectsNonStringKeyedMap(t *testing.T) {
	v := New()
	err := v.Validate(domain.Descriptor{}, []any{map[int]string{1: "a"}})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestArgShapeCitesOffendingIndex(t *testing.T) {
	v := New()
	err := v.Validate(domain.Descriptor{}, []any{"ok", 42, make(chan int)})
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), "argument 2")
}
