package schema

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Option configures a validation run.
type Option func(*config)

type config struct {
	allowExtra bool
}

// WithExtraProperties controls whether document fields missing from the
// schema are ignored (true) or reported as "Unexpected property" (false, the default).
func WithExtraProperties(allow bool) Option {
	return func(c *config) {
		c.allowExtra = allow
	}
}

// Validate checks document against s and returns every failure found.
// An empty result means the document is valid.
//
// Fields are visited in a stable order: schema fields sorted by name, then the
// document fields the schema does not declare, sorted by name. A nested schema
// whose document value is absent or nil is checked against an empty object.
//
// Validate panics with a *ContractError on a nil schema node, or when a nested
// schema meets a value that is not an object. See Check.
func Validate(s Schema, document map[string]any, opts ...Option) []ValidationError {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if document == nil {
		document = map[string]any{}
	}
	return walk(s, document, document, &cfg, nil)
}

// Check is Validate for untrusted input: a contract violation is returned as
// an error instead of a panic. Other panics, such as those raised by custom
// validators, propagate.
func Check(s Schema, document map[string]any, opts ...Option) (errs []ValidationError, err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*ContractError)
			if !ok {
				panic(r)
			}
			errs, err = nil, ce
		}
	}()
	return Validate(s, document, opts...), nil
}

// Passed reports whether errs records no failure.
func Passed(errs []ValidationError) bool {
	return len(errs) == 0
}

func walk(s Schema, node map[string]any, root any, cfg *config, trail []string) []ValidationError {
	var errs []ValidationError

	for _, key := range fieldOrder(s, node) {
		child, declared := s[key]
		if !declared {
			if !cfg.allowExtra {
				errs = append(errs, ValidationError{Message: MsgUnexpectedProperty, Path: []string{key}})
			}
			continue
		}

		value, present := node[key]

		var found []ValidationError
		switch n := child.(type) {
		case Schema:
			here := appendPath(trail, key)
			found = walk(n, branch(value, present, here), root, cfg, here)
		case Rule:
			if !present {
				value = Undefined
			}
			found = n.Validate(root, value)
		default:
			panic(&ContractError{
				Path:   appendPath(trail, key),
				Reason: "schema node is neither a rule nor a nested schema",
			})
		}

		for _, e := range found {
			e.Path = append([]string{key}, e.Path...)
			errs = append(errs, e)
		}
	}

	return errs
}

// fieldOrder returns the schema fields followed by the undeclared document fields.
func fieldOrder(s Schema, node map[string]any) []string {
	keys := slices.Sorted(maps.Keys(s))
	var extra []string
	for k := range node {
		if _, ok := s[k]; !ok {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

// branch resolves the document value a nested schema is applied to.
func branch(value any, present bool, path []string) map[string]any {
	if !present || value == nil {
		return map[string]any{}
	}
	if m, ok := value.(map[string]any); ok {
		return m
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return m
	}

	panic(&ContractError{
		Path:   path,
		Reason: fmt.Sprintf("nested schema expects an object, got %T", value),
	})
}

func appendPath(trail []string, key string) []string {
	out := make([]string, len(trail), len(trail)+1)
	copy(out, trail)
	return append(out, key)
}
