package definition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/aretw0/conform/pkg/domain"
	"github.com/aretw0/conform/pkg/registry"
	"github.com/aretw0/conform/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	directivePrefix = "$"
	keyMessage      = "$message"
)

// Error reports a definition node that cannot be built.
type Error struct {
	Path   []string
	Reason string
}

func (e *Error) Error() string {
	if len(e.Path) == 0 {
		return "definition: " + e.Reason
	}
	return fmt.Sprintf("definition: field %q: %s", schema.JoinPath(e.Path), e.Reason)
}

func (e *Error) Unwrap() error { return domain.ErrInvalidDefinition }

// ParseOption configures Parse.
type ParseOption func(*parser)

// WithRegistry makes the validators of r available to $custom directives.
func WithRegistry(r *registry.Registry) ParseOption {
	return func(p *parser) {
		p.registry = r
	}
}

// WithoutLint skips the meta schema check. The builder still rejects
// malformed nodes, with less detailed messages.
func WithoutLint() ParseOption {
	return func(p *parser) {
		p.skipLint = true
	}
}

type parser struct {
	registry *registry.Registry
	skipLint bool
}

type builtin func(message ...string) schema.Rule

var builtins = map[string]builtin{
	"string":    schema.StringV,
	"number":    schema.NumberV,
	"boolean":   schema.BooleanV,
	"array":     schema.ArrayV,
	"object":    schema.ObjectV,
	"undefined": schema.UndefinedV,
	"email":     schema.Email,
	"url":       schema.URL,
}

// Builtins returns the names accepted as builtin leaves.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Parse builds a schema from a YAML or JSON definition.
func Parse(data []byte, opts ...ParseOption) (schema.Schema, error) {
	p := &parser{}
	for _, opt := range opts {
		opt(p)
	}

	tree, err := decode(data)
	if err != nil {
		return nil, err
	}
	if !p.skipLint {
		if err := lintTree(tree); err != nil {
			return nil, err
		}
	}

	root, ok := tree.(map[string]any)
	if !ok {
		return nil, &Error{Reason: fmt.Sprintf("expected a mapping at the top level, got %s", describe(tree))}
	}
	if isDirective(root) {
		return nil, &Error{Reason: "the top level must be a schema, not a directive"}
	}
	return p.branch(root, nil)
}

// decode reads YAML (and therefore JSON) into plain JSON values, numbers as json.Number.
func decode(data []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDefinition, err)
	}
	if raw == nil {
		return map[string]any{}, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDefinition, err)
	}
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDefinition, err)
	}
	return tree, nil
}

func (p *parser) branch(m map[string]any, path []string) (schema.Schema, error) {
	out := make(schema.Schema, len(m))
	for _, key := range sortedKeys(m) {
		here := append(slices.Clone(path), key)
		if strings.HasPrefix(key, directivePrefix) {
			return nil, &Error{Path: here, Reason: "field names cannot start with " + directivePrefix}
		}
		node, err := p.node(m[key], here)
		if err != nil {
			return nil, err
		}
		out[key] = node
	}
	return out, nil
}

func (p *parser) node(v any, path []string) (schema.Node, error) {
	if m, ok := v.(map[string]any); ok && !isDirective(m) {
		return p.branch(m, path)
	}
	return p.leaf(v, path)
}

func (p *parser) leaf(v any, path []string) (schema.Rule, error) {
	switch n := v.(type) {
	case string:
		factory, ok := builtins[n]
		if !ok {
			return nil, &Error{Path: path, Reason: fmt.Sprintf("unknown builtin %q", n)}
		}
		return factory(), nil
	case map[string]any:
		if !isDirective(n) {
			return nil, &Error{Path: path, Reason: "nested schemas are not allowed here"}
		}
		return p.directive(n, path)
	}
	return nil, &Error{Path: path, Reason: fmt.Sprintf("expected a builtin name or a directive, got %s", describe(v))}
}

func (p *parser) directive(m map[string]any, path []string) (schema.Rule, error) {
	var msg []string
	if raw, ok := m[keyMessage]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, &Error{Path: path, Reason: keyMessage + " must be a string"}
		}
		msg = []string{s}
	}

	var ops []string
	for key := range m {
		if key != keyMessage {
			ops = append(ops, key)
		}
	}
	if len(ops) != 1 {
		slices.Sort(ops)
		return nil, &Error{Path: path, Reason: fmt.Sprintf("a directive needs exactly one operator, got %d %v", len(ops), ops)}
	}

	op, arg := ops[0], m[ops[0]]
	bad := func(err error) error {
		return &Error{Path: path, Reason: fmt.Sprintf("%s: %v", op, err)}
	}

	switch op {
	case "$type":
		name, _ := arg.(string)
		factory, ok := builtins[name]
		if !ok {
			return nil, &Error{Path: path, Reason: fmt.Sprintf("unknown builtin %q", name)}
		}
		return factory(msg...), nil

	case "$min", "$max":
		var n float64
		if err := decodeArg(arg, &n); err != nil {
			return nil, bad(err)
		}
		if op == "$min" {
			return schema.Min(n, msg...), nil
		}
		return schema.Max(n, msg...), nil

	case "$range":
		var b struct {
			Min float64 `mapstructure:"min"`
			Max float64 `mapstructure:"max"`
		}
		if err := decodePair(arg, &b.Min, &b.Max, &b); err != nil {
			return nil, bad(err)
		}
		return schema.Range(b.Min, b.Max, msg...), nil

	case "$minLength", "$maxLength":
		var n int
		if err := decodeArg(arg, &n); err != nil {
			return nil, bad(err)
		}
		if op == "$minLength" {
			return schema.MinLength(n, msg...), nil
		}
		return schema.MaxLength(n, msg...), nil

	case "$rangeLength":
		var b struct {
			Min int `mapstructure:"min"`
			Max int `mapstructure:"max"`
		}
		if err := decodePair(arg, &b.Min, &b.Max, &b); err != nil {
			return nil, bad(err)
		}
		return schema.RangeLength(b.Min, b.Max, msg...), nil

	case "$regexp":
		var expr string
		if err := decodeArg(arg, &expr); err != nil {
			return nil, bad(err)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, bad(err)
		}
		return schema.MatchRegexp(re, msg...), nil

	case "$any", "$all":
		items, ok := arg.([]any)
		if !ok {
			return nil, bad(fmt.Errorf("expected a list, got %s", describe(arg)))
		}
		children := make([]schema.Validator, len(items))
		for i, item := range items {
			child, err := p.leaf(item, append(slices.Clone(path), fmt.Sprintf("%s[%d]", op, i)))
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		if op == "$any" {
			return schema.Any(children, msg...), nil
		}
		return schema.All(children, msg...), nil

	case "$optional":
		child, err := p.leaf(arg, append(slices.Clone(path), op))
		if err != nil {
			return nil, err
		}
		return schema.Optional(child, msg...), nil

	case "$oneOf":
		items, ok := arg.([]any)
		if !ok || len(items) == 0 {
			return nil, bad(fmt.Errorf("expected a non-empty list, got %s", describe(arg)))
		}
		for i, item := range items {
			if n, ok := item.(json.Number); ok {
				items[i] = plainNumber(n)
			}
		}
		return schema.OneOf(items, msg...), nil

	case "$custom":
		name, _ := arg.(string)
		if p.registry == nil {
			return nil, &Error{Path: path, Reason: fmt.Sprintf("custom validator %q requested but no registry is configured", name)}
		}
		v, err := p.registry.MustLookup(name)
		if err != nil {
			return nil, bad(err)
		}
		if len(msg) > 0 {
			return schema.Any([]schema.Validator{v}, msg...), nil
		}
		return schema.Use(v), nil
	}

	return nil, &Error{Path: path, Reason: fmt.Sprintf("unknown operator %q", op)}
}

func decodeArg(input, result any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      result,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// decodePair accepts [lo, hi] or {min: lo, max: hi}.
func decodePair(input any, lo, hi any, bounds any) error {
	switch v := input.(type) {
	case []any:
		if len(v) != 2 {
			return fmt.Errorf("expected [min, max], got %d values", len(v))
		}
		if err := decodeArg(v[0], lo); err != nil {
			return err
		}
		return decodeArg(v[1], hi)
	case map[string]any:
		if _, ok := v["min"]; !ok {
			return fmt.Errorf("missing min")
		}
		if _, ok := v["max"]; !ok {
			return fmt.Errorf("missing max")
		}
		return decodeArg(v, bounds)
	}
	return fmt.Errorf("expected [min, max] or {min, max}, got %s", describe(input))
}

func isDirective(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for key := range m {
		if !strings.HasPrefix(key, directivePrefix) {
			return false
		}
	}
	return true
}

func plainNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	case []any:
		return "a list"
	case map[string]any:
		return "a mapping"
	}
	return fmt.Sprintf("%T", v)
}
