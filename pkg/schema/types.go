package schema

// Validator checks a single value.
// root is the top-level document being validated, value is the field under test.
// An empty result means the value passed.
type Validator interface {
	Validate(root, value any) []ValidationError
}

// Node is a schema tree node: either a nested Schema or a Rule.
// The set of implementations is closed; use Use or ValidatorFunc to plug in
// custom validators.
type Node interface {
	schemaNode()
}

// Rule is a Validator that can sit in a Schema as a leaf.
type Rule interface {
	Validator
	Node
}

// Schema maps field names to nodes.
type Schema map[string]Node

func (Schema) schemaNode() {}

// ValidatorFunc adapts a plain function to a Rule.
type ValidatorFunc func(root, value any) []ValidationError

func (f ValidatorFunc) Validate(root, value any) []ValidationError {
	return f(root, value)
}

func (ValidatorFunc) schemaNode() {}

// leaf is embedded by every built-in rule.
type leaf struct{}

func (leaf) schemaNode() {}

type wrapped struct {
	leaf
	Validator
}

// Use turns any Validator into a Rule.
func Use(v Validator) Rule {
	if v == nil {
		panic("schema: Use called with a nil validator")
	}
	if r, ok := v.(Rule); ok {
		return r
	}
	return wrapped{Validator: v}
}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is passed to validators in place of a field that is absent from
// the document. A field that is present with a nil value is passed as nil.
var Undefined = undefined{}

// IsUndefined reports whether value stands for an absent field.
func IsUndefined(value any) bool {
	_, ok := value.(undefined)
	return ok
}
