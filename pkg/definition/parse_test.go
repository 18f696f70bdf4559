package definition

import (
	"errors"
	"os"
	"testing"

	"github.com/aretw0/conform/pkg/domain"
	"github.com/aretw0/conform/pkg/registry"
	"github.com/aretw0/conform/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupRegistry() *registry.Registry {
	r := registry.NewRegistry()
	r.Register("equalsPassword", registry.EqualsField("password", "Passwords do not match"))
	return r
}

func loadSignup(t *testing.T) schema.Schema {
	t.Helper()
	data, err := os.ReadFile("testdata/signup.yaml")
	require.NoError(t, err)
	s, err := Parse(data, WithRegistry(signupRegistry()))
	require.NoError(t, err)
	return s
}

func TestParse_SignupValid(t *testing.T) {
	s := loadSignup(t)

	doc := map[string]any{
		"username": "ada_l",
		"email":    "ada@example.com",
		"password": "correct horse",
		"confirm":  "correct horse",
		"plan":     "pro",
		"address":  map[string]any{"street": "1 Main St", "city": "London", "zip": "12345"},
		"tags":     []any{"early"},
	}
	assert.Empty(t, schema.Validate(s, doc))
}

func TestParse_SignupInvalid(t *testing.T) {
	s := loadSignup(t)

	doc := map[string]any{
		"username": "Ada Lovelace",
		"email":    "ada",
		"password": "short",
		"confirm":  "other",
		"age":      7,
		"plan":     float64(3),
		"website":  "not a url",
		"address":  map[string]any{"street": "1 Main St", "city": "London", "zip": "ABCDE"},
		"tags":     "one,two",
	}

	got := map[string]string{}
	for _, e := range schema.Validate(s, doc) {
		got[schema.JoinPath(e.Path)] = e.Message
	}

	assert.Equal(t, map[string]string{
		"address.zip": "Enter a five digit ZIP code",
		"age":         "Expected a value between 13 and 130 OR Expected undefined",
		"confirm":     "Passwords do not match",
		"email":       "Please enter a valid email address",
		"password":    "Please enter at least 8 characters",
		"tags":        "Tags must be a list",
		"username":    "Use lowercase letters, digits and underscores",
		"website":     "Please enter a valid URL OR Expected undefined",
	}, got)
}

func TestParse_JSONDefinition(t *testing.T) {
	data, err := os.ReadFile("testdata/signup.json")
	require.NoError(t, err)

	s, err := Parse(data)
	require.NoError(t, err)

	errs := schema.Validate(s, map[string]any{"username": "ab", "email": "a@b.io", "address": map[string]any{}})
	require.Len(t, errs, 2)
	assert.Equal(t, []string{"address", "city"}, errs[0].Path)
	assert.Equal(t, "Please enter a value between 3 and 16 characters long", errs[1].Message)
}

func TestParse_Nested(t *testing.T) {
	s, err := Parse([]byte("foo:\n  bar: string\n"))
	require.NoError(t, err)

	assert.Equal(t, []schema.ValidationError{{Message: "Expected string", Path: []string{"foo", "bar"}}},
		schema.Validate(s, map[string]any{"foo": map[string]any{"bar": 123}}))
}

func TestParse_Empty(t *testing.T) {
	for _, src := range []string{"", "{}", "# nothing here\n"} {
		s, err := Parse([]byte(src))
		require.NoError(t, err, src)
		assert.Empty(t, s)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"unknown builtin", "zip: zipcode", "zip"},
		{"top-level list", "- string", "expected object"},
		{"directive at top level", "$min: 3", "/"},
		{"two operators", "n: {$min: 1, $max: 2}", "exactly one operator"},
		{"message only", "n: {$message: hi}", "exactly one operator"},
		{"bad regexp", "n: {$regexp: '('}", "missing closing )"},
		{"negative length", "n: {$minLength: -1}", "/n"},
		{"fractional length", "n: {$minLength: 1.5}", "/n"},
		{"range arity", "n: {$range: [1, 2, 3]}", "/n"},
		{"nested schema in any", "n: {$any: [{a: string}]}", "/n"},
		{"custom without registry", "n: {$custom: nope}", "no registry is configured"},
		{"mixed directive and field", "n: {$min: 1, a: string}", "/n"},
		{"syntax", "a: [unclosed", "invalid definition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.source))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidDefinition), "error should wrap ErrInvalidDefinition: %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_BuilderErrorsWithoutLint(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"a:\n  $b: string\n  c: string\n", `field "a.$b": field names cannot start with $`},
		{"a: {$min: 1, $max: 2}", "exactly one operator"},
		{"a: {$frobnicate: 1}", `unknown operator "$frobnicate"`},
		{"a: {$any: [1]}", "expected a builtin name or a directive, got a number"},
		{"a: 42", "got a number"},
		{"a: {$min: fast}", "$min"},
		{"a: {$range: {min: 1}}", "missing max"},
		{"a: {$message: 3, $type: string}", "$message must be a string"},
		{"$type: string", "the top level must be a schema"},
	}

	for _, tt := range tests {
		_, err := Parse([]byte(tt.source), WithoutLint())
		require.Error(t, err, tt.source)
		assert.Contains(t, err.Error(), tt.want, tt.source)

		var de *Error
		assert.True(t, errors.As(err, &de), "expected *Error for %q, got %T", tt.source, err)
	}
}

func TestParse_CustomUnregistered(t *testing.T) {
	_, err := Parse([]byte("a: {$custom: missing}"), WithRegistry(registry.NewRegistry()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validator not found: missing")
}

func TestParse_CustomMessage(t *testing.T) {
	s, err := Parse([]byte("confirm: {$custom: equalsPassword, $message: Try again}"), WithRegistry(signupRegistry()))
	require.NoError(t, err)

	errs := schema.Validate(s, map[string]any{"confirm": "x"}, schema.WithExtraProperties(true))
	require.Len(t, errs, 1)
	assert.Equal(t, "Try again", errs[0].Message)
}

func TestBuiltins(t *testing.T) {
	assert.Equal(t, []string{"array", "boolean", "email", "number", "object", "string", "undefined", "url"}, Builtins())
}
