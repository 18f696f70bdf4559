package registry

import (
	"testing"

	"github.com/aretw0/conform/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("string", schema.StringV())
	r.RegisterFunc("never", func(root, value any) []schema.ValidationError {
		return []schema.ValidationError{{Message: "never"}}
	})

	v, ok := r.Lookup("string")
	require.True(t, ok)
	assert.Empty(t, v.Validate(nil, "x"))

	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	_, err := r.MustLookup("missing")
	assert.EqualError(t, err, "validator not found: missing")

	assert.Equal(t, []string{"never", "string"}, r.Names())

	r.Register("string", schema.NumberV())
	v, _ = r.Lookup("string")
	assert.NotEmpty(t, v.Validate(nil, "x"), "Register overwrites")
}

func TestEqualsField(t *testing.T) {
	s := schema.Schema{
		"password": schema.StringV(),
		"confirm":  EqualsField("password"),
	}

	assert.Empty(t, schema.Validate(s, map[string]any{"password": "a", "confirm": "a"}))
	assert.Equal(t, []schema.ValidationError{{Message: "Expected value to match password", Path: []string{"confirm"}}},
		schema.Validate(s, map[string]any{"password": "a", "confirm": "b"}))

	custom := EqualsField("password", "Passwords differ")
	assert.Equal(t, "Passwords differ", custom.Validate(map[string]any{}, "a")[0].Message)
}

func TestRequiredWith(t *testing.T) {
	s := schema.Schema{
		"street": schema.Optional(schema.StringV()),
		"city":   RequiredWith("street"),
	}

	assert.Empty(t, schema.Validate(s, map[string]any{}))
	assert.Empty(t, schema.Validate(s, map[string]any{"street": "Main", "city": "Springfield"}))
	assert.Equal(t, []schema.ValidationError{{Message: "Required when street is set", Path: []string{"city"}}},
		schema.Validate(s, map[string]any{"street": "Main"}))
}
