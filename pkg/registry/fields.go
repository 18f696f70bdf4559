package registry

import (
	"reflect"

	"github.com/aretw0/conform/pkg/schema"
)

// EqualsField returns a validator that passes when the value equals the
// top-level field of the root document, such as a password confirmation.
func EqualsField(field string, message ...string) schema.Rule {
	msg := "Expected value to match " + field
	if len(message) > 0 {
		msg = message[0]
	}
	return schema.ValidatorFunc(func(root, value any) []schema.ValidationError {
		doc, ok := root.(map[string]any)
		if !ok {
			return []schema.ValidationError{{Message: msg}}
		}
		other, present := doc[field]
		if !present || !reflect.DeepEqual(other, value) {
			return []schema.ValidationError{{Message: msg}}
		}
		return nil
	})
}

// RequiredWith returns a validator that rejects an absent value while the
// top-level field of the root document is present.
func RequiredWith(field string, message ...string) schema.Rule {
	msg := "Required when " + field + " is set"
	if len(message) > 0 {
		msg = message[0]
	}
	return schema.ValidatorFunc(func(root, value any) []schema.ValidationError {
		doc, _ := root.(map[string]any)
		if _, present := doc[field]; present && schema.IsUndefined(value) {
			return []schema.ValidationError{{Message: msg}}
		}
		return nil
	})
}
