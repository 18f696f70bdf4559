// Package schema provides a declarative validation system for structured documents.
//
// A Schema is a tree: each field maps either to a Rule (a leaf validator) or to a
// nested Schema. Validate walks the schema and the document together and returns
// every failure it finds, each annotated with the path to the offending field.
//
// Basic usage:
//
//	s := schema.Schema{
//	    "name":  schema.StringV(),
//	    "email": schema.Email(),
//	    "age":   schema.All([]schema.Validator{schema.NumberV(), schema.Range(0, 150)}),
//	    "address": schema.Schema{
//	        "city": schema.StringV(),
//	        "zip":  schema.Optional(schema.Regexp(`^\d{5}$`)),
//	    },
//	}
//
//	errs := schema.Validate(s, document)
//	if !schema.Passed(errs) {
//	    for _, e := range errs {
//	        fmt.Println(e) // address.city: Expected string
//	    }
//	}
//
// Validators receive the root document as well as the field value, so a custom
// ValidatorFunc can implement cross-field checks:
//
//	confirm := schema.ValidatorFunc(func(root, value any) []schema.ValidationError {
//	    doc, _ := root.(map[string]any)
//	    if doc["password"] != value {
//	        return []schema.ValidationError{{Message: "Passwords do not match"}}
//	    }
//	    return nil
//	})
//
// Any and All combine validators. Any passes on the first child that passes;
// All runs every child. On failure both keep each child's record in Errors and
// join the messages into a single summary line.
//
// Errors are data: Validate never returns a Go error. The only panics are
// contract violations (a nil schema node, or a nested schema applied to a value
// that is not an object), reported as *ContractError. Check recovers those for
// callers validating untrusted input.
//
// Schemas and rules are immutable once built and may be shared between
// goroutines. Recursion depth equals schema nesting depth; no limit is enforced.
package schema
