package schema

import "strings"

// AnyRule passes when at least one of its validators passes.
type AnyRule struct {
	leaf
	validators []Validator
	message    []string
}

// Any tries validators left to right and stops at the first one that passes.
// If none passes it returns a single record whose Errors holds every child
// record in invocation order; its message is message, or the child messages
// joined with " OR ". A supplied message is used as is, even when empty.
func Any(validators []Validator, message ...string) Rule {
	return AnyRule{validators: validators, message: message}
}

func (r AnyRule) Validate(root, value any) []ValidationError {
	var errs []ValidationError
	for _, v := range r.validators {
		found := v.Validate(root, value)
		if Passed(found) {
			return nil
		}
		errs = append(errs, found...)
	}
	return combine(errs, r.message, " OR ")
}

// AllRule passes when every one of its validators passes.
type AllRule struct {
	leaf
	validators []Validator
	message    []string
}

// All runs every validator, even after a failure. If any fails it returns a
// single record whose Errors holds all child records; its message is message,
// or the child messages joined with " AND ". A supplied message is used as
// is, even when empty.
func All(validators []Validator, message ...string) Rule {
	return AllRule{validators: validators, message: message}
}

func (r AllRule) Validate(root, value any) []ValidationError {
	var errs []ValidationError
	for _, v := range r.validators {
		errs = append(errs, v.Validate(root, value)...)
	}
	if Passed(errs) {
		return nil
	}
	return combine(errs, r.message, " AND ")
}

// Optional accepts absent fields and otherwise defers to v.
func Optional(v Validator, message ...string) Rule {
	return Any([]Validator{v, UndefinedV()}, message...)
}

func combine(errs []ValidationError, message []string, sep string) []ValidationError {
	if len(message) > 0 {
		return []ValidationError{{Message: message[0], Errors: errs}}
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return []ValidationError{{Message: strings.Join(msgs, sep), Errors: errs}}
}
