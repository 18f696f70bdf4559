package schema

import (
	"errors"
	"fmt"
	"strings"
)

// MsgUnexpectedProperty is reported for document fields the schema does not declare.
const MsgUnexpectedProperty = "Unexpected property"

// ValidationError is a single validation failure.
//
// Errors is only set by combinators and holds the records of the failing
// branches; those records never carry a path of their own. Path lists field
// names from the root of the document down to the failing field.
type ValidationError struct {
	Message string            `json:"error" yaml:"error"`
	Errors  []ValidationError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Path    []string          `json:"path,omitempty" yaml:"path,omitempty"`
}

func (e ValidationError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", JoinPath(e.Path), e.Message)
}

// JoinPath renders a path in dotted form.
func JoinPath(path []string) string {
	return strings.Join(path, ".")
}

// AggregateError wraps a non-empty list of failures as a Go error.
type AggregateError struct {
	Errors []ValidationError
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// AsError returns nil when errs is empty and an *AggregateError otherwise.
func AsError(errs []ValidationError) error {
	if Passed(errs) {
		return nil
	}
	return &AggregateError{Errors: errs}
}

// ValidationErrors returns the failures carried by err if it is, or wraps, an
// *AggregateError. Otherwise returns nil.
func ValidationErrors(err error) []ValidationError {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

// ContractError reports a malformed schema or a document whose shape cannot be
// walked (a nested schema applied to a non-object). Validate panics with it.
type ContractError struct {
	Path   []string
	Reason string
}

func (e *ContractError) Error() string {
	if len(e.Path) == 0 {
		return "schema contract violation: " + e.Reason
	}
	return fmt.Sprintf("schema contract violation at %s: %s", JoinPath(e.Path), e.Reason)
}

func fail(message string) []ValidationError {
	return []ValidationError{{Message: message}}
}

func messageOr(message []string, fallback string) string {
	if len(message) > 0 {
		return message[0]
	}
	return fallback
}
