package domain

import (
	"time"

	"github.com/aretw0/conform/pkg/schema"
	"github.com/google/uuid"
)

// Report is the outcome of validating a document against a definition.
type Report struct {
	ID       uuid.UUID                `json:"id"`
	Schema   string                   `json:"schema"`
	Valid    bool                     `json:"valid"`
	Errors   []schema.ValidationError `json:"errors"`
	Duration time.Duration            `json:"duration_ns"`
}

// NewReport builds a report for errs with a fresh ID.
func NewReport(name string, errs []schema.ValidationError, took time.Duration) *Report {
	if errs == nil {
		errs = []schema.ValidationError{}
	}
	return &Report{
		ID:       uuid.New(),
		Schema:   name,
		Valid:    schema.Passed(errs),
		Errors:   errs,
		Duration: took,
	}
}
