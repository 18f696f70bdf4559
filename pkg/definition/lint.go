package definition

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/conform/pkg/domain"
	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed meta.schema.json
var metaSchemaJSON []byte

const metaSchemaURL = "definition.schema.json"

var metaSchema = mustCompileMeta()

func mustCompileMeta() *santhosh.Schema {
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	if err := compiler.AddResource(metaSchemaURL, bytes.NewReader(metaSchemaJSON)); err != nil {
		panic(fmt.Sprintf("definition: meta schema: %v", err))
	}
	return compiler.MustCompile(metaSchemaURL)
}

// MetaSchema returns the JSON Schema (draft-07) that definition documents must satisfy.
func MetaSchema() []byte {
	return bytes.Clone(metaSchemaJSON)
}

// LintError lists the problems found by Lint.
type LintError struct {
	Problems []string
}

func (e *LintError) Error() string {
	if len(e.Problems) == 1 {
		return "definition: " + e.Problems[0]
	}
	return fmt.Sprintf("definition: %d problems:\n- %s", len(e.Problems), strings.Join(e.Problems, "\n- "))
}

func (e *LintError) Unwrap() error { return domain.ErrInvalidDefinition }

// Lint checks a definition source against the meta schema without building it.
func Lint(data []byte) error {
	tree, err := decode(data)
	if err != nil {
		return err
	}
	return lintTree(tree)
}

func lintTree(tree any) error {
	err := metaSchema.Validate(tree)
	if err == nil {
		return nil
	}
	var ve *santhosh.ValidationError
	if errors.As(err, &ve) {
		return &LintError{Problems: collectProblems(ve)}
	}
	return &LintError{Problems: []string{err.Error()}}
}

func collectProblems(ve *santhosh.ValidationError) []string {
	var problems []string
	for _, cause := range ve.Causes {
		problems = append(problems, collectProblems(cause)...)
	}
	if len(ve.Causes) == 0 {
		location := ve.InstanceLocation
		if location == "" {
			location = "/"
		}
		problems = append(problems, fmt.Sprintf("%s: %s", location, ve.Message))
	}
	return problems
}
