package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Format identifies the encoding of a definition source.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Definition is a named schema definition as stored by a repository.
type Definition struct {
	Name      string    `json:"name" yaml:"name"`
	Format    Format    `json:"format" yaml:"format"`
	Source    []byte    `json:"source" yaml:"source"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateName checks that name can be used as a definition name in every
// repository (file names, redis keys, table rows).
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// DetectFormat guesses the format of a definition source: JSON when the first
// non-blank byte opens an object, YAML otherwise.
func DetectFormat(source []byte) Format {
	for _, b := range source {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return FormatJSON
		}
		return FormatYAML
	}
	return FormatYAML
}
