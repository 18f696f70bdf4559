package domain

import "errors"

// ErrDefinitionNotFound is returned when a definition name cannot be found in the repository.
var ErrDefinitionNotFound = errors.New("definition not found")

// ErrInvalidDefinition is returned when a definition source fails to lint or parse.
var ErrInvalidDefinition = errors.New("invalid definition")

// ErrInvalidName is returned when a definition name is empty or contains unsupported characters.
var ErrInvalidName = errors.New("invalid definition name")

// ErrReadOnly is returned when a write reaches a repository opened read-only.
var ErrReadOnly = errors.New("definition store is read-only")
