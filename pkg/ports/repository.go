package ports

import (
	"context"

	"github.com/aretw0/conform/pkg/domain"
)

// DefinitionRepository defines how named schema definitions are persisted.
// Implementations store the raw source; parsing is the engine's job.
type DefinitionRepository interface {
	// Save stores the definition, replacing any previous one with the same name.
	Save(ctx context.Context, def domain.Definition) error

	// Get retrieves a definition by name.
	// Returns domain.ErrDefinitionNotFound if the name is unknown.
	Get(ctx context.Context, name string) (domain.Definition, error)

	// Delete removes a definition.
	// Returns domain.ErrDefinitionNotFound if the name is unknown.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored definitions, sorted.
	List(ctx context.Context) ([]string, error)
}
