package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/conform/pkg/domain"
	"github.com/aretw0/conform/pkg/ports"
)

type readOnlyMiddleware struct {
	ports.DefinitionRepository
}

// NewReadOnlyMiddleware rejects Save and Delete with domain.ErrReadOnly.
// Reads pass through unchanged.
func NewReadOnlyMiddleware() Middleware {
	return func(next ports.DefinitionRepository) ports.DefinitionRepository {
		return &readOnlyMiddleware{DefinitionRepository: next}
	}
}

func (m *readOnlyMiddleware) Save(ctx context.Context, def domain.Definition) error {
	return fmt.Errorf("save %q: %w", def.Name, domain.ErrReadOnly)
}

func (m *readOnlyMiddleware) Delete(ctx context.Context, name string) error {
	return fmt.Errorf("delete %q: %w", name, domain.ErrReadOnly)
}
