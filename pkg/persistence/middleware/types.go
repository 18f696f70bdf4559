// Package middleware decorates definition repositories with cross-cutting behavior.
package middleware

import "github.com/aretw0/conform/pkg/ports"

// Middleware allows wrapping a DefinitionRepository to add behavior.
type Middleware func(ports.DefinitionRepository) ports.DefinitionRepository

// Chain applies mws to repo so that the first middleware is the outermost.
func Chain(repo ports.DefinitionRepository, mws ...Middleware) ports.DefinitionRepository {
	for i := len(mws) - 1; i >= 0; i-- {
		repo = mws[i](repo)
	}
	return repo
}
