package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/conform/pkg/domain"
)

// Repository implements ports.DefinitionRepository in memory.
// Safe for concurrent use.
type Repository struct {
	data map[string]domain.Definition
	mu   sync.RWMutex
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		data: make(map[string]domain.Definition),
	}
}

// Save stores a copy of the definition.
func (r *Repository) Save(ctx context.Context, def domain.Definition) error {
	def.Source = slices.Clone(def.Source)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[def.Name] = def
	return nil
}

// Get retrieves a definition by name.
func (r *Repository) Get(ctx context.Context, name string) (domain.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.data[name]
	if !ok {
		return domain.Definition{}, domain.ErrDefinitionNotFound
	}

	// Copy on read so callers can't mutate the stored source.
	def.Source = slices.Clone(def.Source)
	return def, nil
}

// Delete removes a definition.
func (r *Repository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[name]; !ok {
		return domain.ErrDefinitionNotFound
	}
	delete(r.data, name)
	return nil
}

// List returns the stored names in order.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.data))
	for name := range r.data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
