package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/conform/pkg/schema"
)

// Registry holds named custom validators that definitions reference with
// the $custom directive.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]schema.Validator
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[string]schema.Validator),
	}
}

// Register adds a validator to the registry.
// If a validator with the same name exists, it is overwritten.
func (r *Registry) Register(name string, v schema.Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = v
}

// RegisterFunc is Register for plain functions.
func (r *Registry) RegisterFunc(name string, fn func(root, value any) []schema.ValidationError) {
	r.Register(name, schema.ValidatorFunc(fn))
}

// Lookup returns the validator registered under name.
func (r *Registry) Lookup(name string) (schema.Validator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[name]
	return v, ok
}

// MustLookup is Lookup that returns an error for unknown names.
func (r *Registry) MustLookup(name string) (schema.Validator, error) {
	v, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("validator not found: %s", name)
	}
	return v, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
