package conform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/conform/pkg/adapters/memory"
	"github.com/aretw0/conform/pkg/definition"
	"github.com/aretw0/conform/pkg/domain"
	"github.com/aretw0/conform/pkg/ports"
	"github.com/aretw0/conform/pkg/registry"
	"github.com/aretw0/conform/pkg/schema"
)

// Version is the release of the library and the conform binary. Overridden at build time.
var Version = "dev"

// MetricsRecorder receives one observation per validation run.
type MetricsRecorder interface {
	ObserveValidation(schema string, valid bool, errors int, took time.Duration)
}

// Engine is the high-level entry point: it stores named definitions in a
// repository and validates documents against them.
type Engine struct {
	repo       ports.DefinitionRepository
	registry   *registry.Registry
	metrics    MetricsRecorder
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	allowExtra bool

	mu    sync.RWMutex
	cache map[string]compiled
}

type compiled struct {
	source []byte
	schema schema.Schema
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry makes custom validators available to $custom directives.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithMetrics records every validation run.
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithExtraProperties sets the default policy for document fields the schema
// does not declare. Individual calls can override it with AllowExtra.
func WithExtraProperties(allow bool) Option {
	return func(e *Engine) {
		e.allowExtra = allow
	}
}

// New creates an Engine backed by repo. A nil repo means an in-memory one.
func New(repo ports.DefinitionRepository, opts ...Option) *Engine {
	eng := &Engine{
		repo:  repo,
		cache: make(map[string]compiled),
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.repo == nil {
		eng.repo = memory.NewRepository()
	}
	if eng.registry == nil {
		eng.registry = registry.NewRegistry()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return eng
}

// Registry returns the custom validator registry used when parsing definitions.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Register parses source and, when it is a valid definition, stores it under name.
func (e *Engine) Register(ctx context.Context, name string, source []byte) error {
	if err := domain.ValidateName(name); err != nil {
		return err
	}
	s, err := e.parse(source)
	if err != nil {
		return err
	}

	def := domain.Definition{
		Name:      name,
		Format:    domain.DetectFormat(source),
		Source:    bytes.Clone(source),
		UpdatedAt: time.Now().UTC(),
	}
	if err := e.repo.Save(ctx, def); err != nil {
		return fmt.Errorf("failed to save definition %q: %w", name, err)
	}

	e.mu.Lock()
	e.cache[name] = compiled{source: def.Source, schema: s}
	e.mu.Unlock()

	e.logger.Info("definition registered", "schema", name, "format", def.Format, "fields", len(s))
	if e.hooks.OnDefinitionSaved != nil {
		e.hooks.OnDefinitionSaved(ctx, &domain.DefinitionEvent{
			EventBase: domain.EventBase{Timestamp: def.UpdatedAt, Type: domain.EventDefinitionSaved},
			Name:      name,
		})
	}
	return nil
}

// Definition returns the stored definition for name.
func (e *Engine) Definition(ctx context.Context, name string) (domain.Definition, error) {
	return e.repo.Get(ctx, name)
}

// Schema loads and compiles the definition stored under name.
func (e *Engine) Schema(ctx context.Context, name string) (schema.Schema, error) {
	def, err := e.repo.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	// The repository may be shared, so the cache is only trusted while the source matches.
	e.mu.RLock()
	hit, ok := e.cache[name]
	e.mu.RUnlock()
	if ok && bytes.Equal(hit.source, def.Source) {
		return hit.schema, nil
	}

	s, err := e.parse(def.Source)
	if err != nil {
		return nil, fmt.Errorf("stored definition %q: %w", name, err)
	}
	e.mu.Lock()
	e.cache[name] = compiled{source: def.Source, schema: s}
	e.mu.Unlock()
	return s, nil
}

// ValidateOption configures a single Validate call.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowExtra bool
}

// AllowExtra overrides the engine's extra property policy for one call.
func AllowExtra(allow bool) ValidateOption {
	return func(c *validateConfig) {
		c.allowExtra = allow
	}
}

// Validate checks document against the definition stored under name.
// An invalid document is not an error: it yields a Report with Valid false.
// Errors are reserved for unknown names, broken definitions and documents
// whose shape breaks the schema contract (see schema.ContractError).
func (e *Engine) Validate(ctx context.Context, name string, document map[string]any, opts ...ValidateOption) (*domain.Report, error) {
	cfg := validateConfig{allowExtra: e.allowExtra}
	for _, opt := range opts {
		opt(&cfg)
	}

	s, err := e.Schema(ctx, name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	errs, err := schema.Check(s, document, schema.WithExtraProperties(cfg.allowExtra))
	took := time.Since(start)
	if err != nil {
		e.logger.Warn("validation aborted", "schema", name, "error", err)
		return nil, err
	}

	report := domain.NewReport(name, errs, took)
	e.logger.Info("document validated",
		"schema", name,
		"valid", report.Valid,
		"errors", len(report.Errors),
		"report_id", report.ID,
		"duration", took,
	)
	if e.metrics != nil {
		e.metrics.ObserveValidation(name, report.Valid, len(report.Errors), took)
	}
	if e.hooks.OnValidated != nil {
		e.hooks.OnValidated(ctx, &domain.ValidationEvent{
			EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventValidated},
			Report:    report,
		})
	}
	return report, nil
}

// List returns the names of all stored definitions.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.repo.List(ctx)
}

// Delete removes the definition stored under name.
func (e *Engine) Delete(ctx context.Context, name string) error {
	if err := e.repo.Delete(ctx, name); err != nil {
		return err
	}

	e.mu.Lock()
	delete(e.cache, name)
	e.mu.Unlock()

	e.logger.Info("definition deleted", "schema", name)
	if e.hooks.OnDefinitionDeleted != nil {
		e.hooks.OnDefinitionDeleted(ctx, &domain.DefinitionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventDefinitionDeleted},
			Name:      name,
		})
	}
	return nil
}

func (e *Engine) parse(source []byte) (schema.Schema, error) {
	if len(bytes.TrimSpace(source)) == 0 {
		return nil, fmt.Errorf("%w: empty source", domain.ErrInvalidDefinition)
	}
	return definition.Parse(source, definition.WithRegistry(e.registry))
}

// IsContractError reports whether err is a schema contract violation.
func IsContractError(err error) bool {
	var ce *schema.ContractError
	return errors.As(err, &ce)
}
