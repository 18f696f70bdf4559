package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/conform/pkg/domain"
	"github.com/aretw0/conform/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.DefinitionRepository
	logger *slog.Logger
}

// NewLoggingMiddleware logs every repository call at debug level.
// Failures other than a missing definition are logged at warn level.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.DefinitionRepository) ports.DefinitionRepository {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) Save(ctx context.Context, def domain.Definition) error {
	start := time.Now()
	err := m.next.Save(ctx, def)
	m.log(ctx, "save", def.Name, start, err)
	return err
}

func (m *loggingMiddleware) Get(ctx context.Context, name string) (domain.Definition, error) {
	start := time.Now()
	def, err := m.next.Get(ctx, name)
	m.log(ctx, "get", name, start, err)
	return def, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := m.next.Delete(ctx, name)
	m.log(ctx, "delete", name, start, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := m.next.List(ctx)
	m.log(ctx, "list", "", start, err)
	return names, err
}

func (m *loggingMiddleware) log(ctx context.Context, op, name string, start time.Time, err error) {
	level := slog.LevelDebug
	if err != nil && !errors.Is(err, domain.ErrDefinitionNotFound) {
		level = slog.LevelWarn
	}
	attrs := []any{"op", op, "duration", time.Since(start)}
	if name != "" {
		attrs = append(attrs, "schema", name)
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	m.logger.Log(ctx, level, "repository call", attrs...)
}
