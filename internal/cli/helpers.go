package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/conform/internal/config"
	"github.com/aretw0/conform/internal/logging"
	"github.com/aretw0/conform/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger builds the application logger from the configuration.
func NewLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(os.Stderr, level, logging.Format(cfg.LogFormat)), nil
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDefinitionSaved: func(ctx context.Context, e *domain.DefinitionEvent) {
			logger.Debug("Definition Saved", "schema", e.Name)
		},
		OnDefinitionDeleted: func(ctx context.Context, e *domain.DefinitionEvent) {
			logger.Debug("Definition Deleted", "schema", e.Name)
		},
		OnValidated: func(ctx context.Context, e *domain.ValidationEvent) {
			logger.Debug("Document Validated", "schema", e.Report.Schema, "valid", e.Report.Valid, "report_id", e.Report.ID)
		},
	}
}

// chainHooks calls every set hook of each argument, in order.
func chainHooks(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		if h.OnDefinitionSaved != nil {
			prev, next := out.OnDefinitionSaved, h.OnDefinitionSaved
			out.OnDefinitionSaved = func(ctx context.Context, e *domain.DefinitionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnDefinitionDeleted != nil {
			prev, next := out.OnDefinitionDeleted, h.OnDefinitionDeleted
			out.OnDefinitionDeleted = func(ctx context.Context, e *domain.DefinitionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnValidated != nil {
			prev, next := out.OnValidated, h.OnValidated
			out.OnValidated = func(ctx context.Context, e *domain.ValidationEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
	}
	return out
}
