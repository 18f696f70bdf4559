package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDefinitionSaved   EventType = "definition_saved"
	EventDefinitionDeleted EventType = "definition_deleted"
	EventValidated         EventType = "validated"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// DefinitionEvent reports a change to a stored definition.
type DefinitionEvent struct {
	EventBase
	Name string `json:"name"`
}

// ValidationEvent reports a finished validation.
type ValidationEvent struct {
	EventBase
	Report *Report `json:"report"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnDefinitionSaved   func(context.Context, *DefinitionEvent)
	OnDefinitionDeleted func(context.Context, *DefinitionEvent)
	OnValidated         func(context.Context, *ValidationEvent)
}
