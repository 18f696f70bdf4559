package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/conform/pkg/domain"
	"github.com/aretw0/conform/pkg/schema"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	published  []published
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestNewPublisher_DeclaresExchange(t *testing.T) {
	ch := &fakeChannel{}
	_, err := NewPublisher(ch, "conform.events")
	require.NoError(t, err)
	assert.Equal(t, []string{"conform.events:topic"}, ch.declared)

	_, err = NewPublisher(nil, "x")
	assert.Error(t, err)
	_, err = NewPublisher(ch, "")
	assert.Error(t, err)
}

func TestPublisher_Hooks(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch, "conform.events")
	require.NoError(t, err)
	hooks := p.Hooks()
	ctx := context.Background()

	hooks.OnDefinitionSaved(ctx, &domain.DefinitionEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDefinitionSaved},
		Name:      "user",
	})
	report := domain.NewReport("user", []schema.ValidationError{{Message: "Expected string", Path: []string{"name"}}}, time.Millisecond)
	hooks.OnValidated(ctx, &domain.ValidationEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventValidated},
		Report:    report,
	})
	hooks.OnDefinitionDeleted(ctx, &domain.DefinitionEvent{Name: "user"})

	require.Len(t, ch.published, 3)
	assert.Equal(t, KeyDefinitionSaved, ch.published[0].key)
	assert.Equal(t, "document.validated.invalid", ch.published[1].key)
	assert.Equal(t, KeyDefinitionDeleted, ch.published[2].key)

	msg := ch.published[1].msg
	assert.Equal(t, "conform.events", ch.published[1].exchange)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var body struct {
		Type   string `json:"type"`
		Report struct {
			Schema string `json:"schema"`
			Valid  bool   `json:"valid"`
			Errors []struct {
				Error string   `json:"error"`
				Path  []string `json:"path"`
			} `json:"errors"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "validated", body.Type)
	assert.Equal(t, "user", body.Report.Schema)
	assert.False(t, body.Report.Valid)
	require.Len(t, body.Report.Errors, 1)
	assert.Equal(t, []string{"name"}, body.Report.Errors[0].Path)
}

func TestPublisher_HookFailureIsSwallowed(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("broker gone")}
	p, err := NewPublisher(ch, "conform.events")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		p.Hooks().OnDefinitionSaved(context.Background(), &domain.DefinitionEvent{Name: "x"})
	})
	assert.ErrorContains(t, p.Publish(context.Background(), "k", map[string]string{}), "broker gone")
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch, "conform.events")
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
	assert.ErrorContains(t, p.Publish(context.Background(), "k", 1), "closed")
}

func TestValidatedKey(t *testing.T) {
	assert.Equal(t, "document.validated.valid", ValidatedKey(domain.NewReport("a", nil, 0)))
	assert.Equal(t, "document.validated.invalid", ValidatedKey(nil))
}
