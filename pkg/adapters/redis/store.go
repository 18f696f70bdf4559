package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/aretw0/conform/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "conform:definition:"

// Repository implements ports.DefinitionRepository using Redis.
// Definitions are stored as JSON under <prefix><name>; a sorted set at
// <prefix>index tracks the names so List does not need SCAN.
type Repository struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Repository.
type Option func(*Repository)

// WithTTL expires definitions that have not been saved for ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		r.ttl = ttl
	}
}

// WithPrefix sets the key prefix (default "conform:definition:").
func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.prefix = prefix
	}
}

// New connects to the Redis server at addr.
func New(addr, password string, db int, opts ...Option) *Repository {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Repository {
	r := &Repository{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) key(name string) string {
	return r.prefix + name
}

func (r *Repository) indexKey() string {
	return r.prefix + "index"
}

// Save stores the definition and refreshes its index entry.
func (r *Repository) Save(ctx context.Context, def domain.Definition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	// Score is the expiry time so stale index entries can be trimmed by range.
	var score float64
	if r.ttl > 0 {
		score = float64(time.Now().Add(r.ttl).Unix())
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(def.Name), data, r.ttl)
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{Score: score, Member: def.Name})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save definition to redis: %w", err)
	}
	return nil
}

// Get loads a definition by name.
func (r *Repository) Get(ctx context.Context, name string) (domain.Definition, error) {
	data, err := r.client.Get(ctx, r.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Definition{}, domain.ErrDefinitionNotFound
		}
		return domain.Definition{}, fmt.Errorf("failed to load definition from redis: %w", err)
	}

	var def domain.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return domain.Definition{}, fmt.Errorf("failed to unmarshal definition: %w", err)
	}
	return def, nil
}

// Delete removes a definition and its index entry.
func (r *Repository) Delete(ctx context.Context, name string) error {
	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, r.key(name))
	pipe.ZRem(ctx, r.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete definition from redis: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrDefinitionNotFound
	}
	return nil
}

// List returns the indexed names, trimming entries whose keys have expired.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	if r.ttl > 0 {
		now := strconv.FormatInt(time.Now().Unix(), 10)
		if err := r.client.ZRemRangeByScore(ctx, r.indexKey(), "(0", now).Err(); err != nil {
			return nil, fmt.Errorf("failed to trim redis index: %w", err)
		}
	}

	names, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions from redis: %w", err)
	}
	slices.Sort(names)
	return names, nil
}
