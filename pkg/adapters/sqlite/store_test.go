package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/conform/pkg/adapters/sqlite"
	"github.com/aretw0/conform/pkg/domain"
	"github.com/aretw0/conform/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T, path string) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteRepository_Contract(t *testing.T) {
	db := openDB(t, filepath.Join(t.TempDir(), "conform.db"))
	ports.RunDefinitionRepositoryContract(t, sqlite.NewRepository(db))
}

func TestSQLiteRepository_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conform.db")
	ctx := context.Background()

	db, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sqlite.NewRepository(db).Save(ctx, domain.Definition{
		Name:      "order",
		Format:    domain.FormatJSON,
		Source:    []byte(`{"id":"number"}`),
		UpdatedAt: stamp,
	}))
	require.NoError(t, db.Close())

	// Migrations are idempotent across reopen.
	repo := sqlite.NewRepository(openDB(t, path))
	def, err := repo.Get(ctx, "order")
	require.NoError(t, err)
	assert.Equal(t, domain.FormatJSON, def.Format)
	assert.Equal(t, `{"id":"number"}`, string(def.Source))
	assert.True(t, stamp.Equal(def.UpdatedAt))
}
