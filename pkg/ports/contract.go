package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/conform/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDefinitionRepositoryContract runs a suite of tests to verify that a
// DefinitionRepository implementation adheres to the interface contract.
func RunDefinitionRepositoryContract(t *testing.T, repo DefinitionRepository) {
	t.Helper()
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Get", func(t *testing.T) {
		def := domain.Definition{
			Name:      name,
			Format:    domain.FormatYAML,
			Source:    []byte("email: email\n"),
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, repo.Save(ctx, def), "Save should not return error")

		got, err := repo.Get(ctx, name)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, def.Name, got.Name)
		assert.Equal(t, def.Format, got.Format)
		assert.Equal(t, string(def.Source), string(got.Source))
		assert.False(t, got.UpdatedAt.IsZero(), "UpdatedAt should be kept")
	})

	t.Run("Save Replaces", func(t *testing.T) {
		def := domain.Definition{
			Name:      name,
			Format:    domain.FormatJSON,
			Source:    []byte(`{"email":"email","name":"string"}`),
			UpdatedAt: time.Now().UTC(),
		}
		require.NoError(t, repo.Save(ctx, def))

		got, err := repo.Get(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, domain.FormatJSON, got.Format)
		assert.Equal(t, string(def.Source), string(got.Source))
	})

	t.Run("Returned Source Is A Copy", func(t *testing.T) {
		got, err := repo.Get(ctx, name)
		require.NoError(t, err)
		got.Source[0] = 'X'

		again, err := repo.Get(ctx, name)
		require.NoError(t, err)
		assert.NotEqual(t, byte('X'), again.Source[0])
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing-"+name)
		assert.ErrorIs(t, err, domain.ErrDefinitionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, name), "Delete should not return error")

		_, err := repo.Get(ctx, name)
		assert.ErrorIs(t, err, domain.ErrDefinitionNotFound, "Get after Delete should return ErrDefinitionNotFound")

		assert.ErrorIs(t, repo.Delete(ctx, name), domain.ErrDefinitionNotFound, "second Delete should report the missing name")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-b"
		id2 := name + "-a"
		for _, id := range []string{id1, id2} {
			require.NoError(t, repo.Save(ctx, domain.Definition{
				Name:      id,
				Format:    domain.FormatYAML,
				Source:    []byte("a: string\n"),
				UpdatedAt: time.Now().UTC(),
			}))
		}
		defer func() {
			_ = repo.Delete(ctx, id1)
			_ = repo.Delete(ctx, id2)
		}()

		names, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
		assert.IsNonDecreasing(t, names, "List should be sorted")
	})
}
