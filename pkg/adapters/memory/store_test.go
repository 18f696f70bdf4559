package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/conform/pkg/adapters/memory"
	"github.com/aretw0/conform/pkg/domain"
	"github.com/aretw0/conform/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Contract(t *testing.T) {
	ports.RunDefinitionRepositoryContract(t, memory.NewRepository())
}

func TestMemoryRepository_SaveCopiesSource(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()
	src := []byte("a: string\n")

	require.NoError(t, repo.Save(ctx, domain.Definition{Name: "a", Source: src}))
	src[0] = 'b'

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a: string\n", string(got.Source))
}

func TestMemoryRepository_Concurrent(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("def-%02d", i)
			_ = repo.Save(ctx, domain.Definition{Name: name, Source: []byte("a: string")})
			_, _ = repo.Get(ctx, name)
			_, _ = repo.List(ctx)
		}(i)
	}
	wg.Wait()

	names, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 20)
}
