package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/skusweep/pkg/catalog"
)

func TestMemoryFindByIdentifier(t *testing.T) {
	mem := catalog.NewMemory(
		catalog.Record{ID: "1", IdentifierValue: "SKU-A"},
		catalog.Record{ID: "2", IdentifierValue: "SKU-B"},
		catalog.Record{ID: "3", IdentifierValue: "SKU-A"},
	)
	ctx := context.Background()

	t.Run("returns matches in insertion order", func(t *testing.T) {
		got, err := mem.FindByIdentifier(ctx, "SKU-A")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "3", got[1].ID)
	})

	t.Run("no match is empty not nil", func(t *testing.T) {
		got, err := mem.FindByIdentifier(ctx, "SKU-Z")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("case sensitive", func(t *testing.T) {
		got, err := mem.FindByIdentifier(ctx, "sku-a")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("injected failure", func(t *testing.T) {
		boom := errors.New("boom")
		mem.FailLookup("SKU-B", boom)
		_, err := mem.FindByIdentifier(ctx, "SKU-B")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("counts lookups", func(t *testing.T) {
		assert.Equal(t, 1, mem.Lookups("SKU-Z"))
	})
}

func TestMemoryDelete(t *testing.T) {
	mem := catalog.NewMemory(
		catalog.Record{ID: "1", IdentifierValue: "SKU-A"},
		catalog.Record{ID: "2", IdentifierValue: "SKU-A"},
	)
	ctx := context.Background()

	res, err := mem.Delete(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, catalog.Deleted, res)

	res, err = mem.Delete(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, catalog.NotFound, res)

	assert.Equal(t, []string{"2"}, mem.Deletes())
	require.Len(t, mem.Records(), 1)
	assert.Equal(t, "1", mem.Records()[0].ID)
}

func TestMemoryCanceledContext(t *testing.T) {
	mem := catalog.NewMemory(catalog.Record{ID: "1", IdentifierValue: "SKU-A"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mem.FindByIdentifier(ctx, "SKU-A")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = mem.Delete(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, mem.Records(), 1)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	mem := catalog.NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mem.Add(catalog.Record{ID: "x", IdentifierValue: "SKU"})
			_, _ = mem.FindByIdentifier(context.Background(), "SKU")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, mem.Lookups("SKU"))
	assert.Len(t, mem.Records(), 50)
}

func TestDeleteResultString(t *testing.T) {
	assert.Equal(t, "deleted", catalog.Deleted.String())
	assert.Equal(t, "not_found", catalog.NotFound.String())
}
