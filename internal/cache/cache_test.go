package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_LookupAndStore(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	found, err := c.Lookup(ctx, []string{"masala oats"})
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, c.Store(ctx, map[string][]string{
		"masala oats":  {"oats", "onion"},
		"paneer tikka": {"paneer", "yogurt"},
	}))

	found, err = c.Lookup(ctx, []string{"masala oats", "poha"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"masala oats": {"oats", "onion"}}, found)
	assert.Equal(t, 2, c.Len())
}

func TestMemory_StoreReplaces(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	require.NoError(t, c.Store(ctx, map[string][]string{"poha": {"rice flakes"}}))
	require.NoError(t, c.Store(ctx, map[string][]string{"poha": {"rice flakes", "peanuts"}}))

	found, err := c.Lookup(ctx, []string{"poha"})
	require.NoError(t, err)
	assert.Equal(t, []string{"rice flakes", "peanuts"}, found["poha"])
	assert.Equal(t, 1, c.Len())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	input := []string{"oats"}

	require.NoError(t, c.Store(ctx, map[string][]string{"oats": input}))
	input[0] = "changed"

	found, err := c.Lookup(ctx, []string{"oats"})
	require.NoError(t, err)
	found["oats"][0] = "mutated"

	again, err := c.Lookup(ctx, []string{"oats"})
	require.NoError(t, err)
	assert.Equal(t, []string{"oats"}, again["oats"])
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("dish %d", n)
			_ = c.Store(ctx, map[string][]string{key: {"ingredient"}})
			_, _ = c.Lookup(ctx, []string{key})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, c.Len())
}
