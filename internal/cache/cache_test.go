package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_SetGet(t *testing.T) {
	c := NewMemoryClient(10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryClient_MissAndExpiry(t *testing.T) {
	c := NewMemoryClient(10)
	ctx := context.Background()

	_, err := c.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), -time.Second))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_Delete(t *testing.T) {
	c := NewMemoryClient(10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_EvictsOldestAtCapacity(t *testing.T) {
	c := NewMemoryClient(3)
	ctx := context.Background()

	// Staggered TTLs make the first key the eviction candidate
	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("k%d", i)
		require.NoError(t, c.Set(ctx, key, []byte("v"), time.Duration(i+1)*time.Minute))
	}

	require.NoError(t, c.Set(ctx, "k3", []byte("v"), 10*time.Minute))

	_, err := c.Get(ctx, "k0")
	assert.ErrorIs(t, err, ErrCacheMiss)

	for _, key := range []string{"k1", "k2", "k3"} {
		_, err := c.Get(ctx, key)
		assert.NoError(t, err, "key %s", key)
	}
}
