package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type row struct{ Name string }
	stored := []row{{Name: "a"}, {Name: "b"}}
	require.NoError(t, mc.Set(ctx, "rows", stored, time.Minute))

	var got []row
	require.NoError(t, mc.Get(ctx, "rows", &got))
	assert.Equal(t, stored, got)
}

func TestMemoryCacheTypeMismatchReadsAsMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", 42, time.Minute))

	var got []string
	assert.ErrorIs(t, mc.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestMemoryCacheExpiredEntryIsMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", time.Nanosecond))
	time.Sleep(time.Millisecond)

	var got string
	assert.ErrorIs(t, mc.Get(ctx, "k", &got), ErrCacheMiss)
}
