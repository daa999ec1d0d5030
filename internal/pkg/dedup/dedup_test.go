package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SeenOnceWithinTTL(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := newMemory(time.Minute, func() time.Time { return clock })

	seen, err := d.Seen(ctx, "payment:1")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, _ = d.Seen(ctx, "payment:1")
	assert.True(t, seen)

	seen, _ = d.Seen(ctx, "payment:2")
	assert.False(t, seen)

	require.NoError(t, d.Forget(ctx, "payment:2"))
	seen, _ = d.Seen(ctx, "payment:2")
	assert.False(t, seen)

	clock = clock.Add(2 * time.Minute)
	seen, _ = d.Seen(ctx, "payment:1")
	assert.False(t, seen)
}

func TestMemory_GarbageCollectsExpired(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := newMemory(time.Minute, func() time.Time { return clock })

	_, _ = d.Seen(ctx, "a")
	_, _ = d.Seen(ctx, "b")
	clock = clock.Add(5 * time.Minute)
	_, _ = d.Seen(ctx, "c")

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Len(t, d.seen, 1)
	assert.Contains(t, d.seen, "c")
}

func TestNew_NilClientFallsBackToMemory(t *testing.T) {
	d, err := New(context.Background(), nil, "x", 0)
	require.NoError(t, err)
	_, ok := d.(*memoryDeduper)
	assert.True(t, ok)
}
