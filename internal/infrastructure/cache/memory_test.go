package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "value", 0))

	var got string
	ok, err := m.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestMemory_GetMissing(t *testing.T) {
	m := NewMemory()

	var got string
	ok, err := m.Get(context.Background(), "nope", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_TTLExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "value", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	var got string
	ok, err := m.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", 42, 0))
	require.NoError(t, m.Delete(ctx, "k"))

	var got int
	ok, err := m.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_IncrWithTTL_CountsUp(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := m.IncrWithTTL(ctx, "counter", 1, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
}

func TestMemory_IncrWithTTL_WindowResets(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	n, err := m.IncrWithTTL(ctx, "counter", 1, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	time.Sleep(20 * time.Millisecond)

	// First hit of a fresh window: the count starts over.
	n, err = m.IncrWithTTL(ctx, "counter", 1, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
