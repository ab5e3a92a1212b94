package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	invoicedomain "github.com/whizlyai/whizly/internal/invoice/domain"
)

func TestTTLCacheExpires(t *testing.T) {
	c := NewTTLCache[string, int]()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	v, ok = c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	c.Delete("b")
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestMemoryClientCacheScopesByOrg(t *testing.T) {
	ctx := context.Background()
	c := NewClientCache(nil)

	c.SetClient(ctx, 1, &invoicedomain.Client{ID: 9, Name: "Acme"}, time.Minute)
	c.SetClient(ctx, 1, nil, time.Minute)

	got, ok := c.GetClient(ctx, 1, 9)
	require.True(t, ok)
	assert.Equal(t, "Acme", got.Name)

	_, ok = c.GetClient(ctx, 2, 9)
	assert.False(t, ok)
}
