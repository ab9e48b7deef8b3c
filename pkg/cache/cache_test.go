package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New[string](time.Minute)
	defer c.Stop()

	_, found := c.Get("missing")
	assert.False(t, found)

	expiresAt := c.Set("key", "value")
	assert.True(t, expiresAt.After(time.Now()))

	value, found := c.Get("key")
	require.True(t, found)
	assert.Equal(t, "value", value)

	value, gotExpiry, found := c.GetWithExpiry("key")
	require.True(t, found)
	assert.Equal(t, "value", value)
	assert.Equal(t, expiresAt, gotExpiry)
}

func TestCacheExpiry(t *testing.T) {
	c := New[int](10 * time.Millisecond)
	defer c.Stop()

	c.Set("key", 42)
	value, found := c.Get("key")
	require.True(t, found)
	assert.Equal(t, 42, value)

	time.Sleep(20 * time.Millisecond)

	_, found = c.Get("key")
	assert.False(t, found)
}

func TestCacheDeleteClearSize(t *testing.T) {
	c := New[int](time.Minute)
	defer c.Stop()

	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 2, c.Size())

	c.Delete("a")
	assert.Equal(t, 1, c.Size())
	_, found := c.Get("a")
	assert.False(t, found)

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestCacheTTL(t *testing.T) {
	c := New[int](15 * time.Minute)
	defer c.Stop()

	assert.Equal(t, 15*time.Minute, c.TTL())
}

func TestCachePointerValues(t *testing.T) {
	type result struct{ Score float64 }

	c := New[*result](time.Minute)
	defer c.Stop()

	stored := &result{Score: 77}
	c.Set("key", stored)

	got, found := c.Get("key")
	require.True(t, found)
	assert.Same(t, stored, got)
}
