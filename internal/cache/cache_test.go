package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)
	require.NotNil(t, c.store)

	t.Run("set and get", func(t *testing.T) {
		c.Set("https://example.com/a.json", Entry{Body: []byte("[]"), ContentType: "application/json"})
		e, ok := c.Get("https://example.com/a.json")
		require.True(t, ok)
		assert.Equal(t, []byte("[]"), e.Body)
		assert.Equal(t, "application/json", e.ContentType)
	})

	t.Run("missing", func(t *testing.T) {
		_, ok := c.Get("nope")
		assert.False(t, ok)
	})

	t.Run("delete and clear", func(t *testing.T) {
		c.Set("b", Entry{})
		c.Delete("b")
		_, ok := c.Get("b")
		assert.False(t, ok)

		c.Set("c", Entry{})
		c.Clear()
		assert.Zero(t, c.ItemCount())
	})
}

func TestCacheExpiry(t *testing.T) {
	c := New(5*time.Minute, time.Minute)
	c.SetWithTTL("short", Entry{Body: []byte("x")}, 20*time.Millisecond)

	_, ok := c.Get("short")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = c.Get("short")
	assert.False(t, ok)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(time.Minute, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set("shared", Entry{Body: []byte("[]")})
			c.Get("shared")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.ItemCount())
}
