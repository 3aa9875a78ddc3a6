package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCache_GetSet(t *testing.T) {
	t.Run("miss before any Set", func(t *testing.T) {
		c := NewResponseCache()
		_, ok := c.Get(ClassProfile, "lead-1")
		assert.False(t, ok)
	})

	t.Run("hit immediately after Set", func(t *testing.T) {
		c := NewResponseCache()
		c.Set(ClassProfile, "lead-1", "profile-data", "hash-1")

		v, ok := c.Get(ClassProfile, "lead-1")
		require.True(t, ok)
		assert.Equal(t, "profile-data", v)
	})

	t.Run("different resource classes do not collide on the same id", func(t *testing.T) {
		c := NewResponseCache()
		c.Set(ClassProfile, "lead-1", "profile-data", "")
		_, ok := c.Get(ClassMessages, "lead-1")
		assert.False(t, ok)
	})
}

func TestResponseCache_SetReportsNewContent(t *testing.T) {
	c := NewResponseCache()

	hasNew := c.Set(ClassMessages, "lead-1", "first-batch", "hash-a")
	assert.True(t, hasNew, "first Set differs from the empty prior hash")

	hasNew = c.Set(ClassMessages, "lead-1", "second-batch", "hash-a")
	assert.False(t, hasNew, "identical content hash means no new messages")

	hasNew = c.Set(ClassMessages, "lead-1", "third-batch", "hash-b")
	assert.True(t, hasNew, "changed content hash means new messages arrived")
}

func TestResponseCache_Invalidate(t *testing.T) {
	c := NewResponseCache()
	c.Set(ClassChats, "lead-1", "chats", "")
	c.Invalidate(ClassChats, "lead-1")

	_, ok := c.Get(ClassChats, "lead-1")
	assert.False(t, ok)
}

func TestResponseCache_GetOrFetch(t *testing.T) {
	t.Run("fetches on miss and caches the result", func(t *testing.T) {
		c := NewResponseCache()
		calls := 0
		fetch := func(ctx context.Context) (interface{}, string, error) {
			calls++
			return "fetched-data", "hash-1", nil
		}

		data, isNew, err := c.GetOrFetch(context.Background(), ClassProfile, "lead-1", fetch)
		require.NoError(t, err)
		assert.Equal(t, "fetched-data", data)
		assert.True(t, isNew)
		assert.Equal(t, 1, calls)

		data, isNew, err = c.GetOrFetch(context.Background(), ClassProfile, "lead-1", fetch)
		require.NoError(t, err)
		assert.Equal(t, "fetched-data", data)
		assert.False(t, isNew)
		assert.Equal(t, 1, calls, "second call should be served from cache without invoking fetch")
	})

	t.Run("propagates fetch errors without caching", func(t *testing.T) {
		c := NewResponseCache()
		wantErr := errors.New("provider unavailable")
		fetch := func(ctx context.Context) (interface{}, string, error) {
			return nil, "", wantErr
		}

		_, _, err := c.GetOrFetch(context.Background(), ClassProfile, "lead-1", fetch)
		assert.ErrorIs(t, err, wantErr)

		_, ok := c.Get(ClassProfile, "lead-1")
		assert.False(t, ok)
	})

	t.Run("collapses concurrent misses into a single fetch", func(t *testing.T) {
		c := NewResponseCache()
		var calls int
		var mu sync.Mutex
		release := make(chan struct{})
		fetch := func(ctx context.Context) (interface{}, string, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			<-release
			return "fetched-data", "hash-1", nil
		}

		var wg sync.WaitGroup
		results := make([]interface{}, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				data, _, err := c.GetOrFetch(context.Background(), ClassMessages, "lead-1", fetch)
				require.NoError(t, err)
				results[idx] = data
			}(i)
		}

		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, calls, "singleflight should collapse concurrent misses for the same key")
		for _, r := range results {
			assert.Equal(t, "fetched-data", r)
		}
	})
}

func TestHashMessages(t *testing.T) {
	t.Run("empty when both inputs are empty", func(t *testing.T) {
		assert.Equal(t, "", HashMessages("", ""))
	})

	t.Run("combines id and timestamp", func(t *testing.T) {
		assert.Equal(t, "msg-1-2026-01-10T09:30:00Z", HashMessages("msg-1", "2026-01-10T09:30:00Z"))
	})

	t.Run("differs when either input changes", func(t *testing.T) {
		a := HashMessages("msg-1", "2026-01-10T09:30:00Z")
		b := HashMessages("msg-2", "2026-01-10T09:30:00Z")
		assert.NotEqual(t, a, b)
	})
}
