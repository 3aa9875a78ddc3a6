// Package cache implements the process-wide Response Cache (spec §4.2):
// a resource-key → entry map with randomized per-class TTLs and content-hash
// new-message detection. Grounded on original_source's
// app/services/cache_service.py::UnipileCache, translated from its
// singleton-dict-per-resource-class shape into a single keyed map guarded
// by sync.RWMutex, with singleflight collapsing concurrent misses for the
// same key so a cache stampede never produces duplicate provider calls.
package cache

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type ResourceClass int

const (
	ClassChats ResourceClass = iota
	ClassProfile
	ClassMessages
)

var ttlBands = map[ResourceClass][2]time.Duration{
	ClassChats:    {30 * time.Minute, 60 * time.Minute},
	ClassProfile:  {24 * time.Hour, 30 * time.Hour},
	ClassMessages: {5 * time.Minute, 10 * time.Minute},
}

type entry struct {
	data            interface{}
	expiresAt       time.Time
	lastContentHash string
}

// ResponseCache caches provider responses with randomized TTLs per resource
// class. TTL randomization is mandatory (spec §4.2) — deterministic TTLs
// would fingerprint polling cadence.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
}

func NewResponseCache() *ResponseCache {
	return &ResponseCache{entries: make(map[string]*entry)}
}

func key(class ResourceClass, id string) string {
	return fmt.Sprintf("%d:%s", class, id)
}

func randomTTL(class ResourceClass) time.Duration {
	band := ttlBands[class]
	span := band[1] - band[0]
	jitter := time.Duration(rand.Int63n(int64(span)+1)) + time.Duration(rand.Intn(60))*time.Second
	return band[0] + jitter
}

// Get returns the cached value and whether it is still fresh. A nil,false
// result means the caller must fetch and call Set.
func (c *ResponseCache) Get(class ResourceClass, id string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key(class, id)]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

// Set stores a fresh value with a randomized TTL for its class and returns
// whether the content hash changed since the prior entry (has_new_messages,
// meaningful only for ClassMessages). A key with no prior entry counts as
// having an empty prior hash, so a first non-empty hash reports new content.
func (c *ResponseCache) Set(class ResourceClass, id string, data interface{}, contentHash string) (hasNewContent bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(class, id)
	priorHash := ""
	if prior, ok := c.entries[k]; ok {
		priorHash = prior.lastContentHash
	}
	hasNewContent = priorHash != contentHash

	c.entries[k] = &entry{
		data:            data,
		expiresAt:       time.Now().Add(randomTTL(class)),
		lastContentHash: contentHash,
	}
	return hasNewContent
}

// Invalidate force-evicts an entry; used sparingly by callers that pass an
// explicit refresh flag (spec §4.2).
func (c *ResponseCache) Invalidate(class ResourceClass, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key(class, id))
}

// FetchFunc performs the underlying provider call on a cache miss; it
// returns the data plus a content hash used for new-message detection.
type FetchFunc func(ctx context.Context) (data interface{}, contentHash string, err error)

// GetOrFetch returns the cached value if fresh, otherwise calls fetch
// exactly once per key even under concurrent callers (singleflight),
// caches the result, and reports whether new content was detected.
func (c *ResponseCache) GetOrFetch(ctx context.Context, class ResourceClass, id string, fetch FetchFunc) (data interface{}, hasNewContent bool, err error) {
	if cached, fresh := c.Get(class, id); fresh {
		return cached, false, nil
	}

	v, err, _ := c.group.Do(key(class, id), func() (interface{}, error) {
		fetched, hash, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		isNew := c.Set(class, id, fetched, hash)
		return struct {
			data  interface{}
			isNew bool
		}{fetched, isNew}, nil
	})
	if err != nil {
		return nil, false, err
	}
	result := v.(struct {
		data  interface{}
		isNew bool
	})
	return result.data, result.isNew, nil
}

// HashMessages mirrors _hash_messages: a cheap fingerprint of the most
// recent message's id and timestamp, sufficient to detect new arrivals
// without comparing full message bodies.
func HashMessages(lastMessageID, lastMessageTimestamp string) string {
	if lastMessageID == "" && lastMessageTimestamp == "" {
		return ""
	}
	return lastMessageID + "-" + lastMessageTimestamp
}
