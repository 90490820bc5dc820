package cache

import (
	"fmt"
	"time"

	"fxconvert/internal/converter"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
)

// CacheStats is a point-in-time copy of the session cache counters.
type CacheStats struct {
	Hits        uint64
	Misses      uint64
	KeysAdded   uint64
	KeysEvicted uint64
}

// RistrettoSessionCache keeps one converter per UI session. A converter leaving the cache,
// whether deleted, evicted, expired or rejected on admission, is disposed.
type RistrettoSessionCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewSessionCache(maxItems int64, ttl time.Duration) (*RistrettoSessionCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		// Every session costs 1, so MaxCost is the session count.
		MaxCost:            maxItems,
		IgnoreInternalCost: true,
		BufferItems:        64,
		Metrics:            true,
		OnExit: func(val interface{}) {
			if conv, ok := val.(*converter.Converter); ok {
				conv.Dispose()
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache failed: %w", err)
	}
	return &RistrettoSessionCache{cache: c, ttl: ttl}, nil
}

func (c *RistrettoSessionCache) Get(id uuid.UUID) (*converter.Converter, bool) {
	if v, ok := c.cache.Get(id.String()); ok {
		conv, ok := v.(*converter.Converter)
		return conv, ok
	}
	return nil, false
}

// Set stores the converter and reports whether the cache admitted it. A converter the
// admission policy rejects has already been disposed when Set returns false.
func (c *RistrettoSessionCache) Set(id uuid.UUID, conv *converter.Converter) bool {
	var added bool
	if c.ttl > 0 {
		added = c.cache.SetWithTTL(id.String(), conv, 1, c.ttl)
	} else {
		added = c.cache.Set(id.String(), conv, 1)
	}
	c.cache.Wait()
	return added && !conv.Disposed()
}

func (c *RistrettoSessionCache) Delete(id uuid.UUID) {
	c.cache.Del(id.String())
}

func (c *RistrettoSessionCache) Stats() CacheStats {
	m := c.cache.Metrics
	if m == nil {
		return CacheStats{}
	}
	return CacheStats{
		Hits:        m.Hits(),
		Misses:      m.Misses(),
		KeysAdded:   m.KeysAdded(),
		KeysEvicted: m.KeysEvicted(),
	}
}

func (c *RistrettoSessionCache) Close() { c.cache.Close() }
