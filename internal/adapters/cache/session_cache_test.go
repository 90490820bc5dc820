package cache

import (
	"context"
	"testing"
	"time"

	"fxconvert/internal/converter"
	"fxconvert/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type staticSource struct{}

func (staticSource) FetchRates(context.Context) (domain.RateSnapshot, error) {
	return domain.RateSnapshot{Rates: domain.RateTable{"USD": 1, "EUR": 0.85}}, nil
}

func (staticSource) BaseURL() string { return "http://localhost:5000" }

func TestSessionCache_SetAndGet(t *testing.T) {
	c, err := NewSessionCache(128, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	id := uuid.New()
	conv := converter.New(staticSource{})

	require.True(t, c.Set(id, conv))

	got, ok := c.Get(id)
	require.True(t, ok)
	require.Same(t, conv, got)
	require.False(t, got.Disposed())
}

func TestSessionCache_GetMissWhenEmpty(t *testing.T) {
	c, err := NewSessionCache(64, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	conv, ok := c.Get(uuid.New())
	require.False(t, ok)
	require.Nil(t, conv)
}

func TestSessionCache_DeleteDisposesConverter(t *testing.T) {
	c, err := NewSessionCache(64, 0)
	require.NoError(t, err)
	defer c.Close()

	keepID, dropID := uuid.New(), uuid.New()
	keep, drop := converter.New(staticSource{}), converter.New(staticSource{})
	require.True(t, c.Set(keepID, keep))
	require.True(t, c.Set(dropID, drop))

	c.Delete(dropID)
	c.cache.Wait()

	_, ok := c.Get(dropID)
	require.False(t, ok)
	require.True(t, drop.Disposed())

	got, ok := c.Get(keepID)
	require.True(t, ok)
	require.False(t, got.Disposed())
}

func TestSessionCache_Stats(t *testing.T) {
	c, err := NewSessionCache(64, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	id := uuid.New()
	require.True(t, c.Set(id, converter.New(staticSource{})))
	_, _ = c.Get(id)
	_, _ = c.Get(uuid.New())

	stats := c.Stats()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
	require.Equal(t, uint64(1), stats.KeysAdded)
}

func TestSessionCache_HoldsConfiguredNumberOfSessions(t *testing.T) {
	for _, maxItems := range []int64{20, 200} {
		c, err := NewSessionCache(maxItems, time.Minute)
		require.NoError(t, err)

		ids := make([]uuid.UUID, 0, maxItems)
		convs := make([]*converter.Converter, 0, maxItems)
		for i := int64(0); i < maxItems; i++ {
			id, conv := uuid.New(), converter.New(staticSource{})
			require.True(t, c.Set(id, conv), "session %d of %d rejected", i+1, maxItems)
			ids = append(ids, id)
			convs = append(convs, conv)
		}

		for i, id := range ids {
			got, ok := c.Get(id)
			require.True(t, ok, "session %d of %d missing", i+1, maxItems)
			require.Same(t, convs[i], got)
			require.False(t, convs[i].Disposed())
		}
		stats := c.Stats()
		require.Equal(t, uint64(maxItems), stats.KeysAdded)
		require.Zero(t, stats.KeysEvicted)
		c.Close()
	}
}
