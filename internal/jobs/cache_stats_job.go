package jobs

import (
	"context"
	"fxconvert/internal/adapters/cache"

	"github.com/sirupsen/logrus"
)

type CacheStatsSource interface {
	Stats() cache.CacheStats
}

type CacheStatsSink interface {
	ObserveSessionCache(stats cache.CacheStats)
}

// SampleCacheStats copies the session cache counters into the metrics sink.
func SampleCacheStats(ctx context.Context, execID string, source CacheStatsSource, sink CacheStatsSink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stats := source.Stats()
	sink.ObserveSessionCache(stats)
	logrus.WithFields(logrus.Fields{
		"exec_id": execID,
		"hits":    stats.Hits,
		"misses":  stats.Misses,
		"added":   stats.KeysAdded,
		"evicted": stats.KeysEvicted,
	}).Debug("Session cache stats sampled")
	return nil
}
