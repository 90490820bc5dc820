package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"fxconvert/internal/adapters/cache"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Testify mocks ---

type MockStatsSource struct{ mock.Mock }

func (m *MockStatsSource) Stats() cache.CacheStats {
	args := m.Called()
	stats, _ := args.Get(0).(cache.CacheStats)
	return stats
}

type recordingSink struct {
	mu       sync.Mutex
	observed []cache.CacheStats
}

func (s *recordingSink) ObserveSessionCache(stats cache.CacheStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observed = append(s.observed, stats)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observed)
}

func TestNewScheduler_Constructs(t *testing.T) {
	s := NewScheduler(new(MockStatsSource), new(recordingSink), 10*time.Second)
	require.NotNil(t, s)
	require.False(t, s.Running())
}

func TestScheduler_Shutdown_NoScheduler_ReturnsNil(t *testing.T) {
	s := NewScheduler(new(MockStatsSource), new(recordingSink), 10*time.Second)
	err := s.Shutdown()
	require.NoError(t, err)
	require.False(t, s.Running())
}

func TestScheduler_Start_SamplesImmediately(t *testing.T) {
	source := new(MockStatsSource)
	source.On("Stats").Return(cache.CacheStats{Hits: 3}).Maybe()
	sink := new(recordingSink)
	s := NewScheduler(source, sink, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Shutdown() }()

	require.Eventually(t, func() bool { return sink.count() > 0 }, 2*time.Second, 10*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Equal(t, uint64(3), sink.observed[0].Hits)
}

func TestScheduler_Start_And_ContextCancel_ShutsDown(t *testing.T) {
	source := new(MockStatsSource)
	source.On("Stats").Return(cache.CacheStats{}).Maybe()
	s := NewScheduler(source, new(recordingSink), 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	// Start scheduler
	require.NoError(t, s.Start(ctx))
	require.True(t, s.Running())

	// Cancel and ensure Shutdown is called by goroutine
	cancel()

	require.Eventually(t, func() bool { return !s.Running() }, 2*time.Second, 10*time.Millisecond,
		"expected scheduler to be shutdown after ctx cancel")
}

func TestScheduler_Shutdown_AfterStart_Idempotent(t *testing.T) {
	source := new(MockStatsSource)
	source.On("Stats").Return(cache.CacheStats{}).Maybe()
	s := NewScheduler(source, new(recordingSink), 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	require.True(t, s.Running())

	// First shutdown should stop scheduler
	require.NoError(t, s.Shutdown())
	require.False(t, s.Running())

	// Second shutdown should be a no-op and return nil
	require.NoError(t, s.Shutdown())
}

func TestScheduler_Shutdown_ConcurrentWithContextCancel(t *testing.T) {
	source := new(MockStatsSource)
	source.On("Stats").Return(cache.CacheStats{}).Maybe()
	s := NewScheduler(source, new(recordingSink), 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	cancel()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Shutdown()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool { return !s.Running() }, 2*time.Second, 10*time.Millisecond)
}

func TestNewScheduler_UsesProvidedInterval(t *testing.T) {
	s := NewScheduler(new(MockStatsSource), new(recordingSink), 42*time.Second)
	require.Equal(t, 42*time.Second, s.sampleStatsJobDuration)
}

func TestNewScheduler_DefaultsIntervalWhenInvalid(t *testing.T) {
	s := NewScheduler(new(MockStatsSource), new(recordingSink), 0)
	require.Equal(t, 15*time.Second, s.sampleStatsJobDuration)
}

func TestSampleCacheStats(t *testing.T) {
	source := new(MockStatsSource)
	want := cache.CacheStats{Hits: 10, Misses: 2, KeysAdded: 5, KeysEvicted: 1}
	source.On("Stats").Return(want).Once()
	sink := new(recordingSink)

	require.NoError(t, SampleCacheStats(context.Background(), "exec-1", source, sink))

	require.Equal(t, []cache.CacheStats{want}, sink.observed)
	source.AssertExpectations(t)
}

func TestSampleCacheStats_CanceledContext(t *testing.T) {
	source := new(MockStatsSource)
	sink := new(recordingSink)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SampleCacheStats(ctx, "exec-2", source, sink)

	require.ErrorIs(t, err, context.Canceled)
	source.AssertNotCalled(t, "Stats")
	require.Zero(t, sink.count())
}
