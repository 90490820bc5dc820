package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultJobDuration = 15 * time.Second

type Scheduler struct {
	statsSource CacheStatsSource
	statsSink   CacheStatsSink
	// -----
	mu                     sync.Mutex // guards sched
	sched                  gocron.Scheduler
	sampleStatsJobDuration time.Duration
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		if sampleErr := SampleCacheStats(jobCtx, execID, s.statsSource, s.statsSink); sampleErr != nil {
			logrus.Errorf("Sample cache stats job %s failed: %v", execID, sampleErr)
		}
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.sampleStatsJobDuration),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

// Shutdown stops the scheduler once; later and concurrent calls return nil.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	sched := s.sched
	s.sched = nil
	s.mu.Unlock()

	if sched == nil {
		return nil
	}
	return sched.Shutdown()
}

// Running reports whether the scheduler has been started and not yet shut down.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

func NewScheduler(statsSource CacheStatsSource, statsSink CacheStatsSink, jobDuration time.Duration) *Scheduler {
	if jobDuration <= 0 {
		jobDuration = defaultJobDuration
	}
	return &Scheduler{statsSource: statsSource, statsSink: statsSink, sampleStatsJobDuration: jobDuration}
}
