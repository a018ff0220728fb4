package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pranishuprety/Respondrr/internal/metrics"
	"github.com/pranishuprety/Respondrr/pkg/logger"
)

// JobFunc is one scheduled unit of work. Errors are logged and counted,
// never propagated; the schedule keeps running.
type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	run      JobFunc
}

// Scheduler runs named jobs on fixed intervals, one goroutine per job. A
// tick runs to completion before that job's next tick fires; different
// jobs overlap freely.
type Scheduler struct {
	jobs []job
	wg   sync.WaitGroup
}

func New() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Register(name string, interval time.Duration, run JobFunc) {
	s.jobs = append(s.jobs, job{name: name, interval: interval, run: run})
}

// Start launches every registered job. Jobs stop when ctx is cancelled;
// Stop blocks until in-flight ticks finish.
func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
		logger.Info("Scheduled job registered",
			zap.String("job", j.name),
			zap.Duration("interval", j.interval))
	}
}

func (s *Scheduler) Stop() {
	s.wg.Wait()
	logger.Info("Scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, j)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, j job) {
	defer func() {
		if r := recover(); r != nil {
			metrics.SweepRuns.WithLabelValues(j.name, "panic").Inc()
			logger.Error("Scheduled job panicked",
				zap.String("job", j.name),
				zap.Any("panic", r))
		}
	}()

	start := time.Now()
	err := j.run(ctx)
	metrics.SweepDuration.WithLabelValues(j.name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SweepRuns.WithLabelValues(j.name, "error").Inc()
		logger.Error("Scheduled job failed",
			zap.String("job", j.name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}
	metrics.SweepRuns.WithLabelValues(j.name, "success").Inc()
	logger.Debug("Scheduled job finished",
		zap.String("job", j.name),
		zap.Duration("duration", time.Since(start)))
}
