package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aleister1102/certwatch/internal/metrics"
	"github.com/aleister1102/certwatch/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CycleRunner runs one scan cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*CycleSummary, error)
}

// Scheduler runs cycles periodically: once immediately on Start, then every interval.
// A tick that fires while a cycle is still running is skipped.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	cron       *cron.Cron
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	active     bool
	mu         sync.Mutex
}

// NewScheduler creates a scheduler for runner. metrics may be nil.
func NewScheduler(runner CycleRunner, interval time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		metrics:  m,
		logger:   logger.With().Str("component", "MonitorScheduler").Logger(),
	}
}

// Start runs the first cycle right away and schedules the following ones.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		s.logger.Warn().Msg("MonitorScheduler already active.")
		return nil
	}
	if s.interval < time.Second {
		return models.NewValidationError("check_interval", s.interval, "interval must be at least one second")
	}

	s.ctx, s.cancelFunc = context.WithCancel(ctx)
	cronLogger := newCronLogger(s.logger)
	s.cron = cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), s.skipIfStillRunning()),
	)

	job := s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(s.tick))
	entry := s.cron.Entry(job)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		entry.WrappedJob.Run()
	}()

	s.cron.Start()
	s.active = true
	s.logger.Info().Dur("interval", s.interval).Msg("MonitorScheduler started")
	return nil
}

// Stop cancels the running cycle and waits for it to return, up to timeout.
func (s *Scheduler) Stop(timeout time.Duration) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		s.logger.Info().Msg("MonitorScheduler was not active.")
		return
	}
	s.active = false
	s.mu.Unlock()

	s.logger.Info().Msg("Stopping MonitorScheduler...")
	s.cancelFunc()
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("MonitorScheduler stopped successfully.")
	case <-time.After(timeout):
		s.logger.Warn().Dur("timeout", timeout).Msg("MonitorScheduler did not stop gracefully within the timeout.")
	}
}

// IsRunning reports whether the scheduler has been started and not stopped.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Scheduler) tick() {
	if s.ctx.Err() != nil {
		return
	}
	_, err := s.runner.RunCycle(s.ctx)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrCycleInProgress):
		s.logger.Warn().Msg("Previous cycle still running, tick skipped")
	case errors.Is(err, context.Canceled):
		s.logger.Info().Msg("Cycle interrupted by shutdown")
	default:
		// RunCycle already logged the details; the next tick retries.
		s.logger.Debug().Err(err).Msg("Cycle ended with error")
	}
}

// skipIfStillRunning works like cron.SkipIfStillRunning but also counts skipped ticks.
func (s *Scheduler) skipIfStillRunning() cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		ch := make(chan struct{}, 1)
		ch <- struct{}{}
		return cron.FuncJob(func() {
			select {
			case v := <-ch:
				defer func() { ch <- v }()
				j.Run()
			default:
				if s.metrics != nil {
					s.metrics.SkippedTicksTotal.Inc()
				}
				s.logger.Warn().Msg("Previous cycle still running, tick skipped")
			}
		})
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func newCronLogger(logger zerolog.Logger) cron.Logger {
	return cronLogger{logger: logger}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
