package monitor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/certwatch/internal/metrics"
	"github.com/aleister1102/certwatch/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls   atomic.Int32
	block   chan struct{}
	lastCtx atomic.Value
}

func (r *countingRunner) RunCycle(ctx context.Context) (*CycleSummary, error) {
	r.calls.Add(1)
	r.lastCtx.Store(ctx)
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &CycleSummary{}, nil
}

func TestScheduler_FirstCycleRunsImmediately(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, time.Hour, nil, zerolog.Nop())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Stop(2 * time.Second)
	assert.False(t, s.IsRunning())
}

func TestScheduler_TicksPeriodically(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, time.Second, nil, zerolog.Nop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(2 * time.Second)

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 2 }, 4*time.Second, 20*time.Millisecond)
}

func TestScheduler_StopCancelsRunningCycle(t *testing.T) {
	runner := &countingRunner{block: make(chan struct{})}
	s := NewScheduler(runner, time.Hour, nil, zerolog.Nop())

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Stop(5 * time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return after cancelling the cycle")
	}

	ctx := runner.lastCtx.Load().(context.Context)
	assert.Error(t, ctx.Err())
}

func TestScheduler_RejectsSubSecondInterval(t *testing.T) {
	s := NewScheduler(&countingRunner{}, 100*time.Millisecond, nil, zerolog.Nop())
	var vErr *models.ValidationError
	assert.ErrorAs(t, s.Start(context.Background()), &vErr)
	assert.False(t, s.IsRunning())
}

func TestScheduler_StopWhenIdle(t *testing.T) {
	s := NewScheduler(&countingRunner{}, time.Minute, nil, zerolog.Nop())
	s.Stop(time.Second)
	assert.False(t, s.IsRunning())
}

func TestScheduler_SkipIfStillRunning(t *testing.T) {
	m := metrics.NewMetrics()
	s := NewScheduler(&countingRunner{}, time.Minute, m, zerolog.Nop())

	release := make(chan struct{})
	started := make(chan struct{})
	var runs atomic.Int32
	job := s.skipIfStillRunning()(cron.FuncJob(func() {
		runs.Add(1)
		close(started)
		<-release
	}))

	go job.Run()
	<-started

	job.Run()
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkippedTicksTotal))

	close(release)
}
