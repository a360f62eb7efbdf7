package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/certwatch/internal/config"
	"github.com/aleister1102/certwatch/internal/fetcher"
	"github.com/aleister1102/certwatch/internal/history"
	"github.com/aleister1102/certwatch/internal/metrics"
	"github.com/aleister1102/certwatch/internal/models"
	"github.com/aleister1102/certwatch/internal/notifier"
	"github.com/aleister1102/certwatch/internal/notifystate"
	"github.com/aleister1102/certwatch/internal/reference"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RegistrySource is the read side of the registry store.
type RegistrySource interface {
	Load(ctx context.Context) (models.Registry, error)
}

// ServiceDeps are the collaborators of a Service. History and Metrics are optional.
type ServiceDeps struct {
	Registry  RegistrySource
	Reference reference.Source
	Fetcher   fetcher.ContentFetcher
	Sender    notifier.Sender
	State     *notifystate.Store
	History   history.Recorder
	Metrics   *metrics.Metrics
}

// Service runs scan cycles over every registered (owner, target) pair.
type Service struct {
	cfg       config.MonitorConfig
	registry  RegistrySource
	reference reference.Source
	fetcher   fetcher.ContentFetcher
	sender    notifier.Sender
	state     *notifystate.Store
	history   history.Recorder
	metrics   *metrics.Metrics
	tracker   *CycleTracker
	logger    zerolog.Logger

	cycleMutex sync.Mutex
	now        func() time.Time
}

// NewService creates a Service.
func NewService(cfg config.MonitorConfig, deps ServiceDeps, logger zerolog.Logger) (*Service, error) {
	switch {
	case deps.Registry == nil:
		return nil, models.NewValidationError("registry", nil, "registry source is required")
	case deps.Fetcher == nil:
		return nil, models.NewValidationError("fetcher", nil, "fetcher is required")
	case deps.Sender == nil:
		return nil, models.NewValidationError("sender", nil, "sender is required")
	case deps.State == nil:
		return nil, models.NewValidationError("state", nil, "notification state store is required")
	}

	if deps.Reference == nil {
		deps.Reference = reference.StaticSource{}
	}
	if deps.History == nil {
		deps.History = history.NopRecorder{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewMetrics()
	}
	if cfg.MaxConcurrentChecks <= 0 {
		cfg.MaxConcurrentChecks = config.DefaultMaxConcurrentChecks
	}

	return &Service{
		cfg:       cfg,
		registry:  deps.Registry,
		reference: deps.Reference,
		fetcher:   deps.Fetcher,
		sender:    deps.Sender,
		state:     deps.State,
		history:   deps.History,
		metrics:   deps.Metrics,
		tracker:   NewCycleTracker(),
		logger:    logger.With().Str("component", "MonitorService").Logger(),
		now:       time.Now,
	}, nil
}

// Tracker exposes the cycle tracker.
func (s *Service) Tracker() *CycleTracker {
	return s.tracker
}

// RunCycle performs one full scan cycle. It returns ErrCycleInProgress when another
// cycle is running, and a *RegistryLoadError when the registry cannot be read.
// Per-target failures never fail the cycle.
func (s *Service) RunCycle(ctx context.Context) (*CycleSummary, error) {
	if !s.cycleMutex.TryLock() {
		s.metrics.SkippedTicksTotal.Inc()
		return nil, models.ErrCycleInProgress
	}
	defer s.cycleMutex.Unlock()

	startedAt := s.now()
	cycleID := s.tracker.StartCycle(startedAt)
	summary := newCycleSummary(cycleID, startedAt)
	logger := s.logger.With().Str("cycle_id", cycleID).Logger()

	historyID, err := s.history.RecordCycleStart(ctx, cycleID, startedAt)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to record cycle start")
	}

	cycleErr := s.runCycle(ctx, summary, logger)

	summary.FinishedAt = s.now()
	s.tracker.EndCycle(summary.FinishedAt)

	status := history.StatusCompleted
	if cycleErr != nil {
		status = history.StatusFailed
	}
	if historyID > 0 {
		if err := s.history.RecordCycleCompletion(context.WithoutCancel(ctx), historyID, summary.FinishedAt, status, summary.Counts(), cycleErr); err != nil {
			logger.Warn().Err(err).Msg("Failed to record cycle completion")
		}
	}

	s.metrics.ObserveCycle(strings.ToLower(status), summary.Duration(), summary.FinishedAt)
	s.metrics.AlarmedPairs.Set(float64(s.state.AlarmedCount()))

	if cycleErr != nil {
		logger.Error().Err(cycleErr).Object("summary", summary).Msg("Scan cycle failed")
		return summary, cycleErr
	}
	logger.Info().Object("summary", summary).Msg("Scan cycle completed")
	return summary, nil
}

func (s *Service) runCycle(ctx context.Context, summary *CycleSummary, logger zerolog.Logger) error {
	ref, err := s.reference.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Reference document unavailable, certificate matching disabled for this cycle")
		ref = nil
	}
	summary.ReferenceAvailable = ref != nil && *ref != ""

	reg, err := s.registry.Load(ctx)
	if err != nil {
		var loadErr *models.RegistryLoadError
		if !errors.As(err, &loadErr) {
			loadErr = &models.RegistryLoadError{Err: err}
		}
		return loadErr
	}

	summary.Pruned = s.state.PruneToRegistry(reg)
	pairs := reg.Pairs()
	summary.Owners = len(reg)
	summary.Targets = len(pairs)
	if len(pairs) == 0 {
		logger.Debug().Msg("No targets registered")
		return nil
	}

	var fetch fetchFunc
	if s.cfg.DedupFetches {
		fetch = newCycleFetcher(s.fetcher).Fetch
	} else {
		fetch = func(ctx context.Context, target models.Target) (string, bool, error) {
			content, err := s.fetcher.Fetch(ctx, target)
			return content, false, err
		}
	}

	results := make([]pairResult, len(pairs))
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.MaxConcurrentChecks)
	for i, pair := range pairs {
		g.Go(func() error {
			results[i] = s.checkPair(ctx, pair, ref, fetch, logger)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		summary.add(r)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scan cycle interrupted: %w", err)
	}
	return nil
}
