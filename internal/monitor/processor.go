package monitor

import (
	"context"
	"time"

	"github.com/aleister1102/certwatch/internal/classifier"
	"github.com/aleister1102/certwatch/internal/models"
	"github.com/aleister1102/certwatch/internal/notifier"

	"github.com/rs/zerolog"
)

// Message kinds used as metric labels.
const (
	messageKindAlert      = "alert"
	messageKindFetchError = "fetch_error"
)

type fetchFunc func(ctx context.Context, target models.Target) (content string, shared bool, err error)

// pairResult is the outcome of checking one (owner, target) pair.
type pairResult struct {
	pair           models.Pair
	skipped        bool
	fetchErr       *models.FetchError
	classification models.Classification
	notified       bool
	recovered      bool
	deliveryFailed bool
}

// checkPair fetches, classifies and notifies for a single pair. It never returns an
// error: every failure is reported to the owner or recorded in the result.
func (s *Service) checkPair(ctx context.Context, pair models.Pair, ref *string, fetch fetchFunc, logger zerolog.Logger) pairResult {
	result := pairResult{pair: pair}
	logger = logger.With().Str("owner", pair.Owner.String()).Str("target", pair.Target.String()).Logger()

	if ctx.Err() != nil {
		result.skipped = true
		return result
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout())
	started := time.Now()
	content, shared, err := fetch(fetchCtx, pair.Target)
	cancel()
	if !shared {
		s.metrics.ObserveFetch(time.Since(started))
	}

	if err != nil {
		if ctx.Err() != nil {
			// Shutting down; the failure says nothing about the target.
			result.skipped = true
			return result
		}
		fe, ok := models.AsFetchError(err)
		if !ok {
			fe = models.NewFetchError(models.FetchErrorNetworkFailure, pair.Target, "", err)
		}
		result.fetchErr = fe
		s.metrics.FetchErrorsTotal.WithLabelValues(string(fe.Kind)).Inc()
		logger.Warn().Err(fe).Str("kind", string(fe.Kind)).Msg("Failed to fetch target")

		result.deliveryFailed = !s.deliver(ctx, pair.Owner, notifier.FormatFetchError(fe), messageKindFetchError, logger)
		return result
	}

	result.classification = classifier.Classify(content, ref)
	s.metrics.ChecksTotal.WithLabelValues(string(result.classification)).Inc()

	if !result.classification.IsAlarm() {
		_, result.recovered = s.state.Transition(pair.Owner, pair.Target, false)
		if result.recovered {
			logger.Info().Msg("Target returned to clean")
		}
		return result
	}

	if notify, _ := s.state.Transition(pair.Owner, pair.Target, true); !notify {
		logger.Debug().Str("classification", string(result.classification)).Msg("Already notified, skipping alert")
		return result
	}

	result.notified = true
	s.metrics.AlertsTotal.WithLabelValues(string(result.classification)).Inc()
	logger.Info().Str("classification", string(result.classification)).Msg("Sending alert")
	result.deliveryFailed = !s.deliver(ctx, pair.Owner, notifier.FormatAlert(result.classification, pair.Target), messageKindAlert, logger)
	return result
}

// deliver hands message to the sender once. Failures are logged and counted, never retried.
func (s *Service) deliver(ctx context.Context, owner models.Owner, message, kind string, logger zerolog.Logger) bool {
	s.metrics.DeliveriesTotal.WithLabelValues(kind).Inc()
	if err := s.sender.Send(ctx, owner, message); err != nil {
		s.metrics.DeliveryFailuresTotal.WithLabelValues(kind).Inc()
		logger.Error().Err(err).Str("sender", s.sender.Name()).Str("kind", kind).Msg("Failed to deliver message")
		return false
	}
	return true
}
