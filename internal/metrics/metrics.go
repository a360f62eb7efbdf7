// Package metrics exposes the monitor's Prometheus counters.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "certwatch"

// Metrics holds all Prometheus metrics for the monitor
type Metrics struct {
	// Cycle tracking
	CyclesTotal        *prometheus.CounterVec
	CycleDurationSecs  prometheus.Histogram
	LastCycleTimestamp prometheus.Gauge
	SkippedTicksTotal  prometheus.Counter

	// Per-target outcomes
	ChecksTotal       *prometheus.CounterVec
	FetchErrorsTotal  *prometheus.CounterVec
	FetchDurationSecs prometheus.Histogram
	AlertsTotal       *prometheus.CounterVec
	AlarmedPairs      prometheus.Gauge

	// Delivery
	DeliveriesTotal       *prometheus.CounterVec
	DeliveryFailuresTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a Metrics instance backed by its own registry
func NewMetrics() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of scan cycles by final status",
		}, []string{"status"}),
		CycleDurationSecs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of scan cycles in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		LastCycleTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix timestamp of the last finished cycle",
		}),
		SkippedTicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_ticks_total",
			Help:      "Ticks skipped because the previous cycle was still running",
		}),
		ChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Classified target checks by classification",
		}, []string{"classification"}),
		FetchErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed target fetches by error kind",
		}, []string{"kind"}),
		FetchDurationSecs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of target fetches in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts emitted by classification",
		}, []string{"classification"}),
		AlarmedPairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alarmed_pairs",
			Help:      "Owner/target pairs currently in the notified state",
		}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Messages handed to a sender by message kind",
		}, []string{"kind"}),
		DeliveryFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Messages the sender failed to deliver by message kind",
		}, []string{"kind"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.CyclesTotal,
		m.CycleDurationSecs,
		m.LastCycleTimestamp,
		m.SkippedTicksTotal,
		m.ChecksTotal,
		m.FetchErrorsTotal,
		m.FetchDurationSecs,
		m.AlertsTotal,
		m.AlarmedPairs,
		m.DeliveriesTotal,
		m.DeliveryFailuresTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCycle records a finished cycle
func (m *Metrics) ObserveCycle(status string, duration time.Duration, finishedAt time.Time) {
	m.CyclesTotal.WithLabelValues(status).Inc()
	m.CycleDurationSecs.Observe(duration.Seconds())
	m.LastCycleTimestamp.Set(float64(finishedAt.Unix()))
}

// ObserveFetch records the duration of one target fetch
func (m *Metrics) ObserveFetch(duration time.Duration) {
	m.FetchDurationSecs.Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve runs a /metrics endpoint on addr until ctx is cancelled
func (m *Metrics) Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	logger = logger.With().Str("component", "MetricsServer").Logger()

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("Metrics server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Metrics server shutdown failed")
			return err
		}
		logger.Info().Msg("Metrics server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
