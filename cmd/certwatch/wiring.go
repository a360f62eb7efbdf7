package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aleister1102/certwatch/internal/config"
	"github.com/aleister1102/certwatch/internal/fetcher"
	"github.com/aleister1102/certwatch/internal/history"
	"github.com/aleister1102/certwatch/internal/httpclient"
	"github.com/aleister1102/certwatch/internal/metrics"
	"github.com/aleister1102/certwatch/internal/monitor"
	"github.com/aleister1102/certwatch/internal/notifier"
	"github.com/aleister1102/certwatch/internal/notifystate"
	"github.com/aleister1102/certwatch/internal/reference"
	"github.com/aleister1102/certwatch/internal/registry"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// cleanupStack closes resources in reverse order of opening.
type cleanupStack []func()

func (c *cleanupStack) push(fn func()) {
	*c = append(*c, fn)
}

func (c cleanupStack) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// openRegistryStore opens the store selected by registry_config.type.
func (a *app) openRegistryStore(ctx context.Context) (registry.Store, func(), error) {
	cfg := a.cfg.RegistryConfig

	switch cfg.Type {
	case config.RegistryTypeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		key := cfg.RedisKey
		if key == "" {
			key = registry.DefaultRedisKey
		}
		return registry.NewRedisStore(client, key, a.logger), func() { _ = client.Close() }, nil

	case config.RegistryTypeJSON, "":
		store, err := registry.NewJSONFileStore(cfg.JSONPath, a.logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown registry type %q", cfg.Type)
	}
}

// openHistory opens the sqlite history, or nil when history is disabled.
func (a *app) openHistory() (*history.DB, error) {
	if !a.cfg.HistoryConfig.Enabled {
		return nil, nil
	}
	return history.NewDB(a.cfg.HistoryConfig.SQLitePath, a.logger)
}

func (a *app) newHTTPClient() (*httpclient.HTTPClient, error) {
	return httpclient.NewHTTPClientBuilder(a.logger).
		WithConfig(a.cfg.HTTPClientConfig.ClientConfig(a.cfg.MonitorConfig)).
		Build()
}

// monitorRuntime is everything a scan cycle runs on.
type monitorRuntime struct {
	service *monitor.Service
	metrics *metrics.Metrics
	history *history.DB
	cleanup cleanupStack
}

// buildMonitor wires the monitor service. logOnly replaces the configured
// senders with a LogSender.
func (a *app) buildMonitor(ctx context.Context, logOnly bool) (*monitorRuntime, error) {
	rt := &monitorRuntime{metrics: metrics.NewMetrics()}
	ok := false
	defer func() {
		if !ok {
			rt.cleanup.run()
		}
	}()

	store, closeStore, err := a.openRegistryStore(ctx)
	if err != nil {
		return nil, err
	}
	rt.cleanup.push(closeStore)

	client, err := a.newHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	var sender notifier.Sender
	if logOnly {
		sender = notifier.NewLogSender(a.logger)
	} else {
		// Delivery gets its own client: target fetching may skip TLS verification or use a proxy.
		deliveryClient, err := httpclient.NewHTTPClientBuilder(a.logger).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to create delivery HTTP client: %w", err)
		}
		sender, err = notifier.NewSenderFromConfig(a.cfg.NotificationConfig, deliveryClient, a.logger)
		if err != nil {
			return nil, err
		}
	}

	historyDB, err := a.openHistory()
	if err != nil {
		return nil, fmt.Errorf("failed to open cycle history: %w", err)
	}
	var recorder history.Recorder = history.NopRecorder{}
	if historyDB != nil {
		rt.history = historyDB
		rt.cleanup.push(func() { _ = historyDB.Close() })
		recorder = historyDB
	}

	service, err := monitor.NewService(a.cfg.MonitorConfig, monitor.ServiceDeps{
		Registry:  store,
		Reference: reference.NewFileSource(a.cfg.ReferenceConfig.Path, a.logger),
		Fetcher:   fetcher.NewFetcher(client, a.logger),
		Sender:    sender,
		State:     notifystate.NewStore(a.logger),
		History:   recorder,
		Metrics:   rt.metrics,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	rt.service = service

	ok = true
	return rt, nil
}

// newManager builds the registry front end for the target commands.
func (a *app) newManager(ctx context.Context) (*registry.Manager, func(), error) {
	store, closeStore, err := a.openRegistryStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	// The daemon's state lives in another process; it prunes removed targets on its next cycle.
	return registry.NewManager(store, nil, a.logger), closeStore, nil
}
