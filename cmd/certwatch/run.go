package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/certwatch/internal/monitor"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run scan cycles periodically until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.run(ctx)
		},
	}
}

func (a *app) run(ctx context.Context) error {
	rt, err := a.buildMonitor(ctx, false)
	if err != nil {
		return err
	}
	defer rt.cleanup.run()

	if rt.history != nil {
		if _, err := rt.history.MarkInterrupted(ctx, time.Now()); err != nil {
			a.logger.Warn().Err(err).Msg("Could not mark interrupted cycles")
		}
	}

	g, gCtx := errgroup.WithContext(ctx)

	if a.cfg.MetricsConfig.Enabled {
		g.Go(func() error {
			return rt.metrics.Serve(gCtx, a.cfg.MetricsConfig.ListenAddr, a.logger)
		})
	}

	scheduler := monitor.NewScheduler(rt.service, a.cfg.MonitorConfig.CheckInterval(), rt.metrics, a.logger)
	if err := scheduler.Start(gCtx); err != nil {
		return err
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info().Msg("Shutdown requested, stopping scheduler...")
		scheduler.Stop(shutdownTimeout)
		return nil
	})

	a.logger.Info().
		Dur("interval", a.cfg.MonitorConfig.CheckInterval()).
		Str("registry", a.cfg.RegistryConfig.Type).
		Strs("senders", a.cfg.NotificationConfig.Senders).
		Msg("certwatch running")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info().Msg("certwatch stopped")
	return nil
}
