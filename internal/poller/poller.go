// Package poller runs the long-lived dispatch loop: two cron cadences drain
// the notification queue (a fast lane for urgent, a slow full sweep) and an
// optional HTTP listener exposes Prometheus metrics.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/eddiebe147/claude-automation-pipeline/internal/dispatch"
	"github.com/eddiebe147/claude-automation-pipeline/internal/otel"
	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

// Options configure one poller run.
type Options struct {
	// Cron specs for the two cadences.
	UrgentSpec string
	FullSpec   string
	// MetricsAddr enables the /metrics listener when non-empty,
	// e.g. ":9290".
	MetricsAddr string
}

// Poller drives the dispatcher on a schedule until its context is canceled.
type Poller struct {
	Store      store.Store
	Dispatcher *dispatch.Dispatcher
	Log        *slog.Logger
}

// Run blocks until ctx is canceled. Each tick performs one dispatcher pass;
// pass errors are logged, never fatal, so one bad tick does not stop the
// loop.
func (p *Poller) Run(ctx context.Context, opts Options) error {
	log := p.logger()

	if opts.MetricsAddr != "" {
		handler, err := otel.InitMeterProvider(ctx, "hydra-poller")
		if err != nil {
			return err
		}
		if err := otel.InitMetricsWithTaskCount(ctx, p.taskCounts(ctx)); err != nil {
			return err
		}
		go p.serveMetrics(ctx, opts.MetricsAddr, handler)
	}

	c := cron.New()
	if _, err := c.AddFunc(opts.UrgentSpec, func() {
		p.pass(ctx, store.PriorityUrgent)
	}); err != nil {
		return err
	}
	if _, err := c.AddFunc(opts.FullSpec, func() {
		p.pass(ctx, "")
	}); err != nil {
		return err
	}

	log.Info("poller started", "urgent", opts.UrgentSpec, "full", opts.FullSpec)
	c.Start()
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	log.Info("poller stopped")
	return nil
}

func (p *Poller) pass(ctx context.Context, priority string) {
	log := p.logger()
	res, err := p.Dispatcher.Run(ctx, priority)
	if err != nil {
		log.Error("dispatch pass failed", "priority", priority, "err", err)
		return
	}
	if res.Delivered > 0 || res.Failed > 0 {
		log.Info("dispatch pass", "priority", priority, "delivered", res.Delivered, "failed", res.Failed)
	}
}

func (p *Poller) serveMetrics(ctx context.Context, addr string, handler http.Handler) {
	log := p.logger()
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listener started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics listener failed", "err", err)
	}
}

func (p *Poller) taskCounts(ctx context.Context) otel.TaskCountFunc {
	return func() (pending, inProgress, blocked, completed int64) {
		counts, err := p.Store.TaskStatusCounts(ctx)
		if err != nil {
			p.logger().Warn("task counts unavailable", "err", err)
			return 0, 0, 0, 0
		}
		return counts[store.StatusPending], counts[store.StatusInProgress],
			counts[store.StatusBlocked], counts[store.StatusCompleted]
	}
}

func (p *Poller) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}
