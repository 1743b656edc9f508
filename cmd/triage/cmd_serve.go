package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/triage/internal/adapters/http/api"
	"github.com/okian/triage/internal/adapters/http/site"
	"github.com/okian/triage/internal/adapters/http/swagger"
	"github.com/okian/triage/internal/config"
	"github.com/okian/triage/pkg/logger"
	"github.com/okian/triage/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

var serveFlags struct {
	addr string
}

func newServeCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard, the JSON API and metrics",
		Long: `Starts the HTTP server: /dashboard, /api/*, /api-docs, /healthz and /stats.
The feedback log must already exist; submissions through POST /api/feedback
are processed exactly like interactive entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if serveFlags.addr != "" {
				st.cfg.Addr = serveFlags.addr
			}
			return runServe(cmd.Context(), st.cfg, st.log)
		},
	}
	cmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (overrides addr)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	p, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	records, err := p.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("feedback log %s: %w", cfg.LogPath, err)
	}
	log.Info(ctx, "feedback log ready", logger.String("path", cfg.LogPath), logger.Int("records", records))
	metrics.UpdateLogRecords(records)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, p),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gCtx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info(gCtx, "shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Millis(cfg.ShutdownTimeoutMS))
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
			return err
		}
		log.Info(shutdownCtx, "server stopped")
		return nil
	})
	g.Go(func() error {
		startSystemMetricsUpdater(gCtx)
		return nil
	})
	return g.Wait()
}

// newHandler registers every route and wraps the mux with request IDs.
func newHandler(ctx context.Context, p *pipeline) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(p.svc, p.svc).Register(ctx, mux)
	site.Register(ctx, mux)
	return api.RequestIDMiddleware(mux)
}

// startSystemMetricsUpdater refreshes runtime gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var avgPauseMs float64
	if m.NumGC > 0 {
		avgPauseMs = float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
	}
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine(), avgPauseMs)
}
