// Command odin-cache runs the TCP cache server: it loads configuration,
// wires up logging, metrics and the cache, starts the background purge
// schedule, and serves client connections until signaled to stop.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/gops/agent"
	"go.uber.org/zap"
	_ "go.uber.org/automaxprocs"

	"odin-cache/internal/cache"
	"odin-cache/internal/config"
	"odin-cache/internal/diagnostics"
	"odin-cache/internal/logging"
	"odin-cache/internal/metrics"
	"odin-cache/internal/server"
)

func main() {
	var flagGops bool
	flag.BoolVar(&flagGops, "gops", false, "listen via github.com/google/gops/agent (for debugging)")
	flag.Parse()

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			fmt.Fprintf(os.Stderr, "gops/agent.Listen failed: %s\n", err.Error())
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() // nolint:errcheck

	registry := metrics.NewRegistry()
	store := cache.New(cfg.Cache.PurgeSample, cfg.Cache.PurgeThreshold)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := server.NewShutdown(ctx)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal("scheduler init failed", zap.Error(err))
	}
	if _, err := scheduler.NewJob(
		gocron.DurationJob(cfg.Cache.PurgeFrequency),
		gocron.NewTask(func() {
			stats := store.Purge()
			registry.PurgePasses.Add(float64(stats.Passes))
			registry.PurgeSampled.Add(float64(stats.Sampled))
			registry.PurgeRemoved.Add(float64(stats.Removed))
			registry.CacheEntries.Set(float64(store.Len()))
			if stats.Removed > 0 {
				log.Debug("purge pass", zap.Int("passes", stats.Passes), zap.Int("sampled", stats.Sampled), zap.Int("removed", stats.Removed))
			}
		}),
	); err != nil {
		log.Fatal("scheduling purge job failed", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Shutdown() // nolint:errcheck

	sampler := diagnostics.NewSampler(registry, log, 30*time.Second)
	go sampler.Run(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal("listen failed", zap.String("addr", addr), zap.Error(err))
	}

	srv := server.NewServer(listener, store, registry, shutdown, log)

	go srv.Run()
	log.Info("odin-cache listening", zap.String("addr", addr))

	httpErrCh := make(chan error, 1)
	if cfg.Metrics.Enabled {
		go func() {
			httpErrCh <- runMetricsServer(ctx, cfg, store, srv, registry, log)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-httpErrCh:
		if err != nil {
			log.Error("metrics server error", zap.Error(err))
		}
		stop()
	}

	srv.Shutdown()
	log.Info("odin-cache stopped")
}

func runMetricsServer(ctx context.Context, cfg config.Config, store *cache.Cache, srv *server.Server, registry *metrics.Registry, log *zap.Logger) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status":      "healthy",
			"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
			"entries":     store.Len(),
			"connections": srv.ConnectionCount(),
		})
	})
	mux.Handle("/metrics", registry.Handler())

	httpServer := &http.Server{
		Addr:         cfg.Metrics.ListenAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics http server starting", zap.String("addr", cfg.Metrics.ListenAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("metrics http server shutdown error", zap.Error(err))
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
