package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"request-control-gateway/internal/app"
	"request-control-gateway/internal/config"
	"request-control-gateway/internal/observability"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.UpstreamURL == "" {
		log.Fatalf("config error: UPSTREAM_URL is required")
	}

	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		logger.Fatal("invalid UPSTREAM_URL", zap.Error(err))
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("proxy error", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gate, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("request control setup failed", zap.Error(err))
	}
	defer func() { _ = gate.Close() }()
	gate.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           gate.Handler(proxy),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	rc := cfg.RequestControl
	logger.Info("gateway listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("upstream", target.String()),
	)
	logger.Info("request control",
		zap.Bool("active", rc.Enabled),
		zap.Bool("default_enabled", rc.DefaultEnabled),
		zap.String("control_path", rc.ControlPath),
		zap.Bool("expose_info", rc.ExposeInfo),
		zap.Bool("control_rate", cfg.ControlRate.Enabled),
		zap.Float64("control_rps", cfg.ControlRate.RPS),
		zap.Int("control_burst", cfg.ControlRate.Burst),
	)
	logger.Info("sinks",
		zap.Bool("stats", cfg.Stats.Enabled),
		zap.String("stats_backend", cfg.Stats.Backend),
		zap.Bool("audit", cfg.Audit.Enabled),
		zap.String("audit_backend", cfg.Audit.Backend),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
