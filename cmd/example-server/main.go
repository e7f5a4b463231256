package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
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
	// Exemplo: o gate injetado direto no webserver (sem proxy)
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if os.Getenv("LISTEN_ADDR") == "" && cfg.ListenAddr == config.Default().ListenAddr {
		cfg.ListenAddr = ":8081"
	}

	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

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
		Handler:           gate.Handler(demoRoutes()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("example server listening", zap.String("addr", cfg.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

type user struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
	Role string `json:"role"`
}

func demoRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/hello", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Hello from the request control demo!\n"))
	})
	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []user{
			{Name: "Ana", Age: 25, Role: "developer"},
			{Name: "Bruno", Age: 30, Role: "manager"},
			{Name: "Carla", Age: 28, Role: "designer"},
		})
	})
	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"service":   "example-server",
			"version":   app.Version,
			"status":    "running",
			"timestamp": time.Now().UnixMilli(),
		})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "UP"})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
