// Package app monta o gate a partir da configuração: flag atômica, serviço,
// limiter das rotas de controle, sinks de estatística/auditoria e métricas.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"request-control-gateway/internal/config"
	"request-control-gateway/internal/observability"
	"request-control-gateway/middleware/requestcontrol"
	"request-control-gateway/middleware/requestcontrol/application"
	"request-control-gateway/middleware/requestcontrol/domain"
	"request-control-gateway/middleware/requestcontrol/infra"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const Version = "1.0.0"

type App struct {
	Config  config.Config
	Service *application.Service
	State   *infra.AtomicState
	Metrics *observability.Metrics
	Limiter *infra.ClientLimiter
	Stats   domain.StatsStore
	Audit   domain.AuditLog

	logger      *zap.Logger
	rdb         *redis.Client
	statsReader domain.StatsReader
	statsAsync  *infra.AsyncStatsStore
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		Config:  cfg,
		Metrics: observability.NewMetrics(""),
		logger:  logger,
	}
	a.State = infra.NewAtomicState(cfg.RequestControl.DefaultEnabled, infra.WithOnChange(a.Metrics.SetGateEnabled))
	a.Service = application.NewService(cfg.RequestControl, a.State, logger)

	if cfg.ControlRate.Enabled {
		a.Limiter = infra.NewClientLimiter(cfg.ControlRate.RPS, cfg.ControlRate.Burst)
		logger.Info("control throttle enabled",
			zap.Float64("rps", a.Limiter.RPS()),
			zap.Int("burst", a.Limiter.Burst()),
		)
	}

	if cfg.UsesRedis() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		a.rdb = rdb
	}

	if cfg.Stats.Enabled {
		switch cfg.Stats.Backend {
		case config.BackendRedis:
			store := infra.NewRedisStatsStore(
				a.rdb,
				infra.WithStatsPrefix(cfg.Stats.Prefix),
				infra.WithStatsTTL(cfg.Stats.TTL),
				infra.WithStatsBucket(cfg.Stats.Bucket),
				infra.WithStatsTrackRoutes(cfg.Stats.TrackRoutes),
			)
			// Redis fica fora da goroutine da requisição
			a.statsAsync = infra.NewAsyncStatsStore(store,
				infra.WithDropHandler(a.Metrics.ObserveStatsDropped),
				infra.WithErrorHandler(func(err error) {
					logger.Warn("admission stats record failed", zap.Error(err))
				}),
			)
			a.Stats = a.statsAsync
			a.statsReader = store
		default:
			store := infra.NewMemoryStatsStore(infra.WithTrackRoutes(cfg.Stats.TrackRoutes))
			a.Stats = store
			a.statsReader = store
		}
	}

	if cfg.Audit.Enabled {
		switch cfg.Audit.Backend {
		case config.BackendRedis:
			a.Audit = infra.NewRedisAuditLog(a.rdb, infra.WithAuditKey(cfg.Audit.Key), infra.WithAuditMaxLen(cfg.Audit.MaxLen))
		default:
			a.Audit = infra.NewMemoryAuditLog(int(cfg.Audit.MaxLen))
		}
	}

	return a, nil
}

// Start liga as rotinas de fundo (limpeza do limiter, gravação de stats). Param com ctx.
func (a *App) Start(ctx context.Context) {
	if a.Limiter != nil {
		a.Limiter.StartJanitor(ctx)
	}
	if a.statsAsync != nil {
		a.statsAsync.Start(ctx)
	}
}

// Handler coloca `next` atrás do gate e registra rotas de controle e métricas.
func (a *App) Handler(next http.Handler) http.Handler {
	mux := http.NewServeMux()
	requestcontrol.Mount(mux, a.controlOptions())
	if a.Config.MetricsPath != "" {
		mux.Handle(a.Config.MetricsPath, a.Metrics.Handler())
	}
	mux.Handle("/", next)

	return requestcontrol.Middleware(requestcontrol.Options{
		Service: a.Service,
		Stats:   a.Stats,
		Metrics: a.Metrics,
		Logger:  a.logger,
	})(mux)
}

func (a *App) controlOptions() requestcontrol.ControlOptions {
	opts := requestcontrol.ControlOptions{
		Service: a.Service,
		Audit:   a.Audit,
		Stats:   a.statsReader,
		Metrics: a.Metrics,
		Logger:  a.logger,
		KeyFn:   requestcontrol.DefaultKeyFunc(a.Config.ClientHeader, a.Config.TrustXFF),
		Version: Version,
	}
	// interface nil != ponteiro nil
	if a.Limiter != nil {
		opts.Limiter = a.Limiter
	}
	return opts
}

func (a *App) Close() error {
	if a.rdb != nil {
		return a.rdb.Close()
	}
	return nil
}
