package requestcontrol

import (
	"net/http"
	"time"

	"request-control-gateway/internal/observability"
	"request-control-gateway/middleware/requestcontrol/application"
	"request-control-gateway/middleware/requestcontrol/domain"

	"go.uber.org/zap"
)

type Options struct {
	Service *application.Service
	// Stats é opcional; erros de gravação são best-effort.
	Stats   domain.StatsStore
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// gate é a parte comum entre o middleware net/http e o de gin.
type gate struct {
	svc         *application.Service
	stats       domain.StatsStore
	metrics     *observability.Metrics
	logger      *zap.Logger
	logRejected bool
}

func newGate(opts Options) *gate {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gate{
		svc:         opts.Service,
		stats:       opts.Stats,
		metrics:     opts.Metrics,
		logger:      logger,
		logRejected: opts.Service.Config().LogEnabled,
	}
}

// active informa se o middleware precisa ser instalado. Com o mecanismo
// desligado por configuração o gate nem é consultado.
func active(opts Options) bool {
	return opts.Service != nil && opts.Service.Config().Enabled
}

func (g *gate) check(r *http.Request) domain.AdmissionResult {
	dec := g.svc.ShouldAllow(r.URL.Path)

	g.metrics.ObserveAdmission(dec.Allowed, string(dec.Reason))
	// chamadas às rotas de controle já vão para a auditoria
	if g.stats != nil && !g.svc.IsControlPath(r.URL.Path) {
		err := g.stats.Record(r.Context(), domain.StatsEvent{
			Allowed: dec.Allowed,
			Reason:  dec.Reason,
			Method:  r.Method,
			Path:    r.URL.Path,
			At:      time.Now(),
		})
		if err != nil {
			g.logger.Warn("admission stats record failed", zap.Error(err))
		}
	}
	if !dec.Allowed && g.logRejected {
		g.logger.Info("request rejected",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
	}
	return dec
}

// Middleware instala o kill switch na frente de `next`.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if !active(opts) {
		return func(next http.Handler) http.Handler { return next }
	}
	g := newGate(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if dec := g.check(r); !dec.Allowed {
				writeEnvelope(w, rejection(dec))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
