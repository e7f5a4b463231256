package requestcontrol

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"request-control-gateway/internal/observability"
	"request-control-gateway/middleware/requestcontrol/application"
	"request-control-gateway/middleware/requestcontrol/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgInvalidKey      = "Invalid secret key"
	msgTooManyAttempts = "Too many attempts"
	msgNotFound        = "Not found"
	msgUnavailable     = "Temporarily unavailable"

	defaultAuditLimit = 20
	maxAuditLimit     = 1000
	auditTimeout      = time.Second

	operatorAPI   = "api"
	operatorQuery = "query"
)

type ControlOptions struct {
	Service *application.Service
	// Limiter é opcional; quando presente limita as rotas com chave por cliente.
	Limiter domain.AttemptLimiter
	// Audit é opcional; recebe toda tentativa nas rotas com chave (a chave nunca
	// é gravada) e é lido por {cp}/audit/{secretKey}.
	Audit domain.AuditLog
	// Stats é opcional; lido por {cp}/stats/{secretKey}.
	Stats   domain.StatsReader
	Metrics *observability.Metrics
	Logger  *zap.Logger
	KeyFn   KeyFunc
	// Now é o relógio usado na validação da chave. Default: time.Now (hora local).
	Now     func() time.Time
	Version string
}

type controlHandler struct {
	svc     *application.Service
	limiter domain.AttemptLimiter
	audit   domain.AuditLog
	stats   domain.StatsReader
	metrics *observability.Metrics
	logger  *zap.Logger
	keyFn   KeyFunc
	now     func() time.Time
	version string
}

// ControlHandler monta as rotas administrativas sob Config.ControlPath.
// O handler casa o path completo, então pode ser registrado direto no mux do host.
func ControlHandler(opts ControlOptions) http.Handler {
	h := &controlHandler{
		svc:     opts.Service,
		limiter: opts.Limiter,
		audit:   opts.Audit,
		stats:   opts.Stats,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		keyFn:   opts.KeyFn,
		now:     opts.Now,
		version: opts.Version,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.keyFn == nil {
		h.keyFn = DefaultKeyFunc("", false)
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.version == "" {
		h.version = "1.0.0"
	}

	cp := opts.Service.Config().ControlPath
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+cp+"/info", h.info)
	mux.HandleFunc("GET "+cp+"/status/{secretKey}", h.throttled(h.status))
	mux.HandleFunc("GET "+cp+"/audit/{secretKey}", h.throttled(h.auditEvents))
	mux.HandleFunc("GET "+cp+"/stats/{secretKey}", h.throttled(h.statsSnapshot))
	mux.HandleFunc("GET "+cp+"/{enabled}/{secretKey}", h.throttled(h.set))
	mux.HandleFunc(cp+"/", h.notFound)
	return mux
}

// Mount registra as rotas de controle no mux do host.
func Mount(mux *http.ServeMux, opts ControlOptions) {
	mux.Handle(opts.Service.Config().ControlPath+"/", ControlHandler(opts))
}

func (h *controlHandler) throttled(next http.HandlerFunc) http.HandlerFunc {
	if h.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		client := h.keyFn(r)
		if ok, retry := h.limiter.Allow(client); !ok {
			h.metrics.ObserveThrottled()
			h.logger.Warn("control attempt throttled", zap.String("client", client))
			w.Header().Set("Retry-After", retryAfterSeconds(retry))
			writeEnvelope(w, failure(http.StatusTooManyRequests, msgTooManyAttempts))
			return
		}
		next(w, r)
	}
}

func (h *controlHandler) set(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	var res domain.ControlResult
	enabled, err := strconv.ParseBool(r.PathValue("enabled"))
	if err != nil {
		// segmento malformado cai no mesmo 401 de chave errada
		h.logger.Warn("control request with malformed enabled value", zap.String("enabled", r.PathValue("enabled")))
	} else {
		res = h.svc.ApplyControl(enabled, r.PathValue("secretKey"), now)
	}
	h.record(r, domain.OperationSet, res, now)

	if errors.Is(res.Err(), domain.ErrUnauthorized) {
		writeEnvelope(w, failure(http.StatusUnauthorized, msgInvalidKey))
		return
	}

	action := "disabled"
	if res.Enabled {
		action = "enabled"
	}
	writeEnvelope(w, success(
		StatusInfo{Enabled: res.Enabled, Timestamp: now, Operator: operatorAPI},
		"Request processing "+action+" successfully",
	))
}

func (h *controlHandler) status(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	res := h.svc.QueryStatus(r.PathValue("secretKey"), now)
	h.record(r, domain.OperationStatus, res, now)

	if errors.Is(res.Err(), domain.ErrUnauthorized) {
		writeEnvelope(w, failure(http.StatusUnauthorized, msgInvalidKey))
		return
	}
	writeEnvelope(w, success(
		StatusInfo{Enabled: res.Enabled, Timestamp: now, Operator: operatorQuery},
		"Status retrieved successfully",
	))
}

// auditEvents lista as tentativas mais recentes, da mais nova para a mais antiga.
// ?limit=N (padrão 20, máximo 1000).
func (h *controlHandler) auditEvents(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		h.notFound(w, r)
		return
	}
	now := h.now()
	res := h.svc.QueryStatus(r.PathValue("secretKey"), now)

	var events []domain.ControlEvent
	var err error
	if res.Authorized {
		events, err = h.audit.Recent(r.Context(), auditLimit(r.URL.Query().Get("limit")))
	}
	h.record(r, domain.OperationAudit, res, now)

	switch {
	case !res.Authorized:
		writeEnvelope(w, failure(http.StatusUnauthorized, msgInvalidKey))
	case err != nil:
		h.logger.Warn("control audit read failed", zap.Error(err))
		writeEnvelope(w, failure(http.StatusServiceUnavailable, msgUnavailable))
	default:
		if events == nil {
			events = []domain.ControlEvent{}
		}
		writeEnvelope(w, success(events, "Audit events retrieved successfully"))
	}
}

func (h *controlHandler) statsSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		h.notFound(w, r)
		return
	}
	now := h.now()
	res := h.svc.QueryStatus(r.PathValue("secretKey"), now)
	h.record(r, domain.OperationStats, res, now)

	if !res.Authorized {
		writeEnvelope(w, failure(http.StatusUnauthorized, msgInvalidKey))
		return
	}
	snap, err := h.stats.Snapshot(r.Context())
	if err != nil {
		h.logger.Warn("admission stats read failed", zap.Error(err))
		writeEnvelope(w, failure(http.StatusServiceUnavailable, msgUnavailable))
		return
	}
	writeEnvelope(w, success(snap, "Statistics retrieved successfully"))
}

func auditLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultAuditLimit
	}
	return min(n, maxAuditLimit)
}

// info não exige chave e expõe o estado atual; desligue com Config.ExposeInfo=false
// quando o estado do gate não puder ser público.
func (h *controlHandler) info(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Config().ExposeInfo {
		h.notFound(w, r)
		return
	}
	writeEnvelope(w, success(ServiceInfo{
		Available: true,
		Version:   h.version,
		Timestamp: h.now(),
		Enabled:   h.svc.Enabled(),
	}, "Service information"))
}

func (h *controlHandler) notFound(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, failure(http.StatusNotFound, msgNotFound))
}

func (h *controlHandler) record(r *http.Request, op domain.ControlOperation, res domain.ControlResult, now time.Time) {
	h.metrics.ObserveControl(string(op), res.Authorized)

	client := h.keyFn(r)
	if !res.Authorized {
		h.logger.Warn("invalid secret key attempt",
			zap.String("operation", string(op)),
			zap.String("client", client),
		)
	}

	if h.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), auditTimeout)
	defer cancel()
	err := h.audit.Append(ctx, domain.ControlEvent{
		ID:         uuid.NewString(),
		Operation:  op,
		Client:     client,
		Authorized: res.Authorized,
		Previous:   res.Previous,
		Enabled:    res.Enabled,
		At:         now,
	})
	if err != nil {
		h.logger.Warn("control audit append failed", zap.Error(err))
	}
}
