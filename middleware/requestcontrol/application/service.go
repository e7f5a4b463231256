package application

import (
	"time"

	"request-control-gateway/middleware/requestcontrol/domain"

	"go.uber.org/zap"
)

// Service concentra a regra de admissão e as operações de controle do gate.
//
// Ele não sabe nada sobre HTTP (headers/rotas), apenas retorna decisões.
// Config é tratada como imutável depois de NewService.
type Service struct {
	cfg       domain.Config
	state     domain.GateState
	whitelist *domain.Whitelist
	control   *domain.Whitelist
	keys      KeyValidator
	logger    *zap.Logger
}

func NewService(cfg domain.Config, state domain.GateState, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.Normalize()

	s := &Service{
		cfg:       cfg,
		state:     state,
		whitelist: domain.NewWhitelist(cfg.WhitelistPaths),
		control:   domain.NewWhitelist([]string{cfg.ControlPattern()}),
		keys: KeyValidator{
			SecretKey: cfg.SecretKey,
			Dynamic:   cfg.DynamicKey(),
			Logger:    logger,
		},
		logger: logger,
	}

	logger.Info("request control initialized",
		zap.Bool("active", cfg.Enabled),
		zap.Bool("default_enabled", cfg.DefaultEnabled),
		zap.Bool("dynamic_key", cfg.DynamicKey()),
		zap.String("control_path", cfg.ControlPath),
		zap.Strings("whitelist", cfg.WhitelistPaths),
	)
	return s
}

func (s *Service) Config() domain.Config { return s.cfg }

// Enabled retorna o valor atual da flag, sem checar chave.
func (s *Service) Enabled() bool {
	if s.state == nil {
		return true
	}
	return s.state.IsEnabled()
}

// ShouldAllow decide se uma requisição para `path` pode seguir.
// Roda em toda requisição: sem efeitos colaterais além de leitura atômica.
func (s *Service) ShouldAllow(path string) domain.AdmissionResult {
	if !s.cfg.Enabled {
		return domain.AdmissionResult{Allowed: true, Reason: domain.ReasonInactive}
	}
	if s.whitelist.Match(path) {
		return domain.AdmissionResult{Allowed: true, Reason: domain.ReasonWhitelist}
	}
	if s.Enabled() {
		return domain.AdmissionResult{Allowed: true, Reason: domain.ReasonEnabled}
	}
	return domain.AdmissionResult{
		Allowed:    false,
		Reason:     domain.ReasonDisabled,
		StatusCode: domain.RejectStatusCode,
		Message:    s.cfg.RejectMessage,
	}
}

// ApplyControl altera a flag para `enabled` se a chave for válida em `now`.
// Com chave inválida o estado não é tocado.
func (s *Service) ApplyControl(enabled bool, key string, now time.Time) domain.ControlResult {
	if s.state == nil || !s.keys.Validate(key, now) {
		return domain.ControlResult{Authorized: false}
	}

	prev := s.state.SetEnabled(enabled)
	s.logger.Info("request status changed",
		zap.Bool("from", prev),
		zap.Bool("to", enabled),
	)
	return domain.ControlResult{Authorized: true, Previous: prev, Enabled: enabled}
}

// QueryStatus devolve o valor atual da flag, com a mesma validação de chave do ApplyControl.
func (s *Service) QueryStatus(key string, now time.Time) domain.ControlResult {
	if !s.keys.Validate(key, now) {
		return domain.ControlResult{Authorized: false}
	}
	cur := s.Enabled()
	return domain.ControlResult{Authorized: true, Previous: cur, Enabled: cur}
}

// IsControlPath informa se o path pertence ao namespace administrativo.
func (s *Service) IsControlPath(path string) bool {
	return s.control.Match(path)
}
