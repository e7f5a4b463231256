package domain

import "time"

// GateState representa a flag global que diz se requisições estão liberadas.
//
// Implementações devem ser atômicas: um SetEnabled concluído antes de um
// IsEnabled (em qualquer goroutine) precisa ser observado por ele.
type GateState interface {
	IsEnabled() bool
	// SetEnabled troca o valor e devolve o valor que estava em vigor antes da troca.
	SetEnabled(v bool) (previous bool)
}

// RejectStatusCode é o status HTTP usado quando o gate bloqueia (503).
const RejectStatusCode = 503

type Reason string

const (
	// ReasonInactive: o mecanismo inteiro está desligado por configuração.
	ReasonInactive  Reason = "inactive"
	ReasonWhitelist Reason = "whitelist"
	ReasonEnabled   Reason = "enabled"
	ReasonDisabled  Reason = "disabled"
)

// AdmissionResult é o resultado da checagem de uma única requisição.
type AdmissionResult struct {
	Allowed bool
	Reason  Reason
	// StatusCode e Message só fazem sentido quando Allowed=false.
	StatusCode int
	Message    string
}

func (r AdmissionResult) Err() error {
	if r.Allowed {
		return nil
	}
	return ErrServiceUnavailable
}

// ControlResult é o resultado de uma operação administrativa (alterar ou consultar).
//
// Authorized=false significa chave inválida; nesse caso Previous/Enabled não
// têm significado e o estado não foi alterado.
type ControlResult struct {
	Authorized bool
	Previous   bool
	Enabled    bool
}

func (r ControlResult) Err() error {
	if r.Authorized {
		return nil
	}
	return ErrUnauthorized
}

// AttemptLimiter limita tentativas por cliente nas rotas de controle.
// Quando bloqueia, devolve quanto tempo o cliente deve esperar.
type AttemptLimiter interface {
	Allow(client string) (ok bool, retryAfter time.Duration)
}
