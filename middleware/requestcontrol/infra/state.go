package infra

import (
	"sync"
	"sync/atomic"

	"request-control-gateway/middleware/requestcontrol/domain"
)

// AtomicState implementa domain.GateState com atomic.Bool.
// Vive só na memória do processo: reinício volta para o valor inicial.
//
// IsEnabled é só um Load. SetEnabled serializa Swap + onChange para que o
// último callback executado veja o valor final da flag.
type AtomicState struct {
	v        atomic.Bool
	mu       sync.Mutex
	onChange func(enabled bool)
}

var _ domain.GateState = (*AtomicState)(nil)

type StateOption func(*AtomicState)

// WithOnChange registra um callback chamado após cada SetEnabled (ex.: gauge de métricas).
// O callback roda na goroutine de quem chamou SetEnabled, com o lock de escrita.
func WithOnChange(fn func(enabled bool)) StateOption {
	return func(s *AtomicState) { s.onChange = fn }
}

func NewAtomicState(initial bool, opts ...StateOption) *AtomicState {
	s := &AtomicState{}
	s.v.Store(initial)
	for _, opt := range opts {
		opt(s)
	}
	if s.onChange != nil {
		s.onChange(initial)
	}
	return s
}

func (s *AtomicState) IsEnabled() bool { return s.v.Load() }

func (s *AtomicState) SetEnabled(v bool) bool {
	if s.onChange == nil {
		return s.v.Swap(v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.v.Swap(v)
	s.onChange(v)
	return prev
}
