package infra

import (
	"context"
	"sync/atomic"
	"time"

	"request-control-gateway/middleware/requestcontrol/domain"
)

// AsyncStatsStore tira a gravação de estatísticas da goroutine da requisição.
//
// Record só enfileira num channel com buffer; um worker (Start) repassa os
// eventos ao store de destino com timeout próprio. Buffer cheio = evento descartado.
// Sem Start nada é gravado, mas Record continua sem bloquear.
type AsyncStatsStore struct {
	next    domain.StatsStore
	events  chan domain.StatsEvent
	timeout time.Duration

	onDrop  func()
	onError func(error)
	dropped atomic.Int64
}

var _ domain.StatsStore = (*AsyncStatsStore)(nil)

type AsyncStatsOption func(*AsyncStatsStore)

func WithAsyncBuffer(n int) AsyncStatsOption {
	return func(s *AsyncStatsStore) {
		if n > 0 {
			s.events = make(chan domain.StatsEvent, n)
		}
	}
}

// WithAsyncTimeout limita cada gravação no store de destino.
func WithAsyncTimeout(d time.Duration) AsyncStatsOption {
	return func(s *AsyncStatsStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithDropHandler(fn func()) AsyncStatsOption {
	return func(s *AsyncStatsStore) { s.onDrop = fn }
}

func WithErrorHandler(fn func(error)) AsyncStatsOption {
	return func(s *AsyncStatsStore) { s.onError = fn }
}

func NewAsyncStatsStore(next domain.StatsStore, opts ...AsyncStatsOption) *AsyncStatsStore {
	s := &AsyncStatsStore{
		next:    next,
		events:  make(chan domain.StatsEvent, 1024),
		timeout: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AsyncStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case s.events <- ev:
	default:
		s.dropped.Add(1)
		if s.onDrop != nil {
			s.onDrop()
		}
	}
	return nil
}

// Dropped conta eventos descartados por buffer cheio.
func (s *AsyncStatsStore) Dropped() int64 { return s.dropped.Load() }

// Start inicia o worker. Pare cancelando o contexto; eventos ainda no buffer são perdidos.
func (s *AsyncStatsStore) Start(ctx DoneContext) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-s.events:
				s.write(ev)
			}
		}
	}()
}

func (s *AsyncStatsStore) write(ev domain.StatsEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.next.Record(ctx, ev); err != nil && s.onError != nil {
		s.onError(err)
	}
}
