package infra

import (
	"context"
	"sync"

	"request-control-gateway/middleware/requestcontrol/domain"
)

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    domain.Counters
	byRoute  map[string]domain.Counters
	byReason map[domain.Reason]int64

	trackRoutes bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackRoutes(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackRoutes = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute:  make(map[string]domain.Counters),
		byReason: make(map[domain.Reason]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byReason[ev.Reason]++

	c := s.byRoute[route]
	if ev.Allowed {
		s.total.Allowed++
		c.Allowed++
	} else {
		s.total.Rejected++
		c.Rejected++
	}
	if s.trackRoutes {
		s.byRoute[route] = c
	}
	return nil
}

func (s *MemoryStatsStore) Snapshot(_ context.Context) (domain.StatsSnapshot, error) {
	snap := domain.StatsSnapshot{
		Total:    s.Total(),
		ByReason: s.ByReason(),
	}
	if s.trackRoutes {
		snap.ByRoute = s.ByRoute()
	}
	return snap, nil
}

func (s *MemoryStatsStore) Total() domain.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByRoute() map[string]domain.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Counters, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByReason() map[domain.Reason]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Reason]int64, len(s.byReason))
	for k, v := range s.byReason {
		out[k] = v
	}
	return out
}
