package infra

import (
	"context"
	"sync"

	"request-control-gateway/middleware/requestcontrol/domain"
)

// MemoryAuditLog guarda os últimos `max` eventos de controle em memória (mais recente primeiro).
type MemoryAuditLog struct {
	mu     sync.Mutex
	events []domain.ControlEvent
	max    int
}

func NewMemoryAuditLog(max int) *MemoryAuditLog {
	if max <= 0 {
		max = 100
	}
	return &MemoryAuditLog{max: max}
}

func (l *MemoryAuditLog) Append(_ context.Context, ev domain.ControlEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append([]domain.ControlEvent{ev}, l.events...)
	if len(l.events) > l.max {
		l.events = l.events[:l.max]
	}
	return nil
}

func (l *MemoryAuditLog) Recent(_ context.Context, limit int) ([]domain.ControlEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.events) {
		limit = len(l.events)
	}
	out := make([]domain.ControlEvent, limit)
	copy(out, l.events[:limit])
	return out, nil
}
