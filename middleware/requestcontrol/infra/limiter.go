package infra

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientLimiter é um token bucket (x/time/rate) por cliente, com cache por chave
// e limpeza periódica. Usado para limitar tentativas nas rotas de controle.
type ClientLimiter struct {
	mu           sync.Mutex
	entries      map[string]*limiterEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type LimiterOption func(*ClientLimiter)

func WithIdleTTL(d time.Duration) LimiterOption {
	return func(l *ClientLimiter) { l.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) LimiterOption {
	return func(l *ClientLimiter) { l.cleanupEvery = d }
}

func NewClientLimiter(rps float64, burst int, opts ...LimiterOption) *ClientLimiter {
	l := &ClientLimiter{
		entries:      make(map[string]*limiterEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *ClientLimiter) RPS() float64 { return float64(l.rps) }
func (l *ClientLimiter) Burst() int   { return l.burst }

// Allow consome um token do cliente. Quando não há token, devolve false e
// quanto tempo falta para o próximo (para o header Retry-After).
func (l *ClientLimiter) Allow(client string) (bool, time.Duration) {
	lim := l.get(client)

	r := lim.Reserve()
	if !r.OK() {
		return false, time.Second
	}
	if d := r.Delay(); d > 0 {
		r.Cancel()
		return false, d
	}
	return true, 0
}

func (l *ClientLimiter) get(key string) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if ent, ok := l.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(l.rps, l.burst)
	l.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

func (l *ClientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *ClientLimiter) Cleanup() {
	cutoff := time.Now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa clientes inativos periodicamente.
// Pare cancelando o contexto.
func (l *ClientLimiter) StartJanitor(ctx DoneContext) {
	if l.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(l.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
type DoneContext interface {
	Done() <-chan struct{}
}
