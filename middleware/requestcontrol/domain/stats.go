package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão de admissão.
//
// Observação: cuidado com cardinalidade (salvar Path sem controle pode
// explodir o número de chaves numa base como Redis).
type StatsEvent struct {
	Allowed bool
	Reason  Reason

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de admissão.
//
// O middleware trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

type Counters struct {
	Allowed  int64 `json:"allowed"`
	Rejected int64 `json:"rejected"`
}

// StatsSnapshot é a leitura agregada de um StatsStore.
// ByRoute só vem preenchido quando o store rastreia rotas.
type StatsSnapshot struct {
	Total    Counters            `json:"total"`
	ByReason map[Reason]int64    `json:"byReason"`
	ByRoute  map[string]Counters `json:"byRoute,omitempty"`
}

// StatsReader é implementado pelos stores que sabem devolver o agregado.
type StatsReader interface {
	Snapshot(ctx context.Context) (StatsSnapshot, error)
}
