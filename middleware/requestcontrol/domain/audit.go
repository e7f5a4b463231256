package domain

import (
	"context"
	"time"
)

type ControlOperation string

const (
	OperationSet    ControlOperation = "set"
	OperationStatus ControlOperation = "status"
	OperationAudit  ControlOperation = "audit"
	OperationStats  ControlOperation = "stats"
)

// ControlEvent registra uma tentativa de operação administrativa, autorizada ou não.
// A chave fornecida nunca é gravada.
type ControlEvent struct {
	ID        string           `json:"id"`
	Operation ControlOperation `json:"operation"`
	Client    string           `json:"client"`

	Authorized bool `json:"authorized"`
	Previous   bool `json:"previous"`
	Enabled    bool `json:"enabled"`

	At time.Time `json:"at"`
}

// AuditLog guarda o histórico de tentativas de controle.
type AuditLog interface {
	Append(ctx context.Context, ev ControlEvent) error
	Recent(ctx context.Context, limit int) ([]ControlEvent, error)
}
