package repository

import (
	"context"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
)

// DecisionRepository puerto del ledger de decisiones activas.
// El store guarda a lo sumo una decisión por (flujo, usuario): Upsert reemplaza
// la anterior y Delete la elimina (reversión). El histórico crudo va a la
// bitácora, no aquí.
type DecisionRepository interface {
	Upsert(ctx context.Context, d *entity.Decision) error
	Delete(ctx context.Context, workflowID, userID string) error
	// ListByWorkflow decisiones activas en orden cronológico.
	ListByWorkflow(ctx context.Context, workflowID string) ([]entity.Decision, error)
	// GetByUser decisión activa del usuario, nil si no tiene.
	GetByUser(ctx context.Context, workflowID, userID string) (*entity.Decision, error)
}

// AuditRepository bitácora append-only de eventos crudos del ledger
// (aprobaciones, rechazos, reemplazos y reversiones).
type AuditRepository interface {
	Append(ctx context.Context, e *entity.AuditEntry) error
	ListByWorkflow(ctx context.Context, workflowID string) ([]entity.AuditEntry, error)
}
