package repository

import (
	"context"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
)

// EscalationCount conteo de eventos por tipo, para estadísticas.
type EscalationCount struct {
	Type  entity.EscalationType
	Count int64
}

// EscalationRepository puerto de persistencia de eventos de escalamiento.
// Append-only: los eventos nunca se mutan ni se borran.
type EscalationRepository interface {
	Append(ctx context.Context, e *entity.EscalationEvent) error
	ListByWorkflow(ctx context.Context, workflowID string) ([]entity.EscalationEvent, error)
	CountByType(ctx context.Context) ([]EscalationCount, error)
}
