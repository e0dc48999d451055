package repository

import (
	"context"
	"time"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
)

// MetricsRepository consultas de solo lectura para el agregador de métricas.
// Sin efectos: cada snapshot se recalcula bajo demanda.
type MetricsRepository interface {
	// CountByStatus total de flujos por estado agregado.
	CountByStatus(ctx context.Context) (map[entity.WorkflowStatus]int64, error)
	// ApprovalDurations updatedAt − createdAt de cada flujo aprobado.
	ApprovalDurations(ctx context.Context) ([]time.Duration, error)
	// ActiveApprovers usuarios distintos con al menos una decisión desde `since`.
	ActiveApprovers(ctx context.Context, since time.Time) (int64, error)
}
