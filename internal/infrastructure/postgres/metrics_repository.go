package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
)

var _ repository.MetricsRepository = (*MetricsRepo)(nil)

// MetricsRepo consultas de solo lectura para el agregador de métricas.
type MetricsRepo struct {
	q Querier
}

// NewMetricsRepository construye el adaptador de métricas. Pasar pool o tx (Querier).
func NewMetricsRepository(q Querier) *MetricsRepo {
	return &MetricsRepo{q: q}
}

// CountByStatus total de flujos por estado.
func (r *MetricsRepo) CountByStatus(ctx context.Context) (map[entity.WorkflowStatus]int64, error) {
	rows, err := r.q.Query(ctx,
		`SELECT status, COUNT(*) FROM flujos_autorizacion GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count por estado: %w", err)
	}
	defer rows.Close()

	out := make(map[entity.WorkflowStatus]int64)
	for rows.Next() {
		var status entity.WorkflowStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan conteo de estado: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// ApprovalDurations duración de cada flujo aprobado, de creación a cierre.
func (r *MetricsRepo) ApprovalDurations(ctx context.Context) ([]time.Duration, error) {
	rows, err := r.q.Query(ctx, `
		SELECT EXTRACT(EPOCH FROM (updated_at - created_at))
		FROM flujos_autorizacion WHERE status = 'aprobado'`)
	if err != nil {
		return nil, fmt.Errorf("duraciones de aprobación: %w", err)
	}
	defer rows.Close()

	var out []time.Duration
	for rows.Next() {
		var seconds float64
		if err := rows.Scan(&seconds); err != nil {
			return nil, fmt.Errorf("scan duración: %w", err)
		}
		out = append(out, time.Duration(seconds*float64(time.Second)))
	}
	return out, rows.Err()
}

// ActiveApprovers usuarios distintos con al menos una decisión desde `since`.
func (r *MetricsRepo) ActiveApprovers(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM decisiones WHERE created_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("aprobadores activos: %w", err)
	}
	return n, nil
}
