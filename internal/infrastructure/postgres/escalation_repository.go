package postgres

import (
	"context"
	"fmt"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
)

var _ repository.EscalationRepository = (*EscalationRepo)(nil)

// EscalationRepo eventos de escalamiento sobre PostgreSQL (usable con pool o tx).
// Append-only.
type EscalationRepo struct {
	q Querier
}

// NewEscalationRepository construye el adaptador de eventos. Pasar pool o tx (Querier).
func NewEscalationRepository(q Querier) *EscalationRepo {
	return &EscalationRepo{q: q}
}

// Append agrega un evento emitido por el escalador.
func (r *EscalationRepo) Append(ctx context.Context, e *entity.EscalationEvent) error {
	query := `
		INSERT INTO eventos_escalamiento (id, workflow_id, event_type, triggered_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, e.ID, e.WorkflowID, e.Type, e.TriggeredAt)
	if err != nil {
		return fmt.Errorf("append evento de escalamiento: %w", err)
	}
	return nil
}

// ListByWorkflow eventos del flujo en orden de emisión.
func (r *EscalationRepo) ListByWorkflow(ctx context.Context, workflowID string) ([]entity.EscalationEvent, error) {
	query := `
		SELECT id, workflow_id, event_type, triggered_at
		FROM eventos_escalamiento WHERE workflow_id = $1 ORDER BY triggered_at`
	rows, err := r.q.Query(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list eventos: %w", err)
	}
	defer rows.Close()

	var out []entity.EscalationEvent
	for rows.Next() {
		var e entity.EscalationEvent
		if err := rows.Scan(&e.ID, &e.WorkflowID, &e.Type, &e.TriggeredAt); err != nil {
			return nil, fmt.Errorf("scan evento: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountByType conteo global de eventos por tipo.
func (r *EscalationRepo) CountByType(ctx context.Context) ([]repository.EscalationCount, error) {
	rows, err := r.q.Query(ctx,
		`SELECT event_type, COUNT(*) FROM eventos_escalamiento GROUP BY event_type`)
	if err != nil {
		return nil, fmt.Errorf("count eventos: %w", err)
	}
	defer rows.Close()

	var out []repository.EscalationCount
	for rows.Next() {
		var c repository.EscalationCount
		if err := rows.Scan(&c.Type, &c.Count); err != nil {
			return nil, fmt.Errorf("scan conteo: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
