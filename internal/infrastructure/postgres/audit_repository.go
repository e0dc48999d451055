package postgres

import (
	"context"
	"fmt"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora append-only de eventos crudos del ledger.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador de la bitácora. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Append agrega una entrada. Nunca se muta ni se borra.
func (r *AuditRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO bitacora_autorizacion (id, workflow_id, user_id, user_name, action, comments, status_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.WorkflowID, e.UserID, e.UserName, e.Action, e.Comments, e.StatusAfter, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append bitácora: %w", err)
	}
	return nil
}

// ListByWorkflow entradas del flujo en orden cronológico.
func (r *AuditRepo) ListByWorkflow(ctx context.Context, workflowID string) ([]entity.AuditEntry, error) {
	query := `
		SELECT id, workflow_id, user_id, user_name, action, comments, status_after, created_at
		FROM bitacora_autorizacion WHERE workflow_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list bitácora: %w", err)
	}
	defer rows.Close()

	var out []entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(&e.ID, &e.WorkflowID, &e.UserID, &e.UserName, &e.Action, &e.Comments, &e.StatusAfter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bitácora: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
