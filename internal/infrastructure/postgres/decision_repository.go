package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
)

var _ repository.DecisionRepository = (*DecisionRepo)(nil)

// DecisionRepo ledger de decisiones activas sobre PostgreSQL (usable con pool o tx).
// El constraint UNIQUE (workflow_id, user_id) garantiza a lo sumo una decisión
// activa por usuario; Upsert materializa la supersesión.
type DecisionRepo struct {
	q Querier
}

// NewDecisionRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewDecisionRepository(q Querier) *DecisionRepo {
	return &DecisionRepo{q: q}
}

// Upsert inserta la decisión o reemplaza la anterior del mismo usuario en el flujo.
func (r *DecisionRepo) Upsert(ctx context.Context, d *entity.Decision) error {
	query := `
		INSERT INTO decisiones (id, workflow_id, user_id, user_name, action, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (workflow_id, user_id)
		DO UPDATE SET id = EXCLUDED.id, user_name = EXCLUDED.user_name, action = EXCLUDED.action,
		              comments = EXCLUDED.comments, created_at = EXCLUDED.created_at`
	_, err := r.q.Exec(ctx, query, d.ID, d.WorkflowID, d.UserID, d.UserName, d.Action, d.Comments, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert decisión: %w", err)
	}
	return nil
}

// Delete elimina la decisión activa del usuario (reversión). No falla si no existe.
func (r *DecisionRepo) Delete(ctx context.Context, workflowID, userID string) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM decisiones WHERE workflow_id = $1 AND user_id = $2`, workflowID, userID)
	if err != nil {
		return fmt.Errorf("delete decisión: %w", err)
	}
	return nil
}

// ListByWorkflow decisiones activas del flujo en orden cronológico.
func (r *DecisionRepo) ListByWorkflow(ctx context.Context, workflowID string) ([]entity.Decision, error) {
	query := `
		SELECT id, workflow_id, user_id, user_name, action, comments, created_at
		FROM decisiones WHERE workflow_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list decisiones: %w", err)
	}
	defer rows.Close()

	var out []entity.Decision
	for rows.Next() {
		var d entity.Decision
		if err := rows.Scan(&d.ID, &d.WorkflowID, &d.UserID, &d.UserName, &d.Action, &d.Comments, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan decisión: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByUser decisión activa del usuario sobre el flujo, nil si no tiene.
func (r *DecisionRepo) GetByUser(ctx context.Context, workflowID, userID string) (*entity.Decision, error) {
	query := `
		SELECT id, workflow_id, user_id, user_name, action, comments, created_at
		FROM decisiones WHERE workflow_id = $1 AND user_id = $2`
	var d entity.Decision
	err := r.q.QueryRow(ctx, query, workflowID, userID).Scan(
		&d.ID, &d.WorkflowID, &d.UserID, &d.UserName, &d.Action, &d.Comments, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get decisión: %w", err)
	}
	return &d, nil
}
