package postgres

import (
	"context"
	"fmt"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
)

var _ repository.StepRepository = (*StepRepo)(nil)

// StepRepo implementación de StepRepository sobre PostgreSQL (usable con pool o tx).
type StepRepo struct {
	q Querier
}

// NewStepRepository construye el adaptador de pasos. Pasar pool o tx (Querier).
func NewStepRepository(q Querier) *StepRepo {
	return &StepRepo{q: q}
}

// CreateBatch persiste la cadena completa de pasos de un flujo recién creado.
func (r *StepRepo) CreateBatch(ctx context.Context, steps []entity.ApprovalStep) error {
	query := `
		INSERT INTO pasos_aprobacion (id, workflow_id, step_index, step_type, required_level, approver_id, approver_name, status, signed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for i := range steps {
		s := &steps[i]
		_, err := r.q.Exec(ctx, query,
			s.ID, s.WorkflowID, s.StepIndex, s.StepType, s.RequiredLevel,
			s.ApproverID, s.ApproverName, s.Status, s.SignedAt, s.CreatedAt, s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert paso %d: %w", s.StepIndex, err)
		}
	}
	return nil
}

// ListByWorkflow pasos del flujo en orden de cadena.
func (r *StepRepo) ListByWorkflow(ctx context.Context, workflowID string) ([]entity.ApprovalStep, error) {
	query := `
		SELECT id, workflow_id, step_index, step_type, required_level, approver_id, approver_name, status, signed_at, created_at, updated_at
		FROM pasos_aprobacion WHERE workflow_id = $1 ORDER BY step_index`
	rows, err := r.q.Query(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list pasos: %w", err)
	}
	defer rows.Close()

	var out []entity.ApprovalStep
	for rows.Next() {
		var s entity.ApprovalStep
		if err := rows.Scan(
			&s.ID, &s.WorkflowID, &s.StepIndex, &s.StepType, &s.RequiredLevel,
			&s.ApproverID, &s.ApproverName, &s.Status, &s.SignedAt, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan paso: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update persiste status, signedAt y la re-nominación del firmante.
func (r *StepRepo) Update(ctx context.Context, step *entity.ApprovalStep) error {
	query := `
		UPDATE pasos_aprobacion
		SET approver_id = $2, approver_name = $3, status = $4, signed_at = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		step.ID, step.ApproverID, step.ApproverName, step.Status, step.SignedAt, step.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update paso: %w", err)
	}
	return nil
}
