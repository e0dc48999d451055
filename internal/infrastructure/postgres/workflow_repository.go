package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
)

var _ repository.WorkflowRepository = (*WorkflowRepo)(nil)

const workflowColumns = `id, title, workflow_type, amount, project, status, rule_id, required_level, requires_sequential, escalation_hours, current_step, current_approver, created_by, created_at, updated_at`

// WorkflowRepo implementación de WorkflowRepository sobre PostgreSQL (usable con pool o tx).
type WorkflowRepo struct {
	q Querier
}

// NewWorkflowRepository construye el adaptador de flujos. Pasar pool o tx (Querier).
func NewWorkflowRepository(q Querier) *WorkflowRepo {
	return &WorkflowRepo{q: q}
}

// Create persiste una instancia nueva con la copia de los campos de su regla.
func (r *WorkflowRepo) Create(ctx context.Context, wf *entity.Workflow) error {
	query := `
		INSERT INTO flujos_autorizacion (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		wf.ID, wf.Title, wf.WorkflowType, wf.Amount, wf.Project, wf.Status,
		wf.RuleID, wf.RequiredLevel, wf.RequiresSequential, wf.EscalationHours,
		wf.CurrentStep, wf.CurrentApprover, wf.CreatedBy, wf.CreatedAt, wf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert flujo: %w", err)
	}
	return nil
}

// GetByID obtiene un flujo por ID, nil si no existe.
func (r *WorkflowRepo) GetByID(ctx context.Context, id string) (*entity.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM flujos_autorizacion WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate obtiene el flujo y bloquea la fila para la tx en curso
// (SELECT FOR UPDATE). El recálculo de estado es una sección crítica por flujo.
func (r *WorkflowRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM flujos_autorizacion WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// UpdateProjection persiste la proyección derivada del ledger.
func (r *WorkflowRepo) UpdateProjection(ctx context.Context, wf *entity.Workflow) error {
	query := `
		UPDATE flujos_autorizacion
		SET status = $2, current_step = $3, current_approver = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, wf.ID, wf.Status, wf.CurrentStep, wf.CurrentApprover, wf.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update proyección de flujo: %w", err)
	}
	return nil
}

// ListRecent flujos por última actualización descendente.
func (r *WorkflowRepo) ListRecent(ctx context.Context, limit int) ([]entity.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM flujos_autorizacion ORDER BY updated_at DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list flujos recientes: %w", err)
	}
	return r.scanMany(rows)
}

// ListOpen snapshot finito de flujos abiertos (pendiente o escalado), los más
// antiguos primero para que la pasada de escalamiento trate primero lo urgente.
func (r *WorkflowRepo) ListOpen(ctx context.Context) ([]entity.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM flujos_autorizacion WHERE status IN ('pendiente', 'escalado') ORDER BY created_at`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list flujos abiertos: %w", err)
	}
	return r.scanMany(rows)
}

func (r *WorkflowRepo) scanOne(row pgx.Row) (*entity.Workflow, error) {
	var wf entity.Workflow
	err := row.Scan(
		&wf.ID, &wf.Title, &wf.WorkflowType, &wf.Amount, &wf.Project, &wf.Status,
		&wf.RuleID, &wf.RequiredLevel, &wf.RequiresSequential, &wf.EscalationHours,
		&wf.CurrentStep, &wf.CurrentApprover, &wf.CreatedBy, &wf.CreatedAt, &wf.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get flujo: %w", err)
	}
	return &wf, nil
}

func (r *WorkflowRepo) scanMany(rows pgx.Rows) ([]entity.Workflow, error) {
	defer rows.Close()
	var out []entity.Workflow
	for rows.Next() {
		var wf entity.Workflow
		if err := rows.Scan(
			&wf.ID, &wf.Title, &wf.WorkflowType, &wf.Amount, &wf.Project, &wf.Status,
			&wf.RuleID, &wf.RequiredLevel, &wf.RequiresSequential, &wf.EscalationHours,
			&wf.CurrentStep, &wf.CurrentApprover, &wf.CreatedBy, &wf.CreatedAt, &wf.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan flujo: %w", err)
		}
		out = append(out, wf)
	}
	return out, rows.Err()
}
