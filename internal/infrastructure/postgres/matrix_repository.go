package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/grupoterra/autorizaciones-api/internal/domain"
	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
)

var _ repository.MatrixRepository = (*MatrixRepo)(nil)

// MatrixRepo implementación de MatrixRepository sobre PostgreSQL (usable con pool o tx).
type MatrixRepo struct {
	q Querier
}

// NewMatrixRepository construye el adaptador de la matriz. Pasar pool o tx (Querier).
func NewMatrixRepository(q Querier) *MatrixRepo {
	return &MatrixRepo{q: q}
}

// Create persiste una regla nueva de la matriz.
func (r *MatrixRepo) Create(ctx context.Context, rule *entity.MatrixRule) error {
	query := `
		INSERT INTO matriz_autorizacion (id, workflow_type, min_amount, max_amount, required_level, requires_sequential, escalation_hours, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		rule.ID, rule.WorkflowType, rule.MinAmount, rule.MaxAmount, rule.RequiredLevel,
		rule.RequiresSequential, rule.EscalationHours, rule.IsActive, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert matriz: %w", err)
	}
	return nil
}

// GetByID obtiene una regla por ID, nil si no existe.
func (r *MatrixRepo) GetByID(ctx context.Context, id string) (*entity.MatrixRule, error) {
	query := `
		SELECT id, workflow_type, min_amount, max_amount, required_level, requires_sequential, escalation_hours, is_active, created_at, updated_at
		FROM matriz_autorizacion WHERE id = $1`
	var m entity.MatrixRule
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.WorkflowType, &m.MinAmount, &m.MaxAmount, &m.RequiredLevel,
		&m.RequiresSequential, &m.EscalationHours, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get regla: %w", err)
	}
	return &m, nil
}

// List todas las reglas (activas e inactivas) por tipo y monto mínimo ascendente.
// El dominio filtra por IsActive al resolver.
func (r *MatrixRepo) List(ctx context.Context) ([]entity.MatrixRule, error) {
	query := `
		SELECT id, workflow_type, min_amount, max_amount, required_level, requires_sequential, escalation_hours, is_active, created_at, updated_at
		FROM matriz_autorizacion ORDER BY workflow_type, min_amount`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list matriz: %w", err)
	}
	defer rows.Close()

	var out []entity.MatrixRule
	for rows.Next() {
		var m entity.MatrixRule
		if err := rows.Scan(
			&m.ID, &m.WorkflowType, &m.MinAmount, &m.MaxAmount, &m.RequiredLevel,
			&m.RequiresSequential, &m.EscalationHours, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan regla: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Deactivate marca la regla como inactiva. Las reglas nunca se borran.
func (r *MatrixRepo) Deactivate(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE matriz_autorizacion SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate regla: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
