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

var _ repository.ApproverRepository = (*ApproverRepo)(nil)

// ApproverRepo directorio de aprobadores sobre PostgreSQL (usable con pool o tx).
type ApproverRepo struct {
	q Querier
}

// NewApproverRepository construye el adaptador del directorio. Pasar pool o tx (Querier).
func NewApproverRepository(q Querier) *ApproverRepo {
	return &ApproverRepo{q: q}
}

// Create persiste un aprobador nuevo.
func (r *ApproverRepo) Create(ctx context.Context, a *entity.Approver) error {
	query := `
		INSERT INTO aprobadores (id, name, level, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, a.ID, a.Name, a.Level, a.IsActive, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert aprobador: %w", err)
	}
	return nil
}

// GetByID obtiene un aprobador por ID, nil si no existe.
func (r *ApproverRepo) GetByID(ctx context.Context, id string) (*entity.Approver, error) {
	query := `
		SELECT id, name, level, is_active, created_at, updated_at
		FROM aprobadores WHERE id = $1`
	var a entity.Approver
	err := r.q.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Level, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get aprobador: %w", err)
	}
	return &a, nil
}

// ListActive aprobadores activos por antigüedad, para que la nominación de la
// cadena de firmas sea determinista.
func (r *ApproverRepo) ListActive(ctx context.Context) ([]entity.Approver, error) {
	query := `
		SELECT id, name, level, is_active, created_at, updated_at
		FROM aprobadores WHERE is_active ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list aprobadores: %w", err)
	}
	defer rows.Close()

	var out []entity.Approver
	for rows.Next() {
		var a entity.Approver
		if err := rows.Scan(&a.ID, &a.Name, &a.Level, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan aprobador: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
