package repository

import (
	"context"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
)

// MatrixRepository puerto de persistencia para la matriz de autorizaciones (DIP).
// Las reglas nunca se borran: se desactivan con Deactivate.
type MatrixRepository interface {
	Create(ctx context.Context, rule *entity.MatrixRule) error
	GetByID(ctx context.Context, id string) (*entity.MatrixRule, error)
	List(ctx context.Context) ([]entity.MatrixRule, error)
	Deactivate(ctx context.Context, id string) error
}
