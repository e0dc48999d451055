package repository

import (
	"context"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
)

// ApproverRepository puerto del directorio de aprobadores (jerarquía
// organizacional). El constructor de pasos lo consulta para nominar un
// firmante por nivel.
type ApproverRepository interface {
	Create(ctx context.Context, a *entity.Approver) error
	GetByID(ctx context.Context, id string) (*entity.Approver, error)
	// ListActive aprobadores activos en orden estable (por antigüedad), para
	// que la nominación de la cadena de firmas sea determinista.
	ListActive(ctx context.Context) ([]entity.Approver, error)
}
