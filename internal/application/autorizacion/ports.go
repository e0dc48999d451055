// Package autorizacion contiene los casos de uso del flujo de autorizaciones:
// creación de instancias, registro de decisiones y consultas del ledger.
package autorizacion

import (
	"context"

	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
)

// TxRunner ejecuta un callback con repositorios atados a una misma transacción.
// El registro de una decisión (leer ledger → validar → escribir → recalcular
// proyección) es una sección crítica por flujo; la fila del flujo se bloquea
// dentro de la transacción vía GetByIDForUpdate.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		flujoRepo repository.WorkflowRepository,
		pasoRepo repository.StepRepository,
		decisionRepo repository.DecisionRepository,
		bitacoraRepo repository.AuditRepository,
	) error) error
}

// Actor identidad del usuario autenticado que ejecuta la acción (del token).
// Level puede venir vacío si el usuario no está en el directorio de
// aprobadores: entonces solo puede firmar pasos nominados a su identidad.
type Actor struct {
	ID    string
	Name  string
	Level string
}
