package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkflowStatus estado agregado del flujo de autorización.
// "escalado" sigue siendo un estado abierto (pendiente urgente): admite las
// mismas transiciones que "pendiente". "aprobado" y "rechazado" son terminales.
type WorkflowStatus string

const (
	EstadoPendiente WorkflowStatus = "pendiente"
	EstadoAprobado  WorkflowStatus = "aprobado"
	EstadoRechazado WorkflowStatus = "rechazado"
	EstadoEscalado  WorkflowStatus = "escalado"
)

// Terminal indica si el estado no admite más decisiones (salvo reversión, que
// se valida aparte contra las firmas posteriores).
func (s WorkflowStatus) Terminal() bool {
	return s == EstadoAprobado || s == EstadoRechazado
}

// Open indica si el flujo sigue esperando acción (pendiente o escalado).
func (s WorkflowStatus) Open() bool {
	return s == EstadoPendiente || s == EstadoEscalado
}

// Workflow una instancia de autorización: un pago, contratación, orden de
// cambio, liberación de crédito o capital call esperando firmas.
//
// Status, CurrentStep y CurrentApprover son proyecciones derivadas del ledger de
// decisiones + la regla de la matriz; se recalculan en cada escritura del ledger
// y en cada pasada del escalador. RequiredLevel, RequiresSequential y
// EscalationHours son la copia inmutable de la regla emparejada al crear el flujo.
type Workflow struct {
	ID                 string
	Title              string
	WorkflowType       WorkflowType
	Amount             decimal.Decimal
	Project            string // referencia libre al desarrollo (el CRUD de proyectos vive fuera de este servicio)
	Status             WorkflowStatus
	RuleID             string
	RequiredLevel      ApproverLevel
	RequiresSequential bool
	EscalationHours    int
	CurrentStep        int    // índice del paso actuable (0-based); -1 si no hay paso pendiente
	CurrentApprover    string // nombre del aprobador del paso actuable
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
