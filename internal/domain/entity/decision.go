package entity

import "time"

// DecisionAction acción de un aprobador sobre un flujo.
type DecisionAction string

const (
	AccionAprobar  DecisionAction = "aprobar"
	AccionRechazar DecisionAction = "rechazar"
	AccionRevertir DecisionAction = "revertir"
)

// Valid indica si la acción es conocida.
func (a DecisionAction) Valid() bool {
	switch a {
	case AccionAprobar, AccionRechazar, AccionRevertir:
		return true
	}
	return false
}

// Decision entrada del ledger: la decisión activa de un usuario sobre un flujo.
//
// Invariante: a lo sumo una decisión activa por (WorkflowID, UserID). Una nueva
// decisión del mismo usuario reemplaza la anterior; "revertir" elimina la
// decisión activa y regresa el paso a pendiente. El histórico crudo de eventos
// (incluyendo reemplazos y reversiones) queda en la bitácora, no aquí.
type Decision struct {
	ID         string
	WorkflowID string
	UserID     string
	UserName   string
	Action     DecisionAction
	Comments   string
	CreatedAt  time.Time
}

// AuditEntry evento crudo de la bitácora de autorizaciones. Append-only.
type AuditEntry struct {
	ID          string
	WorkflowID  string
	UserID      string
	UserName    string
	Action      DecisionAction
	Comments    string
	StatusAfter WorkflowStatus
	CreatedAt   time.Time
}
