package entity

import "time"

// EscalationType tipo de evento emitido por el escalador.
type EscalationType string

const (
	EscalamientoRecordatorio EscalationType = "recordatorio"       // elapsed >= H
	EscalamientoEscalamiento EscalationType = "escalamiento"       // elapsed >= 2H, el flujo pasa a "escalado"
	EscalamientoFinal        EscalationType = "escalamiento_final" // elapsed >= 3H
)

// Rank orden de severidad del evento (recordatorio=1 ... final=3). Un flujo
// nunca recibe dos veces el mismo rango ni un rango menor al ya emitido.
func (t EscalationType) Rank() int {
	switch t {
	case EscalamientoRecordatorio:
		return 1
	case EscalamientoEscalamiento:
		return 2
	case EscalamientoFinal:
		return 3
	}
	return 0
}

// EscalationEvent evento de escalamiento. Append-only: nunca se muta ni se
// borra; alimenta las estadísticas del escalador.
type EscalationEvent struct {
	ID          string
	WorkflowID  string
	Type        EscalationType
	TriggeredAt time.Time
}
