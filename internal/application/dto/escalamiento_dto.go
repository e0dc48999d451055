package dto

import "time"

// EscalationEventDTO evento emitido por el escalador.
type EscalationEventDTO struct {
	ID          string    `json:"id"`
	WorkflowID  string    `json:"workflow_id"`
	Type        string    `json:"type"` // recordatorio | escalamiento | escalamiento_final
	TriggeredAt time.Time `json:"triggered_at"`
}

// EscalationTypeCountDTO conteo por tipo de evento.
type EscalationTypeCountDTO struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// EscalationStatsDTO estadísticas agregadas del escalador.
type EscalationStatsDTO struct {
	Total  int64                    `json:"total"`
	ByType []EscalationTypeCountDTO `json:"by_type"`
}

// WorkflowAtRiskDTO flujo abierto dentro de la ventana de riesgo del SLA.
type WorkflowAtRiskDTO struct {
	WorkflowID      string  `json:"workflow_id"`
	Title           string  `json:"title"`
	WorkflowType    string  `json:"workflow_type"`
	Status          string  `json:"status"`
	CurrentApprover string  `json:"current_approver,omitempty"`
	ElapsedHours    float64 `json:"elapsed_hours"`
	SLAHours        int     `json:"sla_hours"`
}
