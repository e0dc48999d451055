package dto

// MetricsSnapshotDTO métricas del dashboard de autorizaciones.
// Cálculo de solo lectura, recalculado en cada petición.
type MetricsSnapshotDTO struct {
	Total              int64   `json:"total"`
	Pendientes         int64   `json:"pendientes"`
	Aprobados          int64   `json:"aprobados"`
	Rechazados         int64   `json:"rechazados"`
	Escalados          int64   `json:"escalados"`
	ApprovalRate       float64 `json:"approval_rate"`      // porcentaje aprobado/(aprobado+rechazado)
	AvgApprovalHours   float64 `json:"avg_approval_hours"` // promedio updatedAt−createdAt de aprobados
	ActiveApprovers    int64   `json:"active_approvers"`   // usuarios con decisión en la ventana móvil
	ApproverWindowDays int     `json:"approver_window_days"`
}
