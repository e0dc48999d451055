package entity

import "time"

// StepType tipo de paso dentro de la cadena de autorización.
type StepType string

const (
	PasoElabora  StepType = "elabora"  // quien origina la solicitud
	PasoAutoriza StepType = "autoriza" // firma de un nivel jerárquico
)

// StepStatus estado de un paso individual.
type StepStatus string

const (
	PasoPendiente StepStatus = "pendiente"
	PasoFirmado   StepStatus = "firmado"
)

// ApprovalStep un eslabón de la cadena de firmas de un flujo, resuelto al crear
// el flujo a partir de la regla de la matriz y la jerarquía de aprobadores.
//
// En modo secuencial el paso N+1 solo es actuable cuando el paso N está
// "firmado"; en modo paralelo todos los pasos son actuables desde la creación.
// Un paso queda "firmado" si y solo si la decisión activa de su aprobador
// designado es aprobar.
type ApprovalStep struct {
	ID            string
	WorkflowID    string
	StepIndex     int
	StepType      StepType
	RequiredLevel ApproverLevel
	ApproverID    string // identidad designada; un paso nominado exige coincidencia exacta
	ApproverName  string
	Status        StepStatus
	SignedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Signed atajo de lectura.
func (s ApprovalStep) Signed() bool { return s.Status == PasoFirmado }
