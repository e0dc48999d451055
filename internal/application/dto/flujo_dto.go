package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWorkflowRequest alta de una instancia de autorización.
type CreateWorkflowRequest struct {
	Title        string          `json:"title"`
	WorkflowType string          `json:"workflow_type"` // pago | contratacion | orden_cambio | liberacion_credito | capital_call
	Amount       decimal.Decimal `json:"amount"`
	Project      string          `json:"project,omitempty"`
}

// DecisionRequest acción de un aprobador sobre un flujo.
// El usuario se toma del token; el cuerpo solo trae acción y comentarios.
type DecisionRequest struct {
	Action   string `json:"action"` // aprobar | rechazar | revertir
	Comments string `json:"comments,omitempty"`
}

// StepResponse un paso de la cadena de firmas.
type StepResponse struct {
	StepIndex     int        `json:"step_index"`
	StepType      string     `json:"step_type"`
	RequiredLevel string     `json:"required_level"`
	ApproverID    string     `json:"approver_id"`
	ApproverName  string     `json:"approver_name"`
	Status        string     `json:"status"`
	SignedAt      *time.Time `json:"signed_at,omitempty"`
}

// DecisionResponse decisión activa de un usuario.
type DecisionResponse struct {
	WorkflowID string    `json:"workflow_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Action     string    `json:"action"`
	Comments   string    `json:"comments,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// WorkflowResponse instancia de flujo con su proyección de estado.
type WorkflowResponse struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	WorkflowType       string          `json:"workflow_type"`
	Amount             decimal.Decimal `json:"amount"`
	Project            string          `json:"project,omitempty"`
	Status             string          `json:"status"`
	RequiredLevel      string          `json:"required_level"`
	RequiresSequential bool            `json:"requires_sequential"`
	EscalationHours    int             `json:"escalation_hours"`
	CurrentStep        int             `json:"current_step"`
	CurrentApprover    string          `json:"current_approver,omitempty"`
	CreatedBy          string          `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Steps              []StepResponse  `json:"steps,omitempty"`
}

// DecisionResultDTO resultado de registrar una decisión: la proyección del
// flujo después del recálculo.
type DecisionResultDTO struct {
	WorkflowID      string `json:"workflow_id"`
	Action          string `json:"action"`
	Status          string `json:"status"`
	CurrentStep     int    `json:"current_step"`
	CurrentApprover string `json:"current_approver,omitempty"`
}

// WorkflowListResponse listado de flujos.
type WorkflowListResponse struct {
	Items []WorkflowResponse `json:"items"`
}
