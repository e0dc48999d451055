package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMatrixRuleRequest alta de una regla de la matriz de autorizaciones.
// MaxAmount nulo = nivel abierto por arriba.
type CreateMatrixRuleRequest struct {
	WorkflowType       string           `json:"workflow_type"`
	MinAmount          decimal.Decimal  `json:"min_amount"`
	MaxAmount          *decimal.Decimal `json:"max_amount,omitempty"`
	RequiredLevel      string           `json:"required_level"` // supervisor | gerente | director | ejecutivo
	RequiresSequential bool             `json:"requires_sequential"`
	EscalationHours    int              `json:"escalation_hours"`
}

// MatrixRuleResponse una fila de la matriz.
type MatrixRuleResponse struct {
	ID                 string           `json:"id"`
	WorkflowType       string           `json:"workflow_type"`
	MinAmount          decimal.Decimal  `json:"min_amount"`
	MaxAmount          *decimal.Decimal `json:"max_amount,omitempty"`
	RequiredLevel      string           `json:"required_level"`
	RequiresSequential bool             `json:"requires_sequential"`
	EscalationHours    int              `json:"escalation_hours"`
	IsActive           bool             `json:"is_active"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// MatrixListResponse matriz completa agrupable por tipo en el cliente.
type MatrixListResponse struct {
	Items []MatrixRuleResponse `json:"items"`
}
