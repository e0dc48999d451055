package repository

import (
	"context"

	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
)

// WorkflowRepository puerto de persistencia para instancias de flujo.
type WorkflowRepository interface {
	Create(ctx context.Context, wf *entity.Workflow) error
	GetByID(ctx context.Context, id string) (*entity.Workflow, error)
	// GetByIDForUpdate lee la fila bloqueándola para la transacción en curso:
	// el recálculo de estado es una sección crítica por flujo.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Workflow, error)
	// UpdateProjection persiste la proyección derivada del ledger
	// (status, currentStep, currentApprover, updatedAt).
	UpdateProjection(ctx context.Context, wf *entity.Workflow) error
	// ListRecent flujos ordenados por última actualización, descendente.
	ListRecent(ctx context.Context, limit int) ([]entity.Workflow, error)
	// ListOpen snapshot finito de flujos abiertos (pendiente o escalado).
	ListOpen(ctx context.Context) ([]entity.Workflow, error)
}

// StepRepository puerto de persistencia para los pasos de la cadena de firmas.
type StepRepository interface {
	CreateBatch(ctx context.Context, steps []entity.ApprovalStep) error
	ListByWorkflow(ctx context.Context, workflowID string) ([]entity.ApprovalStep, error)
	// Update persiste status, signedAt y la re-nominación del firmante.
	Update(ctx context.Context, step *entity.ApprovalStep) error
}
