package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grupoterra/autorizaciones-api/internal/application/dto"
	"github.com/grupoterra/autorizaciones-api/internal/domain"
	"github.com/grupoterra/autorizaciones-api/internal/domain/autorizacion"
	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
)

// MatrixUseCase administración de la matriz de autorizaciones.
// Solo administradores: la edita el nivel director/ejecutivo vía el middleware.
type MatrixUseCase struct {
	repo repository.MatrixRepository
}

// NewMatrixUseCase construye el caso de uso.
func NewMatrixUseCase(repo repository.MatrixRepository) *MatrixUseCase {
	return &MatrixUseCase{repo: repo}
}

// Create agrega una regla validando el invariante de partición del tipo: los
// rangos activos resultantes no pueden traslaparse ni dejar huecos. El traslape
// se rechaza aquí, en configuración; el resolver nunca lo maneja en runtime.
func (uc *MatrixUseCase) Create(ctx context.Context, in dto.CreateMatrixRuleRequest) (*dto.MatrixRuleResponse, error) {
	tipo := entity.WorkflowType(in.WorkflowType)
	if !tipo.Valid() {
		return nil, fmt.Errorf("workflow_type %q: %w", in.WorkflowType, domain.ErrInvalidInput)
	}
	nivel := entity.ApproverLevel(in.RequiredLevel)
	if !nivel.Valid() {
		return nil, fmt.Errorf("required_level %q: %w", in.RequiredLevel, domain.ErrInvalidInput)
	}
	if in.EscalationHours <= 0 {
		return nil, fmt.Errorf("escalation_hours debe ser positivo: %w", domain.ErrInvalidInput)
	}

	now := time.Now()
	rule := entity.MatrixRule{
		ID:                 uuid.New().String(),
		WorkflowType:       tipo,
		MinAmount:          in.MinAmount,
		MaxAmount:          in.MaxAmount,
		RequiredLevel:      nivel,
		RequiresSequential: in.RequiresSequential,
		EscalationHours:    in.EscalationHours,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	existing, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := autorizacion.ValidatePartition(append(existing, rule), tipo); err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, &rule); err != nil {
		return nil, err
	}
	resp := toMatrixRuleResponse(rule)
	return &resp, nil
}

// List devuelve la matriz completa, reglas inactivas incluidas.
func (uc *MatrixUseCase) List(ctx context.Context) (*dto.MatrixListResponse, error) {
	rules, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.MatrixListResponse{Items: make([]dto.MatrixRuleResponse, 0, len(rules))}
	for _, r := range rules {
		out.Items = append(out.Items, toMatrixRuleResponse(r))
	}
	return out, nil
}

// Deactivate baja lógica de una regla; las reglas nunca se borran y los flujos
// en curso conservan su copia.
func (uc *MatrixUseCase) Deactivate(ctx context.Context, id string) error {
	rule, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rule == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Deactivate(ctx, id)
}

func toMatrixRuleResponse(r entity.MatrixRule) dto.MatrixRuleResponse {
	return dto.MatrixRuleResponse{
		ID:                 r.ID,
		WorkflowType:       string(r.WorkflowType),
		MinAmount:          r.MinAmount,
		MaxAmount:          r.MaxAmount,
		RequiredLevel:      string(r.RequiredLevel),
		RequiresSequential: r.RequiresSequential,
		EscalationHours:    r.EscalationHours,
		IsActive:           r.IsActive,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
