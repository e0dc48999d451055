package autorizacion

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/grupoterra/autorizaciones-api/internal/application/dto"
	"github.com/grupoterra/autorizaciones-api/internal/domain"
	"github.com/grupoterra/autorizaciones-api/internal/domain/autorizacion"
	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
)

// WorkflowUseCase creación y consulta de instancias de autorización.
type WorkflowUseCase struct {
	matrixRepo   repository.MatrixRepository
	approverRepo repository.ApproverRepository
	flujoRepo    repository.WorkflowRepository
	pasoRepo     repository.StepRepository
	decisionRepo repository.DecisionRepository
	tx           TxRunner
}

// NewWorkflowUseCase construye el caso de uso.
func NewWorkflowUseCase(
	matrixRepo repository.MatrixRepository,
	approverRepo repository.ApproverRepository,
	flujoRepo repository.WorkflowRepository,
	pasoRepo repository.StepRepository,
	decisionRepo repository.DecisionRepository,
	tx TxRunner,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		matrixRepo:   matrixRepo,
		approverRepo: approverRepo,
		flujoRepo:    flujoRepo,
		pasoRepo:     pasoRepo,
		decisionRepo: decisionRepo,
		tx:           tx,
	}
}

// Create da de alta una instancia: resuelve la regla de la matriz por tipo y
// monto, copia sus campos al flujo (inmutables de ahí en adelante), construye
// la cadena de pasos desde la jerarquía de aprobadores y registra la firma de
// elaboración del solicitante. Todo en una transacción.
func (uc *WorkflowUseCase) Create(ctx context.Context, actor Actor, in dto.CreateWorkflowRequest) (*dto.WorkflowResponse, error) {
	tipo := entity.WorkflowType(in.WorkflowType)
	if !tipo.Valid() {
		return nil, fmt.Errorf("workflow_type %q: %w", in.WorkflowType, domain.ErrInvalidInput)
	}
	if in.Amount.IsNegative() {
		return nil, fmt.Errorf("monto negativo: %w", domain.ErrInvalidInput)
	}

	rules, err := uc.matrixRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	rule, err := autorizacion.NewMatrix(rules).Resolve(tipo, in.Amount)
	if err != nil {
		return nil, err
	}

	roster, err := uc.approverRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	creator := entity.Approver{ID: actor.ID, Name: actor.Name, Level: entity.ApproverLevel(actor.Level)}
	if a, err := uc.approverRepo.GetByID(ctx, actor.ID); err != nil {
		return nil, err
	} else if a != nil {
		creator = *a
	}

	steps, err := autorizacion.BuildSteps(*rule, creator, roster)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	wf := &entity.Workflow{
		ID:                 uuid.New().String(),
		Title:              in.Title,
		WorkflowType:       tipo,
		Amount:             in.Amount,
		Project:            in.Project,
		Status:             entity.EstadoPendiente,
		RuleID:             rule.ID,
		RequiredLevel:      rule.RequiredLevel,
		RequiresSequential: rule.RequiresSequential,
		EscalationHours:    rule.EscalationHours,
		CreatedBy:          creator.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for i := range steps {
		steps[i].ID = uuid.New().String()
		steps[i].WorkflowID = wf.ID
		steps[i].CreatedAt = now
		steps[i].UpdatedAt = now
	}

	// Firma de elaboración: crear la solicitud es la decisión "aprobar" del
	// solicitante sobre su propio paso.
	elabora := entity.Decision{
		ID:         uuid.New().String(),
		WorkflowID: wf.ID,
		UserID:     creator.ID,
		UserName:   creator.Name,
		Action:     entity.AccionAprobar,
		Comments:   "elaboración de la solicitud",
		CreatedAt:  now,
	}
	ev := autorizacion.Evaluate(wf.Status, steps, []entity.Decision{elabora})
	wf.Status = ev.Status
	wf.CurrentStep = ev.CurrentStep
	wf.CurrentApprover = ev.CurrentApprover

	err = uc.tx.Run(ctx, func(
		flujoRepo repository.WorkflowRepository,
		pasoRepo repository.StepRepository,
		decisionRepo repository.DecisionRepository,
		bitacoraRepo repository.AuditRepository,
	) error {
		if err := flujoRepo.Create(ctx, wf); err != nil {
			return err
		}
		if err := pasoRepo.CreateBatch(ctx, ev.Steps); err != nil {
			return err
		}
		if err := decisionRepo.Upsert(ctx, &elabora); err != nil {
			return err
		}
		return bitacoraRepo.Append(ctx, &entity.AuditEntry{
			ID:          uuid.New().String(),
			WorkflowID:  wf.ID,
			UserID:      creator.ID,
			UserName:    creator.Name,
			Action:      entity.AccionAprobar,
			Comments:    elabora.Comments,
			StatusAfter: wf.Status,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}
	return toWorkflowResponse(wf, ev.Steps), nil
}

// GetByID flujo con su cadena de pasos, nil si no existe.
func (uc *WorkflowUseCase) GetByID(ctx context.Context, id string) (*dto.WorkflowResponse, error) {
	wf, err := uc.flujoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wf == nil {
		return nil, nil
	}
	steps, err := uc.pasoRepo.ListByWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWorkflowResponse(wf, steps), nil
}

// ListRecent flujos ordenados por última actualización descendente.
func (uc *WorkflowUseCase) ListRecent(ctx context.Context, limit int) (*dto.WorkflowListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list, err := uc.flujoRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WorkflowResponse, 0, len(list))
	for i := range list {
		items = append(items, *toWorkflowResponse(&list[i], nil))
	}
	return &dto.WorkflowListResponse{Items: items}, nil
}

// GetApprovals histórico ordenado de decisiones activas del flujo.
func (uc *WorkflowUseCase) GetApprovals(ctx context.Context, workflowID string) ([]dto.DecisionResponse, error) {
	list, err := uc.decisionRepo.ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DecisionResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toDecisionResponse(d))
	}
	return out, nil
}

// ApprovalsSeq el mismo histórico como secuencia perezosa, finita y
// re-iterable, para consumidores que recorren sin materializar.
func (uc *WorkflowUseCase) ApprovalsSeq(ctx context.Context, workflowID string) (iter.Seq[dto.DecisionResponse], error) {
	list, err := uc.GetApprovals(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return func(yield func(dto.DecisionResponse) bool) {
		for _, d := range list {
			if !yield(d) {
				return
			}
		}
	}, nil
}

// GetUserApproval decisión activa del usuario sobre el flujo, nil si no tiene.
func (uc *WorkflowUseCase) GetUserApproval(ctx context.Context, workflowID, userID string) (*dto.DecisionResponse, error) {
	d, err := uc.decisionRepo.GetByUser(ctx, workflowID, userID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}
	resp := toDecisionResponse(*d)
	return &resp, nil
}

func toWorkflowResponse(wf *entity.Workflow, steps []entity.ApprovalStep) *dto.WorkflowResponse {
	if wf == nil {
		return nil
	}
	resp := &dto.WorkflowResponse{
		ID:                 wf.ID,
		Title:              wf.Title,
		WorkflowType:       string(wf.WorkflowType),
		Amount:             wf.Amount,
		Project:            wf.Project,
		Status:             string(wf.Status),
		RequiredLevel:      string(wf.RequiredLevel),
		RequiresSequential: wf.RequiresSequential,
		EscalationHours:    wf.EscalationHours,
		CurrentStep:        wf.CurrentStep,
		CurrentApprover:    wf.CurrentApprover,
		CreatedBy:          wf.CreatedBy,
		CreatedAt:          wf.CreatedAt,
		UpdatedAt:          wf.UpdatedAt,
	}
	for _, s := range steps {
		resp.Steps = append(resp.Steps, dto.StepResponse{
			StepIndex:     s.StepIndex,
			StepType:      string(s.StepType),
			RequiredLevel: string(s.RequiredLevel),
			ApproverID:    s.ApproverID,
			ApproverName:  s.ApproverName,
			Status:        string(s.Status),
			SignedAt:      s.SignedAt,
		})
	}
	return resp
}

func toDecisionResponse(d entity.Decision) dto.DecisionResponse {
	return dto.DecisionResponse{
		WorkflowID: d.WorkflowID,
		UserID:     d.UserID,
		UserName:   d.UserName,
		Action:     string(d.Action),
		Comments:   d.Comments,
		CreatedAt:  d.CreatedAt,
	}
}
