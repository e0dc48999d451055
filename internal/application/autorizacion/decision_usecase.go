package autorizacion

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
	"github.com/grupoterra/autorizaciones-api/pkg/logger"
)

// DecisionUseCase registra decisiones de aprobadores sobre un flujo.
//
// Todo el ciclo leer-validar-escribir-recalcular corre en una transacción con
// la fila del flujo bloqueada: dos aprobaciones concurrentes no pueden observar
// el mismo paso actual ni pisarse un rechazo.
type DecisionUseCase struct {
	approverRepo repository.ApproverRepository
	tx           TxRunner
	log          *logger.Logger
}

// NewDecisionUseCase construye el caso de uso.
func NewDecisionUseCase(approverRepo repository.ApproverRepository, tx TxRunner, log *logger.Logger) *DecisionUseCase {
	return &DecisionUseCase{approverRepo: approverRepo, tx: tx, log: log}
}

// Record aplica la acción del actor sobre el flujo y devuelve la proyección
// resultante.
//
//   - aprobar/rechazar: valida que el actor pueda actuar sobre el paso actual
//     (identidad exacta o rango jerárquico), reemplaza su decisión activa si ya
//     tenía una, y recalcula el estado.
//   - revertir: solo sobre la decisión propia y solo si ningún paso posterior
//     está firmado; elimina la decisión activa y regresa el paso a pendiente.
//
// Cada evento crudo queda en la bitácora, incluso los que reemplazan o
// revierten decisiones anteriores.
func (uc *DecisionUseCase) Record(ctx context.Context, actor Actor, workflowID string, in dto.DecisionRequest) (*dto.DecisionResultDTO, error) {
	action := entity.DecisionAction(in.Action)
	if !action.Valid() {
		return nil, fmt.Errorf("acción %q: %w", in.Action, domain.ErrInvalidInput)
	}

	// El directorio manda sobre los claims del token para nivel y nombre.
	if a, err := uc.approverRepo.GetByID(ctx, actor.ID); err != nil {
		return nil, err
	} else if a != nil {
		actor.Name = a.Name
		actor.Level = string(a.Level)
	}

	var result dto.DecisionResultDTO
	err := uc.tx.Run(ctx, func(
		flujoRepo repository.WorkflowRepository,
		pasoRepo repository.StepRepository,
		decisionRepo repository.DecisionRepository,
		bitacoraRepo repository.AuditRepository,
	) error {
		wf, err := flujoRepo.GetByIDForUpdate(ctx, workflowID)
		if err != nil {
			return err
		}
		if wf == nil {
			return fmt.Errorf("flujo %s: %w", workflowID, domain.ErrNotFound)
		}
		steps, err := pasoRepo.ListByWorkflow(ctx, workflowID)
		if err != nil {
			return err
		}
		decisions, err := decisionRepo.ListByWorkflow(ctx, workflowID)
		if err != nil {
			return err
		}

		now := time.Now()
		switch action {
		case entity.AccionRevertir:
			decisions, err = uc.applyReversal(ctx, decisionRepo, wf, steps, decisions, actor)
		default:
			steps, decisions, err = uc.applyDecision(ctx, pasoRepo, decisionRepo, wf, steps, decisions, actor, action, in.Comments, now)
		}
		if err != nil {
			return err
		}

		ev := autorizacion.Evaluate(wf.Status, steps, decisions)
		if err := persistStepChanges(ctx, pasoRepo, steps, ev.Steps, now); err != nil {
			return err
		}

		wf.Status = ev.Status
		wf.CurrentStep = ev.CurrentStep
		wf.CurrentApprover = ev.CurrentApprover
		wf.UpdatedAt = now
		if err := flujoRepo.UpdateProjection(ctx, wf); err != nil {
			return err
		}

		if err := bitacoraRepo.Append(ctx, &entity.AuditEntry{
			ID:          uuid.New().String(),
			WorkflowID:  wf.ID,
			UserID:      actor.ID,
			UserName:    actor.Name,
			Action:      action,
			Comments:    in.Comments,
			StatusAfter: wf.Status,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		result = dto.DecisionResultDTO{
			WorkflowID:      wf.ID,
			Action:          string(action),
			Status:          string(wf.Status),
			CurrentStep:     wf.CurrentStep,
			CurrentApprover: wf.CurrentApprover,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("flujo", workflowID).
		Str("usuario", actor.ID).
		Str("accion", string(action)).
		Str("estado", result.Status).
		Msg("decisión registrada")
	return &result, nil
}

// applyDecision valida y registra aprobar/rechazar.
func (uc *DecisionUseCase) applyDecision(
	ctx context.Context,
	pasoRepo repository.StepRepository,
	decisionRepo repository.DecisionRepository,
	wf *entity.Workflow,
	steps []entity.ApprovalStep,
	decisions []entity.Decision,
	actor Actor,
	action entity.DecisionAction,
	comments string,
	now time.Time,
) ([]entity.ApprovalStep, []entity.Decision, error) {
	if wf.Status.Terminal() {
		return nil, nil, fmt.Errorf("flujo en estado %s: %w", wf.Status, domain.ErrInvalidTransition)
	}

	paso, err := autorizacion.ActionableStep(steps, actor.ID, actor.Name, entity.ApproverLevel(actor.Level), wf.RequiresSequential)
	if err != nil {
		return nil, nil, err
	}
	// Re-nominación por jerarquía: el paso queda a nombre de quien lo firma.
	for i := range steps {
		if steps[i].StepIndex == paso.StepIndex && steps[i].ApproverID != paso.ApproverID {
			steps[i].ApproverID = paso.ApproverID
			steps[i].ApproverName = paso.ApproverName
			steps[i].UpdatedAt = now
			if err := pasoRepo.Update(ctx, &steps[i]); err != nil {
				return nil, nil, err
			}
		}
	}

	d := entity.Decision{
		ID:         uuid.New().String(),
		WorkflowID: wf.ID,
		UserID:     actor.ID,
		UserName:   actor.Name,
		Action:     action,
		Comments:   comments,
		CreatedAt:  now,
	}
	if err := decisionRepo.Upsert(ctx, &d); err != nil {
		return nil, nil, err
	}

	replaced := false
	for i := range decisions {
		if decisions[i].UserID == actor.ID {
			decisions[i] = d
			replaced = true
			break
		}
	}
	if !replaced {
		decisions = append(decisions, d)
	}
	return steps, decisions, nil
}

// applyReversal valida y aplica revertir.
func (uc *DecisionUseCase) applyReversal(
	ctx context.Context,
	decisionRepo repository.DecisionRepository,
	wf *entity.Workflow,
	steps []entity.ApprovalStep,
	decisions []entity.Decision,
	actor Actor,
) ([]entity.Decision, error) {
	var prev *entity.Decision
	for i := range decisions {
		if decisions[i].UserID == actor.ID {
			prev = &decisions[i]
			break
		}
	}
	if prev == nil {
		return nil, fmt.Errorf("el usuario no tiene decisión activa que revertir: %w", domain.ErrInvalidInput)
	}
	if err := autorizacion.CanReverse(steps, actor.ID); err != nil {
		return nil, err
	}
	if err := decisionRepo.Delete(ctx, wf.ID, actor.ID); err != nil {
		return nil, err
	}

	rest := make([]entity.Decision, 0, len(decisions)-1)
	for _, d := range decisions {
		if d.UserID != actor.ID {
			rest = append(rest, d)
		}
	}
	return rest, nil
}

// persistStepChanges escribe solo los pasos cuyo estado o firma cambió.
func persistStepChanges(ctx context.Context, pasoRepo repository.StepRepository, before, after []entity.ApprovalStep, now time.Time) error {
	prev := make(map[int]entity.ApprovalStep, len(before))
	for _, s := range before {
		prev[s.StepIndex] = s
	}
	for i := range after {
		old, ok := prev[after[i].StepIndex]
		if ok && old.Status == after[i].Status && equalTimePtr(old.SignedAt, after[i].SignedAt) {
			continue
		}
		after[i].UpdatedAt = now
		if err := pasoRepo.Update(ctx, &after[i]); err != nil {
			return err
		}
	}
	return nil
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
