// Package escalamiento contiene el escalador: la pasada periódica (o manual)
// que compara la edad de los flujos abiertos contra el SLA de su regla y emite
// recordatorios y escalamientos.
package escalamiento

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/grupoterra/autorizaciones-api/internal/application/dto"
	"github.com/grupoterra/autorizaciones-api/internal/domain/autorizacion"
	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
	"github.com/grupoterra/autorizaciones-api/pkg/logger"
)

// TxRunner ejecuta el tratamiento de un flujo dentro de una transacción con la
// fila bloqueada: una misma pasada nunca aplica dos veces al mismo flujo y la
// pasada convive con el registro concurrente de decisiones.
type TxRunner interface {
	RunEscalation(ctx context.Context, fn func(
		flujoRepo repository.WorkflowRepository,
		escRepo repository.EscalationRepository,
	) error) error
}

// SchedulerUseCase la pasada de escalamiento y sus estadísticas.
type SchedulerUseCase struct {
	flujoRepo repository.WorkflowRepository
	escRepo   repository.EscalationRepository
	tx        TxRunner
	window    time.Duration // ventana "en riesgo" antes del primer umbral
	log       *logger.Logger
}

// NewSchedulerUseCase construye el escalador. riskWindowHours define la ventana
// de anticipación del listado en-riesgo.
func NewSchedulerUseCase(
	flujoRepo repository.WorkflowRepository,
	escRepo repository.EscalationRepository,
	tx TxRunner,
	riskWindowHours int,
	log *logger.Logger,
) *SchedulerUseCase {
	return &SchedulerUseCase{
		flujoRepo: flujoRepo,
		escRepo:   escRepo,
		tx:        tx,
		window:    time.Duration(riskWindowHours) * time.Hour,
		log:       log,
	}
}

// Scan recorre un snapshot finito de flujos abiertos y emite a lo sumo un
// evento por flujo según su edad contra el SLA (H/2H/3H). Idempotente: pasadas
// repetidas dentro del mismo bucket no duplican eventos. El fallo en un flujo
// se registra y se salta, sin abortar la pasada; una cancelación de contexto
// detiene la pasada y deja los eventos ya emitidos en firme.
func (uc *SchedulerUseCase) Scan(ctx context.Context, now time.Time) ([]dto.EscalationEventDTO, error) {
	open, err := uc.flujoRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	var emitted []dto.EscalationEventDTO
	for i := range open {
		select {
		case <-ctx.Done():
			return emitted, ctx.Err()
		default:
		}

		ev, err := uc.scanOne(ctx, open[i].ID, now)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return emitted, err
			}
			uc.log.Warn().Err(err).Str("flujo", open[i].ID).Msg("flujo omitido en la pasada de escalamiento")
			continue
		}
		if ev != nil {
			emitted = append(emitted, *ev)
		}
	}
	return emitted, nil
}

// scanOne trata un flujo con su fila bloqueada: re-lee estado, decide el evento
// y, a partir del bucket 2H, fuerza la transición a "escalado".
func (uc *SchedulerUseCase) scanOne(ctx context.Context, workflowID string, now time.Time) (*dto.EscalationEventDTO, error) {
	var out *dto.EscalationEventDTO
	err := uc.tx.RunEscalation(ctx, func(
		flujoRepo repository.WorkflowRepository,
		escRepo repository.EscalationRepository,
	) error {
		wf, err := flujoRepo.GetByIDForUpdate(ctx, workflowID)
		if err != nil {
			return err
		}
		if wf == nil || !wf.Status.Open() {
			return nil // resuelto entre el snapshot y el lock
		}

		events, err := escRepo.ListByWorkflow(ctx, workflowID)
		if err != nil {
			return err
		}

		// La edad se mide desde la creación, nunca desde el último evento.
		elapsed := now.Sub(wf.CreatedAt)
		tipo, ok := autorizacion.NextEvent(elapsed, wf.EscalationHours, events)
		if !ok {
			return nil
		}

		ev := entity.EscalationEvent{
			ID:          uuid.New().String(),
			WorkflowID:  workflowID,
			Type:        tipo,
			TriggeredAt: now,
		}
		if err := escRepo.Append(ctx, &ev); err != nil {
			return err
		}

		if tipo.Rank() >= entity.EscalamientoEscalamiento.Rank() && wf.Status != entity.EstadoEscalado {
			wf.Status = entity.EstadoEscalado
			wf.UpdatedAt = now
			if err := flujoRepo.UpdateProjection(ctx, wf); err != nil {
				return err
			}
		}

		out = &dto.EscalationEventDTO{
			ID:          ev.ID,
			WorkflowID:  ev.WorkflowID,
			Type:        string(ev.Type),
			TriggeredAt: ev.TriggeredAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out != nil {
		uc.log.Info().Str("flujo", workflowID).Str("tipo", out.Type).Msg("evento de escalamiento emitido")
	}
	return out, nil
}

// Trigger invocación manual de la pasada con el reloj actual.
func (uc *SchedulerUseCase) Trigger(ctx context.Context) ([]dto.EscalationEventDTO, error) {
	return uc.Scan(ctx, time.Now())
}

// Stats conteo de eventos por tipo.
func (uc *SchedulerUseCase) Stats(ctx context.Context) (*dto.EscalationStatsDTO, error) {
	counts, err := uc.escRepo.CountByType(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.EscalationStatsDTO{ByType: make([]dto.EscalationTypeCountDTO, 0, len(counts))}
	for _, c := range counts {
		out.Total += c.Count
		out.ByType = append(out.ByType, dto.EscalationTypeCountDTO{Type: string(c.Type), Count: c.Count})
	}
	return out, nil
}

// AtRisk flujos abiertos dentro de la ventana de riesgo de su SLA.
func (uc *SchedulerUseCase) AtRisk(ctx context.Context, now time.Time) ([]dto.WorkflowAtRiskDTO, error) {
	open, err := uc.flujoRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	var out []dto.WorkflowAtRiskDTO
	for _, wf := range open {
		elapsed := now.Sub(wf.CreatedAt)
		if !autorizacion.AtRisk(elapsed, wf.EscalationHours, uc.window) {
			continue
		}
		out = append(out, dto.WorkflowAtRiskDTO{
			WorkflowID:      wf.ID,
			Title:           wf.Title,
			WorkflowType:    string(wf.WorkflowType),
			Status:          string(wf.Status),
			CurrentApprover: wf.CurrentApprover,
			ElapsedHours:    elapsed.Hours(),
			SLAHours:        wf.EscalationHours,
		})
	}
	return out, nil
}

// Run bucle periódico del escalador; termina cuando el contexto se cancela.
// Una pasada abortada a mitad deja sus eventos en firme y el resto de flujos
// se retoma en la siguiente.
func (uc *SchedulerUseCase) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	uc.log.Info().Dur("intervalo", interval).Msg("escalador iniciado")
	for {
		select {
		case <-ctx.Done():
			uc.log.Info().Msg("escalador detenido")
			return
		case now := <-ticker.C:
			if _, err := uc.Scan(ctx, now); err != nil && !errors.Is(err, context.Canceled) {
				uc.log.Error().Err(err).Msg("pasada de escalamiento fallida")
			}
		}
	}
}
