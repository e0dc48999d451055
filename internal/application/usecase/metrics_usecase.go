package usecase

import (
	"context"
	"time"

	"github.com/grupoterra/autorizaciones-api/internal/application/dto"
	"github.com/grupoterra/autorizaciones-api/internal/domain/autorizacion"
	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
	"github.com/grupoterra/autorizaciones-api/internal/domain/repository"
)

// MetricsUseCase agregador de métricas del dashboard de autorizaciones.
//
// Cálculo puro de lectura sobre flujos + ledger: sin efectos, sin caché. La
// cadencia de refresco la decide la capa de presentación.
type MetricsUseCase struct {
	metricsRepo repository.MetricsRepository
	windowDays  int // ventana móvil de aprobadores activos
}

// NewMetricsUseCase construye el caso de uso.
func NewMetricsUseCase(metricsRepo repository.MetricsRepository, windowDays int) *MetricsUseCase {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &MetricsUseCase{metricsRepo: metricsRepo, windowDays: windowDays}
}

// Snapshot totales por estado, tasa de aprobación, tiempo promedio de
// aprobación y aprobadores activos en la ventana móvil.
func (uc *MetricsUseCase) Snapshot(ctx context.Context) (*dto.MetricsSnapshotDTO, error) {
	counts, err := uc.metricsRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	durations, err := uc.metricsRepo.ApprovalDurations(ctx)
	if err != nil {
		return nil, err
	}
	since := time.Now().AddDate(0, 0, -uc.windowDays)
	active, err := uc.metricsRepo.ActiveApprovers(ctx, since)
	if err != nil {
		return nil, err
	}

	out := &dto.MetricsSnapshotDTO{
		Pendientes:         counts[entity.EstadoPendiente],
		Aprobados:          counts[entity.EstadoAprobado],
		Rechazados:         counts[entity.EstadoRechazado],
		Escalados:          counts[entity.EstadoEscalado],
		ActiveApprovers:    active,
		ApproverWindowDays: uc.windowDays,
	}
	out.Total = out.Pendientes + out.Aprobados + out.Rechazados + out.Escalados
	out.ApprovalRate = autorizacion.ApprovalRate(out.Aprobados, out.Rechazados)
	out.AvgApprovalHours = autorizacion.AverageApprovalTime(durations).Hours()
	return out, nil
}
