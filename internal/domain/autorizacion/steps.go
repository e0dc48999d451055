package autorizacion

import (
	"fmt"

	"github.com/grupoterra/autorizaciones-api/internal/domain"
	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
)

// nivelesHasta niveles de firma requeridos, de supervisor hasta el nivel de la
// regla inclusive. Para "gerente" la cadena es supervisor → gerente.
func nivelesHasta(required entity.ApproverLevel) []entity.ApproverLevel {
	all := []entity.ApproverLevel{
		entity.NivelSupervisor,
		entity.NivelGerente,
		entity.NivelDirector,
		entity.NivelEjecutivo,
	}
	var chain []entity.ApproverLevel
	for _, n := range all {
		if n.Rank() <= required.Rank() {
			chain = append(chain, n)
		}
	}
	return chain
}

// BuildSteps resuelve la cadena de pasos de un flujo a partir de la regla y la
// jerarquía de aprobadores: un paso "elabora" para quien origina la solicitud y
// un paso "autoriza" por cada nivel desde supervisor hasta el nivel requerido.
// Para una regla de nivel director la cadena tiene 4 pasos.
//
// Del roster (activos, en orden estable) se nomina el primer aprobador de cada
// nivel distinto del solicitante: quien elabora no se autoriza a sí mismo. Si
// un nivel queda sin candidato es un gap de configuración organizacional y la
// creación del flujo falla.
//
// Los IDs de los pasos los asigna el caso de uso al persistir.
func BuildSteps(rule entity.MatrixRule, creator entity.Approver, roster []entity.Approver) ([]entity.ApprovalStep, error) {
	steps := []entity.ApprovalStep{{
		StepIndex:     0,
		StepType:      entity.PasoElabora,
		RequiredLevel: creator.Level,
		ApproverID:    creator.ID,
		ApproverName:  creator.Name,
		Status:        entity.PasoPendiente,
	}}

	for i, nivel := range nivelesHasta(rule.RequiredLevel) {
		firmante, ok := nominate(roster, nivel, creator.ID)
		if !ok {
			return nil, fmt.Errorf("sin aprobador activo de nivel %s: %w", nivel, domain.ErrNotFound)
		}
		steps = append(steps, entity.ApprovalStep{
			StepIndex:     i + 1,
			StepType:      entity.PasoAutoriza,
			RequiredLevel: nivel,
			ApproverID:    firmante.ID,
			ApproverName:  firmante.Name,
			Status:        entity.PasoPendiente,
		})
	}
	return steps, nil
}

// nominate primer aprobador activo del nivel exacto que no sea el solicitante.
func nominate(roster []entity.Approver, nivel entity.ApproverLevel, creatorID string) (entity.Approver, bool) {
	for _, a := range roster {
		if a.IsActive && a.Level == nivel && a.ID != creatorID {
			return a, true
		}
	}
	return entity.Approver{}, false
}
