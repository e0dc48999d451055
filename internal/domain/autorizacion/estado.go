package autorizacion

import (
	"fmt"
	"sort"

	"github.com/grupoterra/autorizaciones-api/internal/domain"
	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
)

// Evaluation resultado del recálculo de estado de un flujo.
type Evaluation struct {
	Steps           []entity.ApprovalStep // pasos con Status y SignedAt recalculados
	Status          entity.WorkflowStatus
	CurrentStep     int // -1 si no hay paso actuable (flujo terminal)
	CurrentApprover string
}

// Evaluate deriva el estado por paso y el estado agregado desde el ledger:
//
//   - un paso está "firmado" si y solo si la decisión activa de su aprobador
//     designado es aprobar;
//   - un rechazo activo de cualquier firmante corta el flujo completo a
//     "rechazado", sin importar el modo de firma;
//   - secuencial: el primer paso sin firma es el paso actual; con todos
//     firmados el flujo queda "aprobado";
//   - paralelo: "aprobado" solo con todas las firmas; el paso actual reportado
//     es el primero pendiente (todos son actuables);
//   - "escalado" se conserva mientras el flujo siga abierto: es pendiente
//     urgente, no un estado aparte.
//
// La función es pura: no toca el store y puede re-ejecutarse sobre los mismos
// datos con el mismo resultado.
func Evaluate(prior entity.WorkflowStatus, steps []entity.ApprovalStep, decisions []entity.Decision) Evaluation {
	byUser := make(map[string]entity.Decision, len(decisions))
	for _, d := range decisions {
		byUser[d.UserID] = d
	}

	out := make([]entity.ApprovalStep, len(steps))
	copy(out, steps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StepIndex < out[j].StepIndex })

	rejected := false
	for i := range out {
		d, ok := byUser[out[i].ApproverID]
		switch {
		case ok && d.Action == entity.AccionAprobar:
			out[i].Status = entity.PasoFirmado
			if out[i].SignedAt == nil {
				t := d.CreatedAt
				out[i].SignedAt = &t
			}
		case ok && d.Action == entity.AccionRechazar:
			rejected = true
			out[i].Status = entity.PasoPendiente
			out[i].SignedAt = nil
		default:
			out[i].Status = entity.PasoPendiente
			out[i].SignedAt = nil
		}
	}

	ev := Evaluation{Steps: out, CurrentStep: -1}
	if rejected {
		ev.Status = entity.EstadoRechazado
		return ev
	}

	for i := range out {
		if !out[i].Signed() {
			ev.CurrentStep = out[i].StepIndex
			ev.CurrentApprover = out[i].ApproverName
			break
		}
	}
	if ev.CurrentStep == -1 {
		ev.Status = entity.EstadoAprobado
		return ev
	}

	// Sigue abierto: pendiente, o escalado si ya lo estaba.
	if prior == entity.EstadoEscalado {
		ev.Status = entity.EstadoEscalado
	} else {
		ev.Status = entity.EstadoPendiente
	}
	return ev
}

// ActionableStep determina el paso sobre el que el usuario puede actuar y lo
// devuelve. Autoriza por identidad exacta (paso nominado a ese usuario) o por
// jerarquía (rango del usuario >= nivel requerido del paso). En modo secuencial
// solo el primer paso sin firma es actuable; en paralelo, cualquiera pendiente.
//
// Si el usuario actúa por jerarquía sobre un paso nominado a otra persona, el
// paso se re-nomina al actor, de modo que "firmado ⇔ decisión activa del
// aprobador designado" se sostiene.
func ActionableStep(steps []entity.ApprovalStep, userID, userName string, level entity.ApproverLevel, sequential bool) (*entity.ApprovalStep, error) {
	ordered := make([]entity.ApprovalStep, len(steps))
	copy(ordered, steps)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StepIndex < ordered[j].StepIndex })

	canAct := func(s entity.ApprovalStep) bool {
		if s.ApproverID == userID {
			return true
		}
		return s.StepType == entity.PasoAutoriza && level.Rank() >= s.RequiredLevel.Rank()
	}

	if sequential {
		for _, s := range ordered {
			if s.Signed() {
				continue
			}
			if canAct(s) {
				return reassign(s, userID, userName), nil
			}
			return nil, fmt.Errorf("el paso actual (%d) corresponde a %s: %w", s.StepIndex, s.ApproverName, domain.ErrUnauthorized)
		}
		return nil, domain.ErrInvalidTransition
	}

	for _, s := range ordered {
		if !s.Signed() && canAct(s) {
			return reassign(s, userID, userName), nil
		}
	}
	return nil, fmt.Errorf("ningún paso pendiente admite al usuario: %w", domain.ErrUnauthorized)
}

func reassign(s entity.ApprovalStep, userID, userName string) *entity.ApprovalStep {
	if s.ApproverID != userID {
		s.ApproverID = userID
		s.ApproverName = userName
	}
	return &s
}

// CanReverse valida la elegibilidad de reversión: la decisión propia solo puede
// revertirse si ningún paso posterior al del usuario ya está firmado.
func CanReverse(steps []entity.ApprovalStep, userID string) error {
	own := -1
	for _, s := range steps {
		if s.ApproverID == userID {
			own = s.StepIndex
			break
		}
	}
	if own == -1 {
		return fmt.Errorf("el usuario no tiene paso en el flujo: %w", domain.ErrUnauthorized)
	}
	for _, s := range steps {
		if s.StepIndex > own && s.Signed() {
			return fmt.Errorf("el paso %d ya está firmado: %w", s.StepIndex, domain.ErrCannotReverse)
		}
	}
	return nil
}
