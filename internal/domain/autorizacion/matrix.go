// Package autorizacion contiene el motor puro del flujo de autorizaciones:
// resolución de la matriz por monto, construcción de la cadena de firmas,
// recálculo de estado a partir del ledger y umbrales de escalamiento.
//
// No accede a la base de datos ni al reloj del sistema; los casos de uso le
// pasan todo lo que necesita y persisten lo que devuelve.
package autorizacion

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/grupoterra/autorizaciones-api/internal/domain"
	"github.com/grupoterra/autorizaciones-api/internal/domain/entity"
)

// Matrix la matriz de autorizaciones vigente: todas las reglas, activas o no.
// Resolve solo considera las activas.
type Matrix struct {
	rules []entity.MatrixRule
}

// NewMatrix construye la matriz. Ordena las reglas por tipo y monto mínimo para
// que la resolución sea determinista aunque el store devuelva otro orden.
func NewMatrix(rules []entity.MatrixRule) Matrix {
	sorted := make([]entity.MatrixRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].WorkflowType != sorted[j].WorkflowType {
			return sorted[i].WorkflowType < sorted[j].WorkflowType
		}
		return sorted[i].MinAmount.LessThan(sorted[j].MinAmount)
	})
	return Matrix{rules: sorted}
}

// Resolve selecciona la única regla activa del tipo cuyo rango cerrado-cerrado
// contiene el monto. Devuelve ErrNoMatchingRule si ningún nivel lo cubre: eso es
// un gap de configuración de la matriz, no un error del solicitante.
func (m Matrix) Resolve(t entity.WorkflowType, amount decimal.Decimal) (*entity.MatrixRule, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("tipo de flujo %q: %w", t, domain.ErrInvalidInput)
	}
	for i := range m.rules {
		r := m.rules[i]
		if r.WorkflowType != t || !r.IsActive {
			continue
		}
		if r.Contains(amount) {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("tipo %s, monto %s: %w", t, amount.String(), domain.ErrNoMatchingRule)
}

// ValidatePartition verifica el invariante de la matriz para un tipo: los
// rangos activos deben particionar sin traslape ni huecos (el mínimo del nivel
// N+1 es el máximo del nivel N más 1) y solo el último nivel puede ser abierto.
// Se invoca al guardar reglas; Resolve asume que el invariante ya se cumple.
func ValidatePartition(rules []entity.MatrixRule, t entity.WorkflowType) error {
	var tiers []entity.MatrixRule
	for _, r := range rules {
		if r.WorkflowType == t && r.IsActive {
			tiers = append(tiers, r)
		}
	}
	if len(tiers) == 0 {
		return nil
	}
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinAmount.LessThan(tiers[j].MinAmount)
	})
	one := decimal.NewFromInt(1)
	for i, r := range tiers {
		if !r.RequiredLevel.Valid() {
			return fmt.Errorf("nivel %q: %w", r.RequiredLevel, domain.ErrInvalidInput)
		}
		if r.MaxAmount != nil && r.MaxAmount.LessThan(r.MinAmount) {
			return fmt.Errorf("rango invertido [%s, %s]: %w", r.MinAmount, r.MaxAmount, domain.ErrInvalidInput)
		}
		last := i == len(tiers)-1
		if r.MaxAmount == nil && !last {
			return fmt.Errorf("nivel intermedio sin tope superior: %w", domain.ErrInvalidInput)
		}
		if !last {
			next := tiers[i+1]
			if !next.MinAmount.Equal(r.MaxAmount.Add(one)) {
				return fmt.Errorf("niveles no contiguos en %s entre %s y %s: %w",
					t, r.MaxAmount, next.MinAmount, domain.ErrInvalidInput)
			}
		}
	}
	return nil
}
