package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkflowType identifica el tipo de operación que requiere autorización.
// Cada tipo tiene su propia tabla de niveles en la matriz.
type WorkflowType string

const (
	TipoPago              WorkflowType = "pago"
	TipoContratacion      WorkflowType = "contratacion"
	TipoOrdenCambio       WorkflowType = "orden_cambio"
	TipoLiberacionCredito WorkflowType = "liberacion_credito"
	TipoCapitalCall       WorkflowType = "capital_call"
)

// WorkflowTypes lista los tipos válidos en orden estable (para seeds y validación).
func WorkflowTypes() []WorkflowType {
	return []WorkflowType{TipoPago, TipoContratacion, TipoOrdenCambio, TipoLiberacionCredito, TipoCapitalCall}
}

// Valid indica si el tipo es uno de los cinco conocidos.
func (t WorkflowType) Valid() bool {
	switch t {
	case TipoPago, TipoContratacion, TipoOrdenCambio, TipoLiberacionCredito, TipoCapitalCall:
		return true
	}
	return false
}

// ApproverLevel nivel jerárquico requerido para autorizar.
type ApproverLevel string

const (
	NivelSupervisor ApproverLevel = "supervisor"
	NivelGerente    ApproverLevel = "gerente"
	NivelDirector   ApproverLevel = "director"
	NivelEjecutivo  ApproverLevel = "ejecutivo"
)

// Rank posición en la jerarquía (supervisor=1 ... ejecutivo=4).
// Un usuario puede firmar un paso si su rango es >= al del nivel requerido.
func (n ApproverLevel) Rank() int {
	switch n {
	case NivelSupervisor:
		return 1
	case NivelGerente:
		return 2
	case NivelDirector:
		return 3
	case NivelEjecutivo:
		return 4
	}
	return 0
}

// Valid indica si el nivel es conocido.
func (n ApproverLevel) Valid() bool { return n.Rank() > 0 }

// MatrixRule una fila de la matriz de autorizaciones: para un tipo de flujo y un
// rango de montos [MinAmount, MaxAmount] define el nivel requerido, el modo de
// firma y el SLA de escalamiento.
//
// Invariante de configuración: para un mismo tipo, los rangos particionan sin
// traslape (MinAmount del nivel N+1 = MaxAmount del nivel N + 1; el último nivel
// tiene MaxAmount nil = abierto por arriba). Las reglas nunca se borran: se
// desactivan con IsActive=false. Una vez emparejada a un flujo en curso, el flujo
// guarda una copia de sus campos y ediciones posteriores no lo afectan.
type MatrixRule struct {
	ID                 string
	WorkflowType       WorkflowType
	MinAmount          decimal.Decimal
	MaxAmount          *decimal.Decimal // nil = sin tope superior
	RequiredLevel      ApproverLevel
	RequiresSequential bool
	EscalationHours    int
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Contains indica si el monto cae dentro del rango cerrado-cerrado de la regla.
func (r MatrixRule) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(r.MinAmount) {
		return false
	}
	if r.MaxAmount == nil {
		return true
	}
	return amount.LessThanOrEqual(*r.MaxAmount)
}
