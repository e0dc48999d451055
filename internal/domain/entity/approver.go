package entity

import "time"

// Approver un usuario del directorio de aprobadores con su nivel jerárquico.
// El directorio es la "jerarquía organizacional" que el constructor de pasos
// consulta para nominar un firmante por nivel.
type Approver struct {
	ID        string
	Name      string
	Level     ApproverLevel
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanSign indica si el aprobador puede firmar un paso del nivel requerido
// (su rango debe ser mayor o igual).
func (a Approver) CanSign(required ApproverLevel) bool {
	return a.Level.Rank() >= required.Rank()
}
