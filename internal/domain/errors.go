package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Taxonomía del motor de autorizaciones.
	ErrNoMatchingRule    = errors.New("ningún nivel activo de la matriz cubre el monto") // gap de configuración, se reporta a administradores
	ErrCannotReverse     = errors.New("existe una firma posterior, la decisión no es reversible")
	ErrInvalidTransition = errors.New("el flujo ya está en un estado terminal")
)
