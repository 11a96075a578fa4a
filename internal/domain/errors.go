package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	// ErrUnauthenticated token ausente/inválido/expirado o identidad cuyo usuario ya no existe.
	ErrUnauthenticated = errors.New("no autenticado")
	// ErrInvalidCredentials email desconocido o contraseña incorrecta (mismo error para ambos).
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	// ErrEmailTaken registro con un email ya usado (comparación sin mayúsculas/minúsculas).
	ErrEmailTaken = errors.New("el email ya está registrado")
	// ErrNotFound no existe o pertenece a otra empresa; nunca se distingue.
	ErrNotFound = errors.New("recurso no encontrado")
	// ErrInconsistentState invariante interna rota; aborta la petición.
	ErrInconsistentState = errors.New("estado inconsistente")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	// ErrConflict el recurso sigue referenciado (p.ej. paciente con facturas).
	ErrConflict = errors.New("recurso en uso")
	// ErrForbidden solo para chequeos de rol dentro de la propia empresa.
	ErrForbidden       = errors.New("acceso denegado")
	ErrTooManyAttempts = errors.New("demasiados intentos fallidos")
)
