package domain

import (
	"errors"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrUserNotFound            = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists      = errors.New("el email ya está registrado")
	ErrUsernameAlreadyExists   = errors.New("el nombre de usuario ya está registrado")
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrDuplicate               = errors.New("recurso duplicado")
	ErrUnauthorized            = errors.New("no autorizado")
	ErrInvalidCredentials      = errors.New("credenciales inválidas")
	ErrInvalidCurrentPassword  = errors.New("la contraseña actual es incorrecta")
	ErrForbidden               = errors.New("acceso denegado")
	ErrConflict                = errors.New("conflicto con el estado actual")
	ErrMembershipAlreadyExists = errors.New("el usuario ya pertenece a esta empresa")
	ErrModuleAlreadyExists     = errors.New("el módulo ya existe para esta empresa")
	ErrCategoryInUse           = errors.New("no se puede eliminar una categoría que tiene productos")
)

// ValidationError agrupa mensajes por campo. Se traduce a HTTP 400.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError crea un error con un único campo.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add agrega un mensaje para el campo (el primero gana).
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil devuelve nil si no se registró ningún campo.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validación: " + strings.Join(parts, "; ")
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// DeniedError es una decisión de autorización negativa con su motivo legible.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string { return e.Reason }

// Unwrap permite errors.Is(err, ErrForbidden).
func (e *DeniedError) Unwrap() error { return ErrForbidden }

// Denied construye un DeniedError.
func Denied(reason string) error {
	return &DeniedError{Reason: reason}
}
