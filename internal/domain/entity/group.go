package entity

import "time"

// Group etiqueta de permisos gruesa, independiente de CompanyUser.Role.
type Group struct {
	ID        string
	Name      string
	UserCount int // solo en listados
	CreatedAt time.Time
}
