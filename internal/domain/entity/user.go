package entity

import (
	"strings"
	"time"
)

// User representa una cuenta del sistema. Pertenece a cero o más Company vía CompanyUser.
type User struct {
	ID            string
	Username      string
	Email         string
	PasswordHash  string // bcrypt hash, nunca plano en dominio después de persistir
	FirstName     string
	LastName      string
	Phone         string
	IsStaff       bool
	IsSuperuser   bool
	IsSystemAdmin bool
	IsActive      bool
	LastLogin     *time.Time
	Groups        []string // nombres de grupo; lo llena el repositorio
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPrivileged informa si el usuario salta todas las verificaciones por empresa.
func (u *User) IsPrivileged() bool {
	return u != nil && (u.IsSuperuser || u.IsSystemAdmin)
}

// FullName nombre y apellido separados por espacio.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
