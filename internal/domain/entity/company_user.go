package entity

import "time"

// Roles de un usuario dentro de una empresa. IsCompanyAdmin es ortogonal al rol.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// IsValidRole informa si role es admin, manager o staff.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// CompanyUser es la membresía de un User en una Company. (UserID, CompanyID) es único.
type CompanyUser struct {
	ID             string
	UserID         string
	CompanyID      string
	Role           string
	IsCompanyAdmin bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Datos unidos por algunas consultas de lectura; pueden ser nil.
	Company *Company
	User    *User
}
