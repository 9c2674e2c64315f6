package dto

import (
	"encoding/json"
	"time"
)

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	BusinessName string `json:"business_name" validate:"required,max=100"`
	TaxID        string `json:"tax_id" validate:"required,min=1,max=20"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Website      string `json:"website"`
	Description  string `json:"description"`
	IsActive     *bool  `json:"is_active"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	BusinessName *string `json:"business_name"`
	TaxID        *string `json:"tax_id"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	Website      *string `json:"website"`
	Description  *string `json:"description"`
	IsActive     *bool   `json:"is_active"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BusinessName string    `json:"business_name"`
	TaxID        string    `json:"tax_id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Website      string    `json:"website"`
	Description  string    `json:"description"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CompanyDetailResponse empresa con sus módulos.
type CompanyDetailResponse struct {
	CompanyResponse
	Modules []ModuleResponse `json:"modules"`
}

// ── Membresías ───────────────────────────────────────────────────────────────

// CreateMembershipRequest agrega un usuario existente a la empresa.
type CreateMembershipRequest struct {
	UserID         string `json:"user_id" validate:"required,uuid"`
	Role           string `json:"role" validate:"omitempty,oneof=admin manager staff"`
	IsCompanyAdmin bool   `json:"is_company_admin"`
}

// UpdateMembershipRequest campos editables de una membresía.
type UpdateMembershipRequest struct {
	Role           *string `json:"role" validate:"omitempty,oneof=admin manager staff"`
	IsCompanyAdmin *bool   `json:"is_company_admin"`
	IsActive       *bool   `json:"is_active"`
}

// MembershipResponse membresía con datos del usuario o de la empresa según la consulta.
type MembershipResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	CompanyID      string    `json:"company_id"`
	Username       string    `json:"username,omitempty"`
	FullName       string    `json:"full_name,omitempty"`
	Email          string    `json:"email,omitempty"`
	CompanyName    string    `json:"company_name,omitempty"`
	Role           string    `json:"role"`
	IsCompanyAdmin bool      `json:"is_company_admin"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// ── Módulos ──────────────────────────────────────────────────────────────────

// CreateModuleRequest habilita un módulo para la empresa.
type CreateModuleRequest struct {
	Name           string          `json:"name" validate:"required"`
	IsActive       *bool           `json:"is_active"`
	Config         json.RawMessage `json:"config"`
	ExpirationDate *string         `json:"expiration_date"` // YYYY-MM-DD
}

// UpdateModuleRequest campos editables de un módulo. ClearExpiration quita el vencimiento.
type UpdateModuleRequest struct {
	IsActive        *bool           `json:"is_active"`
	Config          json.RawMessage `json:"config"`
	ExpirationDate  *string         `json:"expiration_date"`
	ClearExpiration bool            `json:"clear_expiration"`
}

// ModuleResponse salida de un módulo.
type ModuleResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	IsActive       bool            `json:"is_active"`
	Config         json.RawMessage `json:"config"`
	ExpirationDate *string         `json:"expiration_date"`
}
