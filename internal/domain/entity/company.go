package entity

import (
	"encoding/json"
	"time"
)

// Company representa una organización/tenant del sistema.
type Company struct {
	ID           string
	Name         string
	BusinessName string // razón social
	TaxID        string // RUT/NIT, único
	Email        string
	Phone        string
	Address      string
	Website      string
	Description  string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Módulos disponibles (deben coincidir con el CHECK de la tabla company_modules).
const (
	ModuleInventory  = "inventory"
	ModuleSales      = "sales"
	ModulePurchasing = "purchasing"
	ModuleBilling    = "billing"
	ModuleCRM        = "crm"
	ModuleAnalytics  = "analytics"
	ModuleAccounting = "accounting"
)

var moduleNames = map[string]struct{}{
	ModuleInventory:  {},
	ModuleSales:      {},
	ModulePurchasing: {},
	ModuleBilling:    {},
	ModuleCRM:        {},
	ModuleAnalytics:  {},
	ModuleAccounting: {},
}

// IsValidModule informa si name es uno de los módulos conocidos.
func IsValidModule(name string) bool {
	_, ok := moduleNames[name]
	return ok
}

// CompanyModule representa la activación de un módulo en una empresa.
type CompanyModule struct {
	ID             string
	CompanyID      string
	Name           string // ver constantes Module*
	IsActive       bool
	Config         json.RawMessage
	ExpirationDate *time.Time // solo fecha; nil = sin vencimiento
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EnabledOn informa si el módulo está activo y no vencido en el día indicado.
// La comparación es por fecha: un módulo que vence hoy sigue habilitado hoy.
func (m *CompanyModule) EnabledOn(day time.Time) bool {
	if m == nil || !m.IsActive {
		return false
	}
	if m.ExpirationDate == nil {
		return true
	}
	return !DateOf(*m.ExpirationDate).Before(DateOf(day))
}

// DateOf trunca t a medianoche UTC del mismo día calendario.
func DateOf(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
