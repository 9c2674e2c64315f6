package authz

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// Tenant es el selector de empresa de la petición ya resuelto.
// El valor cero significa "ninguna empresa seleccionada".
type Tenant struct {
	Raw     string          // valor tal como llegó en X-Company-ID
	ID      string          // UUID normalizado; vacío si Raw no es un UUID
	Company *entity.Company // nil si la empresa no existe
}

// Selected informa si la petición trae selector (válido o no).
func (t Tenant) Selected() bool { return t.Raw != "" }

// Valid informa si el selector apunta a una empresa existente.
func (t Tenant) Valid() bool { return t.Company != nil }

// TenantResolver resuelve el selector de empresa una sola vez por petición.
type TenantResolver struct {
	companies repository.CompanyRepository
}

// NewTenantResolver crea el resolver.
func NewTenantResolver(companies repository.CompanyRepository) *TenantResolver {
	return &TenantResolver{companies: companies}
}

// Resolve convierte el valor crudo del selector en un Tenant.
// Un selector mal formado o inexistente no es un error: queda como Tenant no válido
// y el evaluador lo deniega. Solo los fallos del almacenamiento devuelven error.
func (r *TenantResolver) Resolve(ctx context.Context, raw string) (Tenant, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Tenant{}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return Tenant{Raw: raw}, nil
	}
	t := Tenant{Raw: raw, ID: id.String()}
	company, err := r.companies.GetByID(ctx, t.ID)
	if err != nil {
		return t, fmt.Errorf("resolve tenant: %w", err)
	}
	t.Company = company
	return t, nil
}
