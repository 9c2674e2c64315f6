// Package authz decide si una identidad puede operar sobre una empresa.
//
// Reglas, en orden:
//  1. superusuario o administrador del sistema: permitido siempre, incluido el control de módulos.
//  2. operaciones de administración por empresa: membresía activa con is_company_admin en una empresa activa.
//  3. lecturas de miembro: membresía activa en una empresa activa.
//  4. listados sin empresa seleccionada: la unión de empresas donde el llamador es administrador.
//  5. control de módulos: módulo activo y no vencido para la empresa.
//
// El evaluador no tiene efectos secundarios. Un selector ausente o inválido produce una
// denegación, no un error; solo los fallos del almacenamiento devuelven error.
package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// Level nivel de acceso requerido dentro de una empresa.
type Level int

const (
	// LevelMember lectura de miembro (regla 3).
	LevelMember Level = iota
	// LevelCompanyAdmin administración de la empresa (regla 2).
	LevelCompanyAdmin
)

func (l Level) String() string {
	if l == LevelCompanyAdmin {
		return "company_admin"
	}
	return "member"
}

// Motivos de denegación devueltos al cliente.
const (
	ReasonUnauthenticated = "autenticación requerida"
	ReasonNoTenant        = "no se seleccionó una empresa"
	ReasonNotMember       = "no tienes acceso a esta empresa"
	ReasonNotAdmin        = "se requieren permisos de administrador de la empresa"
	ReasonModuleInactive  = "el módulo no está activo para esta empresa"
	ReasonPrivileged      = "se requieren permisos de superusuario o administrador del sistema"
)

// Decision resultado del evaluador.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow decisión positiva.
func Allow() Decision { return Decision{Allowed: true} }

// Deny decisión negativa con motivo.
func Deny(reason string) Decision { return Decision{Reason: reason} }

// Err devuelve nil si la decisión es positiva o un *domain.DeniedError con el motivo.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return domain.Denied(d.Reason)
}

// Scope conjunto de empresas visibles para un listado.
type Scope struct {
	All        bool     // sin restricción (regla 1)
	CompanyIDs []string // válido solo si !All
}

// Empty informa si el alcance no incluye ninguna empresa.
func (s Scope) Empty() bool { return !s.All && len(s.CompanyIDs) == 0 }

// Includes informa si companyID está dentro del alcance.
func (s Scope) Includes(companyID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.CompanyIDs {
		if id == companyID {
			return true
		}
	}
	return false
}

// Narrow restringe el alcance a una sola empresa. Si no estaba incluida, el resultado es vacío.
func (s Scope) Narrow(companyID string) Scope {
	if s.Includes(companyID) {
		return Scope{CompanyIDs: []string{companyID}}
	}
	return Scope{CompanyIDs: []string{}}
}

// Filter devuelve el filtro para los repositorios: nil = todas, slice vacío = ninguna.
func (s Scope) Filter() []string {
	if s.All {
		return nil
	}
	if s.CompanyIDs == nil {
		return []string{}
	}
	return s.CompanyIDs
}

// Checker contrato del evaluador; lo consumen los casos de uso y los middlewares HTTP.
type Checker interface {
	Authorize(ctx context.Context, user *entity.User, tenant Tenant, level Level) (Decision, error)
	RequireModule(ctx context.Context, user *entity.User, tenant Tenant, module string) (Decision, error)
	AdminScope(ctx context.Context, user *entity.User) (Scope, error)
}

var _ Checker = (*Evaluator)(nil)

// Evaluator implementa Checker sobre los repositorios de membresías y módulos.
type Evaluator struct {
	memberships repository.CompanyUserRepository
	modules     repository.CompanyModuleRepository
	now         func() time.Time
}

// NewEvaluator construye el evaluador con reloj del sistema.
func NewEvaluator(memberships repository.CompanyUserRepository, modules repository.CompanyModuleRepository) *Evaluator {
	return &Evaluator{memberships: memberships, modules: modules, now: time.Now}
}

// WithClock reemplaza el reloj (pruebas de vencimiento).
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// Authorize aplica las reglas 1 a 3.
func (e *Evaluator) Authorize(ctx context.Context, user *entity.User, tenant Tenant, level Level) (Decision, error) {
	if user == nil {
		return Deny(ReasonUnauthenticated), nil
	}
	if user.IsPrivileged() {
		return Allow(), nil
	}
	if !tenant.Selected() {
		return Deny(ReasonNoTenant), nil
	}
	// Selector inválido o empresa inexistente: misma respuesta que sin membresía.
	if !tenant.Valid() {
		return Deny(ReasonNotMember), nil
	}
	m, err := e.memberships.FindActive(ctx, user.ID, tenant.Company.ID)
	if err != nil {
		return Decision{}, fmt.Errorf("authorize: %w", err)
	}
	if m == nil {
		return Deny(ReasonNotMember), nil
	}
	if level == LevelCompanyAdmin && !m.IsCompanyAdmin {
		return Deny(ReasonNotAdmin), nil
	}
	return Allow(), nil
}

// RequireModule aplica la regla 5. No verifica membresía: se combina con Authorize.
func (e *Evaluator) RequireModule(ctx context.Context, user *entity.User, tenant Tenant, module string) (Decision, error) {
	if user.IsPrivileged() {
		return Allow(), nil
	}
	if !tenant.Valid() {
		return Deny(ReasonNoTenant), nil
	}
	ok, err := e.modules.IsEnabled(ctx, tenant.Company.ID, module, e.now())
	if err != nil {
		return Decision{}, fmt.Errorf("require module: %w", err)
	}
	if !ok {
		return Deny(ReasonModuleInactive), nil
	}
	return Allow(), nil
}

// AdminScope aplica la regla 4 (o la 1 para usuarios privilegiados).
func (e *Evaluator) AdminScope(ctx context.Context, user *entity.User) (Scope, error) {
	if user == nil {
		return Scope{CompanyIDs: []string{}}, nil
	}
	if user.IsPrivileged() {
		return Scope{All: true}, nil
	}
	ids, err := e.memberships.AdminCompanyIDs(ctx, user.ID)
	if err != nil {
		return Scope{}, fmt.Errorf("admin scope: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return Scope{CompanyIDs: ids}, nil
}

// RequirePrivileged regla 1 aislada, para operaciones solo de superusuario/administrador del sistema.
func RequirePrivileged(user *entity.User) Decision {
	if user.IsPrivileged() {
		return Allow()
	}
	return Deny(ReasonPrivileged)
}
