package usecase

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/application/audit"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// Caller identidad autenticada y contexto de la petición (empresa seleccionada, IP).
type Caller struct {
	User   *entity.User
	Tenant authz.Tenant
	IP     string
}

// CompanyID id de la empresa seleccionada si existe; vacío en otro caso.
func (c Caller) CompanyID() string {
	if c.Tenant.Valid() {
		return c.Tenant.Company.ID
	}
	return ""
}

// entry arma un evento de auditoría cuyo sujeto es el propio llamador.
func (c Caller) entry(t entity.ActivityType, details string) audit.Entry {
	return audit.Entry{UserID: c.User.ID, CompanyID: c.CompanyID(), Type: t, Details: details, IP: c.IP}
}

// UserTxRunner ejecuta escrituras de usuario (datos, grupos, membresía) en una sola transacción.
type UserTxRunner interface {
	RunUserTx(ctx context.Context, fn func(
		users repository.UserRepository,
		memberships repository.CompanyUserRepository,
	) error) error
}

// require convierte una decisión del evaluador en error de dominio.
func require(d authz.Decision, err error) error {
	if err != nil {
		return err
	}
	return d.Err()
}

// sharesAdminCompany informa si actor administra alguna empresa activa a la que pertenece target.
func sharesAdminCompany(ctx context.Context, checker authz.Checker, memberships repository.CompanyUserRepository, actor *entity.User, targetID string) (bool, error) {
	scope, err := checker.AdminScope(ctx, actor)
	if err != nil {
		return false, err
	}
	if scope.All {
		return true, nil
	}
	if scope.Empty() {
		return false, nil
	}
	list, err := memberships.ListByUser(ctx, targetID)
	if err != nil {
		return false, err
	}
	for _, m := range list {
		if scope.Includes(m.CompanyID) {
			return true, nil
		}
	}
	return false, nil
}

// adminCoversAll informa si actor administra todas las empresas activas de target (y al menos una).
func adminCoversAll(ctx context.Context, checker authz.Checker, memberships repository.CompanyUserRepository, actor *entity.User, targetID string) (bool, error) {
	scope, err := checker.AdminScope(ctx, actor)
	if err != nil {
		return false, err
	}
	if scope.All {
		return true, nil
	}
	list, err := memberships.ListByUser(ctx, targetID)
	if err != nil {
		return false, err
	}
	if len(list) == 0 {
		return false, nil
	}
	for _, m := range list {
		if !scope.Includes(m.CompanyID) {
			return false, nil
		}
	}
	return true, nil
}

var errNoManage = domain.Denied("no puedes modificar este usuario")

// errNoAccess respuesta uniforme para recursos inexistentes o ajenos: no revela existencia.
var errNoAccess = domain.Denied("no tienes acceso a este recurso")
