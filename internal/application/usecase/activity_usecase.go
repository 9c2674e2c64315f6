package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/application/audit"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

const (
	defaultActivityDays  = 7
	maxActivityDays      = 365
	defaultActivityLimit = 100
	maxActivityLimit     = 1000
)

// ActivityUseCase consulta e inserción manual del registro de actividad.
type ActivityUseCase struct {
	logs        repository.ActivityLogRepository
	users       repository.UserRepository
	memberships repository.CompanyUserRepository
	checker     authz.Checker
	detailsMax  int
	now         func() time.Time
}

func NewActivityUseCase(
	logs repository.ActivityLogRepository,
	users repository.UserRepository,
	memberships repository.CompanyUserRepository,
	checker authz.Checker,
	detailsMax int,
) *ActivityUseCase {
	if detailsMax <= 0 {
		detailsMax = audit.DefaultDetailsMax
	}
	return &ActivityUseCase{
		logs: logs, users: users, memberships: memberships, checker: checker,
		detailsMax: detailsMax, now: time.Now,
	}
}

// scope empresas visibles: privilegiados todas (o la seleccionada), con selector regla 2,
// sin selector la unión de empresas administradas.
func (uc *ActivityUseCase) scope(ctx context.Context, c Caller) (authz.Scope, error) {
	if c.Tenant.Selected() {
		if err := require(uc.checker.Authorize(ctx, c.User, c.Tenant, authz.LevelCompanyAdmin)); err != nil {
			return authz.Scope{}, err
		}
		if !c.Tenant.Valid() {
			return authz.Scope{CompanyIDs: []string{}}, nil
		}
		return authz.Scope{CompanyIDs: []string{c.Tenant.Company.ID}}, nil
	}
	return uc.checker.AdminScope(ctx, c.User)
}

// List registros de los últimos days días (7 por defecto), más recientes primero.
func (uc *ActivityUseCase) List(ctx context.Context, c Caller, in dto.ActivityFilterRequest) ([]dto.ActivityResponse, error) {
	v := &domain.ValidationError{}
	days := in.Days
	switch {
	case days == 0:
		days = defaultActivityDays
	case days < 0 || days > maxActivityDays:
		v.Add("days", "debe estar entre 1 y 365")
	}
	t := entity.ActivityType(in.ActivityType)
	if t != "" && !t.Recordable() {
		v.Add("activity_type", "tipo de actividad desconocido")
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	scope, err := uc.scope(ctx, c)
	if err != nil {
		return nil, err
	}
	list, err := uc.logs.List(ctx, repository.ActivityLogFilter{
		Since:        uc.now().AddDate(0, 0, -days),
		CompanyIDs:   scope.Filter(),
		ActivityType: t,
		Username:     strings.TrimSpace(in.Username),
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.ActivityFromEntity(l))
	}
	return out, nil
}

// Create inserta un registro manual (regla 1 o 2). Solo tipos públicos; para no privilegiados
// el sujeto debe ser miembro activo de la empresa seleccionada.
func (uc *ActivityUseCase) Create(ctx context.Context, c Caller, in dto.CreateActivityRequest) (*dto.ActivityResponse, error) {
	if err := require(uc.checker.Authorize(ctx, c.User, c.Tenant, authz.LevelCompanyAdmin)); err != nil {
		return nil, err
	}
	if c.Tenant.Selected() && !c.Tenant.Valid() {
		return nil, domain.Denied(authz.ReasonNotMember)
	}
	v := &domain.ValidationError{}
	t := entity.ActivityType(in.ActivityType)
	if !t.Valid() {
		v.Add("activity_type", "tipo de actividad desconocido")
	}
	username := entity.NormalizeUsername(in.Username)
	if username == "" {
		v.Add("username", "es obligatorio")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	subject, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, domain.NewValidationError("username", "el usuario no existe")
	}
	if !c.User.IsPrivileged() {
		m, err := uc.memberships.FindActive(ctx, subject.ID, c.Tenant.Company.ID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, domain.NewValidationError("username", "el usuario no pertenece a esta empresa")
		}
	}

	rec := &entity.ActivityLog{
		ID:           uuid.New().String(),
		UserID:       subject.ID,
		CompanyID:    c.CompanyID(),
		ActivityType: t,
		Details:      audit.Truncate(in.Details, uc.detailsMax),
		IPAddress:    audit.NormalizeIP(c.IP),
		Timestamp:    uc.now(),
		Username:     subject.Username,
	}
	if err := uc.logs.Create(ctx, rec); err != nil {
		return nil, err
	}
	out := dto.ActivityFromEntity(rec)
	return &out, nil
}
