package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// MembershipUseCase gestiona la relación usuario-empresa (CompanyUser).
type MembershipUseCase struct {
	memberships repository.CompanyUserRepository
	companies   repository.CompanyRepository
	users       repository.UserRepository
	checker     authz.Checker
}

// NewMembershipUseCase construye el caso de uso.
func NewMembershipUseCase(
	memberships repository.CompanyUserRepository,
	companies repository.CompanyRepository,
	users repository.UserRepository,
	checker authz.Checker,
) *MembershipUseCase {
	return &MembershipUseCase{memberships: memberships, companies: companies, users: users, checker: checker}
}

// ListByCompany miembros de la empresa :id con nombre de usuario (regla 1 o 3).
func (uc *MembershipUseCase) ListByCompany(ctx context.Context, c Caller, companyID string) ([]dto.MembershipResponse, error) {
	if _, err := authorizeCompany(ctx, uc.checker, uc.companies, c.User, companyID, authz.LevelMember); err != nil {
		return nil, err
	}
	list, err := uc.memberships.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MembershipResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MembershipFromEntity(m))
	}
	return out, nil
}

// Create agrega un usuario a la empresa (regla 1 o 2). Un par repetido devuelve
// domain.ErrMembershipAlreadyExists, también entre escritores concurrentes.
func (uc *MembershipUseCase) Create(ctx context.Context, c Caller, companyID string, in dto.CreateMembershipRequest) (*dto.MembershipResponse, error) {
	if _, err := authorizeCompany(ctx, uc.checker, uc.companies, c.User, companyID, authz.LevelCompanyAdmin); err != nil {
		return nil, err
	}
	v := &domain.ValidationError{}
	if _, err := uuid.Parse(in.UserID); err != nil {
		v.Add("user_id", "debe ser un UUID")
	}
	role := in.Role
	if role == "" {
		role = entity.RoleStaff
	}
	if !entity.IsValidRole(role) {
		v.Add("role", "debe ser admin, manager o staff")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewValidationError("user_id", "el usuario no existe")
	}

	now := time.Now()
	m := &entity.CompanyUser{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		CompanyID:      companyID,
		Role:           role,
		IsCompanyAdmin: in.IsCompanyAdmin,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
		User:           user,
	}
	if err := uc.memberships.Create(ctx, m); err != nil {
		return nil, err
	}
	out := dto.MembershipFromEntity(m)
	return &out, nil
}

// Update modifica rol, bandera de administrador o estado (regla 1 o 2).
// La desactivación es lógica; la membresía solo se borra en cascada con su usuario o empresa.
func (uc *MembershipUseCase) Update(ctx context.Context, c Caller, companyID, membershipID string, in dto.UpdateMembershipRequest) (*dto.MembershipResponse, error) {
	if _, err := authorizeCompany(ctx, uc.checker, uc.companies, c.User, companyID, authz.LevelCompanyAdmin); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(membershipID); err != nil {
		return nil, domain.ErrNotFound
	}
	m, err := uc.memberships.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if in.Role != nil {
		if !entity.IsValidRole(*in.Role) {
			return nil, domain.NewValidationError("role", "debe ser admin, manager o staff")
		}
		m.Role = *in.Role
	}
	if in.IsCompanyAdmin != nil {
		m.IsCompanyAdmin = *in.IsCompanyAdmin
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	m.UpdatedAt = time.Now()
	if err := uc.memberships.Update(ctx, m); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	out := dto.MembershipFromEntity(m)
	return &out, nil
}
