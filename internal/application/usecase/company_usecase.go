package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repo    repository.CompanyRepository
	modules repository.CompanyModuleRepository
	checker authz.Checker
}

// NewCompanyUseCase construye el caso de uso con los puertos de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository, modules repository.CompanyModuleRepository, checker authz.Checker) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, modules: modules, checker: checker}
}

// tenantFor resuelve una empresa como si llegara en el selector. Un id inválido o inexistente
// produce un Tenant no válido, que el evaluador deniega igual que una empresa ajena.
func tenantFor(ctx context.Context, companies repository.CompanyRepository, id string) (authz.Tenant, error) {
	t := authz.Tenant{Raw: id}
	if _, err := uuid.Parse(id); err != nil {
		return t, nil
	}
	t.ID = id
	c, err := companies.GetByID(ctx, id)
	if err != nil {
		return t, err
	}
	t.Company = c
	return t, nil
}

// authorizeCompany aplica regla 1 o el nivel pedido sobre la empresa :id. Para privilegiados
// una empresa inexistente es 404; para el resto, denegación.
func authorizeCompany(ctx context.Context, checker authz.Checker, companies repository.CompanyRepository, user *entity.User, id string, level authz.Level) (authz.Tenant, error) {
	t, err := tenantFor(ctx, companies, id)
	if err != nil {
		return t, err
	}
	if user.IsPrivileged() && !t.Valid() {
		return t, domain.ErrNotFound
	}
	if err := require(checker.Authorize(ctx, user, t, level)); err != nil {
		return t, err
	}
	return t, nil
}

// List todas las empresas para usuarios privilegiados; para el resto, las de sus membresías activas.
func (uc *CompanyUseCase) List(ctx context.Context, c Caller) ([]dto.CompanyResponse, error) {
	var (
		list []*entity.Company
		err  error
	)
	if c.User.IsPrivileged() {
		list, err = uc.repo.List(ctx)
	} else {
		list, err = uc.repo.ListByMember(ctx, c.User.ID)
	}
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, co := range list {
		items = append(items, dto.CompanyFromEntity(co))
	}
	return items, nil
}

// Get obtiene una empresa con sus módulos (regla 1 o 3).
func (uc *CompanyUseCase) Get(ctx context.Context, c Caller, id string) (*dto.CompanyDetailResponse, error) {
	t, err := authorizeCompany(ctx, uc.checker, uc.repo, c.User, id, authz.LevelMember)
	if err != nil {
		return nil, err
	}
	mods, err := uc.modules.ListByCompany(ctx, t.Company.ID)
	if err != nil {
		return nil, err
	}
	return &dto.CompanyDetailResponse{
		CompanyResponse: dto.CompanyFromEntity(t.Company),
		Modules:         dto.ModulesFromEntities(mods),
	}, nil
}

func validateCompany(co *entity.Company) error {
	v := &domain.ValidationError{}
	if co.Name == "" || len(co.Name) > 100 {
		v.Add("name", "es obligatorio, máximo 100 caracteres")
	}
	if co.BusinessName == "" || len(co.BusinessName) > 100 {
		v.Add("business_name", "es obligatorio, máximo 100 caracteres")
	}
	if co.TaxID == "" || len(co.TaxID) > 20 {
		v.Add("tax_id", "es obligatorio, máximo 20 caracteres")
	}
	if co.Email != "" {
		if msg := entity.ValidateEmail(co.Email); msg != "" {
			v.Add("email", msg)
		}
	}
	if len(co.Phone) > 20 {
		v.Add("phone", "máximo 20 caracteres")
	}
	return v.OrNil()
}

func mapCompanyConflict(err error) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.NewValidationError("tax_id", "ya existe una empresa con ese NIT")
	}
	return err
}

// Create crea una nueva empresa (solo regla 1). Un NIT repetido es error de validación.
func (uc *CompanyUseCase) Create(ctx context.Context, c Caller, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := authz.RequirePrivileged(c.User).Err(); err != nil {
		return nil, err
	}
	now := time.Now()
	company := &entity.Company{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		BusinessName: strings.TrimSpace(in.BusinessName),
		TaxID:        strings.TrimSpace(in.TaxID),
		Email:        entity.NormalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		Website:      strings.TrimSpace(in.Website),
		Description:  in.Description,
		IsActive:     boolOr(in.IsActive, true),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := validateCompany(company); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByTaxID(ctx, company.TaxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, mapCompanyConflict(domain.ErrDuplicate)
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, mapCompanyConflict(err)
	}
	out := dto.CompanyFromEntity(company)
	return &out, nil
}

// Update aplica los campos presentes (solo regla 1).
func (uc *CompanyUseCase) Update(ctx context.Context, c Caller, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := authz.RequirePrivileged(c.User).Err(); err != nil {
		return nil, err
	}
	t, err := tenantFor(ctx, uc.repo, id)
	if err != nil {
		return nil, err
	}
	if !t.Valid() {
		return nil, domain.ErrNotFound
	}
	co := t.Company
	setString(&co.Name, in.Name)
	setString(&co.BusinessName, in.BusinessName)
	setString(&co.TaxID, in.TaxID)
	if in.Email != nil {
		co.Email = entity.NormalizeEmail(*in.Email)
	}
	setString(&co.Phone, in.Phone)
	setString(&co.Address, in.Address)
	setString(&co.Website, in.Website)
	if in.Description != nil {
		co.Description = *in.Description
	}
	if in.IsActive != nil {
		co.IsActive = *in.IsActive
	}
	if err := validateCompany(co); err != nil {
		return nil, err
	}
	co.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, co); err != nil {
		return nil, mapCompanyConflict(err)
	}
	out := dto.CompanyFromEntity(co)
	return &out, nil
}

// Delete elimina la empresa y en cascada sus membresías, módulos, categorías y productos (solo regla 1).
func (uc *CompanyUseCase) Delete(ctx context.Context, c Caller, id string) error {
	if err := authz.RequirePrivileged(c.User).Err(); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
