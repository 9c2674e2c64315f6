package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// ModuleService administra qué módulos tiene contratados cada empresa.
// La habilitación por petición la decide authz.Evaluator.RequireModule.
type ModuleService struct {
	modules   repository.CompanyModuleRepository
	companies repository.CompanyRepository
	checker   authz.Checker
	now       func() time.Time
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(modules repository.CompanyModuleRepository, companies repository.CompanyRepository, checker authz.Checker) *ModuleService {
	return &ModuleService{modules: modules, companies: companies, checker: checker, now: time.Now}
}

// WithClock reemplaza el reloj (pruebas de vencimiento).
func (s *ModuleService) WithClock(now func() time.Time) *ModuleService {
	s.now = now
	return s
}

// EnabledByCompany módulos habilitados hoy agrupados por empresa.
func (s *ModuleService) EnabledByCompany(ctx context.Context, companyIDs []string) (map[string][]*entity.CompanyModule, error) {
	out := make(map[string][]*entity.CompanyModule, len(companyIDs))
	if len(companyIDs) == 0 {
		return out, nil
	}
	list, err := s.modules.ListEnabled(ctx, companyIDs, s.now())
	if err != nil {
		return nil, err
	}
	for _, m := range list {
		out[m.CompanyID] = append(out[m.CompanyID], m)
	}
	return out, nil
}

// List módulos de la empresa :id, activos o no (regla 1 o 3).
func (s *ModuleService) List(ctx context.Context, c Caller, companyID string) ([]dto.ModuleResponse, error) {
	if _, err := authorizeCompany(ctx, s.checker, s.companies, c.User, companyID, authz.LevelMember); err != nil {
		return nil, err
	}
	list, err := s.modules.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return dto.ModulesFromEntities(list), nil
}

func parseExpiration(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	d, err := time.Parse(dto.DateLayout, *raw)
	if err != nil {
		return nil, domain.NewValidationError("expiration_date", "formato esperado YYYY-MM-DD")
	}
	return &d, nil
}

func validConfig(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage("{}"), nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, domain.NewValidationError("config", "debe ser un objeto JSON")
	}
	return raw, nil
}

// Create contrata un módulo para la empresa (solo regla 1). Repetido → domain.ErrModuleAlreadyExists.
func (s *ModuleService) Create(ctx context.Context, c Caller, companyID string, in dto.CreateModuleRequest) (*dto.ModuleResponse, error) {
	if err := authz.RequirePrivileged(c.User).Err(); err != nil {
		return nil, err
	}
	t, err := tenantFor(ctx, s.companies, companyID)
	if err != nil {
		return nil, err
	}
	if !t.Valid() {
		return nil, domain.ErrNotFound
	}
	if !entity.IsValidModule(in.Name) {
		return nil, domain.NewValidationError("name", "módulo desconocido")
	}
	exp, err := parseExpiration(in.ExpirationDate)
	if err != nil {
		return nil, err
	}
	cfg, err := validConfig(in.Config)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	m := &entity.CompanyModule{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		Name:           in.Name,
		IsActive:       boolOr(in.IsActive, true),
		Config:         cfg,
		ExpirationDate: exp,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.modules.Create(ctx, m); err != nil {
		return nil, err
	}
	out := dto.ModuleFromEntity(m)
	return &out, nil
}

// Update cambia estado, configuración o vencimiento de un módulo (solo regla 1).
func (s *ModuleService) Update(ctx context.Context, c Caller, companyID, moduleID string, in dto.UpdateModuleRequest) (*dto.ModuleResponse, error) {
	if err := authz.RequirePrivileged(c.User).Err(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(moduleID); err != nil {
		return nil, domain.ErrNotFound
	}
	m, err := s.modules.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	if in.Config != nil {
		cfg, err := validConfig(in.Config)
		if err != nil {
			return nil, err
		}
		m.Config = cfg
	}
	switch {
	case in.ClearExpiration:
		m.ExpirationDate = nil
	case in.ExpirationDate != nil:
		exp, err := parseExpiration(in.ExpirationDate)
		if err != nil {
			return nil, err
		}
		m.ExpirationDate = exp
	}
	m.UpdatedAt = time.Now()
	if err := s.modules.Update(ctx, m); err != nil {
		return nil, err
	}
	out := dto.ModuleFromEntity(m)
	return &out, nil
}
