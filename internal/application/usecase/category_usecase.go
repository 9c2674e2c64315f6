package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// CategoryUseCase catálogo de categorías por empresa. El acceso (miembro/administrador y
// módulo inventory) se verifica en la capa HTTP; aquí solo se recibe la empresa ya autorizada.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

func validateCategory(c *entity.Category) error {
	if c.Name == "" || len(c.Name) > 100 {
		return domain.NewValidationError("name", "es obligatorio, máximo 100 caracteres")
	}
	return nil
}

func mapCategoryConflict(err error) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.NewValidationError("name", "ya existe una categoría con ese nombre")
	}
	return err
}

func (uc *CategoryUseCase) List(ctx context.Context, companyID string) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CategoryFromEntity(c))
	}
	return out, nil
}

func (uc *CategoryUseCase) Create(ctx context.Context, companyID string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	now := time.Now()
	cat := &entity.Category{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		IsActive:    boolOr(in.IsActive, true),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateCategory(cat); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, mapCategoryConflict(err)
	}
	out := dto.CategoryFromEntity(cat)
	return &out, nil
}

func (uc *CategoryUseCase) load(ctx context.Context, companyID, id string) (*entity.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	cat, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, domain.ErrNotFound
	}
	return cat, nil
}

// Get obtiene una categoría de la empresa; la de otra empresa es 404.
func (uc *CategoryUseCase) Get(ctx context.Context, companyID, id string) (*dto.CategoryResponse, error) {
	cat, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	out := dto.CategoryFromEntity(cat)
	return &out, nil
}

func (uc *CategoryUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	cat, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	setString(&cat.Name, in.Name)
	if in.Description != nil {
		cat.Description = *in.Description
	}
	if in.IsActive != nil {
		cat.IsActive = *in.IsActive
	}
	if err := validateCategory(cat); err != nil {
		return nil, err
	}
	cat.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, mapCategoryConflict(err)
	}
	out := dto.CategoryFromEntity(cat)
	return &out, nil
}

// Delete elimina la categoría. Con productos asociados devuelve domain.ErrCategoryInUse.
func (uc *CategoryUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, companyID, id)
}
