package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// maxPrice tope de NUMERIC(10,2).
var maxPrice = decimal.RequireFromString("99999999.99")

// ProductUseCase casos de uso CRUD para productos de la empresa seleccionada.
type ProductUseCase struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, categories repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, categories: categories}
}

// checkCategory exige que la categoría exista y sea de la misma empresa.
func (uc *ProductUseCase) checkCategory(ctx context.Context, companyID, categoryID string) (*entity.Category, error) {
	if _, err := uuid.Parse(categoryID); err != nil {
		return nil, domain.NewValidationError("category", "debe ser un UUID")
	}
	cat, err := uc.categories.GetByID(ctx, companyID, categoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, domain.NewValidationError("category", "la categoría no existe")
	}
	return cat, nil
}

func validateProduct(p *entity.Product) error {
	v := &domain.ValidationError{}
	if p.Name == "" || len(p.Name) > 200 {
		v.Add("name", "es obligatorio, máximo 200 caracteres")
	}
	if p.Price.IsNegative() || p.Price.GreaterThan(maxPrice) {
		v.Add("price", "debe estar entre 0 y 99999999.99")
	}
	if p.Stock < 0 {
		v.Add("stock", "no puede ser negativo")
	}
	return v.OrNil()
}

// Create crea un producto en una categoría de la empresa. El precio se redondea a 2 decimales.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	cat, err := uc.checkCategory(ctx, companyID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Price:        in.Price.Round(2),
		IsAvailable:  boolOr(in.IsAvailable, true),
		Stock:        in.Stock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	out := dto.ProductFromEntity(product)
	return &out, nil
}

func (uc *ProductUseCase) load(ctx context.Context, companyID, id string) (*entity.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// GetByID obtiene un producto de la empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	p, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	out := dto.ProductFromEntity(p)
	return &out, nil
}

// Update actualiza los campos presentes.
func (uc *ProductUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		cat, err := uc.checkCategory(ctx, companyID, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = cat.ID
		product.CategoryName = cat.Name
	}
	setString(&product.Name, in.Name)
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = in.Price.Round(2)
	}
	if in.IsAvailable != nil {
		product.IsAvailable = *in.IsAvailable
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	out := dto.ProductFromEntity(product)
	return &out, nil
}

// List lista productos por empresa con búsqueda, filtro de categoría y paginación.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, in dto.ProductFilterRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	if in.Category != "" {
		if _, err := uuid.Parse(in.Category); err != nil {
			return nil, domain.NewValidationError("category", "debe ser un UUID")
		}
	}
	list, total, err := uc.repo.ListByCompany(ctx, companyID, repository.ProductFilter{
		Search:     strings.TrimSpace(in.Search),
		CategoryID: in.Category,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.ProductFromEntity(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// Delete elimina un producto de la empresa.
func (uc *ProductUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, companyID, id)
}
