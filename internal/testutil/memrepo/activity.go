package memrepo

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var (
	_ repository.ActivityLogRepository = (*ActivityLogRepo)(nil)
	_ repository.CategoryRepository    = (*CategoryRepo)(nil)
	_ repository.ProductRepository     = (*ProductRepo)(nil)
)

// ActivityLogRepo registro de actividad en memoria (solo inserta y consulta).
type ActivityLogRepo struct{ s *Store }

func (r *ActivityLogRepo) Create(_ context.Context, log *entity.ActivityLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("logs.Create"); err != nil {
		return err
	}
	if _, ok := r.s.users[log.UserID]; !ok {
		return domain.ErrNotFound
	}
	cp := *log
	cp.Username = ""
	r.s.logs = append(r.s.logs, &cp)
	return nil
}

func (r *ActivityLogRepo) List(_ context.Context, filter repository.ActivityLogFilter) ([]*entity.ActivityLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*entity.ActivityLog{}
	for _, l := range r.s.logs {
		if !filter.Since.IsZero() && l.Timestamp.Before(filter.Since) {
			continue
		}
		if filter.CompanyIDs != nil && !contains(filter.CompanyIDs, l.CompanyID) {
			continue
		}
		if filter.ActivityType != "" && l.ActivityType != filter.ActivityType {
			continue
		}
		cp := *l
		if u, ok := r.s.users[l.UserID]; ok {
			cp.Username = u.Username
		}
		if filter.Username != "" && cp.Username != filter.Username {
			continue
		}
		list = append(list, &cp)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp.After(list[j].Timestamp) })
	if filter.Limit > 0 && len(list) > filter.Limit {
		list = list[:filter.Limit]
	}
	return list, nil
}

// CategoryRepo categorías en memoria.
type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) Create(_ context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.CompanyID == category.CompanyID && c.Name == category.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *category
	r.s.categories[category.ID] = &cp
	return nil
}

// productCount requiere s.mu tomado.
func (s *Store) productCount(categoryID string) int {
	n := 0
	for _, p := range s.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n
}

func (r *CategoryRepo) GetByID(_ context.Context, companyID, id string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok || c.CompanyID != companyID {
		return nil, nil
	}
	cp := *c
	cp.ProductCount = r.s.productCount(id)
	return &cp, nil
}

func (r *CategoryRepo) Update(_ context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.categories[category.ID]
	if !ok || cur.CompanyID != category.CompanyID {
		return domain.ErrNotFound
	}
	for _, c := range r.s.categories {
		if c.ID != category.ID && c.CompanyID == category.CompanyID && c.Name == category.Name {
			return domain.ErrDuplicate
		}
	}
	cur.Name = category.Name
	cur.Description = category.Description
	cur.IsActive = category.IsActive
	cur.UpdatedAt = category.UpdatedAt
	return nil
}

func (r *CategoryRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*entity.Category{}
	for _, c := range r.s.categories {
		if c.CompanyID == companyID {
			cp := *c
			cp.ProductCount = r.s.productCount(c.ID)
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *CategoryRepo) Delete(_ context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok || c.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if r.s.productCount(id) > 0 {
		return domain.ErrCategoryInUse
	}
	delete(r.s.categories, id)
	return nil
}

// ProductRepo productos en memoria.
type ProductRepo struct{ s *Store }

// withCategory completa CategoryName. Requiere s.mu tomado.
func (s *Store) withCategory(p *entity.Product) *entity.Product {
	cp := *p
	if c, ok := s.categories[p.CategoryID]; ok {
		cp.CategoryName = c.Name
	}
	return &cp
}

func (r *ProductRepo) checkCategory(p *entity.Product) error {
	c, ok := r.s.categories[p.CategoryID]
	if !ok || c.CompanyID != p.CompanyID {
		return domain.NewValidationError("category", "la categoría no existe")
	}
	return nil
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkCategory(product); err != nil {
		return err
	}
	cp := *product
	r.s.products[product.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, companyID, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.CompanyID != companyID {
		return nil, nil
	}
	return r.s.withCategory(p), nil
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[product.ID]
	if !ok || cur.CompanyID != product.CompanyID {
		return domain.ErrNotFound
	}
	if err := r.checkCategory(product); err != nil {
		return err
	}
	cp := *product
	cp.CreatedAt = cur.CreatedAt
	r.s.products[product.ID] = &cp
	return nil
}

func (r *ProductRepo) ListByCompany(_ context.Context, companyID string, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(filter.Search)
	list := []*entity.Product{}
	for _, p := range r.s.products {
		if p.CompanyID != companyID {
			continue
		}
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		list = append(list, r.s.withCategory(p))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	total := len(list)
	if filter.Offset > 0 {
		if filter.Offset >= len(list) {
			list = []*entity.Product{}
		} else {
			list = list[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(list) > filter.Limit {
		list = list[:filter.Limit]
	}
	return list, total, nil
}

func (r *ProductRepo) Delete(_ context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.CompanyID != companyID {
		return domain.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}
