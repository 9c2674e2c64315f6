package memrepo

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var (
	_ repository.CompanyRepository       = (*CompanyRepo)(nil)
	_ repository.CompanyUserRepository   = (*CompanyUserRepo)(nil)
	_ repository.CompanyModuleRepository = (*CompanyModuleRepo)(nil)
)

// CompanyRepo empresas en memoria.
type CompanyRepo struct{ s *Store }

func (r *CompanyRepo) Create(_ context.Context, company *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.companies {
		if c.TaxID == company.TaxID {
			return domain.ErrDuplicate
		}
	}
	cp := *company
	r.s.companies[company.ID] = &cp
	return nil
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("companies.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CompanyRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.companies {
		if c.TaxID == taxID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CompanyRepo) Update(_ context.Context, company *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[company.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, c := range r.s.companies {
		if c.ID != company.ID && c.TaxID == company.TaxID {
			return domain.ErrDuplicate
		}
	}
	cp := *company
	r.s.companies[company.ID] = &cp
	return nil
}

func (r *CompanyRepo) List(_ context.Context) ([]*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*entity.Company{}
	for _, c := range r.s.companies {
		cp := *c
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *CompanyRepo) ListByMember(_ context.Context, userID string) ([]*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*entity.Company{}
	for _, m := range r.s.memberships {
		c, ok := r.s.companies[m.CompanyID]
		if m.UserID == userID && m.IsActive && ok && c.IsActive {
			cp := *c
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// Delete elimina la empresa y en cascada membresías, módulos, catálogo y registros.
func (r *CompanyRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.companies, id)
	for k, m := range r.s.memberships {
		if m.CompanyID == id {
			delete(r.s.memberships, k)
		}
	}
	for k, m := range r.s.modules {
		if m.CompanyID == id {
			delete(r.s.modules, k)
		}
	}
	for k, p := range r.s.products {
		if p.CompanyID == id {
			delete(r.s.products, k)
		}
	}
	for k, c := range r.s.categories {
		if c.CompanyID == id {
			delete(r.s.categories, k)
		}
	}
	kept := r.s.logs[:0]
	for _, l := range r.s.logs {
		if l.CompanyID != id {
			kept = append(kept, l)
		}
	}
	r.s.logs = kept
	return nil
}

// CompanyUserRepo membresías en memoria.
type CompanyUserRepo struct{ s *Store }

func (r *CompanyUserRepo) Create(_ context.Context, cu *entity.CompanyUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("memberships.Create"); err != nil {
		return err
	}
	if _, ok := r.s.users[cu.UserID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.s.companies[cu.CompanyID]; !ok {
		return domain.ErrNotFound
	}
	for _, m := range r.s.memberships {
		if m.UserID == cu.UserID && m.CompanyID == cu.CompanyID {
			return domain.ErrMembershipAlreadyExists
		}
	}
	r.s.memberships[cu.ID] = cloneMembership(cu)
	return nil
}

func (r *CompanyUserRepo) GetByID(_ context.Context, id string) (*entity.CompanyUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.memberships[id]
	if !ok {
		return nil, nil
	}
	return cloneMembership(m), nil
}

func (r *CompanyUserRepo) FindActive(_ context.Context, userID, companyID string) (*entity.CompanyUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("memberships.FindActive"); err != nil {
		return nil, err
	}
	for _, m := range r.s.memberships {
		if m.UserID != userID || m.CompanyID != companyID || !m.IsActive {
			continue
		}
		if c, ok := r.s.companies[companyID]; ok && c.IsActive {
			return cloneMembership(m), nil
		}
	}
	return nil, nil
}

func (r *CompanyUserRepo) Update(_ context.Context, cu *entity.CompanyUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.memberships[cu.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Role = cu.Role
	cur.IsCompanyAdmin = cu.IsCompanyAdmin
	cur.IsActive = cu.IsActive
	cur.UpdatedAt = cu.UpdatedAt
	return nil
}

func (r *CompanyUserRepo) ListByUser(_ context.Context, userID string) ([]*entity.CompanyUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*entity.CompanyUser{}
	for _, m := range r.s.memberships {
		c, ok := r.s.companies[m.CompanyID]
		if m.UserID != userID || !m.IsActive || !ok || !c.IsActive {
			continue
		}
		out := cloneMembership(m)
		cp := *c
		out.Company = &cp
		list = append(list, out)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Company.Name < list[j].Company.Name })
	return list, nil
}

func (r *CompanyUserRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.CompanyUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*entity.CompanyUser{}
	for _, m := range r.s.memberships {
		u, ok := r.s.users[m.UserID]
		if m.CompanyID != companyID || !m.IsActive || !ok {
			continue
		}
		out := cloneMembership(m)
		out.User = cloneUser(u)
		list = append(list, out)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].User.Username < list[j].User.Username })
	return list, nil
}

func (r *CompanyUserRepo) AdminCompanyIDs(_ context.Context, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("memberships.AdminCompanyIDs"); err != nil {
		return nil, err
	}
	ids := []string{}
	for _, m := range r.s.memberships {
		c, ok := r.s.companies[m.CompanyID]
		if m.UserID == userID && m.IsActive && m.IsCompanyAdmin && ok && c.IsActive {
			ids = append(ids, m.CompanyID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// CompanyModuleRepo módulos por empresa en memoria.
type CompanyModuleRepo struct{ s *Store }

func (r *CompanyModuleRepo) Create(_ context.Context, m *entity.CompanyModule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[m.CompanyID]; !ok {
		return domain.ErrNotFound
	}
	for _, cur := range r.s.modules {
		if cur.CompanyID == m.CompanyID && cur.Name == m.Name {
			return domain.ErrModuleAlreadyExists
		}
	}
	r.s.modules[m.ID] = cloneModule(m)
	return nil
}

func (r *CompanyModuleRepo) GetByID(_ context.Context, id string) (*entity.CompanyModule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.modules[id]
	if !ok {
		return nil, nil
	}
	return cloneModule(m), nil
}

func (r *CompanyModuleRepo) Update(_ context.Context, m *entity.CompanyModule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.modules[m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := cloneModule(m)
	next.CompanyID = cur.CompanyID
	next.Name = cur.Name
	next.CreatedAt = cur.CreatedAt
	r.s.modules[m.ID] = next
	return nil
}

func (r *CompanyModuleRepo) filter(keep func(*entity.CompanyModule) bool) []*entity.CompanyModule {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*entity.CompanyModule{}
	for _, m := range r.s.modules {
		if keep(m) {
			list = append(list, cloneModule(m))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CompanyID == list[j].CompanyID {
			return list[i].Name < list[j].Name
		}
		return list[i].CompanyID < list[j].CompanyID
	})
	return list
}

func (r *CompanyModuleRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.CompanyModule, error) {
	return r.filter(func(m *entity.CompanyModule) bool { return m.CompanyID == companyID }), nil
}

func (r *CompanyModuleRepo) ListEnabled(_ context.Context, companyIDs []string, day time.Time) ([]*entity.CompanyModule, error) {
	return r.filter(func(m *entity.CompanyModule) bool {
		return contains(companyIDs, m.CompanyID) && m.EnabledOn(day)
	}), nil
}

func (r *CompanyModuleRepo) IsEnabled(_ context.Context, companyID, name string, day time.Time) (bool, error) {
	r.s.mu.Lock()
	if err := r.s.fail("modules.IsEnabled"); err != nil {
		r.s.mu.Unlock()
		return false, err
	}
	r.s.mu.Unlock()
	list := r.filter(func(m *entity.CompanyModule) bool {
		return m.CompanyID == companyID && m.Name == name && m.EnabledOn(day)
	})
	return len(list) > 0, nil
}
