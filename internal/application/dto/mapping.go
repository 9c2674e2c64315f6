package dto

import (
	"encoding/json"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// DateLayout formato de fechas sin hora (expiration_date).
const DateLayout = "2006-01-02"

// UserFromEntity convierte un usuario de dominio en su respuesta (sin hash).
func UserFromEntity(u *entity.User) UserResponse {
	groups := u.Groups
	if groups == nil {
		groups = []string{}
	}
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Phone:         u.Phone,
		IsStaff:       u.IsStaff,
		IsSuperuser:   u.IsSuperuser,
		IsSystemAdmin: u.IsSystemAdmin,
		IsActive:      u.IsActive,
		Groups:        groups,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// CompanyFromEntity convierte una empresa de dominio en su respuesta.
func CompanyFromEntity(c *entity.Company) CompanyResponse {
	return CompanyResponse{
		ID:           c.ID,
		Name:         c.Name,
		BusinessName: c.BusinessName,
		TaxID:        c.TaxID,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		Website:      c.Website,
		Description:  c.Description,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ModuleFromEntity convierte un módulo en su respuesta. Config nunca es null.
func ModuleFromEntity(m *entity.CompanyModule) ModuleResponse {
	cfg := m.Config
	if len(cfg) == 0 {
		cfg = json.RawMessage("{}")
	}
	var exp *string
	if m.ExpirationDate != nil {
		s := m.ExpirationDate.Format(DateLayout)
		exp = &s
	}
	return ModuleResponse{ID: m.ID, Name: m.Name, IsActive: m.IsActive, Config: cfg, ExpirationDate: exp}
}

// ModulesFromEntities convierte una lista de módulos.
func ModulesFromEntities(list []*entity.CompanyModule) []ModuleResponse {
	out := make([]ModuleResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ModuleFromEntity(m))
	}
	return out
}

// MembershipFromEntity convierte una membresía; usa User o Company si vienen cargados.
func MembershipFromEntity(m *entity.CompanyUser) MembershipResponse {
	out := MembershipResponse{
		ID:             m.ID,
		UserID:         m.UserID,
		CompanyID:      m.CompanyID,
		Role:           m.Role,
		IsCompanyAdmin: m.IsCompanyAdmin,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
	}
	if m.User != nil {
		out.Username = m.User.Username
		out.FullName = m.User.FullName()
		out.Email = m.User.Email
	}
	if m.Company != nil {
		out.CompanyName = m.Company.Name
	}
	return out
}

// GroupFromEntity convierte un grupo.
func GroupFromEntity(g *entity.Group) GroupResponse {
	return GroupResponse{ID: g.ID, Name: g.Name, UserCount: g.UserCount, CreatedAt: g.CreatedAt}
}

// ActivityFromEntity convierte un registro de actividad; los vacíos se exponen como null.
func ActivityFromEntity(l *entity.ActivityLog) ActivityResponse {
	out := ActivityResponse{
		ID:           l.ID,
		UserID:       l.UserID,
		Username:     l.Username,
		ActivityType: string(l.ActivityType),
		Details:      l.Details,
		Timestamp:    l.Timestamp,
	}
	if l.CompanyID != "" {
		id := l.CompanyID
		out.CompanyID = &id
	}
	if l.IPAddress != "" {
		ip := l.IPAddress
		out.IPAddress = &ip
	}
	return out
}

// CategoryFromEntity convierte una categoría.
func CategoryFromEntity(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		IsActive:     c.IsActive,
		ProductCount: c.ProductCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ProductFromEntity convierte un producto.
func ProductFromEntity(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		IsAvailable:  p.IsAvailable,
		Stock:        p.Stock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
