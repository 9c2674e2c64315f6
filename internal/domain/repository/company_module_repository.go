package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// CompanyModuleRepository define el puerto de persistencia para los módulos por empresa.
type CompanyModuleRepository interface {
	// Create devuelve domain.ErrModuleAlreadyExists si (company, name) ya existe.
	Create(ctx context.Context, m *entity.CompanyModule) error
	GetByID(ctx context.Context, id string) (*entity.CompanyModule, error)
	Update(ctx context.Context, m *entity.CompanyModule) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyModule, error)
	// ListEnabled devuelve los módulos activos y no vencidos en day para las empresas dadas.
	ListEnabled(ctx context.Context, companyIDs []string, day time.Time) ([]*entity.CompanyModule, error)
	// IsEnabled informa si el módulo está activo y no vencido en day.
	IsEnabled(ctx context.Context, companyID, name string, day time.Time) (bool, error)
}
