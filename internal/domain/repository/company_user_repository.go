package repository

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// CompanyUserRepository define el puerto de persistencia para las membresías.
type CompanyUserRepository interface {
	// Create devuelve domain.ErrMembershipAlreadyExists si el par (user, company) ya existe.
	Create(ctx context.Context, cu *entity.CompanyUser) error
	GetByID(ctx context.Context, id string) (*entity.CompanyUser, error)
	// FindActive devuelve la membresía activa sobre una empresa activa, o nil.
	FindActive(ctx context.Context, userID, companyID string) (*entity.CompanyUser, error)
	Update(ctx context.Context, cu *entity.CompanyUser) error
	// ListByUser devuelve membresías activas en empresas activas con Company cargada.
	ListByUser(ctx context.Context, userID string) ([]*entity.CompanyUser, error)
	// ListByCompany devuelve membresías activas de la empresa con User cargado.
	ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyUser, error)
	// AdminCompanyIDs ids de empresas activas donde userID es administrador activo.
	AdminCompanyIDs(ctx context.Context, userID string) ([]string, error)
}
