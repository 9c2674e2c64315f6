package repository

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// GroupRepository define el puerto de persistencia para Group (DIP).
type GroupRepository interface {
	Create(ctx context.Context, group *entity.Group) error
	GetByID(ctx context.Context, id string) (*entity.Group, error)
	GetByNames(ctx context.Context, names []string) ([]*entity.Group, error)
	Update(ctx context.Context, group *entity.Group) error
	List(ctx context.Context) ([]*entity.Group, error)
	Delete(ctx context.Context, id string) error
}
