package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// UserFilter restringe listados de usuarios. CompanyIDs nil = todos los usuarios;
// slice vacío = ninguno.
type UserFilter struct {
	CompanyIDs []string
}

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get* devuelven (nil, nil) cuando no existe el registro.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter UserFilter) ([]*entity.User, error)
	SetGroups(ctx context.Context, userID string, groupIDs []string) error
	Delete(ctx context.Context, id string) error
}
