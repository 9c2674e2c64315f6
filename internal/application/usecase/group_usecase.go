package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/application/audit"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// GroupUseCase grupos de permisos globales.
type GroupUseCase struct {
	repo  repository.GroupRepository
	audit audit.Recorder
}

func NewGroupUseCase(repo repository.GroupRepository, recorder audit.Recorder) *GroupUseCase {
	return &GroupUseCase{repo: repo, audit: recorder}
}

// List grupos con cantidad de usuarios; visible para cualquier usuario autenticado.
func (uc *GroupUseCase) List(ctx context.Context) ([]dto.GroupResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GroupResponse, 0, len(list))
	for _, g := range list {
		out = append(out, dto.GroupFromEntity(g))
	}
	return out, nil
}

func groupName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || len(name) > 150 {
		return "", domain.NewValidationError("name", "es obligatorio, máximo 150 caracteres")
	}
	return name, nil
}

func mapGroupConflict(err error) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.NewValidationError("name", "ya existe un grupo con ese nombre")
	}
	return err
}

func (uc *GroupUseCase) Create(ctx context.Context, c Caller, in dto.GroupRequest) (*dto.GroupResponse, error) {
	if err := authz.RequirePrivileged(c.User).Err(); err != nil {
		return nil, err
	}
	name, err := groupName(in.Name)
	if err != nil {
		return nil, err
	}
	g := &entity.Group{ID: uuid.New().String(), Name: name, CreatedAt: time.Now()}
	if err := uc.repo.Create(ctx, g); err != nil {
		return nil, mapGroupConflict(err)
	}
	uc.audit.Record(ctx, c.entry(entity.ActivityGroupCreated, "grupo creado: "+g.Name))
	out := dto.GroupFromEntity(g)
	return &out, nil
}

func (uc *GroupUseCase) load(ctx context.Context, id string) (*entity.Group, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	g, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

// Update renombra un grupo.
func (uc *GroupUseCase) Update(ctx context.Context, c Caller, id string, in dto.GroupRequest) (*dto.GroupResponse, error) {
	if err := authz.RequirePrivileged(c.User).Err(); err != nil {
		return nil, err
	}
	g, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := groupName(in.Name)
	if err != nil {
		return nil, err
	}
	old := g.Name
	g.Name = name
	if err := uc.repo.Update(ctx, g); err != nil {
		return nil, mapGroupConflict(err)
	}
	uc.audit.Record(ctx, c.entry(entity.ActivityGroupUpdated, "grupo actualizado: "+old+" -> "+g.Name))
	out := dto.GroupFromEntity(g)
	return &out, nil
}

func (uc *GroupUseCase) Delete(ctx context.Context, c Caller, id string) error {
	if err := authz.RequirePrivileged(c.User).Err(); err != nil {
		return err
	}
	g, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, g.ID); err != nil {
		return err
	}
	uc.audit.Record(ctx, c.entry(entity.ActivityGroupDeleted, "grupo eliminado: "+g.Name))
	return nil
}
