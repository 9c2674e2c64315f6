package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.GroupRepository = (*GroupRepo)(nil)

// GroupRepo implementación del puerto GroupRepository sobre PostgreSQL.
type GroupRepo struct {
	q Querier
}

// NewGroupRepository construye el adaptador de persistencia para grupos.
func NewGroupRepository(q Querier) *GroupRepo {
	return &GroupRepo{q: q}
}

const groupSelect = `
	SELECT g.id, g.name, g.created_at,
	       (SELECT COUNT(*) FROM user_groups ug WHERE ug.group_id = g.id) AS user_count
	FROM groups g`

// Create persiste un grupo nuevo. Nombre duplicado -> domain.ErrDuplicate.
func (r *GroupRepo) Create(ctx context.Context, group *entity.Group) error {
	_, err := r.q.Exec(ctx, `INSERT INTO groups (id, name, created_at) VALUES ($1, $2, $3)`,
		group.ID, group.Name, group.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

// GetByID obtiene un grupo por ID.
func (r *GroupRepo) GetByID(ctx context.Context, id string) (*entity.Group, error) {
	var g entity.Group
	err := r.q.QueryRow(ctx, groupSelect+` WHERE g.id = $1`, id).Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UserCount)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &g, nil
}

// GetByNames devuelve los grupos existentes cuyo nombre está en names.
func (r *GroupRepo) GetByNames(ctx context.Context, names []string) ([]*entity.Group, error) {
	if len(names) == 0 {
		return []*entity.Group{}, nil
	}
	return r.list(ctx, groupSelect+` WHERE g.name = ANY($1) ORDER BY g.name`, names)
}

// Update renombra un grupo.
func (r *GroupRepo) Update(ctx context.Context, group *entity.Group) error {
	cmd, err := r.q.Exec(ctx, `UPDATE groups SET name = $2 WHERE id = $1`, group.ID, group.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update group: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve todos los grupos ordenados por nombre, con su cantidad de usuarios.
func (r *GroupRepo) List(ctx context.Context) ([]*entity.Group, error) {
	return r.list(ctx, groupSelect+` ORDER BY g.name`)
}

func (r *GroupRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Group, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()
	list := []*entity.Group{}
	for rows.Next() {
		var g entity.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UserCount); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		list = append(list, &g)
	}
	return list, rows.Err()
}

// Delete elimina un grupo; las asignaciones a usuarios se eliminan en cascada.
func (r *GroupRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
