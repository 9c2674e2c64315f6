package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL (usable con pool o tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Las columnas se seleccionan con alias u. y los grupos se agregan en un array.
const userColumns = `u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.phone,
	u.is_staff, u.is_superuser, u.is_system_admin, u.is_active, u.last_login, u.created_at, u.updated_at,
	COALESCE((SELECT array_agg(g.name ORDER BY g.name) FROM user_groups ug JOIN groups g ON g.id = ug.group_id
	           WHERE ug.user_id = u.id), '{}') AS group_names`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	var phone *string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &phone,
		&u.IsStaff, &u.IsSuperuser, &u.IsSystemAdmin, &u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
		&u.Groups)
	if err != nil {
		return nil, err
	}
	u.Phone = derefString(phone)
	return &u, nil
}

// mapUserWriteError traduce violaciones de unicidad a errores de dominio por campo.
func mapUserWriteError(err error, op string) error {
	if isUniqueViolation(err) {
		if constraintName(err) == "users_email_key" {
			return domain.ErrEmailAlreadyExists
		}
		return domain.ErrUsernameAlreadyExists
	}
	return fmt.Errorf("%s user: %w", op, err)
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, phone,
		                   is_staff, is_superuser, is_system_admin, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		nullString(user.Phone), user.IsStaff, user.IsSuperuser, user.IsSystemAdmin, user.IsActive,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return mapUserWriteError(err, "insert")
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByUsername obtiene un usuario por nombre de usuario (exacto).
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.username = $1`, username))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// Update actualiza los campos editables del usuario. La contraseña se cambia con UpdatePassword.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET email = $2, first_name = $3, last_name = $4, phone = $5,
		       is_staff = $6, is_superuser = $7, is_system_admin = $8, is_active = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName, nullString(user.Phone),
		user.IsStaff, user.IsSuperuser, user.IsSystemAdmin, user.IsActive, user.UpdatedAt,
	)
	if err != nil {
		return mapUserWriteError(err, "update")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdatePassword reemplaza el hash de contraseña.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// TouchLastLogin registra la hora del último inicio de sesión.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if _, err := r.q.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// List lista usuarios (más recientes primero), opcionalmente restringidos a miembros de empresas.
func (r *UserRepo) List(ctx context.Context, filter repository.UserFilter) ([]*entity.User, error) {
	if filter.CompanyIDs != nil && len(filter.CompanyIDs) == 0 {
		return []*entity.User{}, nil
	}
	q := psql.Select(userColumns).From("users u").OrderBy("u.created_at DESC")
	if filter.CompanyIDs != nil {
		q = q.Where(sq.Expr(
			"EXISTS (SELECT 1 FROM company_users cu WHERE cu.user_id = u.id AND cu.company_id = ANY(?))",
			filter.CompanyIDs,
		))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	list := []*entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// SetGroups reemplaza los grupos del usuario.
func (r *UserRepo) SetGroups(ctx context.Context, userID string, groupIDs []string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM user_groups WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear user groups: %w", err)
	}
	if len(groupIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO user_groups (user_id, group_id) SELECT $1, unnest($2::uuid[]) ON CONFLICT DO NOTHING`,
		userID, groupIDs)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("set user groups: %w", err)
	}
	return nil
}

// Delete elimina un usuario por ID. Las membresías y registros se eliminan en cascada.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
