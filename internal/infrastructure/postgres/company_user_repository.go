package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.CompanyUserRepository = (*CompanyUserRepo)(nil)

// CompanyUserRepo implementación del puerto CompanyUserRepository (membresías) sobre PostgreSQL.
type CompanyUserRepo struct {
	q Querier
}

// NewCompanyUserRepository construye el adaptador de membresías. Pasar pool o tx.
func NewCompanyUserRepository(q Querier) *CompanyUserRepo {
	return &CompanyUserRepo{q: q}
}

const membershipColumns = `cu.id, cu.user_id, cu.company_id, cu.role, cu.is_company_admin, cu.is_active,
	cu.created_at, cu.updated_at`

func scanMembership(row pgx.Row, extra ...any) (*entity.CompanyUser, error) {
	var m entity.CompanyUser
	dest := []any{&m.ID, &m.UserID, &m.CompanyID, &m.Role, &m.IsCompanyAdmin, &m.IsActive, &m.CreatedAt, &m.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste una membresía. El par (user, company) es único.
func (r *CompanyUserRepo) Create(ctx context.Context, cu *entity.CompanyUser) error {
	query := `
		INSERT INTO company_users (id, user_id, company_id, role, is_company_admin, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		cu.ID, cu.UserID, cu.CompanyID, cu.Role, cu.IsCompanyAdmin, cu.IsActive, cu.CreatedAt, cu.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrMembershipAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert company user: %w", err)
	}
	return nil
}

// GetByID obtiene una membresía por ID (activa o no).
func (r *CompanyUserRepo) GetByID(ctx context.Context, id string) (*entity.CompanyUser, error) {
	m, err := scanMembership(r.q.QueryRow(ctx, `SELECT `+membershipColumns+` FROM company_users cu WHERE cu.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company user: %w", err)
	}
	return m, nil
}

// FindActive devuelve la membresía activa del usuario sobre una empresa activa.
func (r *CompanyUserRepo) FindActive(ctx context.Context, userID, companyID string) (*entity.CompanyUser, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM company_users cu
		JOIN companies c ON c.id = cu.company_id
		WHERE cu.user_id = $1 AND cu.company_id = $2 AND cu.is_active AND c.is_active`
	m, err := scanMembership(r.q.QueryRow(ctx, query, userID, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active membership: %w", err)
	}
	return m, nil
}

// Update actualiza rol y banderas de la membresía.
func (r *CompanyUserRepo) Update(ctx context.Context, cu *entity.CompanyUser) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE company_users SET role = $2, is_company_admin = $3, is_active = $4, updated_at = $5
		WHERE id = $1`, cu.ID, cu.Role, cu.IsCompanyAdmin, cu.IsActive, cu.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update company user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUser devuelve las membresías activas del usuario en empresas activas, con la empresa cargada.
func (r *CompanyUserRepo) ListByUser(ctx context.Context, userID string) ([]*entity.CompanyUser, error) {
	query := `
		SELECT ` + membershipColumns + `, ` + companyColumns + `
		FROM company_users cu
		JOIN companies c ON c.id = cu.company_id
		WHERE cu.user_id = $1 AND cu.is_active AND c.is_active
		ORDER BY c.name`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships by user: %w", err)
	}
	defer rows.Close()

	list := []*entity.CompanyUser{}
	for rows.Next() {
		var c entity.Company
		var website, description *string
		m, err := scanMembership(rows, &c.ID, &c.Name, &c.BusinessName, &c.TaxID, &c.Email, &c.Phone,
			&c.Address, &website, &description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		c.Website = derefString(website)
		c.Description = derefString(description)
		m.Company = &c
		list = append(list, m)
	}
	return list, rows.Err()
}

// ListByCompany devuelve las membresías activas de la empresa con el usuario cargado.
func (r *CompanyUserRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyUser, error) {
	query := `
		SELECT ` + membershipColumns + `,
		       u.id, u.username, u.email, u.first_name, u.last_name, u.is_active
		FROM company_users cu
		JOIN users u ON u.id = cu.user_id
		WHERE cu.company_id = $1 AND cu.is_active
		ORDER BY u.username`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list memberships by company: %w", err)
	}
	defer rows.Close()

	list := []*entity.CompanyUser{}
	for rows.Next() {
		var u entity.User
		m, err := scanMembership(rows, &u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.IsActive)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		m.User = &u
		list = append(list, m)
	}
	return list, rows.Err()
}

// AdminCompanyIDs ids de empresas activas donde el usuario es administrador con membresía activa.
func (r *CompanyUserRepo) AdminCompanyIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT cu.company_id
		FROM company_users cu
		JOIN companies c ON c.id = cu.company_id
		WHERE cu.user_id = $1 AND cu.is_active AND cu.is_company_admin AND c.is_active`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("admin companies: %w", err)
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan company id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
