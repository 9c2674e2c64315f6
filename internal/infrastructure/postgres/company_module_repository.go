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

var _ repository.CompanyModuleRepository = (*CompanyModuleRepo)(nil)

// CompanyModuleRepo implementación del puerto CompanyModuleRepository sobre PostgreSQL.
type CompanyModuleRepo struct {
	q Querier
}

// NewCompanyModuleRepository construye el adaptador de módulos por empresa.
func NewCompanyModuleRepository(q Querier) *CompanyModuleRepo {
	return &CompanyModuleRepo{q: q}
}

const moduleColumns = `id, company_id, name, is_active, config, expiration_date, created_at, updated_at`

// Un módulo está habilitado si está activo y su fecha de vencimiento (si existe) no es anterior a day.
const moduleEnabledCond = `is_active AND (expiration_date IS NULL OR expiration_date >= ?::date)`

func scanModule(row pgx.Row) (*entity.CompanyModule, error) {
	var m entity.CompanyModule
	var cfg []byte
	err := row.Scan(&m.ID, &m.CompanyID, &m.Name, &m.IsActive, &cfg, &m.ExpirationDate, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Config = cfg
	return &m, nil
}

func moduleConfig(m *entity.CompanyModule) []byte {
	if len(m.Config) == 0 {
		return []byte("{}")
	}
	return m.Config
}

// dayParam formatea el día como fecha ISO para comparar contra columnas DATE.
func dayParam(day time.Time) string {
	return entity.DateOf(day).Format("2006-01-02")
}

// Create persiste un módulo. El par (company, name) es único.
func (r *CompanyModuleRepo) Create(ctx context.Context, m *entity.CompanyModule) error {
	query := `
		INSERT INTO company_modules (id, company_id, name, is_active, config, expiration_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.Name, m.IsActive, moduleConfig(m), m.ExpirationDate, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrModuleAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert company module: %w", err)
	}
	return nil
}

// GetByID obtiene un módulo por ID.
func (r *CompanyModuleRepo) GetByID(ctx context.Context, id string) (*entity.CompanyModule, error) {
	m, err := scanModule(r.q.QueryRow(ctx, `SELECT `+moduleColumns+` FROM company_modules WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company module: %w", err)
	}
	return m, nil
}

// Update actualiza estado, configuración y vencimiento del módulo.
func (r *CompanyModuleRepo) Update(ctx context.Context, m *entity.CompanyModule) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE company_modules SET is_active = $2, config = $3, expiration_date = $4, updated_at = $5
		WHERE id = $1`, m.ID, m.IsActive, moduleConfig(m), m.ExpirationDate, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update company module: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany devuelve todos los módulos de la empresa (activos o no), por nombre.
func (r *CompanyModuleRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.CompanyModule, error) {
	return r.list(ctx, psql.Select(moduleColumns).From("company_modules").
		Where(sq.Eq{"company_id": companyID}).OrderBy("name"))
}

// ListEnabled devuelve los módulos habilitados en day para las empresas indicadas.
func (r *CompanyModuleRepo) ListEnabled(ctx context.Context, companyIDs []string, day time.Time) ([]*entity.CompanyModule, error) {
	if len(companyIDs) == 0 {
		return []*entity.CompanyModule{}, nil
	}
	return r.list(ctx, psql.Select(moduleColumns).From("company_modules").
		Where(sq.Expr("company_id = ANY(?)", companyIDs)).
		Where(sq.Expr(moduleEnabledCond, dayParam(day))).
		OrderBy("company_id", "name"))
}

func (r *CompanyModuleRepo) list(ctx context.Context, b sq.SelectBuilder) ([]*entity.CompanyModule, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build modules query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list company modules: %w", err)
	}
	defer rows.Close()
	list := []*entity.CompanyModule{}
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company module: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// IsEnabled informa si la empresa tiene el módulo activo y sin vencer en day.
// Consulta directamente company_modules para una respuesta O(1) vía índice único.
func (r *CompanyModuleRepo) IsEnabled(ctx context.Context, companyID, name string, day time.Time) (bool, error) {
	sub := psql.Select("1").From("company_modules").
		Where(sq.Eq{"company_id": companyID, "name": name}).
		Where(sq.Expr(moduleEnabledCond, dayParam(day)))
	subSQL, args, err := sub.ToSql()
	if err != nil {
		return false, fmt.Errorf("build module check: %w", err)
	}
	var enabled bool
	if err := r.q.QueryRow(ctx, "SELECT EXISTS ("+subSQL+")", args...).Scan(&enabled); err != nil {
		return false, fmt.Errorf("check module %s: %w", name, err)
	}
	return enabled, nil
}
