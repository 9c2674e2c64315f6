package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

var productColumns = []string{
	"p.id", "p.company_id", "p.category_id", "cat.name", "p.name", "COALESCE(p.description, '')",
	"p.price", "p.is_available", "p.stock", "p.created_at", "p.updated_at",
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.CompanyID, &p.CategoryID, &p.CategoryName, &p.Name, &p.Description,
		&p.Price, &p.IsAvailable, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// mapProductWriteError la categoría debe existir: una FK violada es un error de validación.
func mapProductWriteError(err error, op string) error {
	if isForeignKeyViolation(err) {
		return domain.NewValidationError("category", "la categoría no existe")
	}
	return fmt.Errorf("%s product: %w", op, err)
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, company_id, category_id, name, description, price, is_available, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.CompanyID, product.CategoryID, product.Name, nullString(product.Description),
		product.Price, product.IsAvailable, product.Stock, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return mapProductWriteError(err, "insert")
	}
	return nil
}

// GetByID obtiene un producto de la empresa por ID.
func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products p").Join("categories cat ON cat.id = p.category_id").
		Where(sq.Eq{"p.company_id": companyID, "p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get product: %w", err)
	}
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update actualiza un producto existente de la empresa.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET category_id = $3, name = $4, description = $5, price = $6,
		       is_available = $7, stock = $8, updated_at = $9
		WHERE company_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		product.CompanyID, product.ID, product.CategoryID, product.Name, nullString(product.Description),
		product.Price, product.IsAvailable, product.Stock, product.UpdatedAt,
	)
	if err != nil {
		return mapProductWriteError(err, "update")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista productos de la empresa con filtros y paginación. Devuelve también el total sin paginar.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	where := sq.And{sq.Eq{"p.company_id": companyID}}
	if filter.CategoryID != "" {
		where = append(where, sq.Eq{"p.category_id": filter.CategoryID})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, sq.Or{sq.ILike{"p.name": pattern}, sq.ILike{"p.description": pattern}})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("products p").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count products: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	q := psql.Select(productColumns...).
		From("products p").Join("categories cat ON cat.id = p.category_id").
		Where(where).OrderBy("p.created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list products: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// Delete elimina un producto de la empresa.
func (r *ProductRepo) Delete(ctx context.Context, companyID, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
