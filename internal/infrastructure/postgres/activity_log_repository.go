package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.ActivityLogRepository = (*ActivityLogRepo)(nil)

// ActivityLogRepo implementación del registro de auditoría sobre PostgreSQL. Solo INSERT y SELECT.
type ActivityLogRepo struct {
	q Querier
}

// NewActivityLogRepository construye el adaptador del registro de actividad.
func NewActivityLogRepository(q Querier) *ActivityLogRepo {
	return &ActivityLogRepo{q: q}
}

// Create inserta un registro. CompanyID e IPAddress vacíos se guardan como NULL.
func (r *ActivityLogRepo) Create(ctx context.Context, log *entity.ActivityLog) error {
	query := `
		INSERT INTO user_activity_logs (id, user_id, company_id, activity_type, details, ip_address, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6::inet, $7)`
	_, err := r.q.Exec(ctx, query,
		log.ID, log.UserID, nullString(log.CompanyID), string(log.ActivityType), log.Details,
		nullString(log.IPAddress), log.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

// List devuelve registros (más recientes primero) según el filtro.
func (r *ActivityLogRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]*entity.ActivityLog, error) {
	if filter.CompanyIDs != nil && len(filter.CompanyIDs) == 0 {
		return []*entity.ActivityLog{}, nil
	}
	q := psql.Select(
		"l.id", "l.user_id", "COALESCE(l.company_id::text, '')", "l.activity_type", "l.details",
		"COALESCE(host(l.ip_address), '')", "l.timestamp", "u.username",
	).From("user_activity_logs l").
		Join("users u ON u.id = l.user_id").
		OrderBy("l.timestamp DESC")

	if !filter.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"l.timestamp": filter.Since})
	}
	if filter.CompanyIDs != nil {
		q = q.Where(sq.Expr("l.company_id = ANY(?)", filter.CompanyIDs))
	}
	if filter.ActivityType != "" {
		q = q.Where(sq.Eq{"l.activity_type": string(filter.ActivityType)})
	}
	if filter.Username != "" {
		q = q.Where(sq.Eq{"u.username": filter.Username})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build activity query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	defer rows.Close()

	list := []*entity.ActivityLog{}
	for rows.Next() {
		var l entity.ActivityLog
		var activityType string
		if err := rows.Scan(&l.ID, &l.UserID, &l.CompanyID, &activityType, &l.Details,
			&l.IPAddress, &l.Timestamp, &l.Username); err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}
		l.ActivityType = entity.ActivityType(activityType)
		list = append(list, &l)
	}
	return list, rows.Err()
}
