package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// ActivityLogFilter filtros de consulta del historial.
// CompanyIDs nil = sin restricción por empresa; slice vacío = ninguna empresa.
type ActivityLogFilter struct {
	Since        time.Time
	CompanyIDs   []string
	ActivityType entity.ActivityType
	Username     string
	Limit        int
}

// ActivityLogRepository puerto del registro de auditoría. Solo inserta y consulta.
type ActivityLogRepository interface {
	Create(ctx context.Context, log *entity.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]*entity.ActivityLog, error)
}
