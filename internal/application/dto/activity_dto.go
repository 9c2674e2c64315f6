package dto

import "time"

// ActivityFilterRequest filtros del historial de actividad.
type ActivityFilterRequest struct {
	Days         int    `query:"days"` // por defecto 7
	ActivityType string `query:"activity_type"`
	Username     string `query:"username"`
	Limit        int    `query:"limit"`
}

// CreateActivityRequest inserción manual de un registro.
type CreateActivityRequest struct {
	Username     string `json:"username" validate:"required"`
	ActivityType string `json:"activity_type" validate:"required"`
	Details      string `json:"details"`
}

// ActivityResponse salida de un registro.
type ActivityResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	CompanyID    *string   `json:"company_id"`
	ActivityType string    `json:"activity_type"`
	Details      string    `json:"details"`
	IPAddress    *string   `json:"ip_address"`
	Timestamp    time.Time `json:"timestamp"`
}
