package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de una empresa.
type Product struct {
	ID           string
	CompanyID    string
	CategoryID   string
	CategoryName string // solo en lecturas
	Name         string
	Description  string
	Price        decimal.Decimal // NUMERIC(10,2), >= 0
	IsAvailable  bool
	Stock        int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
