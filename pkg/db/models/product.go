package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the sellable catalog entry with its stock bookkeeping columns.
// StockQuantity and ReservedQuantity are mutated only through the stock
// ledger, never written directly by callers.
type Product struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID         uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null"`
	SKU              string          `gorm:"column:sku;not null"`
	Name             string          `gorm:"column:name;not null"`
	Price            decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null"`
	StockQuantity    int             `gorm:"column:stock_quantity;not null;default:0"`
	ReservedQuantity int             `gorm:"column:reserved_quantity;not null;default:0"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// AvailableQuantity is the stock still open for reservation.
func (p Product) AvailableQuantity() int {
	return p.StockQuantity - p.ReservedQuantity
}
