package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tenant holds the per-tenant settings this core reads but never writes.
type Tenant struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string          `gorm:"column:name;not null"`
	OrderNumberPrefix string          `gorm:"column:order_number_prefix;not null;default:'SO'"`
	Timezone          string          `gorm:"column:timezone;not null;default:'UTC'"`
	Currency          string          `gorm:"column:currency;not null;default:'IDR'"`
	TaxPercent        decimal.Decimal `gorm:"column:tax_percent;type:numeric(5,2);not null;default:0"`
	IsActive          bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
