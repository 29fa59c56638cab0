package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderCounter is the per-tenant, per-local-day sequence row incremented
// inside the order-creating transaction. Day is the tenant-local calendar
// date (YYYY-MM-DD).
type OrderCounter struct {
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;primaryKey"`
	Day       string    `gorm:"column:day;primaryKey"`
	Counter   int       `gorm:"column:counter;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
