package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ixasales-prog/IxaSales-sub001/pkg/enums"
)

// StockMovement records an immutable physical stock change. The ledger is a
// log of how stock_quantity got to its value, not the source of truth for it.
type StockMovement struct {
	ID             uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID                `gorm:"column:tenant_id;type:uuid;not null"`
	ProductID      uuid.UUID                `gorm:"column:product_id;type:uuid;not null"`
	Type           enums.StockMovementType  `gorm:"column:type;type:stock_movement_type;not null"`
	Quantity       int                      `gorm:"column:quantity;not null"`
	QuantityBefore int                      `gorm:"column:quantity_before;not null"`
	QuantityAfter  int                      `gorm:"column:quantity_after;not null"`
	ReferenceType  enums.StockReferenceType `gorm:"column:reference_type;type:text;not null"`
	ReferenceID    *uuid.UUID               `gorm:"column:reference_id;type:uuid"`
	Notes          *string                  `gorm:"column:notes"`
	CreatedBy      uuid.UUID                `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
}
