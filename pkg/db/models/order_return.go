package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ixasales-prog/IxaSales-sub001/pkg/enums"
)

// OrderReturn is a return request raised against a delivered order.
type OrderReturn struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID     uuid.UUID              `gorm:"column:tenant_id;type:uuid;not null"`
	OrderID      uuid.UUID              `gorm:"column:order_id;type:uuid;not null"`
	CustomerID   uuid.UUID              `gorm:"column:customer_id;type:uuid;not null"`
	Status       enums.ReturnStatus     `gorm:"column:status;type:return_status;not null;default:'pending'"`
	Condition    *enums.ReturnCondition `gorm:"column:condition;type:text"`
	Restocked    bool                   `gorm:"column:restocked;not null;default:false"`
	RefundAmount decimal.Decimal        `gorm:"column:refund_amount;type:numeric(14,2);not null;default:0"`
	Reason       *string                `gorm:"column:reason"`
	ProcessedBy  *uuid.UUID             `gorm:"column:processed_by;type:uuid"`
	ProcessedAt  *time.Time             `gorm:"column:processed_at"`
	Items        []OrderReturnItem      `gorm:"foreignKey:ReturnID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderReturnItem ties a returned quantity back to the original order line.
type OrderReturnItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReturnID    uuid.UUID `gorm:"column:return_id;type:uuid;not null"`
	OrderItemID uuid.UUID `gorm:"column:order_item_id;type:uuid;not null"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Qty         int       `gorm:"column:qty;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
