package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/ixasales-prog/IxaSales-sub001/pkg/db/types"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/enums"
)

// Discount is a tenant-scoped promotional rule. Read-only from the order
// subsystem's perspective.
type Discount struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID          uuid.UUID          `gorm:"column:tenant_id;type:uuid;not null"`
	Name              string             `gorm:"column:name;not null"`
	Type              enums.DiscountType `gorm:"column:type;type:discount_type;not null"`
	Value             decimal.Decimal    `gorm:"column:value;type:numeric(14,2);not null;default:0"`
	MinOrderAmount    *decimal.Decimal   `gorm:"column:min_order_amount;type:numeric(14,2)"`
	MaxDiscountAmount *decimal.Decimal   `gorm:"column:max_discount_amount;type:numeric(14,2)"`
	MinQty            *int               `gorm:"column:min_qty"`
	FreeQty           *int               `gorm:"column:free_qty"`
	StartsAt          *time.Time         `gorm:"column:starts_at"`
	EndsAt            *time.Time         `gorm:"column:ends_at"`
	IsActive          bool               `gorm:"column:is_active;not null;default:true"`
	CustomerIDs       dbtypes.UUIDArray  `gorm:"column:customer_ids;type:uuid[]"`
	Tiers             []DiscountTier     `gorm:"foreignKey:DiscountID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// DiscountTier captures one volume tier, ascending by min_qty.
type DiscountTier struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DiscountID      uuid.UUID       `gorm:"column:discount_id;type:uuid;not null"`
	MinQty          int             `gorm:"column:min_qty;not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
