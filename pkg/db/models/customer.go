package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer carries the two mutable balances every order touches: outstanding
// debt and prepaid credit. Both stay non-negative; release and refund paths
// floor at zero.
type Customer struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID      uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null"`
	Name          string          `gorm:"column:name;not null"`
	Phone         *string         `gorm:"column:phone"`
	TierID        *uuid.UUID      `gorm:"column:tier_id;type:uuid"`
	Tier          *CustomerTier   `gorm:"foreignKey:TierID"`
	DebtBalance   decimal.Decimal `gorm:"column:debt_balance;type:numeric(14,2);not null;default:0"`
	CreditBalance decimal.Decimal `gorm:"column:credit_balance;type:numeric(14,2);not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// CustomerTier bundles the credit policy constraints applied at order time.
type CustomerTier struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null"`
	Name           string           `gorm:"column:name;not null"`
	CreditAllowed  bool             `gorm:"column:credit_allowed;not null;default:false"`
	CreditLimit    *decimal.Decimal `gorm:"column:credit_limit;type:numeric(14,2)"`
	MaxOrderAmount *decimal.Decimal `gorm:"column:max_order_amount;type:numeric(14,2)"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
