package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ixasales-prog/IxaSales-sub001/pkg/enums"
)

// Order is created once by the orchestrator; status and payment fields are
// mutated by lifecycle transitions afterwards. Rows are never deleted,
// cancellation is a status.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null"`
	CustomerID     uuid.UUID            `gorm:"column:customer_id;type:uuid;not null"`
	SalesRepID     *uuid.UUID           `gorm:"column:sales_rep_id;type:uuid"`
	OrderNumber    string               `gorm:"column:order_number;not null"`
	Channel        enums.OrderChannel   `gorm:"column:channel;type:text;not null;default:'rep'"`
	Status         enums.OrderStatus    `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentStatus  enums.PaymentStatus  `gorm:"column:payment_status;type:payment_status;not null;default:'unpaid'"`
	SubtotalAmount decimal.Decimal      `gorm:"column:subtotal_amount;type:numeric(14,2);not null"`
	DiscountAmount decimal.Decimal      `gorm:"column:discount_amount;type:numeric(14,2);not null;default:0"`
	TaxAmount      decimal.Decimal      `gorm:"column:tax_amount;type:numeric(14,2);not null;default:0"`
	TotalAmount    decimal.Decimal      `gorm:"column:total_amount;type:numeric(14,2);not null"`
	PaidAmount     decimal.Decimal      `gorm:"column:paid_amount;type:numeric(14,2);not null;default:0"`
	DiscountID     *uuid.UUID           `gorm:"column:discount_id;type:uuid"`
	Notes          *string              `gorm:"column:notes"`
	DeliveredAt    *time.Time           `gorm:"column:delivered_at"`
	CancelledAt    *time.Time           `gorm:"column:cancelled_at"`
	Items          []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory  []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots the product price at order time; later price changes
// never reprice an existing order.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName  string          `gorm:"column:product_name;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	QtyOrdered   int             `gorm:"column:qty_ordered;not null"`
	QtyPicked    int             `gorm:"column:qty_picked;not null;default:0"`
	QtyDelivered int             `gorm:"column:qty_delivered;not null;default:0"`
	QtyReturned  int             `gorm:"column:qty_returned;not null;default:0"`
	LineTotal    decimal.Decimal `gorm:"column:line_total;type:numeric(14,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderStatusHistory is the append-only transition log. FromStatus is nil on
// the initial pending row.
type OrderStatusHistory struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID          `gorm:"column:order_id;type:uuid;not null"`
	FromStatus *enums.OrderStatus `gorm:"column:from_status;type:order_status"`
	ToStatus   enums.OrderStatus  `gorm:"column:to_status;type:order_status;not null"`
	ChangedBy  uuid.UUID          `gorm:"column:changed_by;type:uuid;not null"`
	Notes      *string            `gorm:"column:notes"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}
