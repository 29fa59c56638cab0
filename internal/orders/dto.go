package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ixasales-prog/IxaSales-sub001/internal/stock"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/db/models"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/enums"
)

// OrderLine is one requested cart line.
type OrderLine struct {
	ProductID     uuid.UUID        `json:"product_id" validate:"required"`
	Qty           int              `json:"qty" validate:"required,gt=0"`
	ExpectedPrice *decimal.Decimal `json:"expected_price,omitempty"`
}

// CreateOrderInput carries everything the orchestrator needs to create one
// order. Tenant/actor identity comes from the caller's auth layer and is
// trusted as given.
type CreateOrderInput struct {
	TenantID   uuid.UUID          `json:"tenant_id" validate:"required"`
	CustomerID uuid.UUID          `json:"customer_id" validate:"required"`
	SalesRepID *uuid.UUID         `json:"sales_rep_id,omitempty"`
	ActorID    uuid.UUID          `json:"actor_id" validate:"required"`
	Channel    enums.OrderChannel `json:"channel" validate:"required,oneof=rep portal"`
	Items      []OrderLine        `json:"items" validate:"required,min=1,dive"`

	// Subtotal is the caller's own pricing snapshot, trusted in rep mode.
	Subtotal *decimal.Decimal `json:"subtotal,omitempty"`

	// TaxPercent overrides the tenant default when set.
	TaxPercent *decimal.Decimal `json:"tax_percent,omitempty"`

	Notes           *string `json:"notes,omitempty"`
	SkipCreditCheck bool    `json:"skip_credit_check,omitempty"`
}

// CreateOrderResult is the created order plus non-fatal per-line warnings
// (portal mode proceeds when enough lines validated).
type CreateOrderResult struct {
	Order    *models.Order         `json:"order"`
	Warnings []stock.ItemRejection `json:"warnings,omitempty"`
}

// DeliveryLine reports how much of one order line actually arrived.
type DeliveryLine struct {
	OrderItemID uuid.UUID `json:"order_item_id" validate:"required"`
	Qty         int       `json:"qty" validate:"min=0"`
}

// UpdateStatusInput drives one lifecycle transition. Deliveries is required
// for the partial transition and ignored elsewhere.
type UpdateStatusInput struct {
	TenantID   uuid.UUID         `json:"tenant_id" validate:"required"`
	OrderID    uuid.UUID         `json:"order_id" validate:"required"`
	ToStatus   enums.OrderStatus `json:"to_status" validate:"required"`
	ActorID    uuid.UUID         `json:"actor_id" validate:"required"`
	Notes      *string           `json:"notes,omitempty"`
	Deliveries []DeliveryLine    `json:"deliveries,omitempty" validate:"dive"`
}

// RecordPaymentInput applies a payment against an order's balance.
type RecordPaymentInput struct {
	TenantID uuid.UUID       `json:"tenant_id" validate:"required"`
	OrderID  uuid.UUID       `json:"order_id" validate:"required"`
	ActorID  uuid.UUID       `json:"actor_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
}
