package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ixasales-prog/IxaSales-sub001/pkg/db/models"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/enums"
)

// Repository defines persistence operations for orders and the customer
// balances the order flows mutate. Balance updates use relative arithmetic
// so they compose with the in-flight row lock window.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	FindOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	UpdateOrderItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
	FindCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error)
	IncreaseDebt(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) error
	DecreaseDebtFloored(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) error
	IncreaseCredit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) error
}

// Notifier is the fire-and-forget notification collaborator. Failures are
// logged by the caller and never fail the parent operation.
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.Order) error
	OrderStatusChanged(ctx context.Context, order *models.Order, from, to enums.OrderStatus) error
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) OrderCreated(context.Context, *models.Order) error { return nil }

func (NopNotifier) OrderStatusChanged(context.Context, *models.Order, enums.OrderStatus, enums.OrderStatus) error {
	return nil
}

// PlanLimitChecker is the quota capability callers consult before invoking
// order creation. The orchestrator itself never checks quotas.
type PlanLimitChecker interface {
	Allow(ctx context.Context, tenantID uuid.UUID, limit int64) error
}
