package returns

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ixasales-prog/IxaSales-sub001/pkg/db/models"
	pkgerrors "github.com/ixasales-prog/IxaSales-sub001/pkg/errors"
)

// Repository defines persistence for return requests and the order and
// customer rows their processing mutates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateReturn(ctx context.Context, ret *models.OrderReturn) error
	CreateReturnItems(ctx context.Context, items []models.OrderReturnItem) error
	FindReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*models.OrderReturn, error)
	UpdateReturn(ctx context.Context, returnID uuid.UUID, updates map[string]any) error
	FindOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	IncrementItemReturned(ctx context.Context, itemID uuid.UUID, qty int) error
	DecreaseOrderTotalFloored(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) error
	IncreaseCredit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed returns repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateReturn(ctx context.Context, ret *models.OrderReturn) error {
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Items").Create(ret).Error
}

func (r *repository) CreateReturnItems(ctx context.Context, items []models.OrderReturnItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*models.OrderReturn, error) {
	var ret models.OrderReturn
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, returnID).
		First(&ret).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "return not found")
		}
		return nil, fmt.Errorf("finding return: %w", err)
	}
	return &ret, nil
}

func (r *repository) UpdateReturn(ctx context.Context, returnID uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.OrderReturn{}).
		Where("id = ?", returnID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("updating return: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "return not found")
	}
	return nil
}

func (r *repository) FindOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, orderID).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, fmt.Errorf("finding order: %w", err)
	}
	return &order, nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("updating order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func (r *repository) AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) IncrementItemReturned(ctx context.Context, itemID uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		UpdateColumn("qty_returned", gorm.Expr("qty_returned + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("incrementing returned qty: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}
	return nil
}

func (r *repository) DecreaseOrderTotalFloored(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("total_amount", gorm.Expr(
			"CASE WHEN total_amount >= ? THEN total_amount - ? ELSE 0 END", amount, amount))
	if res.Error != nil {
		return fmt.Errorf("reducing order total: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func (r *repository) IncreaseCredit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		UpdateColumn("credit_balance", gorm.Expr("credit_balance + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("increasing customer credit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return nil
}
