// Package returns reconciles goods coming back after delivery: a return
// request is recorded against delivered lines, then processed once with its
// stock, credit and order-total consequences applied atomically.
package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ixasales-prog/IxaSales-sub001/internal/stock"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/db/models"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/enums"
	pkgerrors "github.com/ixasales-prog/IxaSales-sub001/pkg/errors"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/logger"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/metrics"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/validate"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ReturnLine is one order line coming back.
type ReturnLine struct {
	OrderItemID uuid.UUID `json:"order_item_id" validate:"required"`
	Qty         int       `json:"qty" validate:"required,gt=0"`
}

// CreateReturnInput opens a return request against a delivered order.
type CreateReturnInput struct {
	TenantID uuid.UUID    `json:"tenant_id" validate:"required"`
	OrderID  uuid.UUID    `json:"order_id" validate:"required"`
	ActorID  uuid.UUID    `json:"actor_id" validate:"required"`
	Reason   *string      `json:"reason,omitempty"`
	Items    []ReturnLine `json:"items" validate:"required,min=1,dive"`
}

// ProcessReturnInput settles a pending return. Restock and refund are
// independent: damaged goods can be refunded without restocking, and good
// stock can come back without money moving.
type ProcessReturnInput struct {
	TenantID     uuid.UUID             `json:"tenant_id" validate:"required"`
	ReturnID     uuid.UUID             `json:"return_id" validate:"required"`
	ActorID      uuid.UUID             `json:"actor_id" validate:"required"`
	Condition    enums.ReturnCondition `json:"condition" validate:"required"`
	Restock      bool                  `json:"restock"`
	RefundAmount decimal.Decimal       `json:"refund_amount"`
}

// Service handles the return lifecycle.
type Service interface {
	CreateReturn(ctx context.Context, input CreateReturnInput) (*models.OrderReturn, error)
	ProcessReturn(ctx context.Context, input ProcessReturnInput) (*models.OrderReturn, error)
	RejectReturn(ctx context.Context, tenantID, returnID, actorID uuid.UUID, reason string) (*models.OrderReturn, error)
}

type service struct {
	tx      txRunner
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
}

// NewService builds the returns reconciler.
func NewService(tx txRunner, repo Repository, logg *logger.Logger, orderMetrics *metrics.OrderMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("returns repository required")
	}
	return &service{tx: tx, repo: repo, logg: logg, metrics: orderMetrics}, nil
}

func (s *service) CreateReturn(ctx context.Context, input CreateReturnInput) (*models.OrderReturn, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var created *models.OrderReturn
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusDelivered && order.Status != enums.OrderStatusPartial {
			return pkgerrors.New(pkgerrors.CodeInvalidStatus,
				fmt.Sprintf("order in status %s takes no returns", order.Status))
		}

		byID := make(map[uuid.UUID]models.OrderItem, len(order.Items))
		for _, item := range order.Items {
			byID[item.ID] = item
		}

		items := make([]models.OrderReturnItem, len(input.Items))
		for i, line := range input.Items {
			item, ok := byID[line.OrderItemID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "return line does not belong to this order")
			}
			returnable := item.QtyDelivered - item.QtyReturned
			if line.Qty > returnable {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("only %d of %s can still be returned", returnable, item.ProductName))
			}
			items[i] = models.OrderReturnItem{
				OrderItemID: item.ID,
				ProductID:   item.ProductID,
				Qty:         line.Qty,
			}
		}

		ret := &models.OrderReturn{
			ID:         uuid.New(),
			TenantID:   input.TenantID,
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Status:     enums.ReturnStatusPending,
			Reason:     input.Reason,
		}
		if err := repo.CreateReturn(ctx, ret); err != nil {
			return fmt.Errorf("creating return: %w", err)
		}
		for i := range items {
			items[i].ReturnID = ret.ID
		}
		if err := repo.CreateReturnItems(ctx, items); err != nil {
			return fmt.Errorf("creating return items: %w", err)
		}
		ret.Items = items
		created = ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) ProcessReturn(ctx context.Context, input ProcessReturnInput) (*models.OrderReturn, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown return condition")
	}
	if input.RefundAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount cannot be negative")
	}

	var processed *models.OrderReturn
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ret, err := repo.FindReturn(ctx, input.TenantID, input.ReturnID)
		if err != nil {
			return err
		}
		if ret.Status != enums.ReturnStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidStatus,
				fmt.Sprintf("return already %s", ret.Status))
		}

		order, err := repo.FindOrder(ctx, input.TenantID, ret.OrderID)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]models.OrderItem, len(order.Items))
		for _, item := range order.Items {
			byID[item.ID] = item
		}

		for _, line := range ret.Items {
			item, ok := byID[line.OrderItemID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, "return line no longer matches the order")
			}
			// another return may have consumed the quantity since this
			// request was opened
			if line.Qty > item.QtyDelivered-item.QtyReturned {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("quantity of %s already returned", item.ProductName))
			}
			if err := repo.IncrementItemReturned(ctx, line.OrderItemID, line.Qty); err != nil {
				return err
			}
			if input.Restock {
				refID := ret.ID
				if _, err := stock.CommitMovement(ctx, tx, stock.MovementInput{
					TenantID:      input.TenantID,
					ProductID:     line.ProductID,
					Type:          enums.StockMovementReturnIn,
					Quantity:      line.Qty,
					ReferenceType: enums.StockReferenceOrderReturn,
					ReferenceID:   &refID,
					CreatedBy:     input.ActorID,
				}); err != nil {
					return err
				}
			}
		}

		if input.RefundAmount.IsPositive() {
			if err := repo.DecreaseOrderTotalFloored(ctx, order.ID, input.RefundAmount); err != nil {
				return err
			}
			if err := repo.IncreaseCredit(ctx, ret.CustomerID, input.RefundAmount); err != nil {
				return err
			}
		}

		now := time.Now()
		if err := repo.UpdateReturn(ctx, ret.ID, map[string]any{
			"status":        enums.ReturnStatusProcessed,
			"condition":     input.Condition,
			"restocked":     input.Restock,
			"refund_amount": input.RefundAmount,
			"processed_by":  input.ActorID,
			"processed_at":  now,
		}); err != nil {
			return err
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"status": enums.OrderStatusReturned,
		}); err != nil {
			return err
		}
		from := order.Status
		if err := repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: &from,
			ToStatus:   enums.OrderStatusReturned,
			ChangedBy:  input.ActorID,
			Notes:      ret.Reason,
		}); err != nil {
			return fmt.Errorf("recording status change: %w", err)
		}

		condition := input.Condition
		ret.Status = enums.ReturnStatusProcessed
		ret.Condition = &condition
		ret.Restocked = input.Restock
		ret.RefundAmount = input.RefundAmount
		ret.ProcessedBy = &input.ActorID
		ret.ProcessedAt = &now
		processed = ret
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncReturnProcessed(input.Restock)
	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, processed.OrderID.String())
		s.logg.Info(ctx, "return processed")
	}
	return processed, nil
}

func (s *service) RejectReturn(ctx context.Context, tenantID, returnID, actorID uuid.UUID, reason string) (*models.OrderReturn, error) {
	if tenantID == uuid.Nil || returnID == uuid.Nil || actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant, return and actor ids required")
	}

	var rejected *models.OrderReturn
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ret, err := repo.FindReturn(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if ret.Status != enums.ReturnStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidStatus,
				fmt.Sprintf("return already %s", ret.Status))
		}

		now := time.Now()
		updates := map[string]any{
			"status":       enums.ReturnStatusRejected,
			"processed_by": actorID,
			"processed_at": now,
		}
		if reason != "" {
			updates["reason"] = reason
			ret.Reason = &reason
		}
		if err := repo.UpdateReturn(ctx, ret.ID, updates); err != nil {
			return err
		}

		ret.Status = enums.ReturnStatusRejected
		ret.ProcessedBy = &actorID
		ret.ProcessedAt = &now
		rejected = ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}
