// Package orders composes the stock ledger, discount engine, credit policy
// and order-number generator into the order lifecycle: one atomic creation
// transaction, cancellation as its inverse, and audited status transitions.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ixasales-prog/IxaSales-sub001/internal/credit"
	"github.com/ixasales-prog/IxaSales-sub001/internal/discounts"
	"github.com/ixasales-prog/IxaSales-sub001/internal/ordernumber"
	"github.com/ixasales-prog/IxaSales-sub001/internal/stock"
	"github.com/ixasales-prog/IxaSales-sub001/internal/tenants"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/db/models"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/enums"
	pkgerrors "github.com/ixasales-prog/IxaSales-sub001/pkg/errors"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/logger"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/metrics"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/validate"
)

var oneHundred = decimal.NewFromInt(100)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type numberGenerator func(ctx context.Context, tx *gorm.DB, tenant *models.Tenant) (string, error)

// Service executes the order lifecycle.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	CancelOrder(ctx context.Context, tenantID, orderID, actorID uuid.UUID, reason string) (*models.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.Order, error)
}

// Config tunes per-line validation.
type Config struct {
	MaxLineQty   int
	PriceEpsilon decimal.Decimal
}

type service struct {
	tx        txRunner
	repo      Repository
	tenantSvc tenants.Service
	discounts discounts.Engine
	numbers   numberGenerator
	notifier  Notifier
	logg      *logger.Logger
	metrics   *metrics.OrderMetrics
	cfg       Config
}

// NewService builds the order orchestrator.
func NewService(
	tx txRunner,
	repo Repository,
	tenantSvc tenants.Service,
	discountEngine discounts.Engine,
	notifier Notifier,
	logg *logger.Logger,
	orderMetrics *metrics.OrderMetrics,
	cfg Config,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tenantSvc == nil {
		return nil, fmt.Errorf("tenants service required")
	}
	if discountEngine == nil {
		return nil, fmt.Errorf("discount engine required")
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &service{
		tx:        tx,
		repo:      repo,
		tenantSvc: tenantSvc,
		discounts: discountEngine,
		numbers:   ordernumber.Generate,
		notifier:  notifier,
		logg:      logg,
		metrics:   orderMetrics,
		cfg:       cfg,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	start := time.Now()
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	tenant, err := s.tenantSvc.GetByID(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}

	var result *CreateOrderResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		customer, err := repo.FindCustomer(ctx, input.TenantID, input.CustomerID)
		if err != nil {
			return err
		}

		lines := make([]stock.LineItem, len(input.Items))
		for i, item := range input.Items {
			lines[i] = stock.LineItem{
				ProductID:     item.ProductID,
				Qty:           item.Qty,
				ExpectedPrice: item.ExpectedPrice,
			}
		}

		valid, rejections, err := stock.ValidateAndLock(ctx, tx, input.TenantID, lines, stock.ValidateOptions{
			MaxLineQty:   s.cfg.MaxLineQty,
			PriceEpsilon: s.cfg.PriceEpsilon,
		})
		if err != nil {
			return err
		}
		if len(valid) == 0 {
			return pkgerrors.New(pkgerrors.CodeNoValidItems, "no cart line passed validation").
				WithDetails(rejections)
		}
		if input.Channel == enums.OrderChannelRep && len(rejections) > 0 {
			// the rep UI prices its own cart: a single dropped line means
			// the cart the rep confirmed no longer exists
			return pkgerrors.New(rejections[0].Code, rejections[0].Reason).WithDetails(rejections)
		}

		// discounts judge the cart that survived validation, not the request
		subtotal := decimal.Zero
		totalQty := 0
		for _, item := range valid {
			subtotal = subtotal.Add(item.LineTotal)
			totalQty += item.Qty
		}
		if input.Channel == enums.OrderChannelRep && input.Subtotal != nil {
			subtotal = *input.Subtotal
		}

		discountAmount := decimal.Zero
		var discountID *uuid.UUID
		notes := input.Notes
		if input.Channel == enums.OrderChannelPortal {
			best, err := s.discounts.FindBestDiscount(ctx, input.TenantID, input.CustomerID, subtotal, totalQty)
			if err != nil {
				return err
			}
			if best != nil {
				discountAmount = best.Amount
				id := best.Discount.ID
				discountID = &id
				notes = appendNote(notes, fmt.Sprintf("Discount applied: %s (-%s)", best.Discount.Name, best.Amount.StringFixed(2)))
			}
		}

		taxPercent := tenant.TaxPercent
		if input.TaxPercent != nil {
			taxPercent = *input.TaxPercent
		}
		taxAmount := subtotal.Sub(discountAmount).Mul(taxPercent).Div(oneHundred).Round(2)
		totalAmount := subtotal.Sub(discountAmount).Add(taxAmount)

		if !input.SkipCreditCheck {
			if err := credit.Validate(ctx, customer, totalAmount); err != nil {
				return err
			}
		}

		orderNumber, err := s.numbers(ctx, tx, tenant)
		if err != nil {
			return err
		}

		order := &models.Order{
			ID:             uuid.New(),
			TenantID:       input.TenantID,
			CustomerID:     input.CustomerID,
			SalesRepID:     input.SalesRepID,
			OrderNumber:    orderNumber,
			Channel:        input.Channel,
			Status:         enums.OrderStatusPending,
			PaymentStatus:  enums.PaymentStatusUnpaid,
			SubtotalAmount: subtotal,
			DiscountAmount: discountAmount,
			TaxAmount:      taxAmount,
			TotalAmount:    totalAmount,
			PaidAmount:     decimal.Zero,
			DiscountID:     discountID,
			Notes:          notes,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		items := make([]models.OrderItem, len(valid))
		reservations := make([]stock.ReservationItem, len(valid))
		for i, item := range valid {
			items[i] = models.OrderItem{
				OrderID:     order.ID,
				ProductID:   item.Product.ID,
				ProductName: item.Product.Name,
				UnitPrice:   item.UnitPrice,
				QtyOrdered:  item.Qty,
				LineTotal:   item.LineTotal,
			}
			reservations[i] = stock.ReservationItem{ProductID: item.Product.ID, Qty: item.Qty}
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return fmt.Errorf("creating order items: %w", err)
		}
		order.Items = items

		if err := repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  enums.OrderStatusPending,
			ChangedBy: input.ActorID,
		}); err != nil {
			return fmt.Errorf("recording initial status: %w", err)
		}

		if err := stock.Reserve(ctx, tx, reservations); err != nil {
			return err
		}

		if err := repo.IncreaseDebt(ctx, customer.ID, totalAmount); err != nil {
			return fmt.Errorf("increasing customer debt: %w", err)
		}

		result = &CreateOrderResult{Order: order, Warnings: rejections}
		return nil
	})
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}

	s.metrics.IncCreated(string(input.Channel))
	s.metrics.ObserveCreateDuration(string(input.Channel), time.Since(start))
	s.notifyCreated(ctx, result.Order)
	return result, nil
}

func (s *service) CancelOrder(ctx context.Context, tenantID, orderID, actorID uuid.UUID, reason string) (*models.Order, error) {
	if tenantID == uuid.Nil || orderID == uuid.Nil || actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant, order and actor ids required")
	}

	var canceled *models.Order
	var fromStatus enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusConfirmed {
			return pkgerrors.New(pkgerrors.CodeInvalidStatus,
				fmt.Sprintf("order in status %s cannot be cancelled", order.Status))
		}
		fromStatus = order.Status

		releases := make([]stock.ReservationItem, len(order.Items))
		for i, item := range order.Items {
			releases[i] = stock.ReservationItem{ProductID: item.ProductID, Qty: item.QtyOrdered}
		}
		if err := stock.Release(ctx, tx, releases); err != nil {
			return err
		}

		// only the unpaid part still sits in debt; money already taken
		// comes back as store credit
		outstanding := order.TotalAmount.Sub(order.PaidAmount)
		if outstanding.IsPositive() {
			if err := repo.DecreaseDebtFloored(ctx, order.CustomerID, outstanding); err != nil {
				return fmt.Errorf("decreasing customer debt: %w", err)
			}
		}
		if order.PaidAmount.IsPositive() {
			if err := repo.IncreaseCredit(ctx, order.CustomerID, order.PaidAmount); err != nil {
				return fmt.Errorf("crediting refunded payment: %w", err)
			}
		}

		now := time.Now()
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": now,
		}); err != nil {
			return fmt.Errorf("updating order status: %w", err)
		}

		from := order.Status
		var notes *string
		if reason != "" {
			notes = &reason
		}
		if err := repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: &from,
			ToStatus:   enums.OrderStatusCancelled,
			ChangedBy:  actorID,
			Notes:      notes,
		}); err != nil {
			return fmt.Errorf("recording status change: %w", err)
		}

		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &now
		canceled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCanceled(string(canceled.Channel))
	s.notifyStatusChanged(ctx, canceled, fromStatus, enums.OrderStatusCancelled)
	return canceled, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.ToStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	if input.ToStatus == enums.OrderStatusCancelled {
		// cancellation releases stock and debt; route through CancelOrder
		reason := ""
		if input.Notes != nil {
			reason = *input.Notes
		}
		return s.CancelOrder(ctx, input.TenantID, input.OrderID, input.ActorID, reason)
	}
	if input.ToStatus == enums.OrderStatusReturned {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidStatus, "returned is set when a return is processed")
	}

	var updated *models.Order
	var fromStatus enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if !CanTransition(order.Status, input.ToStatus) {
			return pkgerrors.New(pkgerrors.CodeInvalidStatus,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, input.ToStatus))
		}
		fromStatus = order.Status

		updates := map[string]any{"status": input.ToStatus}
		now := time.Now()
		switch input.ToStatus {
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
			for _, item := range order.Items {
				if err := deliverItem(ctx, tx, repo, order, item, item.QtyOrdered, input.ActorID); err != nil {
					return err
				}
			}
		case enums.OrderStatusPartial:
			delivered, err := deliveredQuantities(order.Items, input.Deliveries)
			if err != nil {
				return err
			}
			updates["delivered_at"] = now
			for _, item := range order.Items {
				if err := deliverItem(ctx, tx, repo, order, item, delivered[item.ID], input.ActorID); err != nil {
					return err
				}
			}
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return fmt.Errorf("updating order status: %w", err)
		}

		from := order.Status
		if err := repo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: &from,
			ToStatus:   input.ToStatus,
			ChangedBy:  input.ActorID,
			Notes:      input.Notes,
		}); err != nil {
			return fmt.Errorf("recording status change: %w", err)
		}

		order.Status = input.ToStatus
		if input.ToStatus == enums.OrderStatusDelivered || input.ToStatus == enums.OrderStatusPartial {
			order.DeliveredAt = &now
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatusChanged(ctx, updated, fromStatus, input.ToStatus)
	return updated, nil
}

func (s *service) RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.Order, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeInvalidStatus, "cancelled orders do not take payments")
		}

		outstanding := order.TotalAmount.Sub(order.PaidAmount)
		if input.Amount.GreaterThan(outstanding) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("payment %s exceeds outstanding balance %s", input.Amount.StringFixed(2), outstanding.StringFixed(2)))
		}

		newPaid := order.PaidAmount.Add(input.Amount)
		paymentStatus := enums.PaymentStatusPartial
		if newPaid.GreaterThanOrEqual(order.TotalAmount) {
			paymentStatus = enums.PaymentStatusPaid
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"paid_amount":    newPaid,
			"payment_status": paymentStatus,
		}); err != nil {
			return fmt.Errorf("recording payment: %w", err)
		}

		if err := repo.DecreaseDebtFloored(ctx, order.CustomerID, input.Amount); err != nil {
			return fmt.Errorf("decreasing customer debt: %w", err)
		}

		order.PaidAmount = newPaid
		order.PaymentStatus = paymentStatus
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// deliverItem settles one line on delivery: the whole reservation is
// released, the delivered part leaves physical stock with a sale_out
// movement, and the item records what arrived.
func deliverItem(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, item models.OrderItem, qty int, actorID uuid.UUID) error {
	if err := stock.Release(ctx, tx, []stock.ReservationItem{{ProductID: item.ProductID, Qty: item.QtyOrdered}}); err != nil {
		return err
	}
	if qty > 0 {
		refID := order.ID
		if _, err := stock.CommitMovement(ctx, tx, stock.MovementInput{
			TenantID:      order.TenantID,
			ProductID:     item.ProductID,
			Type:          enums.StockMovementSaleOut,
			Quantity:      qty,
			ReferenceType: enums.StockReferenceOrder,
			ReferenceID:   &refID,
			CreatedBy:     actorID,
		}); err != nil {
			return err
		}
	}
	if err := repo.UpdateOrderItem(ctx, item.ID, map[string]any{
		"qty_picked":    qty,
		"qty_delivered": qty,
	}); err != nil {
		return fmt.Errorf("marking item delivered: %w", err)
	}
	return nil
}

func deliveredQuantities(items []models.OrderItem, lines []DeliveryLine) (map[uuid.UUID]int, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partial delivery requires per-line delivered quantities")
	}
	byID := make(map[uuid.UUID]models.OrderItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	out := make(map[uuid.UUID]int, len(lines))
	anyDelivered := false
	for _, line := range lines {
		item, ok := byID[line.OrderItemID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery line does not belong to this order")
		}
		if line.Qty < 0 || line.Qty > item.QtyOrdered {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("delivered qty %d out of range for %s", line.Qty, item.ProductName))
		}
		out[line.OrderItemID] = line.Qty
		if line.Qty > 0 {
			anyDelivered = true
		}
	}
	if !anyDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partial delivery needs at least one delivered unit")
	}
	return out, nil
}

func (s *service) recordRejection(err error) {
	if typed := pkgerrors.As(err); typed != nil {
		s.metrics.IncRejected(string(typed.Code()))
		return
	}
	s.metrics.IncRejected(string(pkgerrors.CodeInternal))
}

func (s *service) notifyCreated(ctx context.Context, order *models.Order) {
	if err := s.notifier.OrderCreated(ctx, order); err != nil && s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Warn(ctx, "order created notification failed")
	}
}

func (s *service) notifyStatusChanged(ctx context.Context, order *models.Order, from, to enums.OrderStatus) {
	if err := s.notifier.OrderStatusChanged(ctx, order, from, to); err != nil && s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Warn(ctx, "status change notification failed")
	}
}

func appendNote(existing *string, note string) *string {
	if existing == nil || *existing == "" {
		return &note
	}
	combined := *existing + "\n" + note
	return &combined
}
