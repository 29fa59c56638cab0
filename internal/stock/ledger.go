// Package stock owns every mutation of product stock bookkeeping. Callers
// validate under a row lock first, then mutate with relative arithmetic in
// the same transaction.
package stock

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ixasales-prog/IxaSales-sub001/pkg/db/models"
	pkgerrors "github.com/ixasales-prog/IxaSales-sub001/pkg/errors"
)

// DefaultMaxLineQty caps a single order line.
const DefaultMaxLineQty = 1000

// LineItem is one requested cart line. ExpectedPrice, when set, enables
// stale-cart protection against the current product price.
type LineItem struct {
	ProductID     uuid.UUID
	Qty           int
	ExpectedPrice *decimal.Decimal
}

// ValidItem is a line that survived validation, with the price snapshot
// taken under lock.
type ValidItem struct {
	Product   models.Product
	Qty       int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// ItemRejection explains why one line was dropped.
type ItemRejection struct {
	ProductID uuid.UUID       `json:"product_id"`
	Code      pkgerrors.Code  `json:"code"`
	Reason    string          `json:"reason"`
}

// ValidateOptions tune the per-line checks.
type ValidateOptions struct {
	MaxLineQty   int
	PriceEpsilon decimal.Decimal
}

// ReservationItem is the (product, quantity) pair used by Reserve/Release.
type ReservationItem struct {
	ProductID uuid.UUID
	Qty       int
}

// ValidateAndLock locks the requested product rows and checks every line.
// It never fails the batch as a whole: valid lines and rejections are both
// returned and the caller decides whether partial validity is acceptable.
// Lock order is sorted by product id so two orders touching the same
// products cannot deadlock.
func ValidateAndLock(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, items []LineItem, opts ValidateOptions) ([]ValidItem, []ItemRejection, error) {
	if tx == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if tenantID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if len(items) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	maxQty := opts.MaxLineQty
	if maxQty <= 0 {
		maxQty = DefaultMaxLineQty
	}

	ids := make([]uuid.UUID, 0, len(items))
	seen := map[uuid.UUID]bool{}
	for _, item := range items {
		if item.ProductID == uuid.Nil || seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var products []models.Product
	query := tx.WithContext(ctx)
	if supportsRowLocks(tx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, nil, fmt.Errorf("locking products: %w", err)
	}

	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	// Remaining availability per product, so two lines against the same
	// product validate against what the earlier line already claimed.
	remaining := map[uuid.UUID]int{}
	for id, product := range byID {
		remaining[id] = product.AvailableQuantity()
	}

	var valid []ValidItem
	var rejections []ItemRejection

	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			rejections = append(rejections, ItemRejection{
				ProductID: item.ProductID,
				Code:      pkgerrors.CodeNotFound,
				Reason:    "product not found",
			})
			continue
		}
		if !product.IsActive {
			rejections = append(rejections, ItemRejection{
				ProductID: item.ProductID,
				Code:      pkgerrors.CodeValidation,
				Reason:    fmt.Sprintf("product %s is not active", product.Name),
			})
			continue
		}
		if item.Qty <= 0 || item.Qty > maxQty {
			rejections = append(rejections, ItemRejection{
				ProductID: item.ProductID,
				Code:      pkgerrors.CodeValidation,
				Reason:    fmt.Sprintf("quantity must be between 1 and %d", maxQty),
			})
			continue
		}
		if remaining[item.ProductID] < item.Qty {
			rejections = append(rejections, ItemRejection{
				ProductID: item.ProductID,
				Code:      pkgerrors.CodeInsufficientStock,
				Reason:    fmt.Sprintf("insufficient stock for %s: requested %d, available %d", product.Name, item.Qty, remaining[item.ProductID]),
			})
			continue
		}
		if item.ExpectedPrice != nil {
			diff := product.Price.Sub(*item.ExpectedPrice).Abs()
			if diff.GreaterThan(opts.PriceEpsilon) {
				rejections = append(rejections, ItemRejection{
					ProductID: item.ProductID,
					Code:      pkgerrors.CodePriceChanged,
					Reason:    fmt.Sprintf("price of %s changed from %s to %s", product.Name, item.ExpectedPrice.StringFixed(2), product.Price.StringFixed(2)),
				})
				continue
			}
		}

		remaining[item.ProductID] -= item.Qty
		qty := decimal.NewFromInt(int64(item.Qty))
		valid = append(valid, ValidItem{
			Product:   *product,
			Qty:       item.Qty,
			UnitPrice: product.Price,
			LineTotal: product.Price.Mul(qty),
		})
	}

	return valid, rejections, nil
}

// Reserve increments reserved_quantity for each item. Sufficiency must
// already have been verified under lock in the same transaction; this is
// the mutation half of the validate/mutate split.
func Reserve(ctx context.Context, tx *gorm.DB, items []ReservationItem) error {
	for _, item := range items {
		if item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "reserve quantity must be positive")
		}
		res := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity + ?", item.Qty))
		if res.Error != nil {
			return fmt.Errorf("reserving product %s: %w", item.ProductID, res.Error)
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
	}
	return nil
}

// Release decrements reserved_quantity for each item, floored at zero.
func Release(ctx context.Context, tx *gorm.DB, items []ReservationItem) error {
	for _, item := range items {
		if item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "release quantity must be positive")
		}
		res := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumn("reserved_quantity", gorm.Expr("CASE WHEN reserved_quantity >= ? THEN reserved_quantity - ? ELSE 0 END", item.Qty, item.Qty))
		if res.Error != nil {
			return fmt.Errorf("releasing product %s: %w", item.ProductID, res.Error)
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
	}
	return nil
}

// sqlite (tests) has no FOR UPDATE; its writer lock serializes instead.
func supportsRowLocks(tx *gorm.DB) bool {
	return tx.Dialector.Name() != "sqlite"
}
