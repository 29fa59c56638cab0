// Package discounts selects the single best-value promotional rule for a
// cart. Stacking is not supported; one discount per order.
package discounts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ixasales-prog/IxaSales-sub001/pkg/db/models"
	"github.com/ixasales-prog/IxaSales-sub001/pkg/enums"
	pkgerrors "github.com/ixasales-prog/IxaSales-sub001/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Result pairs the winning discount with its computed amount.
type Result struct {
	Discount models.Discount
	Amount   decimal.Decimal
}

// Engine evaluates active discounts against a cart.
type Engine interface {
	FindBestDiscount(ctx context.Context, tenantID, customerID uuid.UUID, cartTotal decimal.Decimal, totalQty int) (*Result, error)
}

type engine struct {
	repo Repository
	now  func() time.Time
}

// NewEngine builds the discount engine.
func NewEngine(repo Repository) (Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("discounts repository required")
	}
	return &engine{repo: repo, now: time.Now}, nil
}

// FindBestDiscount returns the candidate with the strictly greatest amount,
// or nil when nothing applies. Ties keep the first found in creation order.
func (e *engine) FindBestDiscount(ctx context.Context, tenantID, customerID uuid.UUID, cartTotal decimal.Decimal, totalQty int) (*Result, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if cartTotal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart total must not be negative")
	}

	candidates, err := e.repo.FindActive(ctx, tenantID, e.now())
	if err != nil {
		return nil, fmt.Errorf("loading discounts: %w", err)
	}

	var best *Result
	for i := range candidates {
		candidate := candidates[i]
		if len(candidate.CustomerIDs) > 0 && !candidate.CustomerIDs.Contains(customerID) {
			continue
		}
		if candidate.MinOrderAmount != nil && cartTotal.LessThan(*candidate.MinOrderAmount) {
			continue
		}

		amount := computeAmount(candidate, cartTotal, totalQty)
		// clamp to [0, cartTotal], currency precision
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		if amount.GreaterThan(cartTotal) {
			amount = cartTotal
		}
		amount = amount.Round(2)

		if best == nil || amount.GreaterThan(best.Amount) {
			if amount.IsPositive() {
				best = &Result{Discount: candidate, Amount: amount}
			}
		}
	}
	return best, nil
}

func computeAmount(discount models.Discount, cartTotal decimal.Decimal, totalQty int) decimal.Decimal {
	switch discount.Type {
	case enums.DiscountTypePercentage:
		amount := cartTotal.Mul(discount.Value).Div(oneHundred)
		if discount.MaxDiscountAmount != nil && amount.GreaterThan(*discount.MaxDiscountAmount) {
			amount = *discount.MaxDiscountAmount
		}
		return amount

	case enums.DiscountTypeFixed:
		return discount.Value

	case enums.DiscountTypeBuyXGetY:
		if totalQty <= 0 || discount.MinQty == nil || discount.FreeQty == nil {
			return decimal.Zero
		}
		setSize := *discount.MinQty + *discount.FreeQty
		if setSize <= 0 {
			return decimal.Zero
		}
		sets := totalQty / setSize
		if sets == 0 {
			return decimal.Zero
		}
		avgUnitPrice := cartTotal.Div(decimal.NewFromInt(int64(totalQty)))
		return avgUnitPrice.Mul(decimal.NewFromInt(int64(sets * *discount.FreeQty)))

	case enums.DiscountTypeVolume:
		// tiers arrive ascending by min_qty; the last qualifying one wins
		var percent *decimal.Decimal
		for i := range discount.Tiers {
			if discount.Tiers[i].MinQty <= totalQty {
				percent = &discount.Tiers[i].DiscountPercent
			}
		}
		if percent == nil {
			return decimal.Zero
		}
		return cartTotal.Mul(*percent).Div(oneHundred)

	default:
		return decimal.Zero
	}
}
