// Package credit enforces customer-tier credit policy before an order is
// allowed to create debt.
package credit

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ixasales-prog/IxaSales-sub001/pkg/db/models"
	pkgerrors "github.com/ixasales-prog/IxaSales-sub001/pkg/errors"
)

// Validate checks the proposed total against the customer's tier. A customer
// without a tier is always approved. The first violated rule is surfaced;
// the rules are independently sufficient to reject.
func Validate(ctx context.Context, customer *models.Customer, proposedTotal decimal.Decimal) error {
	if customer == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer required")
	}
	if proposedTotal.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "proposed total must not be negative")
	}
	tier := customer.Tier
	if tier == nil {
		return nil
	}

	if !tier.CreditAllowed && customer.CreditBalance.LessThan(proposedTotal) {
		return pkgerrors.New(pkgerrors.CodeCreditNotAllowed,
			fmt.Sprintf("tier %s requires prepayment: credit balance %s is below order total %s",
				tier.Name, customer.CreditBalance.StringFixed(2), proposedTotal.StringFixed(2)))
	}

	if tier.CreditLimit != nil && customer.DebtBalance.Add(proposedTotal).GreaterThan(*tier.CreditLimit) {
		return pkgerrors.New(pkgerrors.CodeCreditLimitExceeded,
			fmt.Sprintf("order would raise outstanding debt to %s, above the tier limit %s",
				customer.DebtBalance.Add(proposedTotal).StringFixed(2), tier.CreditLimit.StringFixed(2)))
	}

	if tier.MaxOrderAmount != nil && proposedTotal.GreaterThan(*tier.MaxOrderAmount) {
		return pkgerrors.New(pkgerrors.CodeMaxOrderExceeded,
			fmt.Sprintf("order total %s exceeds the tier maximum %s",
				proposedTotal.StringFixed(2), tier.MaxOrderAmount.StringFixed(2)))
	}

	return nil
}
