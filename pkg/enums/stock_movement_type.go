package enums

import "fmt"

// StockMovementType classifies entries in the stock movement ledger.
type StockMovementType string

const (
	StockMovementPurchaseIn StockMovementType = "purchase_in"
	StockMovementSaleOut    StockMovementType = "sale_out"
	StockMovementReturnIn   StockMovementType = "return_in"
	StockMovementAdjustment StockMovementType = "adjustment"
)

var validStockMovementTypes = []StockMovementType{
	StockMovementPurchaseIn,
	StockMovementSaleOut,
	StockMovementReturnIn,
	StockMovementAdjustment,
}

// IsValid reports whether the value matches the canonical movement enum.
func (t StockMovementType) IsValid() bool {
	for _, candidate := range validStockMovementTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseStockMovementType converts raw input into StockMovementType.
func ParseStockMovementType(value string) (StockMovementType, error) {
	for _, candidate := range validStockMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement type %q", value)
}
