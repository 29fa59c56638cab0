package enums

// StockReferenceType names the aggregate a stock movement traces back to.
type StockReferenceType string

const (
	StockReferenceOrder         StockReferenceType = "order"
	StockReferenceOrderReturn   StockReferenceType = "order_return"
	StockReferencePurchaseOrder StockReferenceType = "purchase_order"
	StockReferenceManual        StockReferenceType = "manual"
)
