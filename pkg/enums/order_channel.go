package enums

// OrderChannel identifies which sales surface submitted a cart.
type OrderChannel string

const (
	// OrderChannelRep is the internal sales-rep UI: the caller supplies its
	// own pricing snapshot and any line rejection is fatal.
	OrderChannelRep OrderChannel = "rep"
	// OrderChannelPortal is the customer self-service portal: pricing and
	// discounts are computed server-side and partial carts are accepted.
	OrderChannelPortal OrderChannel = "portal"
)

// IsValid reports whether the value is a known OrderChannel.
func (c OrderChannel) IsValid() bool {
	return c == OrderChannelRep || c == OrderChannelPortal
}
