package orders

import "github.com/ixasales-prog/IxaSales-sub001/pkg/enums"

// transitions is the status adjacency table. Anything not listed is an
// illegal transition.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusApproved, enums.OrderStatusCancelled},
	enums.OrderStatusApproved:   {enums.OrderStatusDelivering},
	enums.OrderStatusDelivering: {enums.OrderStatusDelivered, enums.OrderStatusPartial},
	enums.OrderStatusDelivered:  {enums.OrderStatusReturned},
	enums.OrderStatusPartial:    {enums.OrderStatusReturned},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
