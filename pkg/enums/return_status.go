package enums

import "fmt"

// ReturnStatus tracks an order return request.
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"
	ReturnStatusProcessed ReturnStatus = "processed"
	ReturnStatusRejected  ReturnStatus = "rejected"
)

var validReturnStatuses = []ReturnStatus{
	ReturnStatusPending,
	ReturnStatusProcessed,
	ReturnStatusRejected,
}

// IsValid reports whether the value is a known ReturnStatus.
func (s ReturnStatus) IsValid() bool {
	for _, candidate := range validReturnStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReturnStatus converts raw input into a ReturnStatus.
func ParseReturnStatus(value string) (ReturnStatus, error) {
	for _, candidate := range validReturnStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return status %q", value)
}

// ReturnCondition describes the physical state of returned goods.
type ReturnCondition string

const (
	ReturnConditionGood    ReturnCondition = "good"
	ReturnConditionDamaged ReturnCondition = "damaged"
	ReturnConditionExpired ReturnCondition = "expired"
)

// IsValid reports whether the value is a known ReturnCondition.
func (c ReturnCondition) IsValid() bool {
	switch c {
	case ReturnConditionGood, ReturnConditionDamaged, ReturnConditionExpired:
		return true
	default:
		return false
	}
}
