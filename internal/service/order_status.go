package service

import (
	"strings"

	"github.com/averoza/marketplace/internal/constants"
)

// allowedTransitions forward-only order lifecycle. Cancellation is not
// listed here: it runs through CancelOrder with its own guard, so a
// plain status update can never cancel an order.
var allowedTransitions = map[string][]string{
	constants.OrderStatusPending:    {constants.OrderStatusConfirmed},
	constants.OrderStatusConfirmed:  {constants.OrderStatusProcessing},
	constants.OrderStatusProcessing: {constants.OrderStatusShipped},
	constants.OrderStatusShipped:    {constants.OrderStatusDelivered},
	constants.OrderStatusDelivered:  {constants.OrderStatusReturned},
	constants.OrderStatusCancelled:  {},
	constants.OrderStatusReturned:   {},
}

// cancellableStatuses statuses a customer may still back out of
var cancellableStatuses = map[string]bool{
	constants.OrderStatusPending:   true,
	constants.OrderStatusConfirmed: true,
}

// CanTransition reports whether from -> to is a legal status move
func CanTransition(from, to string) bool {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanCancel reports whether the order may still be cancelled
func CanCancel(status string) bool {
	return cancellableStatuses[strings.ToLower(strings.TrimSpace(status))]
}

// ValidOrderStatus reports whether the value is a known status
func ValidOrderStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case constants.OrderStatusPending,
		constants.OrderStatusConfirmed,
		constants.OrderStatusProcessing,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
		constants.OrderStatusCancelled,
		constants.OrderStatusReturned:
		return true
	}
	return false
}
