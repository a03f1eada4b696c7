package service

import (
	"testing"

	"github.com/averoza/marketplace/internal/constants"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from string
		to   string
		want bool
	}{
		{constants.OrderStatusPending, constants.OrderStatusConfirmed, true},
		{constants.OrderStatusConfirmed, constants.OrderStatusProcessing, true},
		{constants.OrderStatusProcessing, constants.OrderStatusShipped, true},
		{constants.OrderStatusShipped, constants.OrderStatusDelivered, true},
		{constants.OrderStatusDelivered, constants.OrderStatusReturned, true},
		{constants.OrderStatusPending, constants.OrderStatusShipped, false},
		{constants.OrderStatusConfirmed, constants.OrderStatusPending, false},
		{constants.OrderStatusShipped, constants.OrderStatusProcessing, false},
		{constants.OrderStatusPending, constants.OrderStatusCancelled, false},
		{constants.OrderStatusCancelled, constants.OrderStatusPending, false},
		{constants.OrderStatusReturned, constants.OrderStatusDelivered, false},
		{"PENDING ", "confirmed", true},
		{"nonsense", constants.OrderStatusConfirmed, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanCancel(t *testing.T) {
	if !CanCancel(constants.OrderStatusPending) {
		t.Error("pending orders should be cancellable")
	}
	if !CanCancel(constants.OrderStatusConfirmed) {
		t.Error("confirmed orders should be cancellable")
	}
	for _, status := range []string{
		constants.OrderStatusProcessing,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
		constants.OrderStatusCancelled,
		constants.OrderStatusReturned,
	} {
		if CanCancel(status) {
			t.Errorf("%s orders should not be cancellable", status)
		}
	}
}

func TestValidOrderStatus(t *testing.T) {
	if !ValidOrderStatus(" Shipped ") {
		t.Error("expected trimmed, case-insensitive match")
	}
	if ValidOrderStatus("archived") {
		t.Error("unknown status should be rejected")
	}
}

