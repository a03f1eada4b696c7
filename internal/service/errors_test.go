package service

import (
	"errors"
	"testing"
)

func TestStockErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  *StockError
		want string
	}{
		{
			name: "insufficient stock names the shortfall",
			err: &StockError{
				ProductName: "Widget",
				Requested:   3,
				Available:   1,
				Reason:      ErrInsufficientStock,
			},
			want: `insufficient stock for "Widget": requested 3, available 1`,
		},
		{
			name: "lost stock race reads as transient",
			err: &StockError{
				ProductName: "Widget",
				Requested:   2,
				Reason:      ErrStockConflict,
			},
			want: `stock changed during checkout for "Widget", please try again`,
		},
		{
			name: "unavailable product",
			err: &StockError{
				ProductName: "Widget",
				Reason:      ErrProductNotAvailable,
			},
			want: `product "Widget" is no longer available`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("message = %s, want %s", got, tc.want)
			}
			if !errors.Is(tc.err, tc.err.Reason) {
				t.Fatal("StockError must unwrap to its reason")
			}
		})
	}
}
