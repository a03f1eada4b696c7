package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// PaymentInfo payment record stored as a JSON column. Only the
// method and status are tracked; there is no gateway integration.
type PaymentInfo struct {
	Method        string     `json:"method"`                   // credit_card / debit_card / paypal / bank_transfer / cash_on_delivery
	Status        string     `json:"status"`                   // pending / processing / completed / failed / refunded
	TransactionID string     `json:"transaction_id,omitempty"` // external reference
	PaidAt        *time.Time `json:"paid_at,omitempty"`        // settlement time
}

// Value implements driver.Valuer
func (p PaymentInfo) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (p *PaymentInfo) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentInfo{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, p)
}

// StatusHistoryEntry one audit record of an order status change
type StatusHistoryEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// StatusHistory append-only status audit trail, stored as JSON
type StatusHistory []StatusHistoryEntry

// Value implements driver.Valuer
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		return json.Marshal(StatusHistory{})
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner
func (h *StatusHistory) Scan(value interface{}) error {
	if value == nil {
		*h = StatusHistory{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, h)
}

// Order immutable purchase record. Financial fields and line items
// are fixed at creation; only status, tracking and payment status
// move afterwards. Orders are never deleted.
type Order struct {
	ID                uint          `gorm:"primarykey" json:"id"`                                    // primary key
	OrderNumber       string        `gorm:"uniqueIndex;not null" json:"order_number"`                // human-facing identifier
	UserID            uint          `gorm:"index;not null" json:"user_id"`                           // purchasing customer
	Subtotal          Money         `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`   // sum of line totals
	Tax               Money         `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`        // tax amount
	ShippingCost      Money         `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_cost"` // flat shipping fee
	Discount          Money         `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`   // discount amount
	Total             Money         `gorm:"type:decimal(20,2);not null;default:0" json:"total"`      // subtotal + tax + shipping - discount
	Currency          string        `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"` // settlement currency
	Status            string        `gorm:"type:varchar(20);index;not null" json:"status"`           // lifecycle state
	ShippingAddress   Address       `gorm:"type:json" json:"shipping_address"`                       // delivery address
	BillingAddress    Address       `gorm:"type:json" json:"billing_address"`                        // billing address
	BillingSameAsShip bool          `gorm:"not null;default:true" json:"billing_same_as_shipping"`   // billing copies shipping
	Payment           PaymentInfo   `gorm:"type:json" json:"payment"`                                // payment record
	TrackingNumber    string        `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`      // carrier reference
	EstimatedDelivery *time.Time    `json:"estimated_delivery,omitempty"`                            // promised delivery date
	DeliveredAt       *time.Time    `gorm:"index" json:"delivered_at,omitempty"`                     // actual delivery time
	CancelledAt       *time.Time    `gorm:"index" json:"cancelled_at,omitempty"`                     // cancellation time
	StatusHistory     StatusHistory `gorm:"type:json" json:"status_history"`                         // audit trail
	CustomerNotes     string        `gorm:"type:varchar(1000)" json:"customer_notes,omitempty"`      // free-form note from the buyer
	CreatedAt         time.Time     `gorm:"index" json:"created_at"`                                 // created timestamp
	UpdatedAt         time.Time     `gorm:"index" json:"updated_at"`                                 // updated timestamp

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // line items
	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`   // buyer
}

// TableName sets the table name
func (Order) TableName() string {
	return "orders"
}
