package models

import (
	"time"
)

// CartItem one product line in a user's cart.
// UnitPrice is the price snapshot taken when the line was added; it
// is refreshed on quantity updates and by cart validation.
// No soft delete: removed lines must free the (user_id, product_id)
// unique slot so the product can be re-added later.
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                         // primary key
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`    // cart owner
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"` // product
	Quantity  int       `gorm:"not null" json:"quantity"`                                     // units requested
	UnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`      // price snapshot
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                      // added timestamp
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                      // updated timestamp

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // product info
}

// TableName sets the table name
func (CartItem) TableName() string {
	return "cart_items"
}
