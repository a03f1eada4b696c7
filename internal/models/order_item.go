package models

import (
	"time"
)

// OrderItem one purchased line. Product name, image and price are
// snapshots taken at checkout so the ledger survives later catalog
// edits and deletions.
type OrderItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                     // primary key
	OrderID      uint      `gorm:"index;not null" json:"order_id"`                           // owning order
	ProductID    uint      `gorm:"index;not null" json:"product_id"`                         // purchased product
	VendorID     uint      `gorm:"index;not null" json:"vendor_id"`                          // selling vendor
	StoreID      uint      `gorm:"index;not null" json:"store_id"`                           // selling store
	ProductName  string    `gorm:"type:varchar(200);not null" json:"product_name"`           // name snapshot
	ProductImage string    `gorm:"type:varchar(500)" json:"product_image,omitempty"`         // primary image snapshot
	Quantity     int       `gorm:"not null" json:"quantity"`                                 // units purchased
	UnitPrice    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // price snapshot
	TotalPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // unit price x quantity
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                  // created timestamp
	UpdatedAt    time.Time `json:"updated_at"`                                               // updated timestamp
}

// TableName sets the table name
func (OrderItem) TableName() string {
	return "order_items"
}
