package models

import (
	"time"

	"gorm.io/gorm"
)

// Product catalog listing owned by a vendor's store.
// StockQuantity is authoritative only when TrackInventory is set;
// untracked products never run out. Status must be out_of_stock
// whenever inventory is tracked and quantity is zero.
type Product struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                      // primary key
	Name              string         `gorm:"type:varchar(200);not null;index" json:"name"`              // display name
	Slug              string         `gorm:"uniqueIndex;not null" json:"slug"`                          // URL identifier
	Description       string         `gorm:"type:text" json:"description"`                              // long description
	Price             Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`        // unit price
	ComparePrice      *Money         `gorm:"type:decimal(20,2)" json:"compare_price,omitempty"`         // strike-through price
	CategoryID        uint           `gorm:"not null;index" json:"category_id"`                         // category
	VendorID          uint           `gorm:"not null;index" json:"vendor_id"`                           // owning vendor
	StoreID           uint           `gorm:"not null;index" json:"store_id"`                            // owning store
	StockQuantity     int            `gorm:"not null;default:0" json:"stock_quantity"`                  // on-hand units
	LowStockThreshold int            `gorm:"not null;default:5" json:"low_stock_threshold"`             // low-stock alert level
	TrackInventory    bool           `gorm:"not null;default:true" json:"track_inventory"`              // whether stock is enforced
	Status            string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"` // active / inactive / hidden / out_of_stock
	Images            StringArray    `gorm:"type:json" json:"images"`                                   // image paths
	Tags              StringArray    `gorm:"type:json" json:"tags"`                                     // search tags
	Featured          bool           `gorm:"default:false;index" json:"featured"`                       // featured on storefront
	Views             int64          `gorm:"not null;default:0" json:"views"`                           // detail page views
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                   // created timestamp
	UpdatedAt         time.Time      `json:"updated_at"`                                                // updated timestamp
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                            // soft delete

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // category info
	Store    *Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`       // store info
}

// TableName sets the table name
func (Product) TableName() string {
	return "products"
}

// InStock reports whether the requested quantity can be fulfilled
func (p *Product) InStock(quantity int) bool {
	if !p.TrackInventory {
		return true
	}
	return p.StockQuantity >= quantity
}

// Purchasable reports whether the product can enter a cart
func (p *Product) Purchasable() bool {
	return p.Status == "active"
}
