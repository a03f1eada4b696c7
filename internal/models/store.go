package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Address postal address stored as a JSON column
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// Value implements driver.Valuer
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
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
	return json.Unmarshal(bytes, a)
}

// Contact store contact info stored as a JSON column
type Contact struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website,omitempty"`
}

// Value implements driver.Valuer
func (c Contact) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner
func (c *Contact) Scan(value interface{}) error {
	if value == nil {
		*c = Contact{}
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
	return json.Unmarshal(bytes, c)
}

// Store vendor storefront, exactly one per vendor account.
// The total_* counters are denormalized and eventually consistent;
// the periodic recompute task is the source of truth.
type Store struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                     // primary key
	VendorID     uint           `gorm:"uniqueIndex;not null" json:"vendor_id"`                    // owning vendor
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`                   // store name
	Slug         string         `gorm:"uniqueIndex;not null" json:"slug"`                         // URL identifier
	Description  string         `gorm:"type:varchar(1000)" json:"description"`                    // about text
	Logo         string         `gorm:"type:varchar(500)" json:"logo,omitempty"`                  // logo image path
	Banner       string         `gorm:"type:varchar(500)" json:"banner,omitempty"`                // banner image path
	ThemeColor   string         `gorm:"type:varchar(20);default:'#3b82f6'" json:"theme_color"`    // storefront accent color
	Address      Address        `gorm:"type:json" json:"address"`                                 // physical address
	Contact      Contact        `gorm:"type:json" json:"contact"`                                 // contact details
	IsActive     bool           `gorm:"default:true;index" json:"is_active"`                      // open for business
	TotalProducts int           `gorm:"not null;default:0" json:"total_products"`                 // denormalized product count
	TotalOrders  int            `gorm:"not null;default:0" json:"total_orders"`                   // denormalized order count
	TotalRevenue Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_revenue"` // denormalized revenue
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                  // created timestamp
	UpdatedAt    time.Time      `json:"updated_at"`                                               // updated timestamp
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                           // soft delete

	Vendor *User `gorm:"foreignKey:VendorID" json:"vendor,omitempty"` // owning account
}

// TableName sets the table name
func (Store) TableName() string {
	return "stores"
}
