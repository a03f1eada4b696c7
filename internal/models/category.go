package models

import (
	"time"

	"gorm.io/gorm"
)

// Category product category, optionally nested one level under a parent
type Category struct {
	ID          uint           `gorm:"primarykey" json:"id"`                       // primary key
	Name        string         `gorm:"type:varchar(100);not null" json:"name"`     // display name
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`           // URL identifier
	Description string         `gorm:"type:varchar(500)" json:"description"`       // short description
	Image       string         `gorm:"type:varchar(500)" json:"image,omitempty"`   // banner image path
	ParentID    *uint          `gorm:"index" json:"parent_id,omitempty"`           // parent category
	Level       int            `gorm:"default:0" json:"level"`                     // nesting depth, 0 = root
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`          // display weight
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`        // visible on storefront
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                    // created timestamp
	UpdatedAt   time.Time      `json:"updated_at"`                                 // updated timestamp
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                             // soft delete

	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"` // subcategories
}

// TableName sets the table name
func (Category) TableName() string {
	return "categories"
}
