package models

import (
	"time"

	"gorm.io/gorm"
)

// User account table, shared by customers, vendors and admins
type User struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                         // primary key
	Username           string         `gorm:"type:varchar(50);not null" json:"username"`    // display handle
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`            // login email
	PasswordHash       string         `gorm:"not null" json:"-"`                            // bcrypt hash, never serialized
	Role               string         `gorm:"type:varchar(20);not null;index" json:"role"`  // customer / vendor / admin
	Phone              string         `gorm:"type:varchar(32)" json:"phone,omitempty"`      // contact phone
	AvatarURL          string         `gorm:"type:varchar(500)" json:"avatar,omitempty"`    // avatar image path
	IsActive           bool           `gorm:"default:true;index" json:"is_active"`          // account enabled
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                  // bump to revoke all tokens
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                               // tokens issued before this are rejected
	LastLoginAt        *time.Time     `json:"last_login_at"`                                // last successful login
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                      // created timestamp
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                      // updated timestamp
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                               // soft delete
}

// TableName sets the table name
func (User) TableName() string {
	return "users"
}
