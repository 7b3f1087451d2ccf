// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// LoyaltyTier represents the user's membership tier
type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "bronze"
	TierSilver   LoyaltyTier = "silver"
	TierGold     LoyaltyTier = "gold"
	TierPlatinum LoyaltyTier = "platinum"
)

// User represents the user entity. The pricing core reads only
// TotalOrders and LoyaltyTier (coupon eligibility); the rest belongs
// to the account surface.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password    string         `gorm:"not null;size:255" json:"-"` // Don't return in JSON
	Name        string         `gorm:"size:200" json:"name"`
	Phone       string         `gorm:"size:20" json:"phone"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	IsAdmin     bool           `gorm:"default:false" json:"is_admin"`
	TotalOrders int            `gorm:"default:0" json:"total_orders"`
	TotalSpent  int64          `gorm:"default:0" json:"total_spent"` // In paise
	LoyaltyTier LoyaltyTier    `gorm:"size:20;default:'bronze'" json:"loyalty_tier"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"addresses,omitempty"`
}

// Address represents user addresses
type Address struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Phone       string    `gorm:"size:20;not null" json:"phone"`
	Street      string    `gorm:"size:255;not null" json:"street"`
	City        string    `gorm:"size:100;not null" json:"city"`
	State       string    `gorm:"size:100;not null" json:"state"`
	Pincode     string    `gorm:"size:20;not null" json:"pincode"`
	Country     string    `gorm:"size:100;default:'India'" json:"country"`
	Landmark    string    `gorm:"size:255" json:"landmark"`
	AddressType string    `gorm:"size:20;default:'home'" json:"address_type"` // home, work, other
	IsDefault   bool      `gorm:"default:false" json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Address
func (Address) TableName() string {
	return "addresses"
}

// BeforeCreate hook to handle business logic before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	// Email should be lowercase
	u.Email = strings.ToLower(u.Email)
	return nil
}

// IsNewCustomer reports whether the user has never placed an order.
// New-users-only coupons key off this.
func (u *User) IsNewCustomer() bool {
	return u.TotalOrders == 0
}
