// internal/domain/coupon/entity.go
package coupon

import (
	"strings"
	"time"

	"github.com/your-org/ambika-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Type represents the discount mechanics of a coupon
type Type string

const (
	TypePercentage   Type = "percentage"
	TypeFixed        Type = "fixed"
	TypeFreeShipping Type = "free_shipping"
	TypeBuyXGetY     Type = "buy_x_get_y"
)

// Coupon is an admin-defined discount template applied to a cart at
// checkout time. Codes are stored uppercase and matched
// case-insensitively.
type Coupon struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Name        string `gorm:"not null;size:255" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	Type        Type   `gorm:"not null;size:20" json:"type"`
	Value       int64  `gorm:"not null" json:"value"` // Percent for percentage, paise for fixed

	// Usage limits. A nil UsageLimit means unlimited global usage.
	UsageLimit        *int `json:"usage_limit"`
	UsageLimitPerUser int  `gorm:"default:1" json:"usage_limit_per_user"`
	UsedCount         int  `gorm:"default:0" json:"used_count"`

	// Order amount conditions, in paise.
	MinimumAmount   int64  `gorm:"default:0" json:"minimum_amount"`
	MaximumAmount   *int64 `json:"maximum_amount,omitempty"`
	MaximumDiscount *int64 `json:"maximum_discount,omitempty"`

	// Product/category restrictions.
	ApplicableProducts   []uint `gorm:"serializer:json" json:"applicable_products"`
	ApplicableCategories []uint `gorm:"serializer:json" json:"applicable_categories"`
	ExcludedProducts     []uint `gorm:"serializer:json" json:"excluded_products"`
	ExcludedCategories   []uint `gorm:"serializer:json" json:"excluded_categories"`

	// User restrictions.
	ApplicableUsers []uint             `gorm:"serializer:json" json:"applicable_users"`
	UserTiers       []user.LoyaltyTier `gorm:"serializer:json" json:"user_tiers"`
	NewUsersOnly    bool               `gorm:"default:false" json:"new_users_only"`

	// Validity window, inclusive on both ends.
	ValidFrom  time.Time `gorm:"not null;index" json:"valid_from"`
	ValidUntil time.Time `gorm:"not null;index" json:"valid_until"`

	// Buy X get Y specifics. GetProductDiscount is the percentage off
	// on the free units; nil means 100 (fully free).
	BuyQuantity        int    `gorm:"default:0" json:"buy_quantity"`
	GetQuantity        int    `gorm:"default:0" json:"get_quantity"`
	GetProductDiscount *int64 `json:"get_product_discount,omitempty"`

	IsActive bool `gorm:"default:true;index" json:"is_active"`

	// Analytics.
	TotalDiscountGiven int64 `gorm:"default:0" json:"total_discount_given"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Usages []Usage `gorm:"foreignKey:CouponID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"usage_history,omitempty"`
}

// Usage is one entry of a coupon's usage history: who used it, on
// which order, for how much. Per-user limits are enforced by counting
// these rows.
type Usage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CouponID       uint      `gorm:"not null;index" json:"coupon_id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	OrderID        uint      `gorm:"not null;index" json:"order_id"`
	DiscountAmount int64     `gorm:"not null" json:"discount_amount"`
	UsedAt         time.Time `json:"used_at"`
}

// TableName overrides
func (Coupon) TableName() string { return "coupons" }
func (Usage) TableName() string  { return "coupon_usages" }

// BeforeCreate normalizes the code to uppercase.
func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	c.Code = NormalizeCode(c.Code)
	return nil
}

// NormalizeCode uppercases and trims a coupon code for storage and
// lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidNow reports whether the coupon is active, inside its validity
// window (inclusive on both ends), and under its global usage limit.
func (c *Coupon) IsValidNow(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false
	}
	return true
}
