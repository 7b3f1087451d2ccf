// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	BasePrice   int64          `gorm:"not null" json:"base_price"` // Price in paise
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	IsFeatured  bool           `gorm:"default:false" json:"is_featured"`
	Tags        string         `gorm:"size:500" json:"tags"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category Category  `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Variants []Variant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	ParentID    *uint          `gorm:"index" json:"parent_id"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Parent   *Category `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// Variant represents a purchasable size/color/SKU combination of a
// product, each with its own stock and price. Identity (size, color,
// sku) is immutable once created; stock is mutated only through the
// inventory ledger.
type Variant struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ProductID     uint           `gorm:"not null;index" json:"product_id"`
	SKU           string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Size          string         `gorm:"size:50" json:"size"`
	Color         string         `gorm:"size:50" json:"color"`
	Price         int64          `gorm:"not null" json:"price"` // In paise
	DiscountPrice *int64         `json:"discount_price,omitempty"`
	Stock         int            `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }
func (Variant) TableName() string  { return "product_variants" }

// EffectivePrice returns the discount price when set, otherwise the
// list price. This is the price snapshotted into cart lines.
func (v *Variant) EffectivePrice() int64 {
	if v.DiscountPrice != nil && *v.DiscountPrice > 0 {
		return *v.DiscountPrice
	}
	return v.Price
}

// InStock reports whether the variant can fulfil the given quantity.
func (v *Variant) InStock(quantity int) bool {
	return v.Stock >= quantity
}

// IsPurchasable reports whether the variant can be added to a cart.
func (v *Variant) IsPurchasable() bool {
	return v.IsActive && v.Stock > 0
}
