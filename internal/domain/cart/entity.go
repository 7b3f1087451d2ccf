// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/ambika-backend/internal/domain/pricing"
	"github.com/your-org/ambika-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Discount is the coupon application state embedded in a cart.
type Discount struct {
	Amount   int64  `gorm:"default:0" json:"amount"`
	CouponID *uint  `json:"coupon"`
	Type     string `gorm:"size:20" json:"type"`
}

// Tax is the tax breakdown embedded in a cart.
type Tax struct {
	Amount int64 `gorm:"default:0" json:"amount"`
	Rate   int64 `gorm:"default:0" json:"rate"` // Whole-number percentage
}

// Shipping is the shipping charge embedded in a cart.
type Shipping struct {
	Amount int64  `gorm:"default:0" json:"amount"`
	Method string `gorm:"size:50" json:"method"`
}

// Cart is a user's shopping cart: one per user, created lazily on the
// first read or write. Derived fields (TotalItems, Subtotal, Tax,
// Total) are recomputed by Recalculate after every structural change;
// they are never edited directly.
type Cart struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	UserID     uint     `gorm:"uniqueIndex;not null" json:"user_id"`
	Items      []Item   `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	TotalItems int      `gorm:"default:0" json:"total_items"`
	Subtotal   int64    `gorm:"default:0" json:"subtotal"`
	Discount   Discount `gorm:"embedded;embeddedPrefix:discount_" json:"discount"`
	Tax        Tax      `gorm:"embedded;embeddedPrefix:tax_" json:"tax"`
	Shipping   Shipping `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`
	Total      int64    `gorm:"default:0" json:"total"`
	Currency   string   `gorm:"size:3;default:'INR'" json:"currency"`

	LastModified time.Time      `json:"last_modified"`
	ExpiresAt    time.Time      `gorm:"index" json:"expires_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Item is one product-variant-quantity line in a cart. Price is a
// snapshot taken when the line was added, not a live read. Lines moved
// to saved-for-later keep their snapshot but drop out of all totals.
type Item struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CartID        uint       `gorm:"not null;index" json:"cart_id"`
	ProductID     uint       `gorm:"not null;index" json:"product_id"`
	VariantID     uint       `gorm:"not null;index" json:"variant_id"`
	Quantity      int        `gorm:"not null" json:"quantity"`
	Price         int64      `gorm:"not null" json:"price"`
	DiscountPrice *int64     `json:"discount_price,omitempty"`
	TotalPrice    int64      `gorm:"not null" json:"total_price"`
	SavedForLater bool       `gorm:"default:false" json:"saved_for_later"`
	AddedAt       time.Time  `json:"added_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName overrides
func (Cart) TableName() string { return "carts" }
func (Item) TableName() string { return "cart_items" }

// UnitPrice returns the snapshot price a unit of this line is charged
// at: the discount price when one was captured, else the list price.
func (i *Item) UnitPrice() int64 {
	if i.DiscountPrice != nil && *i.DiscountPrice > 0 {
		return *i.DiscountPrice
	}
	return i.Price
}

// Recalculate recomputes every derived field from the lines. taxRate
// is a whole-number percentage; shippingBase is the shipping charge
// before any free-shipping waiver. Invariant after every call:
// Total == max(0, Subtotal + Tax - Discount + Shipping).
func (c *Cart) Recalculate(taxRate int64, shippingBase int64) {
	c.TotalItems = 0
	c.Subtotal = 0
	for i := range c.Items {
		if c.Items[i].SavedForLater {
			continue
		}
		c.TotalItems += c.Items[i].Quantity
		c.Subtotal += c.Items[i].TotalPrice
	}

	c.Tax.Rate = taxRate
	c.Tax.Amount = pricing.Percent(c.Subtotal, taxRate)

	c.Shipping.Amount = shippingBase
	if c.Discount.Type == "free_shipping" {
		c.Shipping.Amount = 0
	}

	c.Total = pricing.ClampZero(c.Subtotal + c.Tax.Amount + c.Shipping.Amount - c.Discount.Amount)
	c.LastModified = time.Now().UTC()
}

// FindItem returns the active or saved line with the given (product,
// variant) identity, or nil.
func (c *Cart) FindItem(productID, variantID uint) *Item {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].VariantID == variantID {
			return &c.Items[i]
		}
	}
	return nil
}

// FindItemByID returns the line with the given id, or nil.
func (c *Cart) FindItemByID(itemID uint) *Item {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// AddItem merges quantity into an existing (product, variant) line or
// appends a new line with a price snapshot. Stock validation happens
// before this is called; AddItem itself is pure bookkeeping.
func (c *Cart) AddItem(productID, variantID uint, quantity int, price int64, discountPrice *int64) *Item {
	if existing := c.FindItem(productID, variantID); existing != nil {
		existing.Quantity += quantity
		existing.TotalPrice = pricing.LineTotal(existing.Quantity, existing.UnitPrice())
		return existing
	}

	c.Items = append(c.Items, Item{
		CartID:        c.ID,
		ProductID:     productID,
		VariantID:     variantID,
		Quantity:      quantity,
		Price:         price,
		DiscountPrice: discountPrice,
		TotalPrice:    pricing.LineTotal(quantity, effectivePrice(price, discountPrice)),
		AddedAt:       time.Now().UTC(),
	})
	return &c.Items[len(c.Items)-1]
}

// UpdateItemQuantity sets the quantity of a line and refreshes its
// total.
func (c *Cart) UpdateItemQuantity(itemID uint, quantity int) error {
	item := c.FindItemByID(itemID)
	if item == nil {
		return apperrors.NewNotFound("cart item")
	}
	item.Quantity = quantity
	item.TotalPrice = pricing.LineTotal(quantity, item.UnitPrice())
	return nil
}

// RemoveItem drops a line by id.
func (c *Cart) RemoveItem(itemID uint) error {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFound("cart item")
}

// Clear removes all lines.
func (c *Cart) Clear() {
	c.Items = nil
}

// ApplyDiscount records a computed coupon discount on the cart. The
// amount comes from the coupon evaluator; the cart never computes it.
func (c *Cart) ApplyDiscount(couponID uint, couponType string, amount int64) {
	c.Discount = Discount{
		Amount:   amount,
		CouponID: &couponID,
		Type:     couponType,
	}
}

// RemoveCoupon resets the discount. Safe to call repeatedly.
func (c *Cart) RemoveCoupon() {
	c.Discount = Discount{}
}

// SetSavedForLater toggles a line in or out of the saved-for-later
// bucket without removing it.
func (c *Cart) SetSavedForLater(itemID uint, saved bool) error {
	item := c.FindItemByID(itemID)
	if item == nil {
		return apperrors.NewNotFound("cart item")
	}
	item.SavedForLater = saved
	return nil
}

// ActiveItems returns the lines that count toward totals.
func (c *Cart) ActiveItems() []Item {
	active := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		if !item.SavedForLater {
			active = append(active, item)
		}
	}
	return active
}

// IsExpired reports whether the cart has passed its idle expiry.
func (c *Cart) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

func effectivePrice(price int64, discountPrice *int64) int64 {
	if discountPrice != nil && *discountPrice > 0 {
		return *discountPrice
	}
	return price
}
