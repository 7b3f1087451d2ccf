// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"github.com/your-org/ambika-backend/internal/domain/product"
)

// Item represents a single product saved to a user's wishlist
type Item struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`

	Product product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName overrides the table name
func (Item) TableName() string {
	return "wishlist_items"
}
