// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	MovementTypeInbound  MovementType = "inbound"  // Restock, cancellation, adjustment increase
	MovementTypeOutbound MovementType = "outbound" // Sale, damage, adjustment decrease
)

// MovementReason represents the reason for a stock movement
type MovementReason string

const (
	ReasonSale         MovementReason = "sale"
	ReasonCancellation MovementReason = "cancellation"
	ReasonRestock      MovementReason = "restock"
	ReasonAdjustment   MovementReason = "adjustment"
)

// Movement is one append-only row in the stock ledger. PreviousStock
// and NewStock bracket the variant's on-hand count around the
// movement, so the ledger replays to the current stock level.
type Movement struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ProductID     uint           `gorm:"not null;index" json:"product_id"`
	VariantID     uint           `gorm:"not null;index" json:"variant_id"`
	Type          MovementType   `gorm:"not null;size:20" json:"type"`
	Reason        MovementReason `gorm:"not null;size:30" json:"reason"`
	Quantity      int            `gorm:"not null" json:"quantity"`
	PreviousStock int            `gorm:"not null" json:"previous_stock"`
	NewStock      int            `gorm:"not null" json:"new_stock"`
	ReferenceType string         `gorm:"size:50" json:"reference_type"` // "order", "manual"
	ReferenceID   uint           `gorm:"index" json:"reference_id"`
	Note          string         `gorm:"type:text" json:"note"`
	CreatedBy     uint           `gorm:"index" json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TableName overrides the table name
func (Movement) TableName() string {
	return "stock_movements"
}

// Line identifies one variant-quantity pair in a commit or release.
type Line struct {
	ProductID uint
	VariantID uint
	Quantity  int
}
