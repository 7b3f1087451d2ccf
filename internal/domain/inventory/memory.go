// internal/domain/inventory/memory.go
package inventory

import (
	"sync"

	"github.com/your-org/ambika-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// MemoryLedger is an in-process Ledger used in tests and local
// development. It ignores the transaction handle and applies the same
// all-or-nothing rule as the database ledger: a commit that cannot
// satisfy every line changes nothing.
type MemoryLedger struct {
	mu        sync.Mutex
	stock     map[uint]int
	Movements []Movement
}

// NewMemoryLedger seeds an in-process ledger with per-variant stock.
func NewMemoryLedger(stock map[uint]int) *MemoryLedger {
	copied := make(map[uint]int, len(stock))
	for variantID, quantity := range stock {
		copied[variantID] = quantity
	}
	return &MemoryLedger{stock: copied}
}

// Stock returns the current on-hand count for a variant.
func (m *MemoryLedger) Stock(variantID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[variantID]
}

// Commit implements Ledger.
func (m *MemoryLedger) Commit(_ *gorm.DB, lines []Line, orderID uint, actorID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, line := range lines {
		available, ok := m.stock[line.VariantID]
		if !ok {
			return apperrors.NewNotFound("product variant")
		}
		if available < line.Quantity {
			return &apperrors.InsufficientStockError{
				VariantID: line.VariantID,
				Requested: line.Quantity,
				Available: available,
			}
		}
	}

	for _, line := range lines {
		previous := m.stock[line.VariantID]
		m.stock[line.VariantID] = previous - line.Quantity
		m.Movements = append(m.Movements, Movement{
			ProductID:     line.ProductID,
			VariantID:     line.VariantID,
			Type:          MovementTypeOutbound,
			Reason:        ReasonSale,
			Quantity:      line.Quantity,
			PreviousStock: previous,
			NewStock:      previous - line.Quantity,
			ReferenceType: "order",
			ReferenceID:   orderID,
			CreatedBy:     actorID,
		})
	}
	return nil
}

// Release implements Ledger.
func (m *MemoryLedger) Release(_ *gorm.DB, lines []Line, orderID uint, actorID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, line := range lines {
		previous := m.stock[line.VariantID]
		m.stock[line.VariantID] = previous + line.Quantity
		m.Movements = append(m.Movements, Movement{
			ProductID:     line.ProductID,
			VariantID:     line.VariantID,
			Type:          MovementTypeInbound,
			Reason:        ReasonCancellation,
			Quantity:      line.Quantity,
			PreviousStock: previous,
			NewStock:      previous + line.Quantity,
			ReferenceType: "order",
			ReferenceID:   orderID,
			CreatedBy:     actorID,
		})
	}
	return nil
}
