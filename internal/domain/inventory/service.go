// internal/domain/inventory/service.go
package inventory

import (
	"errors"
	"fmt"

	"github.com/your-org/ambika-backend/internal/config"
	"github.com/your-org/ambika-backend/internal/domain/product"
	"github.com/your-org/ambika-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Ledger is the stock mutation surface the checkout path depends on.
// Both operations run inside the caller's transaction: an error from
// Commit means no decrement took effect once the caller rolls back.
type Ledger interface {
	Commit(tx *gorm.DB, lines []Line, orderID uint, actorID uint) error
	Release(tx *gorm.DB, lines []Line, orderID uint, actorID uint) error
}

// Service is the database-backed stock ledger
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// AdjustStockRequest represents a manual stock adjustment
type AdjustStockRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	VariantID uint   `json:"variant_id" binding:"required"`
	Delta     int    `json:"delta" binding:"required"`
	Reason    string `json:"reason"`
	Note      string `json:"note"`
}

// Validate checks that every line is satisfiable at this instant.
// It takes no locks, so it is a fast pre-check only; Commit remains
// the authority.
func (s *Service) Validate(lines []Line) error {
	for _, line := range lines {
		var variant product.Variant
		err := s.db.Select("id", "stock", "is_active").First(&variant, line.VariantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("product variant")
		}
		if err != nil {
			return fmt.Errorf("failed to check stock: %w", err)
		}
		if !variant.IsActive || variant.Stock < line.Quantity {
			return &apperrors.InsufficientStockError{
				VariantID: line.VariantID,
				Requested: line.Quantity,
				Available: variant.Stock,
			}
		}
	}
	return nil
}

// Commit decrements stock for every line and writes a sale movement
// per line. Each decrement is a conditional update guarded on the
// current stock, so a concurrent checkout can never drive a variant
// negative. The first line that cannot be satisfied aborts with
// InsufficientStockError; the caller's rollback undoes the lines
// already decremented, making the commit all or nothing.
func (s *Service) Commit(tx *gorm.DB, lines []Line, orderID uint, actorID uint) error {
	for _, line := range lines {
		result := tx.Model(&product.Variant{}).
			Where("id = ? AND stock >= ?", line.VariantID, line.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
		if result.Error != nil {
			return fmt.Errorf("failed to decrement stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var variant product.Variant
			available := 0
			if err := tx.Select("id", "stock").First(&variant, line.VariantID).Error; err == nil {
				available = variant.Stock
			}
			return &apperrors.InsufficientStockError{
				VariantID: line.VariantID,
				Requested: line.Quantity,
				Available: available,
			}
		}

		if err := s.record(tx, line, MovementTypeOutbound, ReasonSale, orderID, actorID, ""); err != nil {
			return err
		}
	}
	return nil
}

// Release returns previously committed stock, writing a cancellation
// movement per line.
func (s *Service) Release(tx *gorm.DB, lines []Line, orderID uint, actorID uint) error {
	for _, line := range lines {
		result := tx.Model(&product.Variant{}).
			Where("id = ?", line.VariantID).
			UpdateColumn("stock", gorm.Expr("stock + ?", line.Quantity))
		if result.Error != nil {
			return fmt.Errorf("failed to restore stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFound("product variant")
		}

		if err := s.record(tx, line, MovementTypeInbound, ReasonCancellation, orderID, actorID, ""); err != nil {
			return err
		}
	}
	return nil
}

// AdjustStock applies a manual delta to a variant and records it.
// Negative deltas are guarded the same way sales are.
func (s *Service) AdjustStock(req *AdjustStockRequest, actorID uint) (*Movement, error) {
	var movement *Movement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		line := Line{ProductID: req.ProductID, VariantID: req.VariantID, Quantity: req.Delta}
		movementType := MovementTypeInbound
		reason := MovementReason(req.Reason)
		if reason == "" {
			reason = ReasonAdjustment
		}

		var result *gorm.DB
		if req.Delta >= 0 {
			result = tx.Model(&product.Variant{}).
				Where("id = ?", req.VariantID).
				UpdateColumn("stock", gorm.Expr("stock + ?", req.Delta))
		} else {
			movementType = MovementTypeOutbound
			line.Quantity = -req.Delta
			result = tx.Model(&product.Variant{}).
				Where("id = ? AND stock >= ?", req.VariantID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
		}
		if result.Error != nil {
			return fmt.Errorf("failed to adjust stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var variant product.Variant
			available := 0
			if err := tx.Select("id", "stock").First(&variant, req.VariantID).Error; err == nil {
				available = variant.Stock
			}
			return &apperrors.InsufficientStockError{
				VariantID: req.VariantID,
				Requested: line.Quantity,
				Available: available,
			}
		}

		m, err := s.recordWithResult(tx, line, movementType, reason, 0, actorID, req.Note)
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// GetMovements returns the ledger for a variant, newest first.
func (s *Service) GetMovements(variantID uint, page, limit int) ([]Movement, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	query := s.db.Model(&Movement{}).Where("variant_id = ?", variantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stock movements: %w", err)
	}

	var movements []Movement
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve stock movements: %w", err)
	}
	return movements, total, nil
}

// GetLowStock lists active variants at or below the threshold.
func (s *Service) GetLowStock(threshold int) ([]product.Variant, error) {
	if threshold < 0 {
		threshold = 0
	}
	var variants []product.Variant
	err := s.db.Where("is_active = ? AND stock <= ?", true, threshold).
		Order("stock ASC").
		Find(&variants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock variants: %w", err)
	}
	return variants, nil
}

func (s *Service) record(tx *gorm.DB, line Line, movementType MovementType, reason MovementReason, orderID uint, actorID uint, note string) error {
	_, err := s.recordWithResult(tx, line, movementType, reason, orderID, actorID, note)
	return err
}

func (s *Service) recordWithResult(tx *gorm.DB, line Line, movementType MovementType, reason MovementReason, orderID uint, actorID uint, note string) (*Movement, error) {
	var variant product.Variant
	if err := tx.Select("id", "stock").First(&variant, line.VariantID).Error; err != nil {
		return nil, fmt.Errorf("failed to read stock for movement: %w", err)
	}

	previous := variant.Stock + line.Quantity
	if movementType == MovementTypeInbound {
		previous = variant.Stock - line.Quantity
	}

	referenceType := "manual"
	if orderID != 0 {
		referenceType = "order"
	}

	movement := Movement{
		ProductID:     line.ProductID,
		VariantID:     line.VariantID,
		Type:          movementType,
		Reason:        reason,
		Quantity:      line.Quantity,
		PreviousStock: previous,
		NewStock:      variant.Stock,
		ReferenceType: referenceType,
		ReferenceID:   orderID,
		Note:          note,
		CreatedBy:     actorID,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}
	return &movement, nil
}
