// internal/domain/coupon/service.go
package coupon

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/ambika-backend/internal/config"
	"github.com/your-org/ambika-backend/internal/domain/user"
	"github.com/your-org/ambika-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles coupon lookup, validation and usage recording. The
// evaluation itself is pure (see evaluator.go); the service supplies
// the persisted pieces: the coupon row and the per-user usage count.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateCouponRequest represents coupon creation data
type CreateCouponRequest struct {
	Code                 string             `json:"code" binding:"required"`
	Name                 string             `json:"name" binding:"required"`
	Description          string             `json:"description"`
	Type                 Type               `json:"type" binding:"required,oneof=percentage fixed free_shipping buy_x_get_y"`
	Value                int64              `json:"value" binding:"min=0"`
	UsageLimit           *int               `json:"usage_limit"`
	UsageLimitPerUser    int                `json:"usage_limit_per_user"`
	MinimumAmount        int64              `json:"minimum_amount"`
	MaximumAmount        *int64             `json:"maximum_amount"`
	MaximumDiscount      *int64             `json:"maximum_discount"`
	ApplicableProducts   []uint             `json:"applicable_products"`
	ApplicableCategories []uint             `json:"applicable_categories"`
	ExcludedProducts     []uint             `json:"excluded_products"`
	ExcludedCategories   []uint             `json:"excluded_categories"`
	ApplicableUsers      []uint             `json:"applicable_users"`
	UserTiers            []user.LoyaltyTier `json:"user_tiers"`
	NewUsersOnly         bool               `json:"new_users_only"`
	ValidFrom            time.Time          `json:"valid_from" binding:"required"`
	ValidUntil           time.Time          `json:"valid_until" binding:"required"`
	BuyQuantity          int                `json:"buy_quantity"`
	GetQuantity          int                `json:"get_quantity"`
	GetProductDiscount   *int64             `json:"get_product_discount"`
}

// FindByCode retrieves an active coupon by its case-insensitive code.
func (s *Service) FindByCode(code string) (*Coupon, error) {
	var c Coupon
	err := s.db.Where("code = ? AND is_active = ?", NormalizeCode(code), true).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("coupon")
		}
		return nil, fmt.Errorf("failed to retrieve coupon: %w", err)
	}
	return &c, nil
}

// UserUsageCount counts how many times the user has redeemed the
// coupon, from the usage history.
func (s *Service) UserUsageCount(couponID, userID uint) (int, error) {
	var count int64
	err := s.db.Model(&Usage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count coupon usage: %w", err)
	}
	return int(count), nil
}

// ValidateForCart runs the full eligibility check for the given user
// and cart contents. Returns a CouponIneligibleError with the specific
// reason on failure.
func (s *Service) ValidateForCart(c *Coupon, u *user.User, cartSubtotal int64, lines []Line) error {
	usageCount, err := s.UserUsageCount(c.ID, u.ID)
	if err != nil {
		return err
	}
	return CanApply(c, u, cartSubtotal, lines, usageCount, time.Now().UTC())
}

// RecordUsage appends a usage-history entry and bumps the counters,
// inside the caller's transaction. Called once, at order-creation
// time, never during cart preview. The increment is guarded so
// used_count can never exceed usage_limit even under concurrent
// checkouts.
func (s *Service) RecordUsage(tx *gorm.DB, couponID, userID, orderID uint, discountAmount int64) error {
	result := tx.Model(&Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", couponID).
		Updates(map[string]interface{}{
			"used_count":           gorm.Expr("used_count + 1"),
			"total_discount_given": gorm.Expr("total_discount_given + ?", discountAmount),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update coupon counters: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewCouponIneligible("", "Coupon is not valid or has expired")
	}

	usage := Usage{
		CouponID:       couponID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: discountAmount,
		UsedAt:         time.Now().UTC(),
	}
	if err := tx.Create(&usage).Error; err != nil {
		return fmt.Errorf("failed to record coupon usage: %w", err)
	}
	return nil
}

// ListValidForCart returns all coupons the user could apply to the
// current cart, for storefront display.
func (s *Service) ListValidForCart(u *user.User, cartSubtotal int64, lines []Line) ([]Coupon, error) {
	now := time.Now().UTC()

	var candidates []Coupon
	err := s.db.
		Where("is_active = ? AND valid_from <= ? AND valid_until >= ?", true, now, now).
		Where("usage_limit IS NULL OR used_count < usage_limit").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve coupons: %w", err)
	}

	valid := make([]Coupon, 0, len(candidates))
	for i := range candidates {
		usageCount, err := s.UserUsageCount(candidates[i].ID, u.ID)
		if err != nil {
			return nil, err
		}
		if CanApply(&candidates[i], u, cartSubtotal, lines, usageCount, now) == nil {
			valid = append(valid, candidates[i])
		}
	}
	return valid, nil
}

// ADMIN MANAGEMENT

// CreateCoupon creates a new coupon template
func (s *Service) CreateCoupon(req *CreateCouponRequest) (*Coupon, error) {
	if !req.ValidUntil.After(req.ValidFrom) {
		return nil, apperrors.NewValidation("valid_until must be after valid_from")
	}
	if req.Type == TypeBuyXGetY && (req.BuyQuantity <= 0 || req.GetQuantity <= 0) {
		return nil, apperrors.NewValidation("buy_quantity and get_quantity are required for buy_x_get_y coupons")
	}

	var existing Coupon
	if err := s.db.Where("code = ?", NormalizeCode(req.Code)).First(&existing).Error; err == nil {
		return nil, apperrors.NewValidation("coupon with code '%s' already exists", NormalizeCode(req.Code))
	}

	perUser := req.UsageLimitPerUser
	if perUser == 0 {
		perUser = 1
	}

	c := &Coupon{
		Code:                 req.Code,
		Name:                 req.Name,
		Description:          req.Description,
		Type:                 req.Type,
		Value:                req.Value,
		UsageLimit:           req.UsageLimit,
		UsageLimitPerUser:    perUser,
		MinimumAmount:        req.MinimumAmount,
		MaximumAmount:        req.MaximumAmount,
		MaximumDiscount:      req.MaximumDiscount,
		ApplicableProducts:   req.ApplicableProducts,
		ApplicableCategories: req.ApplicableCategories,
		ExcludedProducts:     req.ExcludedProducts,
		ExcludedCategories:   req.ExcludedCategories,
		ApplicableUsers:      req.ApplicableUsers,
		UserTiers:            req.UserTiers,
		NewUsersOnly:         req.NewUsersOnly,
		ValidFrom:            req.ValidFrom,
		ValidUntil:           req.ValidUntil,
		BuyQuantity:          req.BuyQuantity,
		GetQuantity:          req.GetQuantity,
		GetProductDiscount:   req.GetProductDiscount,
		IsActive:             true,
	}

	if err := s.db.Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return c, nil
}

// GetCoupons retrieves all coupons for admin listing
func (s *Service) GetCoupons(page, limit int) ([]Coupon, int64, error) {
	var coupons []Coupon
	var total int64

	if err := s.db.Model(&Coupon{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	offset := (page - 1) * limit
	err := s.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&coupons).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve coupons: %w", err)
	}
	return coupons, total, nil
}

// GetCoupon retrieves a single coupon with its usage history
func (s *Service) GetCoupon(id uint) (*Coupon, error) {
	var c Coupon
	err := s.db.Preload("Usages", func(db *gorm.DB) *gorm.DB {
		return db.Order("used_at DESC")
	}).First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("coupon")
		}
		return nil, fmt.Errorf("failed to retrieve coupon: %w", err)
	}
	return &c, nil
}

// DeactivateCoupon disables a coupon without deleting its history.
func (s *Service) DeactivateCoupon(id uint) error {
	result := s.db.Model(&Coupon{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("coupon")
	}
	return nil
}
