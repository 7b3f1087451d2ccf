// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/ambika-backend/internal/config"
	"github.com/your-org/ambika-backend/internal/domain/coupon"
	"github.com/your-org/ambika-backend/internal/domain/product"
	"github.com/your-org/ambika-backend/internal/domain/user"
	"github.com/your-org/ambika-backend/internal/pkg/apperrors"
	"github.com/your-org/ambika-backend/internal/pkg/lock"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	locker      *lock.Locker
	products    *product.Service
	coupons     *coupon.Service
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		locker:      lock.NewLocker(redisClient),
		products:    product.NewService(db, cfg),
		coupons:     coupon.NewService(db, cfg),
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request.
// Quantity 0 removes the line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// ApplyCouponRequest represents apply coupon request
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// GetCart retrieves the user's cart, creating an empty one on first
// access. Lines are reconciled against the live catalog before the
// cart is returned: inactive products drop out, quantities are clamped
// to available stock and price snapshots are refreshed.
func (s *Service) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	handle, err := s.locker.Acquire(ctx, s.lockKey(userID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	cart, err := s.loadOrCreate(userID)
	if err != nil {
		return nil, err
	}

	changed, err := s.reconcile(cart)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.persist(cart); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// AddItem adds a product variant to the cart, merging into an existing
// line when the same variant is already present. The stock check runs
// against the merged quantity, so adding 2 to an existing line of 3
// needs 5 in stock.
func (s *Service) AddItem(ctx context.Context, userID uint, req *AddToCartRequest) (*Cart, error) {
	handle, err := s.locker.Acquire(ctx, s.lockKey(userID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	cart, err := s.loadOrCreate(userID)
	if err != nil {
		return nil, err
	}

	variant, err := s.products.GetVariant(req.ProductID, req.VariantID)
	if err != nil {
		return nil, err
	}
	if !variant.IsPurchasable() {
		return nil, apperrors.NewValidation("product is currently unavailable")
	}

	requested := req.Quantity
	if existing := cart.FindItem(req.ProductID, req.VariantID); existing != nil && !existing.SavedForLater {
		requested += existing.Quantity
	}
	if !variant.InStock(requested) {
		return nil, &apperrors.InsufficientStockError{
			VariantID: variant.ID,
			Requested: requested,
			Available: variant.Stock,
		}
	}

	cart.AddItem(req.ProductID, req.VariantID, req.Quantity, variant.Price, variant.DiscountPrice)
	s.recalculate(cart)

	if err := s.persist(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem changes a line's quantity. Quantity 0 removes the line.
func (s *Service) UpdateItem(ctx context.Context, userID uint, itemID uint, req *UpdateCartItemRequest) (*Cart, error) {
	handle, err := s.locker.Acquire(ctx, s.lockKey(userID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	cart, err := s.loadOrCreate(userID)
	if err != nil {
		return nil, err
	}

	item := cart.FindItemByID(itemID)
	if item == nil {
		return nil, apperrors.NewNotFound("cart item")
	}

	if req.Quantity == 0 {
		return s.removeLocked(cart, itemID)
	}

	variant, err := s.products.GetVariant(item.ProductID, item.VariantID)
	if err != nil {
		return nil, err
	}
	if !variant.InStock(req.Quantity) {
		return nil, &apperrors.InsufficientStockError{
			VariantID: variant.ID,
			Requested: req.Quantity,
			Available: variant.Stock,
		}
	}

	if err := cart.UpdateItemQuantity(itemID, req.Quantity); err != nil {
		return nil, err
	}
	s.recalculate(cart)

	if err := s.persist(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem deletes a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID uint, itemID uint) (*Cart, error) {
	handle, err := s.locker.Acquire(ctx, s.lockKey(userID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	cart, err := s.loadOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return s.removeLocked(cart, itemID)
}

func (s *Service) removeLocked(cart *Cart, itemID uint) (*Cart, error) {
	item := cart.FindItemByID(itemID)
	if item == nil {
		return nil, apperrors.NewNotFound("cart item")
	}

	if err := s.db.Delete(&Item{}, item.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to delete cart item: %w", err)
	}
	if err := cart.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if len(cart.ActiveItems()) == 0 {
		cart.RemoveCoupon()
	}
	s.recalculate(cart)

	if err := s.persist(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart empties the cart and resets any applied coupon.
func (s *Service) ClearCart(ctx context.Context, userID uint) (*Cart, error) {
	handle, err := s.locker.Acquire(ctx, s.lockKey(userID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	cart, err := s.loadOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("cart_id = ?", cart.ID).Delete(&Item{}).Error; err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	cart.Clear()
	cart.RemoveCoupon()
	s.recalculate(cart)

	if err := s.persist(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ApplyCoupon validates a coupon code against the cart and the user
// and records the computed discount on the cart. Validation failures
// surface as CouponIneligibleError with the reason for the shopper.
func (s *Service) ApplyCoupon(ctx context.Context, userID uint, code string) (*Cart, error) {
	handle, err := s.locker.Acquire(ctx, s.lockKey(userID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	cart, err := s.loadOrCreate(userID)
	if err != nil {
		return nil, err
	}
	if len(cart.ActiveItems()) == 0 {
		return nil, apperrors.NewValidation("cannot apply coupon to an empty cart")
	}

	c, err := s.coupons.FindByCode(code)
	if err != nil {
		return nil, err
	}

	var u user.User
	if err := s.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	lines, err := s.couponLines(cart)
	if err != nil {
		return nil, err
	}

	if err := s.coupons.ValidateForCart(c, &u, cart.Subtotal, lines); err != nil {
		return nil, err
	}

	discount := coupon.CalculateDiscount(c, cart.Subtotal, lines)
	cart.ApplyDiscount(c.ID, string(c.Type), discount)
	s.recalculate(cart)

	if err := s.persist(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveCoupon clears any applied coupon. Removing when none is
// applied is a no-op, not an error.
func (s *Service) RemoveCoupon(ctx context.Context, userID uint) (*Cart, error) {
	handle, err := s.locker.Acquire(ctx, s.lockKey(userID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	cart, err := s.loadOrCreate(userID)
	if err != nil {
		return nil, err
	}

	cart.RemoveCoupon()
	s.recalculate(cart)

	if err := s.persist(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SaveForLater moves a line out of the active cart without losing it.
func (s *Service) SaveForLater(ctx context.Context, userID uint, itemID uint) (*Cart, error) {
	return s.toggleSaved(ctx, userID, itemID, true)
}

// ListValidCoupons returns the coupons the user could apply to their
// current cart right now.
func (s *Service) ListValidCoupons(ctx context.Context, userID uint) ([]coupon.Coupon, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	var u user.User
	if err := s.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	lines, err := s.couponLines(cart)
	if err != nil {
		return nil, err
	}
	return s.coupons.ListValidForCart(&u, cart.Subtotal, lines)
}

// MoveToCart restores a saved-for-later line into the active cart,
// re-validating stock first.
func (s *Service) MoveToCart(ctx context.Context, userID uint, itemID uint) (*Cart, error) {
	return s.toggleSaved(ctx, userID, itemID, false)
}

func (s *Service) toggleSaved(ctx context.Context, userID uint, itemID uint, saved bool) (*Cart, error) {
	handle, err := s.locker.Acquire(ctx, s.lockKey(userID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	cart, err := s.loadOrCreate(userID)
	if err != nil {
		return nil, err
	}

	item := cart.FindItemByID(itemID)
	if item == nil {
		return nil, apperrors.NewNotFound("cart item")
	}

	if !saved {
		// Stock may have drained while the line sat in saved-for-later.
		variant, err := s.products.GetVariant(item.ProductID, item.VariantID)
		if err != nil {
			return nil, err
		}
		if !variant.InStock(item.Quantity) {
			return nil, &apperrors.InsufficientStockError{
				VariantID: variant.ID,
				Requested: item.Quantity,
				Available: variant.Stock,
			}
		}
	}

	if err := cart.SetSavedForLater(itemID, saved); err != nil {
		return nil, err
	}
	s.recalculate(cart)

	if err := s.persist(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// loadOrCreate fetches the user's cart with its lines, creating an
// empty cart row on first access. An expired cart is emptied in place
// rather than deleted so the row and its id survive.
func (s *Service) loadOrCreate(userID uint) (*Cart, error) {
	var cart Cart
	err := s.db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = Cart{
			UserID:    userID,
			Currency:  s.config.Pricing.Currency,
			ExpiresAt: time.Now().UTC().Add(s.config.CartExpiry()),
		}
		cart.Recalculate(s.config.Pricing.TaxRatePercent, 0)
		if err := s.db.Create(&cart).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return &cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	if cart.IsExpired(time.Now().UTC()) {
		if err := s.db.Where("cart_id = ?", cart.ID).Delete(&Item{}).Error; err != nil {
			return nil, fmt.Errorf("failed to expire cart: %w", err)
		}
		cart.Clear()
		cart.RemoveCoupon()
		s.recalculate(&cart)
	}
	return &cart, nil
}

// reconcile re-checks every line against the live catalog. It returns
// whether anything changed.
func (s *Service) reconcile(cart *Cart) (bool, error) {
	changed := false
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		variant, err := s.products.GetVariant(item.ProductID, item.VariantID)
		if err != nil {
			var nf *apperrors.NotFoundError
			if errors.As(err, &nf) {
				if derr := s.db.Delete(&Item{}, item.ID).Error; derr != nil {
					return false, fmt.Errorf("failed to drop stale cart item: %w", derr)
				}
				changed = true
				continue
			}
			return false, err
		}
		if !variant.IsPurchasable() {
			if derr := s.db.Delete(&Item{}, item.ID).Error; derr != nil {
				return false, fmt.Errorf("failed to drop stale cart item: %w", derr)
			}
			changed = true
			continue
		}

		if !item.SavedForLater && item.Quantity > variant.Stock {
			item.Quantity = variant.Stock
			changed = true
		}
		if item.Quantity == 0 {
			if derr := s.db.Delete(&Item{}, item.ID).Error; derr != nil {
				return false, fmt.Errorf("failed to drop stale cart item: %w", derr)
			}
			changed = true
			continue
		}
		if item.Price != variant.Price || !equalInt64Ptr(item.DiscountPrice, variant.DiscountPrice) {
			item.Price = variant.Price
			item.DiscountPrice = variant.DiscountPrice
			changed = true
		}
		item.TotalPrice = item.UnitPrice() * int64(item.Quantity)
		kept = append(kept, item)
	}
	cart.Items = kept

	if changed {
		if len(cart.ActiveItems()) == 0 {
			cart.RemoveCoupon()
		}
		s.recalculate(cart)
	}
	return changed, nil
}

// couponLines projects active cart lines into the shape the coupon
// evaluator works on, pulling category ids from the catalog.
func (s *Service) couponLines(cart *Cart) ([]coupon.Line, error) {
	lines := make([]coupon.Line, 0, len(cart.Items))
	for _, item := range cart.ActiveItems() {
		var p product.Product
		if err := s.db.First(&p, item.ProductID).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve product %d: %w", item.ProductID, err)
		}
		lines = append(lines, coupon.Line{
			ProductID:  item.ProductID,
			CategoryID: p.CategoryID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice(),
		})
	}
	return lines, nil
}

// recalculate applies the configured tax rate and shipping policy and
// refreshes the sliding expiry.
func (s *Service) recalculate(cart *Cart) {
	var active int64
	for _, item := range cart.ActiveItems() {
		active += item.TotalPrice
	}

	shippingBase := int64(0)
	cart.Shipping.Method = ""
	if active > 0 {
		shippingBase = s.config.Pricing.ShippingFlatRate
		cart.Shipping.Method = "standard"
		if active >= s.config.Pricing.FreeShippingThreshold {
			shippingBase = 0
			cart.Shipping.Method = "free"
		}
	}

	cart.Recalculate(s.config.Pricing.TaxRatePercent, shippingBase)
	cart.ExpiresAt = time.Now().UTC().Add(s.config.CartExpiry())
}

func (s *Service) persist(cart *Cart) error {
	err := s.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(cart).Error
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *Service) lockKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
