// internal/domain/coupon/evaluator.go
package coupon

import (
	"fmt"
	"sort"
	"time"

	"github.com/your-org/ambika-backend/internal/domain/pricing"
	"github.com/your-org/ambika-backend/internal/domain/user"
	"github.com/your-org/ambika-backend/internal/pkg/apperrors"
)

// Line is the slice of cart state the evaluator needs: product and
// category identity for allow/exclude lists, quantity and unit price
// for buy-X-get-Y math. Saved-for-later lines must not be passed in.
type Line struct {
	ProductID  uint
	CategoryID uint
	Quantity   int
	UnitPrice  int64 // Snapshot price in paise
}

// CanApply validates whether a coupon may be applied for the given
// user and cart. Checks run in a fixed order and short-circuit on the
// first failure, so callers (and tests) can rely on the exact reason.
// userUsageCount is the number of usage-history entries for this user.
func CanApply(c *Coupon, u *user.User, cartSubtotal int64, lines []Line, userUsageCount int, now time.Time) error {
	if !c.IsValidNow(now) {
		return apperrors.NewCouponIneligible(c.Code, "Coupon is not valid or has expired")
	}

	if cartSubtotal < c.MinimumAmount {
		return apperrors.NewCouponIneligible(c.Code,
			fmt.Sprintf("Minimum order amount of ₹%d required", c.MinimumAmount/100))
	}

	if c.MaximumAmount != nil && cartSubtotal > *c.MaximumAmount {
		return apperrors.NewCouponIneligible(c.Code,
			fmt.Sprintf("Maximum order amount of ₹%d exceeded", *c.MaximumAmount/100))
	}

	if len(c.ApplicableUsers) > 0 && !containsUint(c.ApplicableUsers, u.ID) {
		return apperrors.NewCouponIneligible(c.Code, "This coupon is not applicable for your account")
	}

	if len(c.UserTiers) > 0 && !containsTier(c.UserTiers, u.LoyaltyTier) {
		return apperrors.NewCouponIneligible(c.Code, "This coupon is not applicable for your membership tier")
	}

	if c.NewUsersOnly && u.TotalOrders > 0 {
		return apperrors.NewCouponIneligible(c.Code, "This coupon is only for new users")
	}

	if userUsageCount >= c.UsageLimitPerUser {
		return apperrors.NewCouponIneligible(c.Code, "You have already used this coupon maximum number of times")
	}

	if len(c.ApplicableProducts) > 0 || len(c.ApplicableCategories) > 0 {
		hasApplicable := false
		for _, line := range lines {
			if containsUint(c.ApplicableProducts, line.ProductID) ||
				containsUint(c.ApplicableCategories, line.CategoryID) {
				hasApplicable = true
				break
			}
		}
		if !hasApplicable {
			return apperrors.NewCouponIneligible(c.Code, "This coupon is not applicable for items in your cart")
		}
	}

	// Reject when ANY line matches an exclusion, not all.
	if len(c.ExcludedProducts) > 0 || len(c.ExcludedCategories) > 0 {
		for _, line := range lines {
			if containsUint(c.ExcludedProducts, line.ProductID) ||
				containsUint(c.ExcludedCategories, line.CategoryID) {
				return apperrors.NewCouponIneligible(c.Code, "Some items in your cart are not eligible for this coupon")
			}
		}
	}

	return nil
}

// CalculateDiscount computes the discount amount in paise for the
// given subtotal and lines. Pure: it mutates nothing. The result is
// always clamped to the subtotal, regardless of type.
func CalculateDiscount(c *Coupon, subtotal int64, lines []Line) int64 {
	var discount int64

	switch c.Type {
	case TypePercentage:
		discount = pricing.Percent(subtotal, c.Value)
		if c.MaximumDiscount != nil {
			discount = pricing.Min(discount, *c.MaximumDiscount)
		}

	case TypeFixed:
		discount = c.Value

	case TypeFreeShipping:
		// The shipping waiver is applied by the cart aggregator;
		// it contributes nothing to the discount amount itself.
		discount = 0

	case TypeBuyXGetY:
		discount = buyXGetYDiscount(c, lines)
	}

	return pricing.Min(discount, subtotal)
}

// buyXGetYDiscount grants freeUnits = floor(eligibleQty/buyQty)*getQty
// free units, consumed cheapest-first so the cheapest eligible units
// are the ones discounted.
func buyXGetYDiscount(c *Coupon, lines []Line) int64 {
	if c.BuyQuantity <= 0 || c.GetQuantity <= 0 {
		return 0
	}

	eligible := make([]Line, 0, len(lines))
	totalEligibleQty := 0
	for _, line := range lines {
		if len(c.ApplicableProducts) == 0 || containsUint(c.ApplicableProducts, line.ProductID) {
			eligible = append(eligible, line)
			totalEligibleQty += line.Quantity
		}
	}

	freeUnits := totalEligibleQty / c.BuyQuantity * c.GetQuantity
	if freeUnits == 0 {
		return 0
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].UnitPrice < eligible[j].UnitPrice
	})

	getDiscount := int64(100)
	if c.GetProductDiscount != nil {
		getDiscount = *c.GetProductDiscount
	}

	var discount int64
	remaining := freeUnits
	for _, line := range eligible {
		if remaining <= 0 {
			break
		}
		freeQty := line.Quantity
		if remaining < freeQty {
			freeQty = remaining
		}
		discount += pricing.Percent(int64(freeQty)*line.UnitPrice, getDiscount)
		remaining -= freeQty
	}
	return discount
}

func containsUint(list []uint, v uint) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsTier(list []user.LoyaltyTier, v user.LoyaltyTier) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
