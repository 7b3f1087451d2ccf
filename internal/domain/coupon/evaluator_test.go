package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ambika-backend/internal/domain/user"
	"github.com/your-org/ambika-backend/internal/pkg/apperrors"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func validCoupon(now time.Time) *Coupon {
	return &Coupon{
		ID:                1,
		Code:              "WELCOME10",
		Type:              TypePercentage,
		Value:             10,
		UsageLimitPerUser: 1,
		ValidFrom:         now.Add(-24 * time.Hour),
		ValidUntil:        now.Add(24 * time.Hour),
		IsActive:          true,
	}
}

func testUser() *user.User {
	return &user.User{ID: 7, TotalOrders: 3, LoyaltyTier: user.TierSilver}
}

func ineligibleReason(t *testing.T, err error) string {
	t.Helper()
	var ce *apperrors.CouponIneligibleError
	require.ErrorAs(t, err, &ce)
	return ce.Reason
}

func TestCanApplyValid(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)

	err := CanApply(c, testUser(), 5000, []Line{{ProductID: 1, Quantity: 1, UnitPrice: 5000}}, 0, now)
	assert.NoError(t, err)
}

func TestCanApplyInactive(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.IsActive = false

	err := CanApply(c, testUser(), 5000, nil, 0, now)
	assert.Equal(t, "Coupon is not valid or has expired", ineligibleReason(t, err))
}

func TestCanApplyValidityWindowInclusive(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)

	// validUntil == now is still usable.
	c.ValidUntil = now
	assert.NoError(t, CanApply(c, testUser(), 5000, nil, 0, now))

	// validFrom == now is usable too.
	c.ValidFrom = now
	c.ValidUntil = now.Add(time.Hour)
	assert.NoError(t, CanApply(c, testUser(), 5000, nil, 0, now))

	// One second past the window is not.
	c.ValidFrom = now.Add(-time.Hour)
	c.ValidUntil = now.Add(-time.Second)
	err := CanApply(c, testUser(), 5000, nil, 0, now)
	assert.Equal(t, "Coupon is not valid or has expired", ineligibleReason(t, err))
}

func TestCanApplyGlobalUsageLimit(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.UsageLimit = intPtr(100)
	c.UsedCount = 100

	err := CanApply(c, testUser(), 5000, nil, 0, now)
	assert.Equal(t, "Coupon is not valid or has expired", ineligibleReason(t, err))

	c.UsedCount = 99
	assert.NoError(t, CanApply(c, testUser(), 5000, nil, 0, now))
}

func TestCanApplyMinimumAmount(t *testing.T) {
	// Scenario: subtotal 1500, fixed coupon requiring minimum 2000.
	now := time.Now().UTC()
	c := validCoupon(now)
	c.Code = "NAVRATRI25"
	c.Type = TypeFixed
	c.Value = 500
	c.MinimumAmount = 2000

	err := CanApply(c, testUser(), 1500, nil, 0, now)
	assert.Contains(t, ineligibleReason(t, err), "Minimum order amount")
}

func TestCanApplyMaximumAmount(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.MaximumAmount = int64Ptr(10000)

	err := CanApply(c, testUser(), 10001, nil, 0, now)
	assert.Contains(t, ineligibleReason(t, err), "Maximum order amount")

	// Inclusive upper bound.
	assert.NoError(t, CanApply(c, testUser(), 10000, nil, 0, now))
}

func TestCanApplyUserRestriction(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.ApplicableUsers = []uint{1, 2, 3}

	err := CanApply(c, testUser(), 5000, nil, 0, now)
	assert.Equal(t, "This coupon is not applicable for your account", ineligibleReason(t, err))

	c.ApplicableUsers = []uint{7}
	assert.NoError(t, CanApply(c, testUser(), 5000, nil, 0, now))
}

func TestCanApplyTierRestriction(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.UserTiers = []user.LoyaltyTier{user.TierGold, user.TierPlatinum}

	err := CanApply(c, testUser(), 5000, nil, 0, now)
	assert.Equal(t, "This coupon is not applicable for your membership tier", ineligibleReason(t, err))
}

func TestCanApplyNewUsersOnly(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.NewUsersOnly = true

	err := CanApply(c, testUser(), 5000, nil, 0, now)
	assert.Equal(t, "This coupon is only for new users", ineligibleReason(t, err))

	fresh := &user.User{ID: 9, TotalOrders: 0, LoyaltyTier: user.TierBronze}
	assert.NoError(t, CanApply(c, fresh, 5000, nil, 0, now))
}

func TestCanApplyPerUserLimit(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.UsageLimitPerUser = 2

	assert.NoError(t, CanApply(c, testUser(), 5000, nil, 1, now))

	err := CanApply(c, testUser(), 5000, nil, 2, now)
	assert.Equal(t, "You have already used this coupon maximum number of times", ineligibleReason(t, err))
}

func TestCanApplyApplicableProducts(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.ApplicableProducts = []uint{42}

	lines := []Line{{ProductID: 1, CategoryID: 5, Quantity: 1, UnitPrice: 1000}}
	err := CanApply(c, testUser(), 5000, lines, 0, now)
	assert.Equal(t, "This coupon is not applicable for items in your cart", ineligibleReason(t, err))

	// A single matching line is enough.
	lines = append(lines, Line{ProductID: 42, CategoryID: 5, Quantity: 1, UnitPrice: 1000})
	assert.NoError(t, CanApply(c, testUser(), 5000, lines, 0, now))
}

func TestCanApplyApplicableCategories(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.ApplicableCategories = []uint{9}

	lines := []Line{{ProductID: 1, CategoryID: 9, Quantity: 1, UnitPrice: 1000}}
	assert.NoError(t, CanApply(c, testUser(), 5000, lines, 0, now))
}

func TestCanApplyExclusions(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.ExcludedProducts = []uint{2}

	// Any excluded line rejects the coupon, even if other lines are fine.
	lines := []Line{
		{ProductID: 1, CategoryID: 5, Quantity: 1, UnitPrice: 1000},
		{ProductID: 2, CategoryID: 5, Quantity: 1, UnitPrice: 1000},
	}
	err := CanApply(c, testUser(), 5000, lines, 0, now)
	assert.Equal(t, "Some items in your cart are not eligible for this coupon", ineligibleReason(t, err))

	c.ExcludedProducts = nil
	c.ExcludedCategories = []uint{5}
	err = CanApply(c, testUser(), 5000, lines, 0, now)
	assert.Equal(t, "Some items in your cart are not eligible for this coupon", ineligibleReason(t, err))
}

func TestCalculateDiscountPercentageWithCap(t *testing.T) {
	// Scenario: one line qty 2 at 1000, 10% off capped at 500.
	now := time.Now().UTC()
	c := validCoupon(now)
	c.MaximumDiscount = int64Ptr(500)

	lines := []Line{{ProductID: 1, Quantity: 2, UnitPrice: 1000}}
	assert.Equal(t, int64(200), CalculateDiscount(c, 2000, lines))

	// Cap kicks in on a larger subtotal.
	assert.Equal(t, int64(500), CalculateDiscount(c, 20000, lines))
}

func TestCalculateDiscountFixedClampedToSubtotal(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.Type = TypeFixed
	c.Value = 5000

	// Never exceeds the order amount.
	assert.Equal(t, int64(1500), CalculateDiscount(c, 1500, nil))
	assert.Equal(t, int64(5000), CalculateDiscount(c, 9000, nil))
}

func TestCalculateDiscountFreeShipping(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.Type = TypeFreeShipping
	c.Value = 0

	assert.Equal(t, int64(0), CalculateDiscount(c, 5000, nil))
}

func TestCalculateDiscountBuyXGetY(t *testing.T) {
	// Scenario: buy-2-get-1, three eligible units priced 100/200/300;
	// one free unit lands on the cheapest line.
	now := time.Now().UTC()
	c := validCoupon(now)
	c.Type = TypeBuyXGetY
	c.BuyQuantity = 2
	c.GetQuantity = 1

	lines := []Line{
		{ProductID: 3, Quantity: 1, UnitPrice: 300},
		{ProductID: 1, Quantity: 1, UnitPrice: 100},
		{ProductID: 2, Quantity: 1, UnitPrice: 200},
	}
	assert.Equal(t, int64(100), CalculateDiscount(c, 600, lines))
}

func TestCalculateDiscountBuyXGetYMultipleFreeUnits(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.Type = TypeBuyXGetY
	c.BuyQuantity = 2
	c.GetQuantity = 1

	// 6 eligible units → 3 free, consumed cheapest-first across lines.
	lines := []Line{
		{ProductID: 1, Quantity: 2, UnitPrice: 100},
		{ProductID: 2, Quantity: 4, UnitPrice: 250},
	}
	// Free: 2 units at 100, 1 unit at 250.
	assert.Equal(t, int64(450), CalculateDiscount(c, 1200, lines))
}

func TestCalculateDiscountBuyXGetYPartialDiscount(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.Type = TypeBuyXGetY
	c.BuyQuantity = 2
	c.GetQuantity = 1
	c.GetProductDiscount = int64Ptr(50) // Half price on the free unit

	lines := []Line{{ProductID: 1, Quantity: 2, UnitPrice: 400}}
	assert.Equal(t, int64(200), CalculateDiscount(c, 800, lines))
}

func TestCalculateDiscountBuyXGetYRespectsApplicableProducts(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.Type = TypeBuyXGetY
	c.BuyQuantity = 2
	c.GetQuantity = 1
	c.ApplicableProducts = []uint{1}

	// Only product 1 counts toward the trigger and the reward.
	lines := []Line{
		{ProductID: 1, Quantity: 1, UnitPrice: 100},
		{ProductID: 2, Quantity: 5, UnitPrice: 50},
	}
	assert.Equal(t, int64(0), CalculateDiscount(c, 350, lines))
}

func TestCalculateDiscountBuyXGetYZeroQuantities(t *testing.T) {
	now := time.Now().UTC()
	c := validCoupon(now)
	c.Type = TypeBuyXGetY

	lines := []Line{{ProductID: 1, Quantity: 10, UnitPrice: 100}}
	assert.Equal(t, int64(0), CalculateDiscount(c, 1000, lines))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "WELCOME10", NormalizeCode("  welcome10 "))
}
