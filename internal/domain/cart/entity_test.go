package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTaxRate  = int64(18)
	testShipping = int64(0)
)

func int64Ptr(v int64) *int64 { return &v }

func checkInvariant(t *testing.T, c *Cart) {
	t.Helper()
	expected := c.Subtotal + c.Tax.Amount + c.Shipping.Amount - c.Discount.Amount
	if expected < 0 {
		expected = 0
	}
	assert.Equal(t, expected, c.Total, "total invariant violated")
}

func TestAddItemMergesSameVariant(t *testing.T) {
	c := &Cart{UserID: 1}

	c.AddItem(1, 10, 2, 1000, nil)
	c.AddItem(1, 10, 3, 1000, nil)
	c.Recalculate(testTaxRate, testShipping)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, int64(5000), c.Items[0].TotalPrice)
	assert.Equal(t, int64(5000), c.Subtotal)
	checkInvariant(t, c)
}

func TestAddItemDifferentVariantsStaySeparate(t *testing.T) {
	c := &Cart{UserID: 1}

	c.AddItem(1, 10, 1, 1000, nil)
	c.AddItem(1, 11, 1, 1200, nil)
	c.Recalculate(testTaxRate, testShipping)

	assert.Len(t, c.Items, 2)
	assert.Equal(t, int64(2200), c.Subtotal)
}

func TestAddItemSnapshotsDiscountPrice(t *testing.T) {
	c := &Cart{UserID: 1}

	item := c.AddItem(1, 10, 2, 1000, int64Ptr(800))
	assert.Equal(t, int64(800), item.UnitPrice())
	assert.Equal(t, int64(1600), item.TotalPrice)
}

func TestRecalculateTax(t *testing.T) {
	c := &Cart{UserID: 1}
	c.AddItem(1, 10, 1, 10000, nil)
	c.Recalculate(18, 0)

	assert.Equal(t, int64(10000), c.Subtotal)
	assert.Equal(t, int64(1800), c.Tax.Amount)
	assert.Equal(t, int64(18), c.Tax.Rate)
	assert.Equal(t, int64(11800), c.Total)
	checkInvariant(t, c)
}

func TestRecalculateClampsTotalAtZero(t *testing.T) {
	c := &Cart{UserID: 1}
	c.AddItem(1, 10, 1, 100, nil)
	c.ApplyDiscount(5, "fixed", 100000)
	c.Recalculate(testTaxRate, testShipping)

	assert.Equal(t, int64(0), c.Total)
}

func TestFreeShippingWaivesShipping(t *testing.T) {
	c := &Cart{UserID: 1}
	c.AddItem(1, 10, 1, 1000, nil)

	c.Recalculate(0, 499)
	assert.Equal(t, int64(499), c.Shipping.Amount)
	assert.Equal(t, int64(1499), c.Total)

	c.ApplyDiscount(5, "free_shipping", 0)
	c.Recalculate(0, 499)
	assert.Equal(t, int64(0), c.Shipping.Amount)
	assert.Equal(t, int64(1000), c.Total)
	checkInvariant(t, c)
}

func TestRemoveCouponIsIdempotent(t *testing.T) {
	c := &Cart{UserID: 1}
	c.AddItem(1, 10, 1, 1000, nil)
	c.ApplyDiscount(5, "percentage", 100)
	c.Recalculate(testTaxRate, testShipping)

	c.RemoveCoupon()
	c.Recalculate(testTaxRate, testShipping)
	first := c.Discount

	c.RemoveCoupon()
	c.Recalculate(testTaxRate, testShipping)

	assert.Equal(t, first, c.Discount)
	assert.Equal(t, int64(0), c.Discount.Amount)
	assert.Nil(t, c.Discount.CouponID)
	assert.Empty(t, c.Discount.Type)
	checkInvariant(t, c)
}

func TestSavedForLaterExcludedFromTotals(t *testing.T) {
	c := &Cart{UserID: 1}
	c.Items = []Item{
		{ID: 1, ProductID: 1, VariantID: 10, Quantity: 1, Price: 1000, TotalPrice: 1000},
		{ID: 2, ProductID: 2, VariantID: 20, Quantity: 2, Price: 500, TotalPrice: 1000},
	}

	require.NoError(t, c.SetSavedForLater(2, true))
	c.Recalculate(0, 0)

	assert.Equal(t, 1, c.TotalItems)
	assert.Equal(t, int64(1000), c.Subtotal)
	assert.Len(t, c.Items, 2, "saved line is retained")
	assert.Len(t, c.ActiveItems(), 1)

	// Restoring brings it back into totals.
	require.NoError(t, c.SetSavedForLater(2, false))
	c.Recalculate(0, 0)
	assert.Equal(t, 3, c.TotalItems)
	assert.Equal(t, int64(2000), c.Subtotal)
}

func TestUpdateItemQuantity(t *testing.T) {
	c := &Cart{UserID: 1}
	c.Items = []Item{{ID: 7, ProductID: 1, VariantID: 10, Quantity: 1, Price: 250, TotalPrice: 250}}

	require.NoError(t, c.UpdateItemQuantity(7, 4))
	assert.Equal(t, int64(1000), c.Items[0].TotalPrice)

	err := c.UpdateItemQuantity(99, 1)
	assert.Error(t, err)
}

func TestRemoveItem(t *testing.T) {
	c := &Cart{UserID: 1}
	c.Items = []Item{
		{ID: 1, ProductID: 1, VariantID: 10, Quantity: 1, Price: 100, TotalPrice: 100},
		{ID: 2, ProductID: 2, VariantID: 20, Quantity: 1, Price: 200, TotalPrice: 200},
	}

	require.NoError(t, c.RemoveItem(1))
	c.Recalculate(0, 0)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, int64(200), c.Subtotal)

	assert.Error(t, c.RemoveItem(1))
}

func TestClear(t *testing.T) {
	c := &Cart{UserID: 1}
	c.AddItem(1, 10, 1, 100, nil)
	c.Clear()
	c.Recalculate(testTaxRate, testShipping)

	assert.Empty(t, c.Items)
	assert.Equal(t, int64(0), c.Subtotal)
	assert.Equal(t, int64(0), c.Total)
}

func TestIsExpired(t *testing.T) {
	now := time.Now().UTC()
	c := &Cart{UserID: 1, ExpiresAt: now.Add(-time.Hour)}
	assert.True(t, c.IsExpired(now))

	c.ExpiresAt = now.Add(time.Hour)
	assert.False(t, c.IsExpired(now))

	c.ExpiresAt = time.Time{}
	assert.False(t, c.IsExpired(now))
}
