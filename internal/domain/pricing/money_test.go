package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, int64(200), Percent(2000, 10))
	assert.Equal(t, int64(360), Percent(2000, 18))
	assert.Equal(t, int64(0), Percent(0, 18))
	// Truncates toward zero, no float rounding.
	assert.Equal(t, int64(1), Percent(10, 18))
}

func TestClampZero(t *testing.T) {
	assert.Equal(t, int64(0), ClampZero(-500))
	assert.Equal(t, int64(0), ClampZero(0))
	assert.Equal(t, int64(42), ClampZero(42))
}

func TestMin(t *testing.T) {
	assert.Equal(t, int64(200), Min(200, 500))
	assert.Equal(t, int64(200), Min(500, 200))
}

func TestMoneyAdd(t *testing.T) {
	a := New(1000, "INR")
	b := New(250, "INR")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sum.Amount)
	assert.Equal(t, "INR", sum.Currency)

	_, err = a.Add(New(100, "USD"))
	assert.Error(t, err)
}

func TestMoneySub(t *testing.T) {
	a := New(1000, "INR")

	diff, err := a.Sub(New(1500, "INR"))
	require.NoError(t, err)
	assert.Equal(t, int64(-500), diff.Amount)

	_, err = a.Sub(New(1, "USD"))
	assert.Error(t, err)
}

func TestNewDefaultsCurrency(t *testing.T) {
	m := New(100, "")
	assert.Equal(t, DefaultCurrency, m.Currency)
	assert.False(t, m.IsZero())
	assert.True(t, Zero("INR").IsZero())
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, int64(3000), LineTotal(3, 1000))
}
