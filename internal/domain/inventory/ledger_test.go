// internal/domain/inventory/ledger_test.go
package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ambika-backend/internal/pkg/apperrors"
)

func TestCommitDecrementsEveryLine(t *testing.T) {
	ledger := NewMemoryLedger(map[uint]int{10: 5, 20: 8})

	err := ledger.Commit(nil, []Line{
		{ProductID: 1, VariantID: 10, Quantity: 2},
		{ProductID: 2, VariantID: 20, Quantity: 3},
	}, 42, 7)
	require.NoError(t, err)

	assert.Equal(t, 3, ledger.Stock(10))
	assert.Equal(t, 5, ledger.Stock(20))
	require.Len(t, ledger.Movements, 2)
	assert.Equal(t, MovementTypeOutbound, ledger.Movements[0].Type)
	assert.Equal(t, ReasonSale, ledger.Movements[0].Reason)
	assert.Equal(t, uint(42), ledger.Movements[0].ReferenceID)
	assert.Equal(t, 5, ledger.Movements[0].PreviousStock)
	assert.Equal(t, 3, ledger.Movements[0].NewStock)
}

func TestCommitIsAllOrNothing(t *testing.T) {
	ledger := NewMemoryLedger(map[uint]int{10: 5, 20: 1})

	err := ledger.Commit(nil, []Line{
		{ProductID: 1, VariantID: 10, Quantity: 2},
		{ProductID: 2, VariantID: 20, Quantity: 3},
	}, 42, 7)

	var stockErr *apperrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, uint(20), stockErr.VariantID)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	// The satisfiable line must not have been touched.
	assert.Equal(t, 5, ledger.Stock(10))
	assert.Equal(t, 1, ledger.Stock(20))
	assert.Empty(t, ledger.Movements)
}

func TestCommitUnknownVariant(t *testing.T) {
	ledger := NewMemoryLedger(map[uint]int{10: 5})

	err := ledger.Commit(nil, []Line{{ProductID: 9, VariantID: 99, Quantity: 1}}, 1, 1)

	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 5, ledger.Stock(10))
}

func TestReleaseRestoresCommittedStock(t *testing.T) {
	ledger := NewMemoryLedger(map[uint]int{10: 5})

	lines := []Line{{ProductID: 1, VariantID: 10, Quantity: 4}}
	require.NoError(t, ledger.Commit(nil, lines, 42, 7))
	require.Equal(t, 1, ledger.Stock(10))

	require.NoError(t, ledger.Release(nil, lines, 42, 7))
	assert.Equal(t, 5, ledger.Stock(10))

	require.Len(t, ledger.Movements, 2)
	release := ledger.Movements[1]
	assert.Equal(t, MovementTypeInbound, release.Type)
	assert.Equal(t, ReasonCancellation, release.Reason)
	assert.Equal(t, 1, release.PreviousStock)
	assert.Equal(t, 5, release.NewStock)
}

func TestCommitExactStockDrainsToZero(t *testing.T) {
	ledger := NewMemoryLedger(map[uint]int{10: 3})

	err := ledger.Commit(nil, []Line{{ProductID: 1, VariantID: 10, Quantity: 3}}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.Stock(10))

	// A second commit against the drained variant fails.
	err = ledger.Commit(nil, []Line{{ProductID: 1, VariantID: 10, Quantity: 1}}, 2, 1)
	var stockErr *apperrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)
}
