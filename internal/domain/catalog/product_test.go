package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates product with zero counters", func(t *testing.T) {
		p, err := NewProduct("Espresso Beans 1kg", "dark roast", "bag", decimal.NewFromInt(18))
		require.NoError(t, err)

		assert.Equal(t, "Espresso Beans 1kg", p.Name)
		assert.Equal(t, int64(0), p.OnHandQuantity)
		assert.Equal(t, int64(0), p.PendingQuantity)
		assert.True(t, p.UnitCost.IsZero())
		assert.Equal(t, ProductStatusActive, p.Status)
		assert.NotEqual(t, "", p.ID.String())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProduct("   ", "", "", decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects negative sell price", func(t *testing.T) {
		_, err := NewProduct("Beans", "", "", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestProductAddPending(t *testing.T) {
	p, err := NewProduct("Beans", "", "bag", decimal.NewFromInt(18))
	require.NoError(t, err)

	require.NoError(t, p.AddPending(10))
	assert.Equal(t, int64(10), p.PendingQuantity)

	require.NoError(t, p.AddPending(-4))
	assert.Equal(t, int64(6), p.PendingQuantity)

	err = p.AddPending(-7)
	assert.Error(t, err)
	assert.Equal(t, int64(6), p.PendingQuantity, "failed delta must not change the counter")
}

func TestProductReceiveStock(t *testing.T) {
	t.Run("moves quantity from pending to on hand and overwrites cost", func(t *testing.T) {
		p, err := NewProduct("Beans", "", "bag", decimal.NewFromInt(18))
		require.NoError(t, err)
		require.NoError(t, p.AddPending(10))

		require.NoError(t, p.ReceiveStock(6, decimal.NewFromFloat(11.50)))

		assert.Equal(t, int64(6), p.OnHandQuantity)
		assert.Equal(t, int64(4), p.PendingQuantity)
		assert.True(t, p.UnitCost.Equal(decimal.NewFromFloat(11.50)))

		// a later receipt at a different price replaces the cost
		require.NoError(t, p.ReceiveStock(4, decimal.NewFromFloat(12.25)))
		assert.True(t, p.UnitCost.Equal(decimal.NewFromFloat(12.25)))
		assert.Equal(t, int64(0), p.PendingQuantity)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		p, _ := NewProduct("Beans", "", "bag", decimal.Zero)
		assert.Error(t, p.ReceiveStock(0, decimal.Zero))
		assert.Error(t, p.ReceiveStock(-3, decimal.Zero))
	})

	t.Run("rejects receipt exceeding pending", func(t *testing.T) {
		p, _ := NewProduct("Beans", "", "bag", decimal.Zero)
		require.NoError(t, p.AddPending(2))
		assert.Error(t, p.ReceiveStock(3, decimal.NewFromInt(1)))
		assert.Equal(t, int64(0), p.OnHandQuantity)
		assert.Equal(t, int64(2), p.PendingQuantity)
	})
}
