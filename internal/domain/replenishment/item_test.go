package replenishment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T, ordered int64) *BatchItem {
	t.Helper()
	item, err := NewBatchItem(uuid.New(), uuid.New(), ordered, decimal.NewFromFloat(9.99), "", nil)
	require.NoError(t, err)
	return item
}

func int64Ref(v int64) *int64 {
	return &v
}

func costRef(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func noteRef(s string) *string {
	return &s
}

func TestNewBatchItem(t *testing.T) {
	t.Run("starts pending with nothing received", func(t *testing.T) {
		item := newTestItem(t, 10)
		assert.Equal(t, ItemStatusPending, item.Status)
		assert.Equal(t, int64(0), item.ReceivedQuantity)
		assert.Equal(t, int64(10), item.RemainingQuantity())
		assert.Nil(t, item.ReceivedAt)
	})

	t.Run("carries the note", func(t *testing.T) {
		item, err := NewBatchItem(uuid.New(), uuid.New(), 5, decimal.NewFromInt(2), "replaces damaged stock", nil)
		require.NoError(t, err)
		assert.Equal(t, "replaces damaged stock", item.Note)
	})

	t.Run("rejects non-positive ordered quantity", func(t *testing.T) {
		_, err := NewBatchItem(uuid.New(), uuid.New(), 0, decimal.Zero, "", nil)
		assert.Error(t, err)
		_, err = NewBatchItem(uuid.New(), uuid.New(), -5, decimal.Zero, "", nil)
		assert.Error(t, err)
	})

	t.Run("rejects negative unit cost", func(t *testing.T) {
		_, err := NewBatchItem(uuid.New(), uuid.New(), 1, decimal.NewFromInt(-1), "", nil)
		assert.Error(t, err)
	})
}

func TestBatchItemReceive(t *testing.T) {
	now := time.Now()

	t.Run("partial receipt keeps the line open", func(t *testing.T) {
		item := newTestItem(t, 10)
		require.NoError(t, item.Receive(4, now))

		assert.Equal(t, ItemStatusPartialReceived, item.Status)
		assert.Equal(t, int64(4), item.ReceivedQuantity)
		assert.Equal(t, int64(6), item.RemainingQuantity())
		assert.Nil(t, item.ReceivedAt)
	})

	t.Run("exact fill completes the line and stamps the receipt time", func(t *testing.T) {
		item := newTestItem(t, 10)
		require.NoError(t, item.Receive(4, now))
		require.NoError(t, item.Receive(6, now))

		assert.Equal(t, ItemStatusCompleted, item.Status)
		require.NotNil(t, item.ReceivedAt)
		assert.True(t, item.ReceivedAt.Equal(now))
	})

	t.Run("over-receipt is rejected", func(t *testing.T) {
		item := newTestItem(t, 10)
		require.NoError(t, item.Receive(7, now))
		err := item.Receive(4, now)
		assert.Error(t, err)
		assert.Equal(t, int64(7), item.ReceivedQuantity)
	})

	t.Run("completed line rejects further receipts", func(t *testing.T) {
		item := newTestItem(t, 3)
		require.NoError(t, item.Receive(3, now))
		assert.Error(t, item.Receive(1, now))
	})

	t.Run("cancelled line rejects receipts", func(t *testing.T) {
		item := newTestItem(t, 3)
		require.NoError(t, item.Cancel())
		assert.Error(t, item.Receive(1, now))
	})

	t.Run("non-positive quantity is rejected", func(t *testing.T) {
		item := newTestItem(t, 3)
		assert.Error(t, item.Receive(0, now))
		assert.Error(t, item.Receive(-2, now))
	})
}

func TestBatchItemCancel(t *testing.T) {
	t.Run("untouched line can be cancelled", func(t *testing.T) {
		item := newTestItem(t, 5)
		require.NoError(t, item.Cancel())
		assert.Equal(t, ItemStatusCancelled, item.Status)
	})

	t.Run("line with receipts cannot be cancelled", func(t *testing.T) {
		item := newTestItem(t, 5)
		require.NoError(t, item.Receive(1, time.Now()))
		assert.Error(t, item.Cancel())
		assert.Equal(t, ItemStatusPartialReceived, item.Status)
	})

	t.Run("double cancel is rejected", func(t *testing.T) {
		item := newTestItem(t, 5)
		require.NoError(t, item.Cancel())
		assert.Error(t, item.Cancel())
	})
}

func TestBatchItemUpdateOrder(t *testing.T) {
	t.Run("amends quantity and cost and yields the pending delta", func(t *testing.T) {
		item := newTestItem(t, 10)
		delta, err := item.UpdateOrder(int64Ref(14), costRef(8.50), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(4), delta)
		assert.Equal(t, int64(14), item.OrderedQuantity)
		assert.True(t, item.UnitCost.Equal(decimal.NewFromFloat(8.50)))

		delta, err = item.UpdateOrder(int64Ref(6), costRef(8.50), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(-8), delta)
	})

	t.Run("cost-only amendment leaves the quantity alone", func(t *testing.T) {
		item := newTestItem(t, 10)
		delta, err := item.UpdateOrder(nil, costRef(7.25), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), delta)
		assert.Equal(t, int64(10), item.OrderedQuantity)
		assert.True(t, item.UnitCost.Equal(decimal.NewFromFloat(7.25)))
	})

	t.Run("note-only amendment keeps quantity and cost", func(t *testing.T) {
		item := newTestItem(t, 10)
		delta, err := item.UpdateOrder(nil, nil, noteRef("confirmed with the vendor"))
		require.NoError(t, err)
		assert.Equal(t, int64(0), delta)
		assert.Equal(t, "confirmed with the vendor", item.Note)
		assert.True(t, item.UnitCost.Equal(decimal.NewFromFloat(9.99)))
	})

	t.Run("empty amendment is rejected", func(t *testing.T) {
		item := newTestItem(t, 10)
		_, err := item.UpdateOrder(nil, nil, nil)
		assert.Error(t, err)
	})

	t.Run("line with receipts is frozen", func(t *testing.T) {
		item := newTestItem(t, 10)
		require.NoError(t, item.Receive(2, time.Now()))
		_, err := item.UpdateOrder(int64Ref(12), nil, nil)
		assert.Error(t, err)
	})

	t.Run("cancelled line is frozen", func(t *testing.T) {
		item := newTestItem(t, 10)
		require.NoError(t, item.Cancel())
		_, err := item.UpdateOrder(int64Ref(12), nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects invalid amendments", func(t *testing.T) {
		item := newTestItem(t, 10)
		_, err := item.UpdateOrder(int64Ref(0), nil, nil)
		assert.Error(t, err)
		_, err = item.UpdateOrder(int64Ref(5), costRef(-1), nil)
		assert.Error(t, err)
	})
}
