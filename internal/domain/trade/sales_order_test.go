package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logida/backend/internal/domain/shared"
)

func newTestOrder(t *testing.T) *SalesOrder {
	t.Helper()
	o, err := NewSalesOrder(uuid.New(), uuid.New(), "SH-1001", time.Now())
	require.NoError(t, err)
	return o
}

func TestNewSalesOrder(t *testing.T) {
	o := newTestOrder(t)
	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Equal(t, 5, o.Priority)
	assert.False(t, o.IsExternallySourced())

	_, err := NewSalesOrder(uuid.New(), uuid.New(), "", time.Now())
	assert.Error(t, err)

	_, err = NewSalesOrder(uuid.New(), uuid.Nil, "SH-1001", time.Now())
	assert.Error(t, err)
}

func TestSalesOrderAddLine(t *testing.T) {
	o := newTestOrder(t)
	productID := uuid.New()

	require.NoError(t, o.AddLine(&productID, "WIDGET-1", "Widget", 2, decimal.RequireFromString("9.99"), "111"))
	require.NoError(t, o.AddLine(nil, "SHOPIFY-12345", "Unmatched Thing", 1, decimal.RequireFromString("5.00"), "112"))

	require.Len(t, o.Lines, 2)
	assert.Nil(t, o.Lines[1].ProductID)
	assert.Equal(t, o.ID, o.Lines[0].OrderID)

	assert.Error(t, o.AddLine(nil, "", "No SKU", 1, decimal.Zero, ""))
	assert.Error(t, o.AddLine(nil, "X", "Zero qty", 0, decimal.Zero, ""))
}

func TestSalesOrderCancel(t *testing.T) {
	t.Run("cancels pending order", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Cancel("customer request"))
		assert.Equal(t, OrderStatusCancelled, o.Status)
		assert.Equal(t, "customer request", o.CancellationReason)
		assert.NotNil(t, o.CancelledAt)
	})

	t.Run("shipped order stays shipped", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkShipped())

		err := o.Cancel("too late")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Equal(t, OrderStatusShipped, o.Status)
		assert.Nil(t, o.CancelledAt)
	})

	t.Run("delivered order stays delivered", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkShipped())
		require.NoError(t, o.MarkDelivered())

		assert.ErrorIs(t, o.Cancel("too late"), shared.ErrInvalidState)
		assert.Equal(t, OrderStatusDelivered, o.Status)
	})
}

func TestSalesOrderUpdateShippingAddress(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.MarkShipped())

	o.UpdateShippingAddress(ShippingAddress{
		Name:  "Jane Doe",
		Line1: "Bahnhofstrasse 1",
		City:  "Zurich",
	}, "leave at door")

	// address refresh must not touch fulfillment status
	assert.Equal(t, OrderStatusShipped, o.Status)
	assert.Equal(t, "Jane Doe", o.Shipping.Name)
	assert.Equal(t, "leave at door", o.CustomerNote)
}

func TestSalesOrderFindLineByExternalID(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddLine(nil, "A", "A", 1, decimal.Zero, "line-1"))
	require.NoError(t, o.AddLine(nil, "B", "B", 1, decimal.Zero, "line-2"))

	line := o.FindLineByExternalID("line-2")
	require.NotNil(t, line)
	assert.Equal(t, "B", line.SKU)

	assert.Nil(t, o.FindLineByExternalID("line-3"))
}

func TestNewSalesReturn(t *testing.T) {
	orderID := uuid.New()
	r, err := NewSalesReturn(uuid.New(), orderID, "RET-900", "900", "shopify", "damaged", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ReturnStatusPending, r.Status)
	assert.Equal(t, "refund", r.ReturnType)

	lineID := uuid.New()
	require.NoError(t, r.AddLine(&lineID, nil, "WIDGET-1", "Widget", 1, "Customer Return"))
	require.Len(t, r.Lines, 1)

	assert.Error(t, r.AddLine(nil, nil, "WIDGET-1", "Widget", 0, ""))

	_, err = NewSalesReturn(uuid.New(), uuid.Nil, "RET-900", "900", "shopify", "", time.Now())
	assert.Error(t, err)
}
