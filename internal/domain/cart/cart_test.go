package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pos-terminal/internal/domain/catalog"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestCart() *Cart {
	snapshot := catalog.NewSnapshot([]catalog.Product{
		{ID: 1, Name: "Widget", Category: "tools", Price: price("10.00"), Stock: 5},
		{ID: 2, Name: "Gasket", Category: "parts", Price: price("2.50"), Stock: 3},
		{ID: 3, Name: "Display Stand", Category: "misc", Price: price("99.90"), Stock: 0},
	})
	return New(snapshot)
}

// ============================================
// AddLine Tests
// ============================================

func TestAddLine_Success(t *testing.T) {
	c := newTestCart()

	err := c.AddLine(1)

	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	line, ok := c.Line(1)
	require.True(t, ok)
	assert.Equal(t, 1, line.ProductID)
	assert.Equal(t, "Widget", line.Name)
	assert.Equal(t, 1, line.Quantity)
	assert.True(t, line.UnitPrice.Equal(price("10.00")))
	assert.True(t, line.LineTotal().Equal(price("10.00")))
}

func TestAddLine_UnknownProduct(t *testing.T) {
	c := newTestCart()

	err := c.AddLine(99)

	assert.ErrorIs(t, err, ErrUnknownProduct)
	assert.Equal(t, 0, c.Len())
}

func TestAddLine_OutOfStock(t *testing.T) {
	c := newTestCart()

	err := c.AddLine(3)

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 0, c.Len())
}

func TestAddLine_Duplicate(t *testing.T) {
	c := newTestCart()
	require.NoError(t, c.AddLine(1))

	err := c.AddLine(1)

	assert.ErrorIs(t, err, ErrDuplicateLine)
	// The original line survives untouched, quantities are not merged.
	require.Equal(t, 1, c.Len())
	line, _ := c.Line(1)
	assert.Equal(t, 1, line.Quantity)
}

// ============================================
// UpdateQuantity Tests
// ============================================

func TestUpdateQuantity_Success(t *testing.T) {
	c := newTestCart()
	require.NoError(t, c.AddLine(1))
	require.NoError(t, c.AddLine(2))

	err := c.UpdateQuantity(1, 3)

	require.NoError(t, err)
	line, _ := c.Line(1)
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, line.LineTotal().Equal(price("30.00")))

	// Other lines unaffected.
	other, _ := c.Line(2)
	assert.Equal(t, 1, other.Quantity)
}

func TestUpdateQuantity_LineNotFound(t *testing.T) {
	c := newTestCart()

	err := c.UpdateQuantity(1, 2)

	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestUpdateQuantity_InvalidQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
	}{
		{"zero", 0},
		{"negative", -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCart()
			require.NoError(t, c.AddLine(1))

			err := c.UpdateQuantity(1, tt.quantity)

			assert.ErrorIs(t, err, ErrInvalidQuantity)
			line, _ := c.Line(1)
			assert.Equal(t, 1, line.Quantity)
		})
	}
}

func TestUpdateQuantity_InsufficientStock(t *testing.T) {
	c := newTestCart()
	require.NoError(t, c.AddLine(1))
	require.NoError(t, c.UpdateQuantity(1, 3))

	err := c.UpdateQuantity(1, 6)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	line, _ := c.Line(1)
	assert.Equal(t, 3, line.Quantity)
}

func TestUpdateQuantity_UpToStockLimit(t *testing.T) {
	c := newTestCart()
	require.NoError(t, c.AddLine(1))

	err := c.UpdateQuantity(1, 5)

	require.NoError(t, err)
	line, _ := c.Line(1)
	assert.Equal(t, 5, line.Quantity)
}

// ============================================
// RemoveLine Tests
// ============================================

func TestRemoveLine_Absent(t *testing.T) {
	c := newTestCart()
	require.NoError(t, c.AddLine(1))

	// Removing a product that is not in the cart is a no-op.
	c.RemoveLine(99)

	assert.Equal(t, 1, c.Len())
}

func TestRemoveLine_PreservesOrderAndIndex(t *testing.T) {
	snapshot := catalog.NewSnapshot([]catalog.Product{
		{ID: 1, Name: "A", Price: price("1.00"), Stock: 9},
		{ID: 2, Name: "B", Price: price("2.00"), Stock: 9},
		{ID: 3, Name: "C", Price: price("3.00"), Stock: 9},
	})
	c := New(snapshot)
	require.NoError(t, c.AddLine(1))
	require.NoError(t, c.AddLine(2))
	require.NoError(t, c.AddLine(3))

	c.RemoveLine(2)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].ProductID)
	assert.Equal(t, 3, lines[1].ProductID)

	// Remaining lines are still addressable after the reshuffle.
	require.NoError(t, c.UpdateQuantity(3, 4))
	line, _ := c.Line(3)
	assert.Equal(t, 4, line.Quantity)
}

// ============================================
// Clear / Customer Tests
// ============================================

func TestClear(t *testing.T) {
	c := newTestCart()
	require.NoError(t, c.AddLine(1))
	c.SetCustomer(42)

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.CustomerID())
	assert.True(t, c.OrderTotal().IsZero())

	// A cleared cart is reusable.
	require.NoError(t, c.AddLine(1))
	assert.Equal(t, 1, c.Len())
}

// ============================================
// Total Tests
// ============================================

func TestOrderTotal_EmptyCart(t *testing.T) {
	c := newTestCart()

	assert.True(t, c.OrderTotal().IsZero())
}

func TestOrderTotal_SumsLines(t *testing.T) {
	c := newTestCart()
	require.NoError(t, c.AddLine(1))
	require.NoError(t, c.UpdateQuantity(1, 2))
	require.NoError(t, c.AddLine(2))
	require.NoError(t, c.UpdateQuantity(2, 3))

	// 2 * 10.00 + 3 * 2.50
	assert.True(t, c.OrderTotal().Equal(price("27.50")))
}

func TestOrderTotal_ExactDecimalArithmetic(t *testing.T) {
	// 0.10 accumulated many times drifts under float math; it must not here.
	snapshot := catalog.NewSnapshot([]catalog.Product{
		{ID: 1, Name: "Washer", Price: price("0.10"), Stock: 1000},
	})
	c := New(snapshot)
	require.NoError(t, c.AddLine(1))
	require.NoError(t, c.UpdateQuantity(1, 3))

	assert.Equal(t, "0.30", c.OrderTotal().StringFixed(2))
}

func TestOrderTotal_RecomputedAfterEveryMutation(t *testing.T) {
	c := newTestCart()

	require.NoError(t, c.AddLine(1))
	assert.True(t, c.OrderTotal().Equal(price("10.00")))

	require.NoError(t, c.AddLine(2))
	assert.True(t, c.OrderTotal().Equal(price("12.50")))

	require.NoError(t, c.UpdateQuantity(2, 2))
	assert.True(t, c.OrderTotal().Equal(price("15.00")))

	c.RemoveLine(1)
	assert.True(t, c.OrderTotal().Equal(price("5.00")))
}
