package cart

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/example/pos-terminal/internal/domain/catalog"
)

var (
	ErrUnknownProduct    = errors.New("product not in catalog")
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrDuplicateLine     = errors.New("product already in cart")
	ErrLineNotFound      = errors.New("product not in cart")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("quantity exceeds available stock")
)

// Line is one selected product in the cart. UnitPrice is captured from
// the catalog at add time and does not follow later price changes.
type Line struct {
	ProductID int
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal derives the line amount. It is computed, never stored, so
// it cannot drift from its inputs.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the working set of one pending sale: a customer reference and
// insertion-ordered lines, at most one per product. All mutations are
// synchronous, validate against the catalog snapshot, and leave the cart
// untouched on failure.
type Cart struct {
	snapshot   *catalog.Snapshot
	customerID int
	lines      []Line
	byProduct  map[int]int // product id -> index into lines
}

// New creates an empty cart validating against the given snapshot.
func New(snapshot *catalog.Snapshot) *Cart {
	return &Cart{
		snapshot:  snapshot,
		byProduct: make(map[int]int),
	}
}

// AddLine puts a product into the cart with quantity 1 at the snapshot
// price. Re-adding a selected product is rejected, not merged.
func (c *Cart) AddLine(productID int) error {
	product, ok := c.snapshot.Lookup(productID)
	if !ok {
		return ErrUnknownProduct
	}
	if product.Stock <= 0 {
		return ErrOutOfStock
	}
	if _, exists := c.byProduct[productID]; exists {
		return ErrDuplicateLine
	}

	c.byProduct[productID] = len(c.lines)
	c.lines = append(c.lines, Line{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  1,
	})
	return nil
}

// UpdateQuantity replaces the quantity of an existing line. Stock is
// checked against the snapshot, not against the cart.
func (c *Cart) UpdateQuantity(productID, quantity int) error {
	i, exists := c.byProduct[productID]
	if !exists {
		return ErrLineNotFound
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	product, ok := c.snapshot.Lookup(productID)
	if !ok {
		return ErrUnknownProduct
	}
	if quantity > product.Stock {
		return ErrInsufficientStock
	}

	c.lines[i].Quantity = quantity
	return nil
}

// RemoveLine drops the line for productID. Removing an absent product
// is a no-op.
func (c *Cart) RemoveLine(productID int) {
	i, exists := c.byProduct[productID]
	if !exists {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.byProduct, productID)
	for j := i; j < len(c.lines); j++ {
		c.byProduct[c.lines[j].ProductID] = j
	}
}

// Clear empties the cart and unsets the customer.
func (c *Cart) Clear() {
	c.lines = nil
	c.byProduct = make(map[int]int)
	c.customerID = 0
}

// SetCustomer records the customer reference for this sale. The id is
// opaque here; the server validates it.
func (c *Cart) SetCustomer(id int) {
	c.customerID = id
}

// CustomerID returns the customer reference, 0 when unset.
func (c *Cart) CustomerID() int {
	return c.customerID
}

// Lines returns the cart lines in insertion order. The slice is a copy.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Line returns the line for productID, if present.
func (c *Cart) Line(productID int) (Line, bool) {
	i, exists := c.byProduct[productID]
	if !exists {
		return Line{}, false
	}
	return c.lines[i], true
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// OrderTotal sums the line totals, zero for an empty cart. Recomputed
// on every call with exact decimal arithmetic.
func (c *Cart) OrderTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}
