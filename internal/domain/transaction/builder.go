package transaction

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/pos-terminal/internal/domain/cart"
)

var (
	ErrMissingCustomer = errors.New("customer is required")
	ErrEmptyCart       = errors.New("cart has no items")
)

// Item is one line of the submission payload.
type Item struct {
	ProductID  int             `json:"product_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Request is the payload for creating a sale record. Field names match
// the POS API contract. Reference is generated client-side so the
// server can detect a duplicate submission of the same sale.
type Request struct {
	Reference   string          `json:"reference"`
	CustomerID  int             `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []Item          `json:"items"`
}

// Build assembles a Request from the cart. Validation short-circuits:
// customer first, then lines. The cart is not modified.
func Build(c *cart.Cart) (*Request, error) {
	if c.CustomerID() <= 0 {
		return nil, ErrMissingCustomer
	}
	if c.Len() == 0 {
		return nil, ErrEmptyCart
	}

	lines := c.Lines()
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			Price:      l.UnitPrice,
			TotalPrice: l.LineTotal(),
		})
	}

	return &Request{
		Reference:   uuid.New().String(),
		CustomerID:  c.CustomerID(),
		TotalAmount: c.OrderTotal(),
		Items:       items,
	}, nil
}
