package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is one catalog entry as served by the POS API.
type Product struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

// Loader fetches the product catalog from the remote API.
type Loader interface {
	Load(ctx context.Context) ([]Product, error)
}

// Snapshot is a point-in-time view of the catalog, taken once per
// transaction session. Client-side stock checks run against this view;
// it is never refreshed, the server re-validates at submission.
type Snapshot struct {
	products []Product
	byID     map[int]int // product id -> index into products
}

// NewSnapshot builds a snapshot from a product list, preserving order.
// A duplicate id keeps the first occurrence.
func NewSnapshot(products []Product) *Snapshot {
	s := &Snapshot{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for _, p := range products {
		if _, ok := s.byID[p.ID]; ok {
			continue
		}
		s.byID[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}
	return s
}

// Take loads the catalog through the loader and snapshots it.
func Take(ctx context.Context, loader Loader) (*Snapshot, error) {
	products, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return NewSnapshot(products), nil
}

// Lookup returns the product for id, if present.
func (s *Snapshot) Lookup(id int) (Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// Products returns the snapshot contents in catalog order.
// The returned slice is a copy.
func (s *Snapshot) Products() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Len returns the number of products in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.products)
}
