// Package session coordinates one transaction-creation workflow: it
// loads the catalog once, owns the cart built against it, and drives
// submission. The cart itself stays free of I/O; everything that
// touches the network funnels through here.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/pos-terminal/internal/domain/cart"
	"github.com/example/pos-terminal/internal/domain/catalog"
	"github.com/example/pos-terminal/internal/domain/transaction"
)

var (
	ErrNotStarted     = errors.New("session not started")
	ErrClosed         = errors.New("session already closed")
	ErrSubmitInFlight = errors.New("submission already in progress")
)

// Submitter transmits a finalized transaction to the POS API.
type Submitter interface {
	SubmitTransaction(ctx context.Context, req *transaction.Request) error
}

// Publisher emits sale events for downstream consumers. A nil Publisher
// disables publishing.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Session owns exactly one cart and one catalog snapshot for the
// lifetime of a pending sale. Mutations are serial (one UI context);
// the mutex only guards the submit path against a double-click racing
// an in-flight network call.
type Session struct {
	id        string
	loader    catalog.Loader
	submitter Submitter
	publisher Publisher

	mu       sync.Mutex
	inFlight bool
	closed   bool
	snapshot *catalog.Snapshot
	cart     *cart.Cart
}

// New creates a session. Start must be called before the cart is used.
func New(loader catalog.Loader, submitter Submitter, publisher Publisher) *Session {
	return &Session{
		id:        uuid.New().String(),
		loader:    loader,
		submitter: submitter,
		publisher: publisher,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Start takes the catalog snapshot and creates the empty cart. The
// snapshot is not refreshed afterwards; the server re-validates stock
// at submission.
func (s *Session) Start(ctx context.Context) error {
	snapshot, err := catalog.Take(ctx, s.loader)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	s.cart = cart.New(snapshot)
	s.closed = false
	return nil
}

// Cart returns the working cart, nil before Start.
func (s *Session) Cart() *cart.Cart {
	return s.cart
}

// Catalog returns the snapshot taken at Start, nil before Start.
func (s *Session) Catalog() *catalog.Snapshot {
	return s.snapshot
}

// Submit validates the cart, transmits the transaction, and on success
// publishes a SaleCompleted event and closes the session. Any failure
// leaves the cart exactly as it was, so the user can correct and
// resubmit. A second Submit while one is outstanding is rejected.
func (s *Session) Submit(ctx context.Context) (*transaction.Request, error) {
	s.mu.Lock()
	if s.cart == nil {
		s.mu.Unlock()
		return nil, ErrNotStarted
	}
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	req, err := transaction.Build(s.cart)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.inFlight = true
	s.mu.Unlock()

	err = s.submitter.SubmitTransaction(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		return nil, err
	}

	s.publishSale(ctx, req)
	s.cart.Clear()
	s.closed = true
	log.Printf("[Session] %s: transaction %s submitted", s.id, req.Reference)
	return req, nil
}

// Cancel discards the cart without submitting. Safe to call at any
// point after Start.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil || s.closed {
		return
	}
	s.cart.Clear()
	s.closed = true
}

// publishSale emits the SaleCompleted event. Publishing is best-effort:
// the sale is already accepted by the server, so a broker failure is
// logged, not surfaced.
func (s *Session) publishSale(ctx context.Context, req *transaction.Request) {
	if s.publisher == nil {
		return
	}
	event := SaleCompleted{
		SessionID:   s.id,
		Reference:   req.Reference,
		CustomerID:  req.CustomerID,
		TotalAmount: req.TotalAmount,
		ItemCount:   len(req.Items),
		CompletedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, req.Reference, event); err != nil {
		log.Printf("[Session] %s: failed to publish %s: %v", s.id, EventSaleCompleted, err)
	}
}
