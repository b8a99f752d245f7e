package session

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventSaleCompleted = "SaleCompleted"

// SaleCompleted is published after the POS API accepts a transaction,
// for downstream consumers (receipts, reporting projections).
type SaleCompleted struct {
	SessionID   string          `json:"session_id"`
	Reference   string          `json:"reference"`
	CustomerID  int             `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
	CompletedAt time.Time       `json:"completed_at"`
}
