package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRequest marks requests that cannot enter the pipeline at all.
var ErrInvalidRequest = errors.New("invalid request")

// Request is an incoming purchase request. NeededBy is advisory only.
type Request struct {
	RequestID    string  `json:"request_id"`
	CustomerName string  `json:"customer_name" binding:"required"`
	PaperType    string  `json:"paper_type" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required,gt=0"`
	MaxBudget    float64 `json:"max_budget" binding:"gte=0"`
	NeededBy     string  `json:"needed_by"`
}

// Validate checks the structural constraints a request must meet before processing.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.CustomerName) == "":
		return fmt.Errorf("%w: customer name is required", ErrInvalidRequest)
	case strings.TrimSpace(r.PaperType) == "":
		return fmt.Errorf("%w: paper type is required", ErrInvalidRequest)
	case r.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidRequest, r.Quantity)
	case r.MaxBudget < 0:
		return fmt.Errorf("%w: max budget must not be negative, got %.2f", ErrInvalidRequest, r.MaxBudget)
	}
	return nil
}

// InventoryAssessment is the inventory stage result. Stock and ETA are only
// meaningful when KnownItem is true.
type InventoryAssessment struct {
	KnownItem     bool   `json:"known_item"`
	CanFulfillNow bool   `json:"can_fulfill_now"`
	Stock         int    `json:"stock"`
	NeedsReorder  bool   `json:"needs_reorder"`
	ETA           string `json:"eta,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Quote is the pricing stage result. Prices are kept even when the quote is rejected.
type Quote struct {
	Approved        bool    `json:"approved"`
	UnitPrice       float64 `json:"unit_price"`
	Total           float64 `json:"total"`
	DiscountApplied float64 `json:"discount_applied"`
	Reason          string  `json:"reason"`
}

// Fulfillment is the disposition decided for a request together with its ledger row id.
type Fulfillment struct {
	Fulfilled     bool   `json:"fulfilled"`
	Status        Status `json:"status"`
	TransactionID int64  `json:"txn_id"`
	Message       string `json:"message"`
}

// Response is the per-request output record.
type Response struct {
	RequestID        string  `json:"request_id"`
	CustomerName     string  `json:"customer_name"`
	PaperType        string  `json:"paper_type"`
	Quantity         int     `json:"quantity"`
	QuoteTotal       float64 `json:"quote_total"`
	Status           Status  `json:"status"`
	Fulfilled        bool    `json:"fulfilled"`
	Rationale        string  `json:"rationale"`
	CashBalanceAfter float64 `json:"cash_balance_after"`
	Framework        string  `json:"framework"`
}

// ResponseColumns is the output column order consumed downstream.
var ResponseColumns = []string{
	"request_id",
	"customer_name",
	"paper_type",
	"quantity",
	"quote_total",
	"status",
	"fulfilled",
	"rationale",
	"cash_balance_after",
	"framework",
}

// Record renders r in ResponseColumns order. Amounts use two decimals.
func (r Response) Record() []string {
	return []string{
		r.RequestID,
		r.CustomerName,
		r.PaperType,
		strconv.Itoa(r.Quantity),
		strconv.FormatFloat(r.QuoteTotal, 'f', 2, 64),
		string(r.Status),
		strconv.FormatBool(r.Fulfilled),
		r.Rationale,
		strconv.FormatFloat(r.CashBalanceAfter, 'f', 2, 64),
		r.Framework,
	}
}
