package models

import "time"

// Status is the terminal outcome recorded for a processed request.
type Status string

const (
	StatusFulfilled   Status = "fulfilled"
	StatusUnfulfilled Status = "unfulfilled"
	StatusDeclined    Status = "declined"
)

// TransactionRecord is one append-only ledger row. ID and CreatedAt are assigned by the store.
type TransactionRecord struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	CustomerName string    `json:"customer_name"`
	PaperType    string    `json:"paper_type"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	TotalPrice   float64   `json:"total_price"`
	Status       Status    `json:"status"`
	Notes        string    `json:"notes"`
}
