package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO date format used for ETAs, ledger dates and reports.
const DateLayout = "2006-01-02"

// FinancialReport summarizes the ledger at a point in time.
type FinancialReport struct {
	CashBalance              float64 `bson:"cash_balance" json:"cash_balance"`
	FulfilledTransactions    int     `bson:"fulfilled_transactions" json:"fulfilled_transactions"`
	NonFulfilledTransactions int     `bson:"non_fulfilled_transactions" json:"non_fulfilled_transactions"`
	TotalRevenue             float64 `bson:"total_revenue" json:"total_revenue"`
	ReportGeneratedOn        string  `bson:"report_generated_on" json:"report_generated_on"`
}

// Snapshot is the reporting view attached to every processed request.
type Snapshot struct {
	CashBalance     float64         `bson:"cash_balance" json:"cash_balance"`
	FinancialReport FinancialReport `bson:"financial_report" json:"financial_report"`
	CreatedAt       time.Time       `bson:"created_at" json:"created_at"`
}

// RoundMoney rounds an amount to cents, half away from zero.
func RoundMoney(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
