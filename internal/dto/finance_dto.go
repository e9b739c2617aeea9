package dto

import "github.com/shopspring/decimal"

// DayTotal is one day's slice of a ranged aggregate.
type DayTotal struct {
	Date  string          `json:"date"` // YYYY-MM-DD
	Total decimal.Decimal `json:"total"`
}

// FinanceReport is recomputed from scratch for every query; nothing here is
// materialized. Capital is definitionally the same figure as Income,
// presented separately. Profit is computed from each product's current
// profit field, so later catalog edits shift past profit figures — that is
// the intended behavior, not drift.
type FinanceReport struct {
	Start        string          `json:"start"`
	End          string          `json:"end"`
	Income       decimal.Decimal `json:"income"`
	Capital      decimal.Decimal `json:"capital"`
	Profit       decimal.Decimal `json:"profit"`
	Expenses     decimal.Decimal `json:"expenses"`
	NetIncome    decimal.Decimal `json:"netIncome"`
	DailyProfit  []DayTotal      `json:"dailyProfit"`
	DailyCapital []DayTotal      `json:"dailyCapital"`
}
