package dto

import (
	"github.com/shopspring/decimal"

	"github.com/MILO-debug/POS/internal/model"
)

// CartItemRequest is one requested line. Unit-priced items carry Qty; for
// weight-priced items either Weight or Amount may be given — when Amount is
// set the weight is derived from it at the product's price.
type CartItemRequest struct {
	Name   string          `json:"name" validate:"required"`
	Unit   string          `json:"unit" validate:"required,oneof=pcs kg"`
	Qty    int             `json:"qty" validate:"omitempty,min=1"`
	Weight decimal.Decimal `json:"weight"`
	Amount decimal.Decimal `json:"amount"`
}

type CheckoutRequest struct {
	Items    []CartItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount decimal.Decimal   `json:"discount"`
	Cash     decimal.Decimal   `json:"cash" validate:"required"`
}

// QuoteRequest previews totals for a cart without committing anything.
type QuoteRequest struct {
	Items    []CartItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount decimal.Decimal   `json:"discount"`
	Cash     decimal.Decimal   `json:"cash"`
}

type QuoteResponse struct {
	Items    []model.SaleItem `json:"items"`
	Subtotal decimal.Decimal  `json:"subtotal"`
	Discount decimal.Decimal  `json:"discount"`
	Total    decimal.Decimal  `json:"total"`
	Change   decimal.Decimal  `json:"change"`
}

// SaleResponse is a committed sale plus its durability disposition, so
// clients (and tests) can tell a remote commit from a locally queued one.
type SaleResponse struct {
	Sale        model.Sale `json:"sale"`
	Disposition string     `json:"disposition"` // "committed" | "queued"
	ReceiptPath string     `json:"receiptPath,omitempty"`
}

// SummaryRow aggregates quantities sold per (name, unit) within a shift.
type SummaryRow struct {
	Name   string          `json:"name"`
	Unit   string          `json:"unit"`
	Qty    int             `json:"qty"`
	Weight decimal.Decimal `json:"weight"`
	Total  decimal.Decimal `json:"total"`
}

type SalesSummaryResponse struct {
	ShiftID     string          `json:"shiftId,omitempty"`
	TotalIncome decimal.Decimal `json:"totalIncome"`
	Rows        []SummaryRow    `json:"rows"`
}
