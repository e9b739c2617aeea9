package dto

import (
	"github.com/shopspring/decimal"

	"github.com/MILO-debug/POS/internal/model"
)

type CreateLendingRequest struct {
	BorrowerName string            `json:"borrowerName" validate:"required"`
	Items        []CartItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SelectedItem points at one unpaid item inside one lending document.
type SelectedItem struct {
	LendingID string `json:"lendingId" validate:"required"`
	ItemIndex int    `json:"itemIndex" validate:"min=0"`
}

// PaymentRequest records a repayment. Full=true settles the borrower's whole
// outstanding balance; otherwise Amount is required and Items marks which
// lines the money is applied to.
type PaymentRequest struct {
	Full   bool            `json:"full"`
	Amount decimal.Decimal `json:"amount"`
	Items  []SelectedItem  `json:"items"`
}

type PaymentResponse struct {
	BorrowerName string          `json:"borrowerName"`
	AmountPaid   decimal.Decimal `json:"amountPaid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	SaleID       string          `json:"saleId"`
	Disposition  string          `json:"disposition"`
}

// BorrowerSummary is one row of the borrowers overview.
type BorrowerSummary struct {
	BorrowerName string          `json:"borrowerName"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	Lendings     int             `json:"lendings"`
}

type BorrowerDetailResponse struct {
	BorrowerName string          `json:"borrowerName"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	Lendings     []model.Lending `json:"lendings"`
}
