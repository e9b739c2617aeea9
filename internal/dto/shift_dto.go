package dto

import (
	"github.com/shopspring/decimal"

	"github.com/MILO-debug/POS/internal/model"
)

// StartShiftRequest names the cashier the shift is attributed to. Cashier
// accounts may omit it — their employee name is taken from the session.
type StartShiftRequest struct {
	CashierName string `json:"cashierName"`
}

type EndShiftResponse struct {
	Shift model.Shift `json:"shift"`
	// TotalIncome is recomputed from the sale ledger at close, not taken
	// from the running counter.
	TotalIncome decimal.Decimal `json:"totalIncome"`
}

type OfflineStatusResponse struct {
	Online       bool `json:"online"`
	PendingCount int  `json:"pendingCount"`
}
