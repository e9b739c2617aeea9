package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItem is one line of a committed sale. Exactly one of Qty / Weight is
// meaningful, selected by Unit.
type SaleItem struct {
	Name      string          `bson:"name" json:"name"`
	Unit      string          `bson:"unit" json:"unit"`
	Price     decimal.Decimal `bson:"price" json:"price"`
	Qty       int             `bson:"qty,omitempty" json:"qty,omitempty"`
	Weight    decimal.Decimal `bson:"weight,omitempty" json:"weight,omitempty"`
	LineTotal decimal.Decimal `bson:"lineTotal" json:"lineTotal"`
}

// Quantity returns the stock-relevant quantity: Weight for kg lines,
// Qty for pcs lines.
func (i *SaleItem) Quantity() decimal.Decimal {
	if i.Unit == UnitKg {
		return i.Weight
	}
	return decimal.NewFromInt(int64(i.Qty))
}

// Sale is the authoritative ledger record. Immutable once created except for
// deletion (refund). Total = Subtotal - Discount; Change = Cash - Total.
type Sale struct {
	ID        string          `bson:"_id" json:"id"`
	Timestamp time.Time       `bson:"timestamp" json:"timestamp"`
	ShiftID   string          `bson:"shiftId" json:"shiftId"`
	Items     []SaleItem      `bson:"items" json:"items"`
	Subtotal  decimal.Decimal `bson:"subtotal" json:"subtotal"`
	Discount  decimal.Decimal `bson:"discount" json:"discount"`
	Total     decimal.Decimal `bson:"total" json:"total"`
	Cash      decimal.Decimal `bson:"cash" json:"cash"`
	Change    decimal.Decimal `bson:"change" json:"change"`
	Cashier   string          `bson:"cashier" json:"cashier"`
}

// Expense is an independently recorded outgoing amount; it is never derived
// from sales.
type Expense struct {
	ID        string          `bson:"_id" json:"id"`
	Amount    decimal.Decimal `bson:"amount" json:"amount"`
	Reason    string          `bson:"reason" json:"reason"`
	Timestamp time.Time       `bson:"timestamp" json:"timestamp"`
}
