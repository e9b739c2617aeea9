package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LendingItem is one credit-sale line. Paid is flipped item-by-item as the
// borrower settles.
type LendingItem struct {
	Name   string          `bson:"name" json:"name"`
	Unit   string          `bson:"unit" json:"unit"`
	Price  decimal.Decimal `bson:"price" json:"price"`
	Qty    int             `bson:"qty,omitempty" json:"qty,omitempty"`
	Weight decimal.Decimal `bson:"weight,omitempty" json:"weight,omitempty"`
	Total  decimal.Decimal `bson:"total" json:"total"`
	Paid   bool            `bson:"paid" json:"paid"`
}

// LendingPayment records one repayment. ShiftID/Cashier attribute the payment
// to the shift that took the money, which is how repayments enter revenue.
type LendingPayment struct {
	Amount    decimal.Decimal `bson:"amount" json:"amount"`
	Timestamp time.Time       `bson:"timestamp" json:"timestamp"`
	ShiftID   string          `bson:"shiftId" json:"shiftId"`
	Cashier   string          `bson:"cashier" json:"cashier"`
}

// Lending is a credit sale grouped under a borrower. Returned becomes true
// once the outstanding balance reaches zero.
type Lending struct {
	ID           string           `bson:"_id" json:"id"`
	BorrowerName string           `bson:"borrowerName" json:"borrowerName"`
	Items        []LendingItem    `bson:"items" json:"items"`
	Total        decimal.Decimal  `bson:"total" json:"total"`
	Timestamp    time.Time        `bson:"timestamp" json:"timestamp"`
	Payments     []LendingPayment `bson:"payments,omitempty" json:"payments"`
	Returned     bool             `bson:"returned" json:"returned"`
}

// Outstanding is the unpaid balance: Total minus the sum of payments.
func (l *Lending) Outstanding() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range l.Payments {
		paid = paid.Add(p.Amount)
	}
	return l.Total.Sub(paid)
}
