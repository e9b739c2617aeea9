package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shift lifecycle. Closed is terminal: a new shift must be started afresh.
const (
	ShiftOpen   = "open"
	ShiftClosed = "closed"
)

// ShiftSchemaVersion is the current document shape. Version 1 documents
// (written by the legacy client) may carry the running total in a
// "totalSales" field instead of "totalIncome".
const ShiftSchemaVersion = 2

// Shift is a bounded work session for one cashier. At most one shift with
// Status == "open" may exist per CashierName at any time; the uniqueness
// check and the insert run inside a single remote transaction.
//
// TotalIncome is a running counter incremented by sale commits and lending
// payments. It is advisory while the shift is open: closing the shift
// recomputes it from the sale ledger.
type Shift struct {
	ID            string          `bson:"_id" json:"id"`
	CashierName   string          `bson:"cashierName" json:"cashierName"`
	StartTime     time.Time       `bson:"startTime" json:"startTime"`
	EndTime       *time.Time      `bson:"endTime" json:"endTime,omitempty"`
	Status        string          `bson:"status" json:"status"` // "open" | "closed"
	TotalIncome   decimal.Decimal `bson:"totalIncome" json:"totalIncome"`
	SchemaVersion int             `bson:"schemaVersion" json:"-"`

	// LegacyTotalSales holds the version-1 field. It is only populated when
	// decoding old documents and is folded into TotalIncome by Normalize.
	LegacyTotalSales *decimal.Decimal `bson:"totalSales,omitempty" json:"-"`
}

// Normalize migrates a decoded document to the current schema version.
// Repositories call it on every read so the rest of the codebase only ever
// sees TotalIncome.
func (s *Shift) Normalize() {
	if s.SchemaVersion >= ShiftSchemaVersion {
		s.LegacyTotalSales = nil
		return
	}
	if s.TotalIncome.IsZero() && s.LegacyTotalSales != nil {
		s.TotalIncome = *s.LegacyTotalSales
	}
	s.LegacyTotalSales = nil
	s.SchemaVersion = ShiftSchemaVersion
}

// IsOpen reports whether sales may still be attributed to this shift.
func (s *Shift) IsOpen() bool { return s.Status == ShiftOpen }
