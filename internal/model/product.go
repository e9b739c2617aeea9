package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Units a product can be sold in. "pcs" lines carry an integer quantity,
// "kg" lines carry a decimal weight.
const (
	UnitPcs = "pcs"
	UnitKg  = "kg"
)

// Product is a catalog entry. Profit = Price - Capital is maintained on every
// create/edit; Stock is never negative — sale commits floor it at zero.
// Stock is decimal because kg products are decremented by fractional weights.
type Product struct {
	ID        string          `bson:"_id" json:"id"`
	Name      string          `bson:"name" json:"name"`
	Price     decimal.Decimal `bson:"price" json:"price"`
	Capital   decimal.Decimal `bson:"capital" json:"capital"`
	Profit    decimal.Decimal `bson:"profit" json:"profit"`
	Category  string          `bson:"category" json:"category"`
	Unit      string          `bson:"unit" json:"unit"` // "pcs" | "kg"
	Stock     decimal.Decimal `bson:"stock" json:"stock"`
	CreatedAt time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// ByWeight reports whether the product is weight-priced.
func (p *Product) ByWeight() bool { return p.Unit == UnitKg }
