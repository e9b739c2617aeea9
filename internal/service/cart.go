package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/model"
)

// ── Pricing engine ───────────────────────────────────────────────────────────
//
// All money is decimal and rounded to 2 places at line boundaries; weights
// carry 3 places. Totals are always recomputed from the lines, never patched
// incrementally.

const (
	moneyPlaces  = 2
	weightPlaces = 3
)

// Cart holds the in-progress lines of a sale. It is a pure value type: every
// mutation recomputes the affected line total from price and quantity.
type Cart struct {
	Lines []model.SaleItem
}

// AddUnit adds one piece of a pcs product, merging into an existing line for
// the same name and unit when one is present.
func (c *Cart) AddUnit(p *model.Product) {
	for i := range c.Lines {
		ln := &c.Lines[i]
		if ln.Name == p.Name && ln.Unit == model.UnitPcs {
			ln.Qty++
			ln.LineTotal = p.Price.Mul(decimal.NewFromInt(int64(ln.Qty))).Round(moneyPlaces)
			return
		}
	}
	c.Lines = append(c.Lines, model.SaleItem{
		Name:      p.Name,
		Unit:      model.UnitPcs,
		Price:     p.Price,
		Qty:       1,
		LineTotal: p.Price.Round(moneyPlaces),
	})
}

// AddWeight adds weight kilograms of a kg product, accumulating onto an
// existing line for the same product.
func (c *Cart) AddWeight(p *model.Product, weight decimal.Decimal) error {
	if !weight.IsPositive() {
		return fmt.Errorf("%w: weight must be greater than zero", apierror.ErrValidation)
	}
	weight = weight.Round(weightPlaces)
	for i := range c.Lines {
		ln := &c.Lines[i]
		if ln.Name == p.Name && ln.Unit == model.UnitKg {
			ln.Weight = ln.Weight.Add(weight).Round(weightPlaces)
			ln.LineTotal = AmountFromWeight(ln.Weight, p.Price)
			return nil
		}
	}
	c.Lines = append(c.Lines, model.SaleItem{
		Name:      p.Name,
		Unit:      model.UnitKg,
		Price:     p.Price,
		Weight:    weight,
		LineTotal: AmountFromWeight(weight, p.Price),
	})
	return nil
}

// StepQty changes the quantity of a pcs line by delta, flooring at 1. Lines
// are removed explicitly, never by stepping to zero.
func (c *Cart) StepQty(index, delta int) error {
	if index < 0 || index >= len(c.Lines) {
		return fmt.Errorf("%w: no cart line at index %d", apierror.ErrValidation, index)
	}
	ln := &c.Lines[index]
	if ln.Unit != model.UnitPcs {
		return fmt.Errorf("%w: quantity stepping only applies to pcs lines", apierror.ErrValidation)
	}
	ln.Qty += delta
	if ln.Qty < 1 {
		ln.Qty = 1
	}
	ln.LineTotal = ln.Price.Mul(decimal.NewFromInt(int64(ln.Qty))).Round(moneyPlaces)
	return nil
}

// Remove drops the line at index.
func (c *Cart) Remove(index int) error {
	if index < 0 || index >= len(c.Lines) {
		return fmt.Errorf("%w: no cart line at index %d", apierror.ErrValidation, index)
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	return nil
}

// Subtotal sums the line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, ln := range c.Lines {
		sum = sum.Add(ln.LineTotal)
	}
	return sum.Round(moneyPlaces)
}

// WeightFromAmount converts a money amount into kilograms at the given price
// per kg, rounded to 3 places.
func WeightFromAmount(amount, pricePerKg decimal.Decimal) (decimal.Decimal, error) {
	if !pricePerKg.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: price per kg must be greater than zero", apierror.ErrValidation)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be greater than zero", apierror.ErrValidation)
	}
	return amount.DivRound(pricePerKg, weightPlaces), nil
}

// AmountFromWeight converts kilograms back into money at the given price per
// kg, rounded to 2 places.
func AmountFromWeight(weight, pricePerKg decimal.Decimal) decimal.Decimal {
	return weight.Mul(pricePerKg).Round(moneyPlaces)
}

// FinalTotal applies the whole-sale discount. A discount larger than the
// subtotal clamps the total at zero rather than going negative.
func FinalTotal(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(moneyPlaces)
}

// Change returns the cash to hand back.
func Change(cash, total decimal.Decimal) decimal.Decimal {
	return cash.Sub(total).Round(moneyPlaces)
}

// ValidateTender checks discount and cash against the cart subtotal. It
// returns the final total on success.
func ValidateTender(subtotal, discount, cash decimal.Decimal) (decimal.Decimal, error) {
	if discount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: discount cannot be negative", apierror.ErrValidation)
	}
	if discount.GreaterThan(subtotal) {
		return decimal.Zero, fmt.Errorf("%w: discount cannot exceed the subtotal", apierror.ErrValidation)
	}
	total := FinalTotal(subtotal, discount)
	if cash.LessThan(total) {
		return decimal.Zero, fmt.Errorf("%w: cash received is less than the total", apierror.ErrValidation)
	}
	return total, nil
}

// productLookup resolves a catalog product by its (name, unit) identity.
type productLookup interface {
	FindByNameUnit(ctx context.Context, name, unit string) (*model.Product, error)
}

// BuildCart resolves the request items against the catalog and prices them.
// Weight items may be given either as a raw weight or as a money amount; an
// amount is converted at the product's current price per kg.
func BuildCart(ctx context.Context, catalog productLookup, items []dto.CartItemRequest) (*Cart, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: the cart is empty", apierror.ErrValidation)
	}
	cart := &Cart{}
	for _, it := range items {
		p, err := catalog.FindByNameUnit(ctx, it.Name, it.Unit)
		if err != nil {
			if apierror.IsNotFound(err) {
				return nil, fmt.Errorf("%w: unknown product %q (%s)", apierror.ErrValidation, it.Name, it.Unit)
			}
			return nil, err
		}
		if p.ByWeight() {
			weight := it.Weight
			if weight.IsZero() && !it.Amount.IsZero() {
				weight, err = WeightFromAmount(it.Amount, p.Price)
				if err != nil {
					return nil, err
				}
			}
			if err := cart.AddWeight(p, weight); err != nil {
				return nil, err
			}
			continue
		}
		qty := it.Qty
		if qty < 1 {
			qty = 1
		}
		for n := 0; n < qty; n++ {
			cart.AddUnit(p)
		}
	}
	return cart, nil
}
