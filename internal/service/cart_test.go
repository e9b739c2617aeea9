package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/model"
)

func pcsProduct(id, name, price string) *model.Product {
	return &model.Product{ID: id, Name: name, Unit: model.UnitPcs, Price: dec(price), Stock: dec("100")}
}

func kgProduct(id, name, price string) *model.Product {
	return &model.Product{ID: id, Name: name, Unit: model.UnitKg, Price: dec(price), Stock: dec("50")}
}

func TestCartAddUnitMergesLines(t *testing.T) {
	soap := pcsProduct("p1", "Soap", "12.50")
	cart := &Cart{}
	cart.AddUnit(soap)
	cart.AddUnit(soap)
	cart.AddUnit(soap)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Qty)
	assert.True(t, cart.Lines[0].LineTotal.Equal(dec("37.50")))
}

func TestCartAddWeightAccumulates(t *testing.T) {
	rice := kgProduct("p2", "Rice", "60")
	cart := &Cart{}
	require.NoError(t, cart.AddWeight(rice, dec("0.5")))
	require.NoError(t, cart.AddWeight(rice, dec("0.25")))

	require.Len(t, cart.Lines, 1)
	assert.True(t, cart.Lines[0].Weight.Equal(dec("0.75")))
	assert.True(t, cart.Lines[0].LineTotal.Equal(dec("45")))
}

func TestCartRejectsNonPositiveWeight(t *testing.T) {
	rice := kgProduct("p2", "Rice", "60")
	cart := &Cart{}
	err := cart.AddWeight(rice, dec("0"))
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestStepQtyFloorsAtOne(t *testing.T) {
	soap := pcsProduct("p1", "Soap", "10")
	cart := &Cart{}
	cart.AddUnit(soap)

	require.NoError(t, cart.StepQty(0, -5))
	assert.Equal(t, 1, cart.Lines[0].Qty)
	assert.True(t, cart.Lines[0].LineTotal.Equal(dec("10")))

	require.NoError(t, cart.StepQty(0, 3))
	assert.Equal(t, 4, cart.Lines[0].Qty)
	assert.True(t, cart.Lines[0].LineTotal.Equal(dec("40")))
}

func TestWeightAmountConversions(t *testing.T) {
	// 10 pesos of rice at 60/kg = 0.167 kg
	w, err := WeightFromAmount(dec("10"), dec("60"))
	require.NoError(t, err)
	assert.True(t, w.Equal(dec("0.167")), "got %s", w)

	// back to money at 2 places
	amt := AmountFromWeight(w, dec("60"))
	assert.True(t, amt.Equal(dec("10.02")), "got %s", amt)

	_, err = WeightFromAmount(dec("10"), dec("0"))
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestCheckoutTotals(t *testing.T) {
	// Subtotal 30 + 25 = 55, discount 5 -> 50, cash 60 -> change 10
	a := pcsProduct("p1", "Coffee", "30")
	b := pcsProduct("p2", "Sugar", "25")
	cart := &Cart{}
	cart.AddUnit(a)
	cart.AddUnit(b)

	subtotal := cart.Subtotal()
	assert.True(t, subtotal.Equal(dec("55")))

	total, err := ValidateTender(subtotal, dec("5"), dec("60"))
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("50")))
	assert.True(t, Change(dec("60"), total).Equal(dec("10")))
}

func TestDiscountClampsAtZero(t *testing.T) {
	assert.True(t, FinalTotal(dec("10"), dec("15")).Equal(dec("0")))
}

func TestTenderValidation(t *testing.T) {
	_, err := ValidateTender(dec("55"), dec("-1"), dec("100"))
	assert.ErrorIs(t, err, apierror.ErrValidation)

	_, err = ValidateTender(dec("55"), dec("60"), dec("100"))
	assert.ErrorIs(t, err, apierror.ErrValidation)

	_, err = ValidateTender(dec("55"), dec("5"), dec("49.99"))
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestBuildCart(t *testing.T) {
	products := newMemProducts(
		pcsProduct("p1", "Soap", "12.50"),
		kgProduct("p2", "Rice", "60"),
	)

	cart, err := BuildCart(context.Background(), products, []dto.CartItemRequest{
		{Name: "Soap", Unit: "pcs", Qty: 2},
		{Name: "Rice", Unit: "kg", Amount: dec("30")}, // amount-entry: 0.5 kg
	})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 2, cart.Lines[0].Qty)
	assert.True(t, cart.Lines[1].Weight.Equal(dec("0.5")))
	assert.True(t, cart.Subtotal().Equal(dec("55")))
}

func TestBuildCartUnknownProduct(t *testing.T) {
	products := newMemProducts()
	_, err := BuildCart(context.Background(), products, []dto.CartItemRequest{
		{Name: "Ghost", Unit: "pcs", Qty: 1},
	})
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestBuildCartEmpty(t *testing.T) {
	products := newMemProducts()
	_, err := BuildCart(context.Background(), products, nil)
	assert.ErrorIs(t, err, apierror.ErrValidation)
}
