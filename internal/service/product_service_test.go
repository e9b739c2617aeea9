package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/model"
)

func TestCreateProductDerivesProfit(t *testing.T) {
	products := newMemProducts()
	svc := NewProductService(products, &memWriter{})

	p, disposition, err := svc.Create(context.Background(), dto.ProductRequest{
		Name:    "Coffee",
		Price:   dec("30"),
		Capital: dec("22.50"),
		Unit:    "pcs",
		Stock:   dec("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "committed", disposition)
	assert.True(t, p.Profit.Equal(dec("7.50")), "got %s", p.Profit)
	assert.NotEmpty(t, p.ID)
}

func TestCreateProductRejectsDuplicateIdentity(t *testing.T) {
	products := newMemProducts(pcsProduct("p1", "Coffee", "30"))
	svc := NewProductService(products, &memWriter{})

	_, _, err := svc.Create(context.Background(), dto.ProductRequest{
		Name: "Coffee", Price: dec("35"), Unit: "pcs",
	})
	assert.ErrorIs(t, err, apierror.ErrInvariant)

	// Same name under a different unit is a distinct product.
	_, _, err = svc.Create(context.Background(), dto.ProductRequest{
		Name: "Coffee", Price: dec("200"), Unit: "kg",
	})
	assert.NoError(t, err)
}

func TestProductValidation(t *testing.T) {
	svc := NewProductService(newMemProducts(), &memWriter{})

	_, _, err := svc.Create(context.Background(), dto.ProductRequest{Name: "X", Price: dec("0"), Unit: "pcs"})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	_, _, err = svc.Create(context.Background(), dto.ProductRequest{Name: "X", Price: dec("5"), Capital: dec("-1"), Unit: "pcs"})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	_, _, err = svc.Create(context.Background(), dto.ProductRequest{Name: "X", Price: dec("5"), Stock: dec("-2"), Unit: "pcs"})
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestUpdateProductRecomputesProfit(t *testing.T) {
	p := pcsProduct("p1", "Coffee", "30")
	p.Capital = dec("20")
	p.Profit = dec("10")
	products := newMemProducts(p)
	svc := NewProductService(products, &memWriter{})

	updated, _, err := svc.Update(context.Background(), "p1", dto.ProductRequest{
		Name: "Coffee", Price: dec("35"), Capital: dec("20"), Unit: "pcs", Stock: dec("100"),
	})
	require.NoError(t, err)
	assert.True(t, updated.Profit.Equal(dec("15")))
}

func TestUpdateProductRenameCollision(t *testing.T) {
	products := newMemProducts(
		pcsProduct("p1", "Coffee", "30"),
		pcsProduct("p2", "Sugar", "25"),
	)
	svc := NewProductService(products, &memWriter{})

	_, _, err := svc.Update(context.Background(), "p2", dto.ProductRequest{
		Name: "Coffee", Price: dec("25"), Unit: "pcs",
	})
	assert.ErrorIs(t, err, apierror.ErrInvariant)
}

func TestDeleteProductUnknown(t *testing.T) {
	svc := NewProductService(newMemProducts(), &memWriter{})
	_, err := svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestCategoryAndEmployeeDuplicates(t *testing.T) {
	catSvc := NewCategoryService(&memCategories{items: map[string]*model.Category{
		"c1": {ID: "c1", Name: "Drinks"},
	}}, &memWriter{})
	_, _, err := catSvc.Create(context.Background(), dto.CategoryRequest{Name: "Drinks"})
	assert.ErrorIs(t, err, apierror.ErrInvariant)
	_, _, err = catSvc.Create(context.Background(), dto.CategoryRequest{Name: "Snacks"})
	assert.NoError(t, err)

	empSvc := NewEmployeeService(&memEmployees{items: map[string]*model.Employee{
		"e1": {ID: "e1", Name: "Ana"},
	}}, &memWriter{})
	_, _, err = empSvc.Create(context.Background(), dto.EmployeeRequest{Name: "Ana"})
	assert.ErrorIs(t, err, apierror.ErrInvariant)
	_, _, err = empSvc.Create(context.Background(), dto.EmployeeRequest{Name: "Ben"})
	assert.NoError(t, err)
}

func TestCategoryUpdate(t *testing.T) {
	repo := &memCategories{items: map[string]*model.Category{
		"c1": {ID: "c1", Name: "Drinks", Color: "#fff"},
		"c2": {ID: "c2", Name: "Snacks", Color: "#000"},
	}}
	w := &memWriter{}
	svc := NewCategoryService(repo, w)

	// Color change keeps the name, no collision.
	cat, _, err := svc.Update(context.Background(), "c1", dto.CategoryRequest{Name: "Drinks", Color: "#0af"})
	require.NoError(t, err)
	assert.Equal(t, "#0af", cat.Color)
	require.Len(t, w.byCollection(infra.ColCategories), 1)
	assert.Equal(t, model.WriteUpdate, w.byCollection(infra.ColCategories)[0].Action)

	// Renaming onto another category is refused.
	_, _, err = svc.Update(context.Background(), "c1", dto.CategoryRequest{Name: "Snacks"})
	assert.ErrorIs(t, err, apierror.ErrInvariant)

	_, _, err = svc.Update(context.Background(), "missing", dto.CategoryRequest{Name: "X"})
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestEmployeeUpdate(t *testing.T) {
	repo := &memEmployees{items: map[string]*model.Employee{
		"e1": {ID: "e1", Name: "Ana", Username: "ana"},
		"e2": {ID: "e2", Name: "Ben", Username: "ben"},
	}}
	svc := NewEmployeeService(repo, &memWriter{})

	e, _, err := svc.Update(context.Background(), "e1", dto.EmployeeRequest{Name: "Ana Maria", Username: "ana"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", e.Name)

	_, _, err = svc.Update(context.Background(), "e1", dto.EmployeeRequest{Name: "Ben", Username: "ana"})
	assert.ErrorIs(t, err, apierror.ErrInvariant)
}
