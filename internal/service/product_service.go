package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/model"
	"github.com/MILO-debug/POS/internal/repository"
)

// lowStockThreshold marks products to reorder.
var lowStockThreshold = decimal.NewFromInt(5)

type ProductService interface {
	Create(ctx context.Context, req dto.ProductRequest) (*model.Product, string, error)
	Update(ctx context.Context, id string, req dto.ProductRequest) (*model.Product, string, error)
	Delete(ctx context.Context, id string) (string, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	LowStock(ctx context.Context) ([]model.Product, error)
}

type productService struct {
	products repository.ProductRepository
	gw       Writer
}

func NewProductService(products repository.ProductRepository, gw Writer) ProductService {
	return &productService{products: products, gw: gw}
}

// apply validates the request and maps it onto p. Profit is always derived
// as price - capital; a client-supplied figure is never trusted.
func (s *productService) apply(p *model.Product, req dto.ProductRequest) error {
	if !req.Price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than zero", apierror.ErrValidation)
	}
	if req.Capital.IsNegative() {
		return fmt.Errorf("%w: capital cannot be negative", apierror.ErrValidation)
	}
	if req.Stock.IsNegative() {
		return fmt.Errorf("%w: stock cannot be negative", apierror.ErrValidation)
	}
	p.Name = req.Name
	p.Price = req.Price.Round(moneyPlaces)
	p.Capital = req.Capital.Round(moneyPlaces)
	p.Profit = p.Price.Sub(p.Capital)
	p.Category = req.Category
	p.Unit = req.Unit
	p.Stock = req.Stock
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *productService) Create(ctx context.Context, req dto.ProductRequest) (*model.Product, string, error) {
	exists, err := s.products.ExistsNameUnit(ctx, req.Name, req.Unit)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", fmt.Errorf("%w: product %q (%s) already exists", apierror.ErrInvariant, req.Name, req.Unit)
	}

	p := &model.Product{CreatedAt: time.Now().UTC()}
	if err := s.apply(p, req); err != nil {
		return nil, "", err
	}
	outcome, err := s.gw.Write(ctx, model.WriteAdd, infra.ColProducts, p, "")
	if err != nil {
		return nil, "", err
	}
	p.ID = outcome.DocID
	log.Info().Str("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return p, outcome.Disposition, nil
}

func (s *productService) Update(ctx context.Context, id string, req dto.ProductRequest) (*model.Product, string, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	// Renaming onto another product's identity would merge their ledger
	// lines, so it is refused.
	if p.Name != req.Name || p.Unit != req.Unit {
		exists, err := s.products.ExistsNameUnit(ctx, req.Name, req.Unit)
		if err != nil {
			return nil, "", err
		}
		if exists {
			return nil, "", fmt.Errorf("%w: product %q (%s) already exists", apierror.ErrInvariant, req.Name, req.Unit)
		}
	}
	if err := s.apply(p, req); err != nil {
		return nil, "", err
	}
	outcome, err := s.gw.Write(ctx, model.WriteUpdate, infra.ColProducts, p, p.ID)
	if err != nil {
		return nil, "", err
	}
	return p, outcome.Disposition, nil
}

func (s *productService) Delete(ctx context.Context, id string) (string, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return "", err
	}
	outcome, err := s.gw.Write(ctx, model.WriteDelete, infra.ColProducts, nil, id)
	if err != nil {
		return "", err
	}
	return outcome.Disposition, nil
}

func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	return s.products.List(ctx)
}

func (s *productService) LowStock(ctx context.Context) ([]model.Product, error) {
	return s.products.ListLowStock(ctx, lowStockThreshold)
}
