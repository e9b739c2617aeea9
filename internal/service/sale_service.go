package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/model"
	"github.com/MILO-debug/POS/internal/repository"
)

// ReceiptWriter renders a committed sale to a printable file. A nil writer
// disables receipts.
type ReceiptWriter interface {
	WriteReceipt(sale *model.Sale) (string, error)
}

type SaleService interface {
	// Quote prices a cart without writing anything.
	Quote(ctx context.Context, req dto.QuoteRequest) (*dto.QuoteResponse, error)
	// Commit finalizes a sale: the sale record first (authoritative), then
	// shift income and stock as best-effort follow-ups. While the store is
	// unreachable, pricing runs against the cached catalog and shift reads
	// and the writes queue for replay.
	Commit(ctx context.Context, sess Session, req dto.CheckoutRequest) (*dto.SaleResponse, error)
	// Refund reverses a sale atomically. It refuses to run offline.
	Refund(ctx context.Context, sess Session, saleID string) error
	Get(ctx context.Context, id string) (*model.Sale, error)
	List(ctx context.Context, f repository.SaleFilter) ([]model.Sale, error)
	// Summary aggregates the caller's active shift per product line.
	Summary(ctx context.Context, sess Session) (*dto.SalesSummaryResponse, error)
	// ClearAll deletes every sale. Admin maintenance only.
	ClearAll(ctx context.Context) (int, error)
}

type saleService struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
	shifts   repository.ShiftRepository
	shiftSvc ShiftService
	gw       Writer
	probe    ConnProbe
	tx       TxRunner
	receipts ReceiptWriter
}

func NewSaleService(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	shifts repository.ShiftRepository,
	shiftSvc ShiftService,
	gw Writer,
	probe ConnProbe,
	tx TxRunner,
	receipts ReceiptWriter,
) SaleService {
	return &saleService{
		sales:    sales,
		products: products,
		shifts:   shifts,
		shiftSvc: shiftSvc,
		gw:       gw,
		probe:    probe,
		tx:       tx,
		receipts: receipts,
	}
}

// classifyRead keeps domain errors untouched and labels raw store failures
// as connectivity errors when the probe reports the store unreachable, so
// a cold cache surfaces as 503 rather than an opaque driver error.
func (s *saleService) classifyRead(ctx context.Context, err error) error {
	if apierror.IsValidation(err) || apierror.IsNotFound(err) ||
		apierror.IsInvariant(err) || apierror.IsOffline(err) {
		return err
	}
	if !s.probe.Online(ctx) {
		return fmt.Errorf("%w: store unreachable and no cached copy to sell from", apierror.ErrOffline)
	}
	return err
}

func (s *saleService) Quote(ctx context.Context, req dto.QuoteRequest) (*dto.QuoteResponse, error) {
	cart, err := BuildCart(ctx, s.products, req.Items)
	if err != nil {
		return nil, s.classifyRead(ctx, err)
	}
	subtotal := cart.Subtotal()
	total := FinalTotal(subtotal, req.Discount)
	change := decimal.Zero
	if !req.Cash.IsZero() {
		change = Change(req.Cash, total)
	}
	return &dto.QuoteResponse{
		Items:    cart.Lines,
		Subtotal: subtotal,
		Discount: req.Discount,
		Total:    total,
		Change:   change,
	}, nil
}

func (s *saleService) Commit(ctx context.Context, sess Session, req dto.CheckoutRequest) (*dto.SaleResponse, error) {
	shift, err := s.shiftSvc.ActiveFor(ctx, sess)
	if err != nil {
		return nil, s.classifyRead(ctx, err)
	}

	cart, err := BuildCart(ctx, s.products, req.Items)
	if err != nil {
		return nil, s.classifyRead(ctx, err)
	}
	subtotal := cart.Subtotal()
	total, err := ValidateTender(subtotal, req.Discount, req.Cash)
	if err != nil {
		return nil, err
	}

	sale := &model.Sale{
		Timestamp: time.Now().UTC(),
		ShiftID:   shift.ID,
		Items:     cart.Lines,
		Subtotal:  subtotal,
		Discount:  req.Discount.Round(moneyPlaces),
		Total:     total,
		Cash:      req.Cash.Round(moneyPlaces),
		Change:    Change(req.Cash, total),
		Cashier:   sess.CashierName(),
	}

	// Step 1: the sale record. This write alone decides whether the sale
	// exists; a local queue failure here aborts the whole commit.
	outcome, err := s.gw.Write(ctx, model.WriteAdd, infra.ColSales, sale, "")
	if err != nil {
		return nil, err
	}
	sale.ID = outcome.DocID

	// Step 2: shift income. Best effort — a failure leaves a counter drift
	// that shift close repairs by re-summing the ledger.
	newIncome := shift.TotalIncome.Add(total)
	incomeFields := bson.M{"totalIncome": newIncome, "schemaVersion": model.ShiftSchemaVersion}
	if _, err := s.gw.Write(ctx, model.WriteUpdate, infra.ColShifts, incomeFields, shift.ID); err != nil {
		log.Warn().Err(err).Str("sale_id", sale.ID).Str("shift_id", shift.ID).
			Msg("sale committed but shift income update failed")
	}

	// Step 3: stock decrements, per line, floored at zero. A missing product
	// (renamed or deleted since the cart was built) is skipped.
	s.decrementStock(ctx, sale)

	resp := &dto.SaleResponse{Sale: *sale, Disposition: outcome.Disposition}
	if s.receipts != nil {
		path, rerr := s.receipts.WriteReceipt(sale)
		if rerr != nil {
			log.Warn().Err(rerr).Str("sale_id", sale.ID).Msg("receipt generation failed")
		} else {
			resp.ReceiptPath = path
		}
	}
	log.Info().Str("sale_id", sale.ID).Str("total", total.String()).
		Str("disposition", outcome.Disposition).Msg("sale committed")
	return resp, nil
}

func (s *saleService) decrementStock(ctx context.Context, sale *model.Sale) {
	for _, it := range sale.Items {
		p, err := s.products.FindByNameUnit(ctx, it.Name, it.Unit)
		if err != nil {
			log.Warn().Err(err).Str("product", it.Name).Str("unit", it.Unit).
				Msg("stock update skipped, product not found")
			continue
		}
		newStock := p.Stock.Sub(it.Quantity())
		if newStock.IsNegative() {
			newStock = decimal.Zero
		}
		fields := bson.M{"stock": newStock, "updatedAt": time.Now().UTC()}
		if _, err := s.gw.Write(ctx, model.WriteUpdate, infra.ColProducts, fields, p.ID); err != nil {
			log.Warn().Err(err).Str("product_id", p.ID).Msg("stock update failed")
		}
	}
}

// Refund restores stock, rolls the shift counter back, and deletes the sale
// in one transaction. Original products or shifts that no longer exist are
// skipped — their steps simply do not apply.
func (s *saleService) Refund(ctx context.Context, sess Session, saleID string) error {
	if !s.probe.Online(ctx) {
		return fmt.Errorf("%w: refunding a sale", apierror.ErrOffline)
	}

	err := runTx(ctx, s.tx, func(ctx context.Context) error {
		sale, err := s.sales.FindByID(ctx, saleID)
		if err != nil {
			return err
		}

		for _, it := range sale.Items {
			p, perr := s.products.FindByNameUnit(ctx, it.Name, it.Unit)
			if perr != nil {
				if apierror.IsNotFound(perr) {
					continue
				}
				return perr
			}
			if err := s.products.IncrementStock(ctx, p.ID, it.Quantity()); err != nil {
				return err
			}
		}

		if sale.ShiftID != "" {
			_, serr := s.shifts.FindByID(ctx, sale.ShiftID)
			switch {
			case serr == nil:
				if err := s.shifts.AddIncome(ctx, sale.ShiftID, sale.Total.Neg()); err != nil {
					return err
				}
			case apierror.IsNotFound(serr):
				// shift purged since the sale; nothing to roll back
			default:
				return serr
			}
		}

		return s.sales.Delete(ctx, saleID)
	})
	if err != nil {
		return err
	}
	log.Info().Str("sale_id", saleID).Str("by", sess.Username).Msg("sale refunded")
	return nil
}

func (s *saleService) Get(ctx context.Context, id string) (*model.Sale, error) {
	return s.sales.FindByID(ctx, id)
}

func (s *saleService) List(ctx context.Context, f repository.SaleFilter) ([]model.Sale, error) {
	return s.sales.List(ctx, f)
}

func (s *saleService) Summary(ctx context.Context, sess Session) (*dto.SalesSummaryResponse, error) {
	shift, err := s.shiftSvc.ActiveFor(ctx, sess)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.List(ctx, repository.SaleFilter{ShiftID: shift.ID})
	if err != nil {
		return nil, err
	}

	type key struct{ name, unit string }
	order := []key{}
	rows := map[key]*dto.SummaryRow{}
	income := decimal.Zero
	for _, sale := range sales {
		income = income.Add(sale.Total)
		for _, it := range sale.Items {
			k := key{it.Name, it.Unit}
			row, ok := rows[k]
			if !ok {
				row = &dto.SummaryRow{Name: it.Name, Unit: it.Unit}
				rows[k] = row
				order = append(order, k)
			}
			if it.Unit == model.UnitKg {
				row.Weight = row.Weight.Add(it.Weight)
			} else {
				row.Qty += it.Qty
			}
			row.Total = row.Total.Add(it.LineTotal)
		}
	}

	out := &dto.SalesSummaryResponse{ShiftID: shift.ID, TotalIncome: income, Rows: []dto.SummaryRow{}}
	for _, k := range order {
		out.Rows = append(out.Rows, *rows[k])
	}
	return out, nil
}

func (s *saleService) ClearAll(ctx context.Context) (int, error) {
	sales, err := s.sales.List(ctx, repository.SaleFilter{})
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, sale := range sales {
		if _, err := s.gw.Write(ctx, model.WriteDelete, infra.ColSales, nil, sale.ID); err != nil {
			log.Warn().Err(err).Str("sale_id", sale.ID).Msg("clear-all: delete failed")
			continue
		}
		deleted++
	}
	log.Info().Int("deleted", deleted).Msg("sale ledger cleared")
	return deleted, nil
}
