package service

import (
	"context"
	"fmt"
	"sort"
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

type LendingService interface {
	// Create records a credit sale for the borrower. Stock and shift income
	// are untouched until money actually changes hands.
	Create(ctx context.Context, sess Session, req dto.CreateLendingRequest) (*model.Lending, string, error)
	// Borrowers lists everyone with open lendings and their balances.
	Borrowers(ctx context.Context) ([]dto.BorrowerSummary, error)
	Borrower(ctx context.Context, name string) (*dto.BorrowerDetailResponse, error)
	// Pay settles the borrower's balance in full or in part. Repayments
	// enter the revenue stream as a synthesized sale on the active shift.
	Pay(ctx context.Context, sess Session, borrowerName string, req dto.PaymentRequest) (*dto.PaymentResponse, error)
}

type lendingService struct {
	lendings repository.LendingRepository
	products repository.ProductRepository
	shiftSvc ShiftService
	gw       Writer
}

func NewLendingService(lendings repository.LendingRepository, products repository.ProductRepository, shiftSvc ShiftService, gw Writer) LendingService {
	return &lendingService{lendings: lendings, products: products, shiftSvc: shiftSvc, gw: gw}
}

func (s *lendingService) Create(ctx context.Context, sess Session, req dto.CreateLendingRequest) (*model.Lending, string, error) {
	if req.BorrowerName == "" {
		return nil, "", fmt.Errorf("%w: borrower name is required", apierror.ErrValidation)
	}
	cart, err := BuildCart(ctx, s.products, req.Items)
	if err != nil {
		return nil, "", err
	}

	items := make([]model.LendingItem, 0, len(cart.Lines))
	total := decimal.Zero
	for _, ln := range cart.Lines {
		items = append(items, model.LendingItem{
			Name:   ln.Name,
			Unit:   ln.Unit,
			Price:  ln.Price,
			Qty:    ln.Qty,
			Weight: ln.Weight,
			Total:  ln.LineTotal,
			Paid:   false,
		})
		total = total.Add(ln.LineTotal)
	}

	lending := &model.Lending{
		BorrowerName: req.BorrowerName,
		Items:        items,
		Total:        total.Round(moneyPlaces),
		Timestamp:    time.Now().UTC(),
		Returned:     false,
	}
	outcome, err := s.gw.Write(ctx, model.WriteAdd, infra.ColLendings, lending, "")
	if err != nil {
		return nil, "", err
	}
	lending.ID = outcome.DocID
	log.Info().Str("lending_id", lending.ID).Str("borrower", req.BorrowerName).
		Str("total", lending.Total.String()).Msg("lending recorded")
	return lending, outcome.Disposition, nil
}

func (s *lendingService) Borrowers(ctx context.Context) ([]dto.BorrowerSummary, error) {
	open, err := s.lendings.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	byName := map[string]*dto.BorrowerSummary{}
	for i := range open {
		l := &open[i]
		row, ok := byName[l.BorrowerName]
		if !ok {
			row = &dto.BorrowerSummary{BorrowerName: l.BorrowerName}
			byName[l.BorrowerName] = row
		}
		row.Outstanding = row.Outstanding.Add(l.Outstanding())
		row.Lendings++
	}
	out := make([]dto.BorrowerSummary, 0, len(byName))
	for _, row := range byName {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BorrowerName < out[j].BorrowerName })
	return out, nil
}

func (s *lendingService) Borrower(ctx context.Context, name string) (*dto.BorrowerDetailResponse, error) {
	open, err := s.lendings.ListOpenByBorrower(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, fmt.Errorf("%w: no open lendings for %q", apierror.ErrNotFound, name)
	}
	outstanding := decimal.Zero
	for i := range open {
		outstanding = outstanding.Add(open[i].Outstanding())
	}
	return &dto.BorrowerDetailResponse{
		BorrowerName: name,
		Outstanding:  outstanding,
		Lendings:     open,
	}, nil
}

func (s *lendingService) Pay(ctx context.Context, sess Session, borrowerName string, req dto.PaymentRequest) (*dto.PaymentResponse, error) {
	shift, err := s.shiftSvc.ActiveFor(ctx, sess)
	if err != nil {
		return nil, err
	}

	open, err := s.lendings.ListOpenByBorrower(ctx, borrowerName)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, fmt.Errorf("%w: no open lendings for %q", apierror.ErrNotFound, borrowerName)
	}

	outstanding := decimal.Zero
	for i := range open {
		outstanding = outstanding.Add(open[i].Outstanding())
	}

	var amount decimal.Decimal
	if req.Full {
		amount = outstanding
		err = s.settleFull(ctx, sess, shift, open)
	} else {
		amount = req.Amount.Round(moneyPlaces)
		if !amount.IsPositive() {
			return nil, fmt.Errorf("%w: payment amount must be greater than zero", apierror.ErrValidation)
		}
		if amount.GreaterThan(outstanding) {
			return nil, fmt.Errorf("%w: payment exceeds the outstanding balance", apierror.ErrValidation)
		}
		err = s.settlePartial(ctx, sess, shift, open, amount, req.Items)
	}
	if err != nil {
		return nil, err
	}

	saleID, disposition, err := s.recordRevenue(ctx, sess, shift, borrowerName, amount)
	if err != nil {
		return nil, err
	}

	log.Info().Str("borrower", borrowerName).Str("amount", amount.String()).
		Bool("full", req.Full).Msg("lending payment recorded")
	return &dto.PaymentResponse{
		BorrowerName: borrowerName,
		AmountPaid:   amount,
		Outstanding:  outstanding.Sub(amount),
		SaleID:       saleID,
		Disposition:  disposition,
	}, nil
}

// settleFull closes every open lending: each document gets a payment for its
// own remaining balance, all items flip to paid.
func (s *lendingService) settleFull(ctx context.Context, sess Session, shift *model.Shift, open []model.Lending) error {
	now := time.Now().UTC()
	for i := range open {
		l := &open[i]
		due := l.Outstanding()
		if due.IsPositive() {
			l.Payments = append(l.Payments, model.LendingPayment{
				Amount:    due,
				Timestamp: now,
				ShiftID:   shift.ID,
				Cashier:   sess.CashierName(),
			})
		}
		for j := range l.Items {
			l.Items[j].Paid = true
		}
		l.Returned = true
		fields := bson.M{"payments": l.Payments, "items": l.Items, "returned": true}
		if _, err := s.gw.Write(ctx, model.WriteUpdate, infra.ColLendings, fields, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// settlePartial books the whole amount as one payment on the oldest open
// document. Selected items are flagged paid for display, but settlement is
// decided by balance: a document is returned only once its payments cover
// its total.
func (s *lendingService) settlePartial(ctx context.Context, sess Session, shift *model.Shift, open []model.Lending, amount decimal.Decimal, selected []dto.SelectedItem) error {
	paidItems := map[string]map[int]bool{}
	for _, sel := range selected {
		if paidItems[sel.LendingID] == nil {
			paidItems[sel.LendingID] = map[int]bool{}
		}
		paidItems[sel.LendingID][sel.ItemIndex] = true
	}

	target := &open[0]
	for i := range open {
		if open[i].Outstanding().IsPositive() {
			target = &open[i]
			break
		}
	}
	target.Payments = append(target.Payments, model.LendingPayment{
		Amount:    amount,
		Timestamp: time.Now().UTC(),
		ShiftID:   shift.ID,
		Cashier:   sess.CashierName(),
	})

	for i := range open {
		l := &open[i]
		marks := paidItems[l.ID]
		changed := l.ID == target.ID
		for idx := range marks {
			if idx >= 0 && idx < len(l.Items) {
				l.Items[idx].Paid = true
				changed = true
			}
		}
		if !changed {
			continue
		}
		l.Returned = !l.Outstanding().IsPositive()
		fields := bson.M{"payments": l.Payments, "items": l.Items, "returned": l.Returned}
		if _, err := s.gw.Write(ctx, model.WriteUpdate, infra.ColLendings, fields, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// recordRevenue pushes the repayment into the normal revenue stream: a
// one-line synthesized sale plus the shift income bump.
func (s *lendingService) recordRevenue(ctx context.Context, sess Session, shift *model.Shift, borrowerName string, amount decimal.Decimal) (string, string, error) {
	line := model.SaleItem{
		Name:      "Lending Payment - " + borrowerName,
		Unit:      model.UnitPcs,
		Price:     amount,
		Qty:       1,
		LineTotal: amount,
	}
	sale := &model.Sale{
		Timestamp: time.Now().UTC(),
		ShiftID:   shift.ID,
		Items:     []model.SaleItem{line},
		Subtotal:  amount,
		Discount:  decimal.Zero,
		Total:     amount,
		Cash:      amount,
		Change:    decimal.Zero,
		Cashier:   sess.CashierName(),
	}
	outcome, err := s.gw.Write(ctx, model.WriteAdd, infra.ColSales, sale, "")
	if err != nil {
		return "", "", err
	}

	newIncome := shift.TotalIncome.Add(amount)
	fields := bson.M{"totalIncome": newIncome, "schemaVersion": model.ShiftSchemaVersion}
	if _, err := s.gw.Write(ctx, model.WriteUpdate, infra.ColShifts, fields, shift.ID); err != nil {
		log.Warn().Err(err).Str("shift_id", shift.ID).Msg("lending payment: shift income update failed")
	}
	return outcome.DocID, outcome.Disposition, nil
}
