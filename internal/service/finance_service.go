package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/model"
	"github.com/MILO-debug/POS/internal/repository"
)

const dayFormat = "2006-01-02"

type FinanceService interface {
	// Report recomputes income, profit, and expense aggregates over the
	// range from the raw ledgers. Nothing is materialized.
	Report(ctx context.Context, start, end time.Time) (*dto.FinanceReport, error)
	AddExpense(ctx context.Context, req dto.ExpenseRequest) (*model.Expense, string, error)
	DeleteExpense(ctx context.Context, id string) (string, error)
	ListExpenses(ctx context.Context, start, end time.Time) ([]model.Expense, error)
	// ResetExpenses deletes every expense in the range.
	ResetExpenses(ctx context.Context, start, end time.Time) (int, error)
}

type financeService struct {
	sales    repository.SaleRepository
	expenses repository.ExpenseRepository
	products repository.ProductRepository
	gw       Writer
}

func NewFinanceService(sales repository.SaleRepository, expenses repository.ExpenseRepository, products repository.ProductRepository, gw Writer) FinanceService {
	return &financeService{sales: sales, expenses: expenses, products: products, gw: gw}
}

func (s *financeService) Report(ctx context.Context, start, end time.Time) (*dto.FinanceReport, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end of range precedes its start", apierror.ErrValidation)
	}
	sales, err := s.sales.List(ctx, repository.SaleFilter{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	// Profit rides on each product's current profit figure, not a snapshot
	// taken at sale time. Catalog edits therefore restate past profit.
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	profitOf := map[string]decimal.Decimal{}
	for _, p := range products {
		profitOf[p.Name+"\x00"+p.Unit] = p.Profit
	}

	income := decimal.Zero
	profit := decimal.Zero
	dailyIncome := map[string]decimal.Decimal{}
	dailyProfit := map[string]decimal.Decimal{}
	for _, sale := range sales {
		day := sale.Timestamp.Format(dayFormat)
		income = income.Add(sale.Total)
		dailyIncome[day] = dailyIncome[day].Add(sale.Total)
		for _, it := range sale.Items {
			unitProfit, ok := profitOf[it.Name+"\x00"+it.Unit]
			if !ok {
				continue
			}
			lineProfit := unitProfit.Mul(it.Quantity())
			profit = profit.Add(lineProfit)
			dailyProfit[day] = dailyProfit[day].Add(lineProfit)
		}
	}

	spent := decimal.Zero
	for _, e := range expenses {
		spent = spent.Add(e.Amount)
	}

	return &dto.FinanceReport{
		Start:        start.Format(dayFormat),
		End:          end.Format(dayFormat),
		Income:       income.Round(moneyPlaces),
		Capital:      income.Round(moneyPlaces),
		Profit:       profit.Round(moneyPlaces),
		Expenses:     spent.Round(moneyPlaces),
		NetIncome:    income.Sub(spent).Round(moneyPlaces),
		DailyProfit:  dayTotals(dailyProfit),
		DailyCapital: dayTotals(dailyIncome),
	}, nil
}

func dayTotals(m map[string]decimal.Decimal) []dto.DayTotal {
	out := make([]dto.DayTotal, 0, len(m))
	for day, total := range m {
		out = append(out, dto.DayTotal{Date: day, Total: total.Round(moneyPlaces)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *financeService) AddExpense(ctx context.Context, req dto.ExpenseRequest) (*model.Expense, string, error) {
	if !req.Amount.IsPositive() {
		return nil, "", fmt.Errorf("%w: expense amount must be greater than zero", apierror.ErrValidation)
	}
	e := &model.Expense{
		Amount:    req.Amount.Round(moneyPlaces),
		Reason:    req.Reason,
		Timestamp: time.Now().UTC(),
	}
	outcome, err := s.gw.Write(ctx, model.WriteAdd, infra.ColExpenses, e, "")
	if err != nil {
		return nil, "", err
	}
	e.ID = outcome.DocID
	return e, outcome.Disposition, nil
}

func (s *financeService) DeleteExpense(ctx context.Context, id string) (string, error) {
	outcome, err := s.gw.Write(ctx, model.WriteDelete, infra.ColExpenses, nil, id)
	if err != nil {
		return "", err
	}
	return outcome.Disposition, nil
}

func (s *financeService) ListExpenses(ctx context.Context, start, end time.Time) ([]model.Expense, error) {
	return s.expenses.ListRange(ctx, start, end)
}

func (s *financeService) ResetExpenses(ctx context.Context, start, end time.Time) (int, error) {
	expenses, err := s.expenses.ListRange(ctx, start, end)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, e := range expenses {
		if _, err := s.gw.Write(ctx, model.WriteDelete, infra.ColExpenses, nil, e.ID); err != nil {
			log.Warn().Err(err).Str("expense_id", e.ID).Msg("expense reset: delete failed")
			continue
		}
		deleted++
	}
	return deleted, nil
}
