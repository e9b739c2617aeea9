package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/model"
)

var errUnreachable = errors.New("server selection timeout")

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Flaky in-memory backends ─────────────────────────────────────────────────

type fakeProducts struct {
	byID map[string]*model.Product
	down bool
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (*model.Product, error) {
	if f.down {
		return nil, errUnreachable
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) FindByNameUnit(_ context.Context, name, unit string) (*model.Product, error) {
	if f.down {
		return nil, errUnreachable
	}
	for _, p := range f.byID {
		if p.Name == name && p.Unit == unit {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apierror.ErrNotFound
}

func (f *fakeProducts) List(_ context.Context) ([]model.Product, error) {
	if f.down {
		return nil, errUnreachable
	}
	var out []model.Product
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProducts) ListLowStock(ctx context.Context, threshold decimal.Decimal) ([]model.Product, error) {
	products, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Product
	for _, p := range products {
		if p.Stock.LessThan(threshold) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) ExistsNameUnit(ctx context.Context, name, unit string) (bool, error) {
	_, err := f.FindByNameUnit(ctx, name, unit)
	if err == nil {
		return true, nil
	}
	if apierror.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func (f *fakeProducts) IncrementStock(_ context.Context, id string, delta decimal.Decimal) error {
	if f.down {
		return errUnreachable
	}
	p, ok := f.byID[id]
	if !ok {
		return apierror.ErrNotFound
	}
	p.Stock = p.Stock.Add(delta)
	return nil
}

type fakeShifts struct {
	byID map[string]*model.Shift
	down bool
}

func (f *fakeShifts) FindByID(_ context.Context, id string) (*model.Shift, error) {
	if f.down {
		return nil, errUnreachable
	}
	s, ok := f.byID[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeShifts) FindOpenByCashier(_ context.Context, cashierName string) (*model.Shift, error) {
	if f.down {
		return nil, errUnreachable
	}
	for _, s := range f.byID {
		if s.CashierName == cashierName && s.IsOpen() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apierror.ErrNotFound
}

func (f *fakeShifts) FindLatestOpen(_ context.Context) (*model.Shift, error) {
	if f.down {
		return nil, errUnreachable
	}
	var latest *model.Shift
	for _, s := range f.byID {
		if s.IsOpen() && (latest == nil || s.StartTime.After(latest.StartTime)) {
			latest = s
		}
	}
	if latest == nil {
		return nil, apierror.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeShifts) List(_ context.Context, cashierName string) ([]model.Shift, error) {
	if f.down {
		return nil, errUnreachable
	}
	var out []model.Shift
	for _, s := range f.byID {
		if cashierName == "" || s.CashierName == cashierName {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeShifts) CountOpenByCashier(_ context.Context, cashierName string) (int64, error) {
	if f.down {
		return 0, errUnreachable
	}
	var n int64
	for _, s := range f.byID {
		if s.CashierName == cashierName && s.IsOpen() {
			n++
		}
	}
	return n, nil
}

func (f *fakeShifts) Create(_ context.Context, s *model.Shift) error {
	if f.down {
		return errUnreachable
	}
	cp := *s
	f.byID[s.ID] = &cp
	return nil
}

func (f *fakeShifts) AddIncome(_ context.Context, id string, delta decimal.Decimal) error {
	if f.down {
		return errUnreachable
	}
	s, ok := f.byID[id]
	if !ok {
		return apierror.ErrNotFound
	}
	s.TotalIncome = s.TotalIncome.Add(delta)
	return nil
}

// ── Product cache ────────────────────────────────────────────────────────────

func TestCachedProductsServesLastKnownGood(t *testing.T) {
	inner := &fakeProducts{byID: map[string]*model.Product{
		"p1": {ID: "p1", Name: "Coffee", Unit: "pcs", Price: d("30"), Stock: d("10")},
	}}
	repo := NewCachedProductRepository(inner)
	ctx := context.Background()

	p, err := repo.FindByNameUnit(ctx, "Coffee", "pcs")
	require.NoError(t, err)
	require.True(t, p.Price.Equal(d("30")))

	inner.down = true

	p, err = repo.FindByNameUnit(ctx, "Coffee", "pcs")
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(d("30")))

	p, err = repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Coffee", p.Name)

	// Never-seen keys cannot be invented.
	_, err = repo.FindByNameUnit(ctx, "Tea", "pcs")
	assert.ErrorIs(t, err, errUnreachable)
}

func TestCachedProductsRemembersMisses(t *testing.T) {
	inner := &fakeProducts{byID: map[string]*model.Product{}}
	repo := NewCachedProductRepository(inner)
	ctx := context.Background()

	_, err := repo.FindByNameUnit(ctx, "Ghost", "pcs")
	require.ErrorIs(t, err, apierror.ErrNotFound)

	inner.down = true

	// A product the store said does not exist stays unknown offline.
	_, err = repo.FindByNameUnit(ctx, "Ghost", "pcs")
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestCachedProductsListFallback(t *testing.T) {
	inner := &fakeProducts{byID: map[string]*model.Product{
		"p1": {ID: "p1", Name: "Coffee", Unit: "pcs", Price: d("30"), Stock: d("2")},
		"p2": {ID: "p2", Name: "Sugar", Unit: "pcs", Price: d("25"), Stock: d("9")},
	}}
	repo := NewCachedProductRepository(inner)
	ctx := context.Background()

	_, err := repo.List(ctx)
	require.NoError(t, err)

	inner.down = true

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	low, err := repo.ListLowStock(ctx, d("5"))
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Coffee", low[0].Name)
}

// ── Shift cache ──────────────────────────────────────────────────────────────

func openShiftDoc(id, cashier string) *model.Shift {
	return &model.Shift{
		ID:            id,
		CashierName:   cashier,
		StartTime:     time.Now().Add(-time.Hour),
		Status:        model.ShiftOpen,
		TotalIncome:   decimal.Zero,
		SchemaVersion: model.ShiftSchemaVersion,
	}
}

func TestCachedShiftsServesOpenShiftWhileDown(t *testing.T) {
	inner := &fakeShifts{byID: map[string]*model.Shift{"s1": openShiftDoc("s1", "Ana")}}
	repo := NewCachedShiftRepository(inner)
	ctx := context.Background()

	s, err := repo.FindOpenByCashier(ctx, "Ana")
	require.NoError(t, err)
	require.Equal(t, "s1", s.ID)

	inner.down = true

	s, err = repo.FindOpenByCashier(ctx, "Ana")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)

	// Counts stay live reads: the uniqueness check must not run on a copy.
	_, err = repo.CountOpenByCashier(ctx, "Ana")
	assert.ErrorIs(t, err, errUnreachable)
}

func TestCachedShiftsRemembersClosedAnswer(t *testing.T) {
	inner := &fakeShifts{byID: map[string]*model.Shift{}}
	repo := NewCachedShiftRepository(inner)
	ctx := context.Background()

	_, err := repo.FindOpenByCashier(ctx, "Ana")
	require.ErrorIs(t, err, apierror.ErrNotFound)

	inner.down = true

	_, err = repo.FindOpenByCashier(ctx, "Ana")
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestCachedShiftsCreateSeedsCache(t *testing.T) {
	inner := &fakeShifts{byID: map[string]*model.Shift{}}
	repo := NewCachedShiftRepository(inner)
	ctx := context.Background()

	shift := openShiftDoc("s9", "Ben")
	require.NoError(t, repo.Create(ctx, shift))

	// The store drops out right after the shift opened.
	inner.down = true

	s, err := repo.FindOpenByCashier(ctx, "Ben")
	require.NoError(t, err)
	assert.Equal(t, "s9", s.ID)

	s, err = repo.FindLatestOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s9", s.ID)
}
