package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/gateway"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/model"
	"github.com/MILO-debug/POS/internal/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── In-memory product repository ─────────────────────────────────────────────

type memProducts struct {
	byID map[string]*model.Product
}

func newMemProducts(products ...*model.Product) *memProducts {
	m := &memProducts{byID: map[string]*model.Product{}}
	for _, p := range products {
		m.byID[p.ID] = p
	}
	return m
}

func (m *memProducts) FindByID(_ context.Context, id string) (*model.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) FindByNameUnit(_ context.Context, name, unit string) (*model.Product, error) {
	for _, p := range m.byID {
		if p.Name == name && p.Unit == unit {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apierror.ErrNotFound
}

func (m *memProducts) List(_ context.Context) ([]model.Product, error) {
	out := make([]model.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memProducts) ListLowStock(_ context.Context, threshold decimal.Decimal) ([]model.Product, error) {
	var out []model.Product
	for _, p := range m.byID {
		if p.Stock.LessThan(threshold) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProducts) ExistsNameUnit(_ context.Context, name, unit string) (bool, error) {
	for _, p := range m.byID {
		if p.Name == name && p.Unit == unit {
			return true, nil
		}
	}
	return false, nil
}

func (m *memProducts) IncrementStock(_ context.Context, id string, delta decimal.Decimal) error {
	p, ok := m.byID[id]
	if !ok {
		return apierror.ErrNotFound
	}
	p.Stock = p.Stock.Add(delta)
	return nil
}

// ── In-memory shift repository ───────────────────────────────────────────────

type memShifts struct {
	byID map[string]*model.Shift
	// staleCounts makes CountOpenByCashier report zero, standing in for a
	// snapshot count taken before a concurrent insert committed.
	staleCounts bool
}

func newMemShifts(shifts ...*model.Shift) *memShifts {
	m := &memShifts{byID: map[string]*model.Shift{}}
	for _, s := range shifts {
		m.byID[s.ID] = s
	}
	return m
}

func (m *memShifts) FindByID(_ context.Context, id string) (*model.Shift, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memShifts) FindOpenByCashier(_ context.Context, cashierName string) (*model.Shift, error) {
	for _, s := range m.byID {
		if s.CashierName == cashierName && s.IsOpen() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apierror.ErrNotFound
}

func (m *memShifts) FindLatestOpen(_ context.Context) (*model.Shift, error) {
	var latest *model.Shift
	for _, s := range m.byID {
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

func (m *memShifts) List(_ context.Context, cashierName string) ([]model.Shift, error) {
	var out []model.Shift
	for _, s := range m.byID {
		if cashierName == "" || s.CashierName == cashierName {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memShifts) CountOpenByCashier(_ context.Context, cashierName string) (int64, error) {
	if m.staleCounts {
		return 0, nil
	}
	var n int64
	for _, s := range m.byID {
		if s.CashierName == cashierName && s.IsOpen() {
			n++
		}
	}
	return n, nil
}

// Create mirrors the store's unique index on open shifts.
func (m *memShifts) Create(_ context.Context, s *model.Shift) error {
	if s.IsOpen() {
		for _, sh := range m.byID {
			if sh.CashierName == s.CashierName && sh.IsOpen() {
				return fmt.Errorf("%w: %s already has an open shift", apierror.ErrInvariant, s.CashierName)
			}
		}
	}
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *memShifts) AddIncome(_ context.Context, id string, delta decimal.Decimal) error {
	s, ok := m.byID[id]
	if !ok {
		return apierror.ErrNotFound
	}
	s.TotalIncome = s.TotalIncome.Add(delta)
	return nil
}

// ── In-memory sale repository ────────────────────────────────────────────────

type memSales struct {
	byID map[string]*model.Sale
}

func newMemSales(sales ...*model.Sale) *memSales {
	m := &memSales{byID: map[string]*model.Sale{}}
	for _, s := range sales {
		m.byID[s.ID] = s
	}
	return m
}

func (m *memSales) FindByID(_ context.Context, id string) (*model.Sale, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSales) List(_ context.Context, f repository.SaleFilter) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range m.byID {
		if f.ShiftID != "" && s.ShiftID != f.ShiftID {
			continue
		}
		if f.Cashier != "" && s.Cashier != f.Cashier {
			continue
		}
		if !f.Start.IsZero() && s.Timestamp.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && s.Timestamp.After(f.End) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (m *memSales) SumTotalByShift(_ context.Context, shiftID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, s := range m.byID {
		if s.ShiftID == shiftID {
			sum = sum.Add(s.Total)
		}
	}
	return sum, nil
}

func (m *memSales) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

// ── In-memory lending repository ─────────────────────────────────────────────

type memLendings struct {
	byID map[string]*model.Lending
}

func newMemLendings(lendings ...*model.Lending) *memLendings {
	m := &memLendings{byID: map[string]*model.Lending{}}
	for _, l := range lendings {
		m.byID[l.ID] = l
	}
	return m
}

func (m *memLendings) FindByID(_ context.Context, id string) (*model.Lending, error) {
	l, ok := m.byID[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLendings) ListOpenByBorrower(_ context.Context, borrowerName string) ([]model.Lending, error) {
	var out []model.Lending
	for _, l := range m.byID {
		if l.BorrowerName == borrowerName && !l.Returned {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *memLendings) ListOpen(_ context.Context) ([]model.Lending, error) {
	var out []model.Lending
	for _, l := range m.byID {
		if !l.Returned {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// ── In-memory expense repository ─────────────────────────────────────────────

type memExpenses struct {
	byID map[string]*model.Expense
}

func newMemExpenses(expenses ...*model.Expense) *memExpenses {
	m := &memExpenses{byID: map[string]*model.Expense{}}
	for _, e := range expenses {
		m.byID[e.ID] = e
	}
	return m
}

func (m *memExpenses) ListRange(_ context.Context, start, end time.Time) ([]model.Expense, error) {
	var out []model.Expense
	for _, e := range m.byID {
		if !start.IsZero() && e.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && e.Timestamp.After(end) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

// ── In-memory category / employee repositories ───────────────────────────────

type memCategories struct{ items map[string]*model.Category }

func (m *memCategories) FindByID(_ context.Context, id string) (*model.Category, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCategories) List(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range m.items {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memCategories) ExistsName(_ context.Context, name string) (bool, error) {
	for _, c := range m.items {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

type memEmployees struct{ items map[string]*model.Employee }

func (m *memEmployees) FindByID(_ context.Context, id string) (*model.Employee, error) {
	e, ok := m.items[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEmployees) List(_ context.Context) ([]model.Employee, error) {
	var out []model.Employee
	for _, e := range m.items {
		out = append(out, *e)
	}
	return out, nil
}

func (m *memEmployees) ExistsName(_ context.Context, name string) (bool, error) {
	for _, e := range m.items {
		if e.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memEmployees) FindByUsername(_ context.Context, _ string) (*model.Employee, error) {
	return nil, apierror.ErrNotFound
}

// ── In-memory user repository ────────────────────────────────────────────────

type memUsers struct {
	byID map[string]*model.User
}

func newMemUsers(users ...*model.User) *memUsers {
	m := &memUsers{byID: map[string]*model.User{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apierror.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

// ── Recording write gateway ──────────────────────────────────────────────────

// writeRec captures one gateway write for assertions.
type writeRec struct {
	Action     string
	Collection string
	DocID      string
	Payload    interface{}
}

// memWriter stands in for the durable gateway. It records every write and,
// when wired to the in-memory repositories, applies the mutation so
// multi-step flows observe their own effects.
type memWriter struct {
	writes []writeRec
	seq    int
	fail   bool
	// queueAll reports every write as queued and leaves the attached
	// repositories untouched, the way the gateway behaves with the store
	// unreachable.
	queueAll bool
	products *memProducts
	shifts   *memShifts
	sales    *memSales
	lendings *memLendings
	expenses *memExpenses
}

func (w *memWriter) Write(_ context.Context, action, collection string, payload interface{}, docID string) (gateway.Outcome, error) {
	if w.fail {
		return gateway.Outcome{}, fmt.Errorf("queue unavailable")
	}
	if action == model.WriteAdd && docID == "" {
		w.seq++
		docID = "doc-" + strconv.Itoa(w.seq)
	}
	w.writes = append(w.writes, writeRec{Action: action, Collection: collection, DocID: docID, Payload: payload})
	if w.queueAll {
		return gateway.Outcome{Disposition: gateway.Queued, DocID: docID}, nil
	}
	w.apply(action, collection, payload, docID)
	return gateway.Outcome{Disposition: gateway.Committed, DocID: docID}, nil
}

func (w *memWriter) apply(action, collection string, payload interface{}, docID string) {
	switch collection {
	case infra.ColSales:
		if w.sales == nil {
			return
		}
		switch action {
		case model.WriteAdd:
			sale := *(payload.(*model.Sale))
			sale.ID = docID
			w.sales.byID[docID] = &sale
		case model.WriteDelete:
			delete(w.sales.byID, docID)
		}
	case infra.ColShifts:
		if w.shifts == nil {
			return
		}
		if action != model.WriteUpdate {
			return
		}
		s, ok := w.shifts.byID[docID]
		if !ok {
			return
		}
		fields := payload.(bson.M)
		if v, ok := fields["totalIncome"].(decimal.Decimal); ok {
			s.TotalIncome = v
		}
		if v, ok := fields["status"].(string); ok {
			s.Status = v
		}
		if v, ok := fields["endTime"].(time.Time); ok {
			s.EndTime = &v
		}
	case infra.ColProducts:
		if w.products == nil {
			return
		}
		if action != model.WriteUpdate {
			return
		}
		p, ok := w.products.byID[docID]
		if !ok {
			return
		}
		fields, ok := payload.(bson.M)
		if !ok {
			return
		}
		if v, ok := fields["stock"].(decimal.Decimal); ok {
			p.Stock = v
		}
	case infra.ColLendings:
		if w.lendings == nil {
			return
		}
		switch action {
		case model.WriteAdd:
			l := *(payload.(*model.Lending))
			l.ID = docID
			w.lendings.byID[docID] = &l
		case model.WriteUpdate:
			l, ok := w.lendings.byID[docID]
			if !ok {
				return
			}
			fields := payload.(bson.M)
			if v, ok := fields["payments"].([]model.LendingPayment); ok {
				l.Payments = v
			}
			if v, ok := fields["items"].([]model.LendingItem); ok {
				l.Items = v
			}
			if v, ok := fields["returned"].(bool); ok {
				l.Returned = v
			}
		}
	case infra.ColExpenses:
		if w.expenses == nil {
			return
		}
		switch action {
		case model.WriteAdd:
			e := *(payload.(*model.Expense))
			e.ID = docID
			w.expenses.byID[docID] = &e
		case model.WriteDelete:
			delete(w.expenses.byID, docID)
		}
	}
}

// byCollection filters recorded writes.
func (w *memWriter) byCollection(collection string) []writeRec {
	var out []writeRec
	for _, rec := range w.writes {
		if rec.Collection == collection {
			out = append(out, rec)
		}
	}
	return out
}

// ── Connectivity probe stub ──────────────────────────────────────────────────

type stubProbe struct{ online bool }

func (p *stubProbe) Online(_ context.Context) bool { return p.online }
func (p *stubProbe) MarkOffline()                  { p.online = false }

// ── Unreachable-store wrappers ───────────────────────────────────────────────

// errStoreDown stands in for a raw driver failure, the class of error the
// repositories return when the store cannot be reached.
var errStoreDown = fmt.Errorf("server selection timeout")

// downProducts drops every read once down is set. It embeds the in-memory
// repository so the rest of the interface keeps working while up.
type downProducts struct {
	*memProducts
	down bool
}

func (d *downProducts) FindByID(ctx context.Context, id string) (*model.Product, error) {
	if d.down {
		return nil, errStoreDown
	}
	return d.memProducts.FindByID(ctx, id)
}

func (d *downProducts) FindByNameUnit(ctx context.Context, name, unit string) (*model.Product, error) {
	if d.down {
		return nil, errStoreDown
	}
	return d.memProducts.FindByNameUnit(ctx, name, unit)
}

func (d *downProducts) List(ctx context.Context) ([]model.Product, error) {
	if d.down {
		return nil, errStoreDown
	}
	return d.memProducts.List(ctx)
}

type downShifts struct {
	*memShifts
	down bool
}

func (d *downShifts) FindByID(ctx context.Context, id string) (*model.Shift, error) {
	if d.down {
		return nil, errStoreDown
	}
	return d.memShifts.FindByID(ctx, id)
}

func (d *downShifts) FindOpenByCashier(ctx context.Context, cashierName string) (*model.Shift, error) {
	if d.down {
		return nil, errStoreDown
	}
	return d.memShifts.FindOpenByCashier(ctx, cashierName)
}

func (d *downShifts) FindLatestOpen(ctx context.Context) (*model.Shift, error) {
	if d.down {
		return nil, errStoreDown
	}
	return d.memShifts.FindLatestOpen(ctx)
}

func (d *downShifts) CountOpenByCashier(ctx context.Context, cashierName string) (int64, error) {
	if d.down {
		return 0, errStoreDown
	}
	return d.memShifts.CountOpenByCashier(ctx, cashierName)
}
