package repository

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/model"
)

// Last-known-good read caches. Every successful read through these
// decorators refreshes an in-process copy; when the store stops answering,
// lookups fall back to that copy so carts can still be priced and sales
// attach to the shift the terminal last saw. A NotFound answer is cached
// too, so a product deleted while online stays unsellable offline.
// Mutating calls pass through and only adjust the cache on success.

func productKey(name, unit string) string { return name + "\x00" + unit }

type cachedProducts struct {
	inner ProductRepository

	mu       sync.RWMutex
	byKey    map[string]*model.Product
	byID     map[string]*model.Product
	missKey  map[string]bool
	missID   map[string]bool
	all      []model.Product
	allValid bool
}

func NewCachedProductRepository(inner ProductRepository) ProductRepository {
	return &cachedProducts{
		inner:   inner,
		byKey:   map[string]*model.Product{},
		byID:    map[string]*model.Product{},
		missKey: map[string]bool{},
		missID:  map[string]bool{},
	}
}

func (c *cachedProducts) store(p *model.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *p
	c.byKey[productKey(p.Name, p.Unit)] = &cp
	c.byID[p.ID] = &cp
	delete(c.missKey, productKey(p.Name, p.Unit))
	delete(c.missID, p.ID)
}

func (c *cachedProducts) FindByNameUnit(ctx context.Context, name, unit string) (*model.Product, error) {
	p, err := c.inner.FindByNameUnit(ctx, name, unit)
	k := productKey(name, unit)
	switch {
	case err == nil:
		c.store(p)
		return p, nil
	case apierror.IsNotFound(err):
		c.mu.Lock()
		delete(c.byKey, k)
		c.missKey[k] = true
		c.mu.Unlock()
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.missKey[k] {
		return nil, apierror.ErrNotFound
	}
	if p, ok := c.byKey[k]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, err
}

func (c *cachedProducts) FindByID(ctx context.Context, id string) (*model.Product, error) {
	p, err := c.inner.FindByID(ctx, id)
	switch {
	case err == nil:
		c.store(p)
		return p, nil
	case apierror.IsNotFound(err):
		c.mu.Lock()
		delete(c.byID, id)
		c.missID[id] = true
		c.mu.Unlock()
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.missID[id] {
		return nil, apierror.ErrNotFound
	}
	if p, ok := c.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, err
}

func (c *cachedProducts) List(ctx context.Context) ([]model.Product, error) {
	products, err := c.inner.List(ctx)
	if err == nil {
		c.mu.Lock()
		c.all = append([]model.Product(nil), products...)
		c.allValid = true
		c.mu.Unlock()
		for i := range products {
			c.store(&products[i])
		}
		return products, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.allValid {
		return append([]model.Product(nil), c.all...), nil
	}
	return nil, err
}

func (c *cachedProducts) ListLowStock(ctx context.Context, threshold decimal.Decimal) ([]model.Product, error) {
	products, err := c.List(ctx)
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

func (c *cachedProducts) ExistsNameUnit(ctx context.Context, name, unit string) (bool, error) {
	ok, err := c.inner.ExistsNameUnit(ctx, name, unit)
	if err == nil {
		return ok, nil
	}
	k := productKey(name, unit)
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.missKey[k] {
		return false, nil
	}
	if _, cached := c.byKey[k]; cached {
		return true, nil
	}
	return false, err
}

func (c *cachedProducts) IncrementStock(ctx context.Context, id string, delta decimal.Decimal) error {
	err := c.inner.IncrementStock(ctx, id, delta)
	if err != nil {
		return err
	}
	// The cached stock figure is stale now; drop it until the next read.
	c.mu.Lock()
	if p, ok := c.byID[id]; ok {
		delete(c.byKey, productKey(p.Name, p.Unit))
		delete(c.byID, id)
	}
	c.allValid = false
	c.mu.Unlock()
	return nil
}

// ── Shifts ───────────────────────────────────────────────────────────────────

type cachedShifts struct {
	inner ShiftRepository

	mu            sync.RWMutex
	byID          map[string]*model.Shift
	missID        map[string]bool
	openByCashier map[string]*model.Shift // nil value records "no open shift"
	latestOpen    *model.Shift
	latestSet     bool
}

func NewCachedShiftRepository(inner ShiftRepository) ShiftRepository {
	return &cachedShifts{
		inner:         inner,
		byID:          map[string]*model.Shift{},
		missID:        map[string]bool{},
		openByCashier: map[string]*model.Shift{},
	}
}

// storeOpen keeps one shared copy per shift so an income adjustment reaches
// every lookup path.
func (c *cachedShifts) storeOpen(s *model.Shift) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *s
	c.byID[s.ID] = &cp
	delete(c.missID, s.ID)
	if s.IsOpen() {
		c.openByCashier[s.CashierName] = &cp
		c.latestOpen, c.latestSet = &cp, true
	}
}

func (c *cachedShifts) FindByID(ctx context.Context, id string) (*model.Shift, error) {
	s, err := c.inner.FindByID(ctx, id)
	switch {
	case err == nil:
		c.storeOpen(s)
		return s, nil
	case apierror.IsNotFound(err):
		c.mu.Lock()
		delete(c.byID, id)
		c.missID[id] = true
		c.mu.Unlock()
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.missID[id] {
		return nil, apierror.ErrNotFound
	}
	if s, ok := c.byID[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, err
}

func (c *cachedShifts) FindOpenByCashier(ctx context.Context, cashierName string) (*model.Shift, error) {
	s, err := c.inner.FindOpenByCashier(ctx, cashierName)
	switch {
	case err == nil:
		c.storeOpen(s)
		return s, nil
	case apierror.IsNotFound(err):
		c.mu.Lock()
		c.openByCashier[cashierName] = nil
		c.mu.Unlock()
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.openByCashier[cashierName]; ok {
		if s == nil {
			return nil, apierror.ErrNotFound
		}
		cp := *s
		return &cp, nil
	}
	return nil, err
}

func (c *cachedShifts) FindLatestOpen(ctx context.Context) (*model.Shift, error) {
	s, err := c.inner.FindLatestOpen(ctx)
	switch {
	case err == nil:
		c.storeOpen(s)
		return s, nil
	case apierror.IsNotFound(err):
		c.mu.Lock()
		c.latestOpen, c.latestSet = nil, true
		c.mu.Unlock()
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.latestSet {
		if c.latestOpen == nil {
			return nil, apierror.ErrNotFound
		}
		cp := *c.latestOpen
		return &cp, nil
	}
	return nil, err
}

// List and CountOpenByCashier stay live reads: listings are reporting
// surfaces, and the open-shift count backs a uniqueness check that must
// never run against stale data.

func (c *cachedShifts) List(ctx context.Context, cashierName string) ([]model.Shift, error) {
	return c.inner.List(ctx, cashierName)
}

func (c *cachedShifts) CountOpenByCashier(ctx context.Context, cashierName string) (int64, error) {
	return c.inner.CountOpenByCashier(ctx, cashierName)
}

func (c *cachedShifts) Create(ctx context.Context, s *model.Shift) error {
	if err := c.inner.Create(ctx, s); err != nil {
		return err
	}
	// A freshly opened shift must be sellable even if the store drops out
	// right after.
	c.storeOpen(s)
	return nil
}

func (c *cachedShifts) AddIncome(ctx context.Context, id string, delta decimal.Decimal) error {
	if err := c.inner.AddIncome(ctx, id, delta); err != nil {
		return err
	}
	c.mu.Lock()
	if s, ok := c.byID[id]; ok {
		s.TotalIncome = s.TotalIncome.Add(delta)
	}
	c.mu.Unlock()
	return nil
}
