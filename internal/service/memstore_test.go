package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"jewelpos/internal/dto"
	"jewelpos/internal/model"
	"jewelpos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory storage ─────────────────────────────────────────────────────────
// memStore implements every repository interface over plain maps. Transactions
// are serialised (one open Tx at a time) and rolled back by restoring a
// snapshot, which is enough to test atomicity and race behaviour.

type memState struct {
	merchants map[string]model.Merchant
	ornaments map[string]model.Ornament
	sequences map[string]int
	clients   map[uint]model.Client
	bills     map[uint]model.Bill
	items     map[uint]model.BillItem

	nextOrnamentPK uint
	nextClientID   uint
	nextBillID     uint
	nextItemID     uint
}

func (s memState) clone() memState {
	c := s
	c.merchants = make(map[string]model.Merchant, len(s.merchants))
	for k, v := range s.merchants {
		c.merchants[k] = v
	}
	c.ornaments = make(map[string]model.Ornament, len(s.ornaments))
	for k, v := range s.ornaments {
		c.ornaments[k] = v
	}
	c.sequences = make(map[string]int, len(s.sequences))
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	c.clients = make(map[uint]model.Client, len(s.clients))
	for k, v := range s.clients {
		c.clients[k] = v
	}
	c.bills = make(map[uint]model.Bill, len(s.bills))
	for k, v := range s.bills {
		c.bills[k] = v
	}
	c.items = make(map[uint]model.BillItem, len(s.items))
	for k, v := range s.items {
		c.items[k] = v
	}
	return c
}

type memStore struct {
	mu    sync.RWMutex
	state memState
	txSem chan struct{}

	// fault injection
	beginDelay     time.Duration
	failBillCreate error
	failReads      error
}

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			merchants: map[string]model.Merchant{},
			ornaments: map[string]model.Ornament{},
			sequences: map[string]int{},
			clients:   map[uint]model.Client{},
			bills:     map[uint]model.Bill{},
			items:     map[uint]model.BillItem{},
		},
		txSem: make(chan struct{}, 1),
	}
}

func (m *memStore) addMerchant(code, name, phone string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.merchants[code] = model.Merchant{MerchantCode: code, Name: name, Phone: phone, CreatedAt: time.Now()}
}

// addOrnament stores an ornament directly, bypassing ID generation.
func (m *memStore) addOrnament(o model.Ornament) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.nextOrnamentPK++
	o.ID = m.state.nextOrnamentPK
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	m.state.ornaments[o.OrnamentID] = o
}

func (m *memStore) ornament(id string) model.Ornament {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ornaments[id]
}

func (m *memStore) counts() (clients, bills, items int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state.clients), len(m.state.bills), len(m.state.items)
}

// billWithRelations assembles a bill as the gorm preloads would (under RLock).
func (m *memStore) billWithRelations(b model.Bill) model.Bill {
	if c, ok := m.state.clients[b.ClientID]; ok {
		c := c
		b.Client = &c
	}
	b.Items = nil
	for _, it := range m.state.items {
		if it.BillID != b.ID {
			continue
		}
		if o, ok := m.state.ornaments[it.OrnamentID]; ok {
			o := o
			it.Ornament = &o
		}
		b.Items = append(b.Items, it)
	}
	sort.Slice(b.Items, func(i, j int) bool { return b.Items[i].ID < b.Items[j].ID })
	return b
}

func (m *memStore) billsNewestFirst() []model.Bill {
	bills := make([]model.Bill, 0, len(m.state.bills))
	for _, b := range m.state.bills {
		bills = append(bills, m.billWithRelations(b))
	}
	sort.Slice(bills, func(i, j int) bool {
		if !bills[i].CreatedAt.Equal(bills[j].CreatedAt) {
			return bills[i].CreatedAt.After(bills[j].CreatedAt)
		}
		return bills[i].ID > bills[j].ID
	})
	return bills
}

// ── UnitOfWork ────────────────────────────────────────────────────────────────

type memUoW struct{ store *memStore }

func (u memUoW) Begin(ctx context.Context) (repository.Tx, error) {
	if d := u.store.beginDelay; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	select {
	case u.store.txSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	u.store.mu.RLock()
	snapshot := u.store.state.clone()
	u.store.mu.RUnlock()
	return &memTx{store: u.store, snapshot: snapshot}, nil
}

type memTx struct {
	store    *memStore
	snapshot memState
	done     bool
}

func (t *memTx) Ornaments() repository.OrnamentWriter { return memOrnamentWriter{t.store} }
func (t *memTx) Clients() repository.ClientWriter     { return memClientWriter{t.store} }
func (t *memTx) Bills() repository.BillWriter         { return memBillWriter{t.store} }

func (t *memTx) Commit() error {
	if t.done {
		return repository.ErrTxDone
	}
	t.done = true
	<-t.store.txSem
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Lock()
	t.store.state = t.snapshot
	t.store.mu.Unlock()
	<-t.store.txSem
	return nil
}

type memOrnamentWriter struct{ store *memStore }

func (w memOrnamentWriter) NextSequence(_ context.Context, ornamentType string) (int, error) {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	last, ok := w.store.state.sequences[ornamentType]
	if !ok {
		for _, o := range w.store.state.ornaments {
			if o.Type == ornamentType {
				last++
			}
		}
	}
	last++
	w.store.state.sequences[ornamentType] = last
	return last, nil
}

func (w memOrnamentWriter) SkipTaken(_ context.Context, ornamentType, prefix string) (int, error) {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	last, ok := w.store.state.sequences[ornamentType]
	if !ok {
		return 0, repository.ErrNotFound
	}
	for id := range w.store.state.ornaments {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(id, prefix)); err == nil && n > last {
			last = n
		}
	}
	last++
	w.store.state.sequences[ornamentType] = last
	return last, nil
}

func (w memOrnamentWriter) Insert(_ context.Context, o *model.Ornament) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	if _, taken := w.store.state.ornaments[o.OrnamentID]; taken {
		return repository.ErrDuplicate
	}
	if _, ok := w.store.state.merchants[o.MerchantCode]; !ok {
		return repository.ErrForeignKey
	}
	w.store.state.nextOrnamentPK++
	o.ID = w.store.state.nextOrnamentPK
	o.CreatedAt = time.Now()
	w.store.state.ornaments[o.OrnamentID] = *o
	return nil
}

func (w memOrnamentWriter) LockForSale(_ context.Context, ids []string) ([]model.Ornament, error) {
	w.store.mu.RLock()
	defer w.store.mu.RUnlock()
	var out []model.Ornament
	for _, id := range ids {
		if o, ok := w.store.state.ornaments[id]; ok {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrnamentID < out[j].OrnamentID })
	return out, nil
}

func (w memOrnamentWriter) MarkSold(_ context.Context, id string, price decimal.Decimal, at time.Time) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	o, ok := w.store.state.ornaments[id]
	if !ok || o.IsSold {
		return repository.ErrNotModified
	}
	o.IsSold = true
	o.SoldAt = &at
	o.SoldPrice = &price
	w.store.state.ornaments[id] = o
	return nil
}

type memClientWriter struct{ store *memStore }

func (w memClientWriter) FindOrCreate(_ context.Context, c *model.Client) (*model.Client, error) {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	for _, existing := range w.store.state.clients {
		if existing.Phone == c.Phone {
			existing := existing
			return &existing, nil
		}
	}
	w.store.state.nextClientID++
	created := *c
	created.ID = w.store.state.nextClientID
	created.CreatedAt = time.Now()
	w.store.state.clients[created.ID] = created
	return &created, nil
}

type memBillWriter struct{ store *memStore }

func (w memBillWriter) Create(_ context.Context, b *model.Bill) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	if w.store.failBillCreate != nil {
		return w.store.failBillCreate
	}
	for _, it := range b.Items {
		for _, existing := range w.store.state.items {
			if existing.OrnamentID == it.OrnamentID {
				return repository.ErrDuplicate
			}
		}
	}
	w.store.state.nextBillID++
	b.ID = w.store.state.nextBillID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	header := *b
	header.Items = nil
	w.store.state.bills[b.ID] = header
	for i := range b.Items {
		w.store.state.nextItemID++
		b.Items[i].ID = w.store.state.nextItemID
		b.Items[i].BillID = b.ID
		w.store.state.items[b.Items[i].ID] = b.Items[i]
	}
	return nil
}

// ── Read repositories ─────────────────────────────────────────────────────────

type memOrnamentRepo struct{ store *memStore }

func (r memOrnamentRepo) FindByOrnamentID(_ context.Context, id string) (*model.Ornament, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.failReads != nil {
		return nil, r.store.failReads
	}
	o, ok := r.store.state.ornaments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r memOrnamentRepo) ListAvailable(_ context.Context, ornamentType string) ([]model.Ornament, error) {
	return r.List(context.Background(), dto.StockFilter{Type: ornamentType, Status: "in_stock"})
}

func (r memOrnamentRepo) List(_ context.Context, f dto.StockFilter) ([]model.Ornament, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.failReads != nil {
		return nil, r.store.failReads
	}
	var out []model.Ornament
	for _, o := range r.store.state.ornaments {
		switch {
		case f.Type != "" && o.Type != f.Type,
			f.Status == "sold" && !o.IsSold,
			f.Status == "in_stock" && o.IsSold,
			f.Merchant != "" && o.MerchantCode != f.Merchant,
			f.Purity != "" && o.Purity != f.Purity,
			f.Search != "" && !strings.Contains(o.OrnamentID, f.Search) && !strings.Contains(o.MerchantCode, f.Search):
			continue
		}
		if m, ok := r.store.state.merchants[o.MerchantCode]; ok {
			m := m
			o.Merchant = &m
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memOrnamentRepo) DB() *gorm.DB { return nil }

type memMerchantRepo struct{ store *memStore }

func (r memMerchantRepo) Create(_ context.Context, m *model.Merchant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.state.merchants {
		if existing.MerchantCode == m.MerchantCode || existing.Phone == m.Phone {
			return repository.ErrDuplicate
		}
	}
	m.CreatedAt = time.Now()
	r.store.state.merchants[m.MerchantCode] = *m
	return nil
}

func (r memMerchantRepo) FindByCode(_ context.Context, code string) (*model.Merchant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.failReads != nil {
		return nil, r.store.failReads
	}
	m, ok := r.store.state.merchants[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r memMerchantRepo) FindWithOrnaments(ctx context.Context, code string) (*model.Merchant, error) {
	m, err := r.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, o := range r.store.state.ornaments {
		if o.MerchantCode == code {
			m.Ornaments = append(m.Ornaments, o)
		}
	}
	sort.Slice(m.Ornaments, func(i, j int) bool { return m.Ornaments[i].ID > m.Ornaments[j].ID })
	return m, nil
}

func (r memMerchantRepo) List(_ context.Context, search string) ([]repository.MerchantSummary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []repository.MerchantSummary
	needle := strings.ToLower(search)
	for _, m := range r.store.state.merchants {
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Name), needle) &&
			!strings.Contains(strings.ToLower(m.MerchantCode), needle) &&
			!strings.Contains(m.Phone, search) {
			continue
		}
		row := repository.MerchantSummary{
			MerchantCode: m.MerchantCode, Name: m.Name, Phone: m.Phone, CreatedAt: m.CreatedAt,
			TotalValue: decimal.Zero,
		}
		for _, o := range r.store.state.ornaments {
			if o.MerchantCode != m.MerchantCode {
				continue
			}
			row.TotalOrnaments++
			if !o.IsSold {
				row.TotalValue = row.TotalValue.Add(o.CostPrice)
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memClientRepo struct{ store *memStore }

func (r memClientRepo) Create(_ context.Context, c *model.Client) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.state.clients {
		if existing.Phone == c.Phone {
			return repository.ErrDuplicate
		}
	}
	r.store.state.nextClientID++
	c.ID = r.store.state.nextClientID
	c.CreatedAt = time.Now()
	r.store.state.clients[c.ID] = *c
	return nil
}

func (r memClientRepo) FindWithBills(_ context.Context, id uint) (*model.Client, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.state.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, b := range r.store.billsNewestFirst() {
		if b.ClientID == id {
			b.Client = nil
			c.Bills = append(c.Bills, b)
		}
	}
	return &c, nil
}

func (r memClientRepo) List(_ context.Context) ([]model.Client, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]model.Client, 0, len(r.store.state.clients))
	for _, c := range r.store.state.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type memBillRepo struct{ store *memStore }

func (r memBillRepo) FindByID(_ context.Context, id uint) (*model.Bill, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.failReads != nil {
		return nil, r.store.failReads
	}
	b, ok := r.store.state.bills[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	full := r.store.billWithRelations(b)
	return &full, nil
}

func (r memBillRepo) List(_ context.Context, limit int) ([]model.Bill, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.failReads != nil {
		return nil, r.store.failReads
	}
	bills := r.store.billsNewestFirst()
	if limit > 0 && len(bills) > limit {
		bills = bills[:limit]
	}
	return bills, nil
}

type memDashboardRepo struct{ store *memStore }

func (r memDashboardRepo) Revenue(_ context.Context) (repository.Totals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.failReads != nil {
		return repository.Totals{}, r.store.failReads
	}
	t := repository.Totals{Total: decimal.Zero}
	for _, b := range r.store.state.bills {
		t.Total = t.Total.Add(b.TotalAmount)
		t.Count++
	}
	return t, nil
}

func (r memDashboardRepo) InventoryValue(_ context.Context) (repository.Totals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	t := repository.Totals{Total: decimal.Zero}
	for _, o := range r.store.state.ornaments {
		if !o.IsSold {
			t.Total = t.Total.Add(o.CostPrice)
			t.Count++
		}
	}
	return t, nil
}

func (r memDashboardRepo) TopMerchants(_ context.Context, limit int) ([]repository.MerchantSales, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []repository.MerchantSales
	for _, m := range r.store.state.merchants {
		row := repository.MerchantSales{MerchantCode: m.MerchantCode, Name: m.Name, Revenue: decimal.Zero}
		for _, o := range r.store.state.ornaments {
			if o.MerchantCode == m.MerchantCode && o.IsSold {
				row.TotalSales++
				row.Revenue = row.Revenue.Add(*o.SoldPrice)
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].MerchantCode < out[j].MerchantCode
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memDashboardRepo) InventoryByType(_ context.Context) ([]repository.TypeStock, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	byType := map[string]*repository.TypeStock{}
	for _, o := range r.store.state.ornaments {
		if o.IsSold {
			continue
		}
		row, ok := byType[o.Type]
		if !ok {
			row = &repository.TypeStock{Type: o.Type, Value: decimal.Zero}
			byType[o.Type] = row
		}
		row.Count++
		row.Value = row.Value.Add(o.CostPrice)
	}
	out := make([]repository.TypeStock, 0, len(byType))
	for _, row := range byType {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

var (
	_ repository.UnitOfWork          = memUoW{}
	_ repository.OrnamentRepository  = memOrnamentRepo{}
	_ repository.MerchantRepository  = memMerchantRepo{}
	_ repository.ClientRepository    = memClientRepo{}
	_ repository.BillRepository      = memBillRepo{}
	_ repository.DashboardRepository = memDashboardRepo{}
)
