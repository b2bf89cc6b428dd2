package service

// In-memory repository stubs. The services run their logic through runTx,
// which calls the closure directly when no *gorm.DB is wired, so the full
// movement/reversal paths execute against these maps.

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tkamphefner/Inventory/internal/dto"
	"github.com/tkamphefner/Inventory/internal/ident"
	"github.com/tkamphefner/Inventory/internal/model"
	"github.com/tkamphefner/Inventory/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── audit ────────────────────────────────────────────────────────────────────

type capturedAudit struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
}

type auditStub struct {
	mu      sync.Mutex
	entries []capturedAudit
}

func (a *auditStub) Record(_ context.Context, actorID, action, entityType, entityID string, _ interface{}, _ string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, capturedAudit{actorID, action, entityType, entityID})
}

func (a *auditStub) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action
	}
	return out
}

// ── products ─────────────────────────────────────────────────────────────────

type productRepoStub struct {
	products map[string]*model.Product
}

func newProductRepoStub() *productRepoStub {
	return &productRepoStub{products: make(map[string]*model.Product)}
}

func (r *productRepoStub) Create(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *productRepoStub) FindByID(_ context.Context, id string) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *productRepoStub) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode && p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *productRepoStub) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		switch filter.Active {
		case "all":
		case "false":
			if p.IsActive {
				continue
			}
		default:
			if !p.IsActive {
				continue
			}
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *productRepoStub) Update(_ context.Context, p *model.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *productRepoStub) SoftDelete(_ context.Context, id string) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsActive = false
	return nil
}

func (r *productRepoStub) Reactivate(_ context.Context, id string) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsActive = true
	return nil
}

func (r *productRepoStub) add(name string, price, cost string, minStock int) *model.Product {
	p := &model.Product{
		ID:           ident.New(ident.PrefixProduct),
		Name:         name,
		UnitPrice:    mustDecimal(price),
		UnitCost:     mustDecimal(cost),
		CaseSize:     1,
		MinimumStock: minStock,
		IsActive:     true,
	}
	r.products[p.ID] = p
	return p
}

// ── categories ───────────────────────────────────────────────────────────────

type categoryRepoStub struct {
	categories map[string]*model.Category
}

func newCategoryRepoStub() *categoryRepoStub {
	return &categoryRepoStub{categories: make(map[string]*model.Category)}
}

func (r *categoryRepoStub) Create(_ context.Context, c *model.Category) error {
	r.categories[c.ID] = c
	return nil
}

func (r *categoryRepoStub) FindByID(_ context.Context, id string) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *categoryRepoStub) List(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepoStub) Update(_ context.Context, c *model.Category) error {
	if _, ok := r.categories[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *categoryRepoStub) ChildIDs(_ context.Context, parentID string) ([]string, error) {
	var ids []string
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			ids = append(ids, c.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ── locations ────────────────────────────────────────────────────────────────

type locationRepoStub struct {
	locations map[string]*model.Location
}

func newLocationRepoStub() *locationRepoStub {
	return &locationRepoStub{locations: make(map[string]*model.Location)}
}

func (r *locationRepoStub) Create(_ context.Context, l *model.Location) error {
	r.locations[l.ID] = l
	return nil
}

func (r *locationRepoStub) FindByID(_ context.Context, id string) (*model.Location, error) {
	l, ok := r.locations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *locationRepoStub) List(_ context.Context) ([]model.Location, error) {
	var out []model.Location
	for _, l := range r.locations {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *locationRepoStub) Update(_ context.Context, l *model.Location) error {
	if _, ok := r.locations[l.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *l
	r.locations[l.ID] = &cp
	return nil
}

func (r *locationRepoStub) add(name string, locType model.LocationType) *model.Location {
	l := &model.Location{ID: ident.New(ident.PrefixLocation), Name: name, Type: locType}
	r.locations[l.ID] = l
	return l
}

// ── inventory ────────────────────────────────────────────────────────────────

type inventoryRepoStub struct {
	records      map[string]*model.InventoryRecord
	transactions []model.InventoryTransaction
	levels       []repository.LevelRow
}

func newInventoryRepoStub() *inventoryRepoStub {
	return &inventoryRepoStub{records: make(map[string]*model.InventoryRecord)}
}

func (r *inventoryRepoStub) DB() *gorm.DB { return nil }

func (r *inventoryRepoStub) FindRecord(_ context.Context, productID, locationID string) (*model.InventoryRecord, error) {
	return r.find(productID, locationID)
}

func (r *inventoryRepoStub) FindRecordForUpdateTx(_ *gorm.DB, productID, locationID string) (*model.InventoryRecord, error) {
	return r.find(productID, locationID)
}

func (r *inventoryRepoStub) find(productID, locationID string) (*model.InventoryRecord, error) {
	for _, rec := range r.records {
		if rec.ProductID == productID && rec.LocationID == locationID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *inventoryRepoStub) CreateRecordTx(_ *gorm.DB, rec *model.InventoryRecord) error {
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *inventoryRepoStub) UpdateRecordQuantityTx(_ *gorm.DB, id string, quantity int, countedAt *time.Time) error {
	rec, ok := r.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rec.Quantity = quantity
	if countedAt != nil {
		rec.LastCountedAt = countedAt
	}
	return nil
}

func (r *inventoryRepoStub) CreateTransactionTx(_ *gorm.DB, t *model.InventoryTransaction) error {
	r.transactions = append(r.transactions, *t)
	return nil
}

func (r *inventoryRepoStub) ListTransactions(_ context.Context, filter dto.TransactionFilter) ([]model.InventoryTransaction, int64, error) {
	var out []model.InventoryTransaction
	for _, t := range r.transactions {
		if filter.ProductID != "" && t.ProductID != filter.ProductID {
			continue
		}
		if filter.Type != "" && string(t.Type) != filter.Type {
			continue
		}
		if filter.SessionID != "" && (t.SessionID == nil || *t.SessionID != filter.SessionID) {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (r *inventoryRepoStub) ListTransactionsBySessionTx(_ *gorm.DB, sessionID string) ([]model.InventoryTransaction, error) {
	var out []model.InventoryTransaction
	for _, t := range r.transactions {
		if t.SessionID != nil && *t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *inventoryRepoStub) ListLevels(_ context.Context, q repository.LevelQuery) ([]repository.LevelRow, int64, error) {
	var out []repository.LevelRow
	for _, row := range r.levels {
		if q.LocationID != "" && row.LocationID != q.LocationID {
			continue
		}
		if len(q.CategoryIDs) > 0 {
			if row.CategoryID == nil || !contains(q.CategoryIDs, *row.CategoryID) {
				continue
			}
		}
		if q.LowStockOnly && row.Quantity > row.MinimumStock {
			continue
		}
		out = append(out, row)
	}
	return out, int64(len(out)), nil
}

func (r *inventoryRepoStub) ListAllLevels(_ context.Context) ([]repository.LevelRow, error) {
	return r.levels, nil
}

// quantityAt reads the cached quantity for a pair, 0 when absent.
func (r *inventoryRepoStub) quantityAt(productID, locationID string) int {
	rec, err := r.find(productID, locationID)
	if err != nil {
		return 0
	}
	return rec.Quantity
}

// ledgerSum folds the ledger for one (product, location) pair. Tests assert
// it always equals the cached quantity.
func (r *inventoryRepoStub) ledgerSum(productID, locationID string) int {
	sum := 0
	for i := range r.transactions {
		t := &r.transactions[i]
		if t.ProductID != productID {
			continue
		}
		sum += t.SignedEffect(locationID)
	}
	return sum
}

// ── sessions ─────────────────────────────────────────────────────────────────

type sessionRepoStub struct {
	sessions map[string]*model.Session
}

func newSessionRepoStub() *sessionRepoStub {
	return &sessionRepoStub{sessions: make(map[string]*model.Session)}
}

func (r *sessionRepoStub) Create(_ context.Context, s *model.Session) error {
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *sessionRepoStub) FindByID(_ context.Context, id string) (*model.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *sessionRepoStub) FindByIDForUpdateTx(_ *gorm.DB, id string) (*model.Session, error) {
	return r.FindByID(context.Background(), id)
}

func (r *sessionRepoStub) UpdateTx(_ *gorm.DB, s *model.Session) error {
	if _, ok := r.sessions[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *sessionRepoStub) List(_ context.Context, filter dto.SessionFilter) ([]model.Session, int64, error) {
	var out []model.Session
	for _, s := range r.sessions {
		if filter.Status != "" && string(s.Status) != filter.Status {
			continue
		}
		if filter.Type != "" && string(s.Type) != filter.Type {
			continue
		}
		if filter.LocationID != "" && s.LocationID != filter.LocationID {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ── reports ──────────────────────────────────────────────────────────────────

type reportRepoStub struct {
	reports map[string]*model.Report
}

func newReportRepoStub() *reportRepoStub {
	return &reportRepoStub{reports: make(map[string]*model.Report)}
}

func (r *reportRepoStub) Create(_ context.Context, rep *model.Report) error {
	cp := *rep
	r.reports[rep.ID] = &cp
	return nil
}

func (r *reportRepoStub) FindByID(_ context.Context, id string) (*model.Report, error) {
	rep, ok := r.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rep
	return &cp, nil
}

func (r *reportRepoStub) List(_ context.Context, includeInactive bool) ([]model.Report, error) {
	var out []model.Report
	for _, rep := range r.reports {
		if !includeInactive && !rep.IsActive {
			continue
		}
		out = append(out, *rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *reportRepoStub) Update(_ context.Context, rep *model.Report) error {
	if _, ok := r.reports[rep.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *rep
	r.reports[rep.ID] = &cp
	return nil
}

func (r *reportRepoStub) Deactivate(_ context.Context, id string) error {
	rep, ok := r.reports[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rep.IsActive = false
	return nil
}

func (r *reportRepoStub) ListScheduled(_ context.Context) ([]model.Report, error) {
	var out []model.Report
	for _, rep := range r.reports {
		if rep.IsActive && rep.Schedule != nil && *rep.Schedule != "" {
			out = append(out, *rep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *reportRepoStub) StampLastRun(_ context.Context, id string, at time.Time) error {
	rep, ok := r.reports[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rep.LastRunAt = &at
	return nil
}

// ── users ────────────────────────────────────────────────────────────────────

type userRepoStub struct {
	users map[string]*model.User
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[string]*model.User)}
}

func (r *userRepoStub) Create(_ context.Context, u *model.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *userRepoStub) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepoStub) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *userRepoStub) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if !includeInactive && !u.Active {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *userRepoStub) Update(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *userRepoStub) SoftDelete(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = false
	return nil
}

func (r *userRepoStub) Reactivate(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = true
	return nil
}

func (r *userRepoStub) StampLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLoginAt = &at
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }
