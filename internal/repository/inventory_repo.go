package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tkamphefner/Inventory/internal/dto"
	"github.com/tkamphefner/Inventory/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LevelRow is one inventory record joined with product, category and
// location attributes, as read by level listings and valuation roll-ups.
type LevelRow struct {
	ProductID     string
	ProductName   string
	Barcode       *string
	CategoryID    *string
	CategoryName  *string
	LocationID    string
	LocationName  string
	Quantity      int
	MinimumStock  int
	UnitPrice     decimal.Decimal
	UnitCost      decimal.Decimal
	LastCountedAt *time.Time
}

// LevelQuery carries the resolved filters for ListLevels. CategoryIDs is the
// already-expanded set (category plus its direct children); empty means no
// category filter.
type LevelQuery struct {
	LocationID   string
	CategoryIDs  []string
	Search       string
	LowStockOnly bool
	Page         int
	Limit        int
}

// InventoryRepository is the data access contract for the quantity cache and
// the transaction ledger. The …Tx variants take a live *gorm.DB transaction;
// callers own the transaction boundary.
type InventoryRepository interface {
	DB() *gorm.DB

	FindRecord(ctx context.Context, productID, locationID string) (*model.InventoryRecord, error)
	// FindRecordForUpdateTx locks the row with SELECT … FOR UPDATE so the
	// availability check and the write happen against the same committed value.
	FindRecordForUpdateTx(tx *gorm.DB, productID, locationID string) (*model.InventoryRecord, error)
	CreateRecordTx(tx *gorm.DB, rec *model.InventoryRecord) error
	UpdateRecordQuantityTx(tx *gorm.DB, id string, quantity int, countedAt *time.Time) error

	CreateTransactionTx(tx *gorm.DB, t *model.InventoryTransaction) error
	ListTransactions(ctx context.Context, filter dto.TransactionFilter) ([]model.InventoryTransaction, int64, error)
	ListTransactionsBySessionTx(tx *gorm.DB, sessionID string) ([]model.InventoryTransaction, error)

	ListLevels(ctx context.Context, q LevelQuery) ([]LevelRow, int64, error)
	ListAllLevels(ctx context.Context) ([]LevelRow, error)
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) DB() *gorm.DB { return r.db }

func (r *inventoryRepo) FindRecord(ctx context.Context, productID, locationID string) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *inventoryRepo) FindRecordForUpdateTx(tx *gorm.DB, productID, locationID string) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *inventoryRepo) CreateRecordTx(tx *gorm.DB, rec *model.InventoryRecord) error {
	return tx.Create(rec).Error
}

func (r *inventoryRepo) UpdateRecordQuantityTx(tx *gorm.DB, id string, quantity int, countedAt *time.Time) error {
	updates := map[string]interface{}{"quantity": quantity}
	if countedAt != nil {
		updates["last_counted_at"] = *countedAt
	}
	return tx.Model(&model.InventoryRecord{}).Where("id = ?", id).Updates(updates).Error
}

func (r *inventoryRepo) CreateTransactionTx(tx *gorm.DB, t *model.InventoryTransaction) error {
	return tx.Create(t).Error
}

func (r *inventoryRepo) ListTransactions(ctx context.Context, filter dto.TransactionFilter) ([]model.InventoryTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryTransaction{})

	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.LocationID != "" {
		q = q.Where("source_location_id = ? OR destination_location_id = ?", filter.LocationID, filter.LocationID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.SessionID != "" {
		q = q.Where("session_id = ?", filter.SessionID)
	}
	if filter.From != "" {
		if from, err := time.Parse(time.RFC3339, filter.From); err == nil {
			q = q.Where("created_at >= ?", from)
		}
	}
	if filter.To != "" {
		if to, err := time.Parse(time.RFC3339, filter.To); err == nil {
			q = q.Where("created_at <= ?", to)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var txs []model.InventoryTransaction
	err := q.Preload("Product").Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&txs).Error
	return txs, total, err
}

func (r *inventoryRepo) ListTransactionsBySessionTx(tx *gorm.DB, sessionID string) ([]model.InventoryTransaction, error) {
	var txs []model.InventoryTransaction
	err := tx.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&txs).Error
	return txs, err
}

func (r *inventoryRepo) levelQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("inventory AS i").
		Select(`i.product_id, p.name AS product_name, p.barcode, p.category_id,
			c.name AS category_name, i.location_id, l.name AS location_name,
			i.quantity, p.minimum_stock, p.unit_price, p.unit_cost, i.last_counted_at`).
		Joins("JOIN products p ON p.id = i.product_id").
		Joins("JOIN locations l ON l.id = i.location_id").
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Where("p.is_active = true")
}

func (r *inventoryRepo) ListLevels(ctx context.Context, q LevelQuery) ([]LevelRow, int64, error) {
	base := r.levelQuery(ctx)

	if q.LocationID != "" {
		base = base.Where("i.location_id = ?", q.LocationID)
	}
	if len(q.CategoryIDs) > 0 {
		base = base.Where("p.category_id IN ?", q.CategoryIDs)
	}
	if q.Search != "" {
		base = base.Where("p.name ILIKE ? OR p.barcode ILIKE ?", "%"+q.Search+"%", "%"+q.Search+"%")
	}
	if q.LowStockOnly {
		base = base.Where("i.quantity <= p.minimum_stock")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	var rows []LevelRow
	err := base.Order("p.name ASC, l.name ASC").Limit(q.Limit).Offset(offset).Scan(&rows).Error
	return rows, total, err
}

func (r *inventoryRepo) ListAllLevels(ctx context.Context) ([]LevelRow, error) {
	var rows []LevelRow
	err := r.levelQuery(ctx).Scan(&rows).Error
	return rows, err
}
