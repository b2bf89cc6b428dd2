package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tkamphefner/Inventory/internal/audit"
	"github.com/tkamphefner/Inventory/internal/dto"
	"github.com/tkamphefner/Inventory/internal/ident"
	"github.com/tkamphefner/Inventory/internal/model"
	"github.com/tkamphefner/Inventory/internal/repository"
	"github.com/tkamphefner/Inventory/internal/serviceerr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Actor identifies who performs a mutating operation and from where,
// for the audit trail.
type Actor struct {
	ID     string
	Origin string
}

// MovementInput is the resolved input for one ledger movement.
type MovementInput struct {
	Type                  model.TransactionType
	ProductID             string
	SourceLocationID      *string
	DestinationLocationID *string
	Quantity              int
	BatchNumber           *string
	ExpirationDate        *time.Time
	Notes                 *string
	SessionID             *string
	Actor                 Actor
}

// InventoryService is the sole writer of inventory quantities and the
// transaction ledger. Every logical operation runs as one database
// transaction with the touched cache rows locked, so the ledger and the
// cached quantity cannot diverge and concurrent movements cannot produce
// negative stock.
type InventoryService interface {
	RecordTransaction(ctx context.Context, in MovementInput) (*model.InventoryTransaction, error)

	// RecordMovementTx validates and applies one movement inside the caller's
	// transaction, so a session row lock and the movement commit as one unit.
	// The caller owns the transaction and the audit record.
	RecordMovementTx(ctx context.Context, tx *gorm.DB, in MovementInput) (*model.InventoryTransaction, error)

	SetQuantity(ctx context.Context, req dto.SetQuantityRequest, actor Actor) (*dto.RecordResponse, error)
	GetLevels(ctx context.Context, filter dto.LevelFilter) (*dto.LevelListResponse, error)
	GetSummary(ctx context.Context) (*dto.SummaryResponse, error)
	ListTransactions(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error)

	// ReverseSessionTx appends one compensating ledger entry per transaction
	// of the session and restores the cached quantities, inside the caller's
	// transaction. Returns the number of entries reversed.
	ReverseSessionTx(tx *gorm.DB, sessionID string, actor Actor) (int, error)
}

type inventoryService struct {
	repo         repository.InventoryRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	categoryRepo repository.CategoryRepository
	auditor      audit.Recorder
}

func NewInventoryService(
	repo repository.InventoryRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	categoryRepo repository.CategoryRepository,
	auditor audit.Recorder,
) InventoryService {
	return &inventoryService{
		repo:         repo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		categoryRepo: categoryRepo,
		auditor:      auditor,
	}
}

// ── RecordTransaction ────────────────────────────────────────────────────────

func (s *inventoryService) RecordTransaction(ctx context.Context, in MovementInput) (*model.InventoryTransaction, error) {
	if err := s.validateMovement(ctx, in); err != nil {
		return nil, err
	}

	var trx *model.InventoryTransaction
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		trx, err = s.applyMovementTx(tx, in)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Record(ctx, in.Actor.ID, "inventory."+string(in.Type), "transaction", trx.ID, map[string]interface{}{
		"product_id": in.ProductID,
		"quantity":   in.Quantity,
	}, in.Actor.Origin)

	return trx, nil
}

func (s *inventoryService) RecordMovementTx(ctx context.Context, tx *gorm.DB, in MovementInput) (*model.InventoryTransaction, error) {
	if err := s.validateMovement(ctx, in); err != nil {
		return nil, err
	}
	return s.applyMovementTx(tx, in)
}

// validateMovement resolves referenced rows and checks the movement shape
// before anything is mutated.
func (s *inventoryService) validateMovement(ctx context.Context, in MovementInput) error {
	if in.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d: %w", in.Quantity, serviceerr.ErrInvalidInput)
	}

	product, err := s.productRepo.FindByID(ctx, in.ProductID)
	if err != nil {
		return asNotFound(err, "product", in.ProductID)
	}
	if !product.IsActive {
		return fmt.Errorf("product %s is inactive: %w", in.ProductID, serviceerr.ErrInvalidInput)
	}

	switch in.Type {
	case model.TransactionCheckIn:
		if in.DestinationLocationID == nil {
			return fmt.Errorf("check_in requires a destination location: %w", serviceerr.ErrInvalidInput)
		}
	case model.TransactionCheckOut:
		if in.SourceLocationID == nil {
			return fmt.Errorf("check_out requires a source location: %w", serviceerr.ErrInvalidInput)
		}
	case model.TransactionTransfer:
		if in.SourceLocationID == nil || in.DestinationLocationID == nil {
			return fmt.Errorf("transfer requires source and destination locations: %w", serviceerr.ErrInvalidInput)
		}
		if *in.SourceLocationID == *in.DestinationLocationID {
			return fmt.Errorf("transfer source and destination must differ: %w", serviceerr.ErrInvalidInput)
		}
	case model.TransactionAdjustment:
		// Adjustments carry a target value, not a delta — they go through SetQuantity.
		return fmt.Errorf("adjustments are recorded via set-quantity: %w", serviceerr.ErrInvalidInput)
	default:
		return fmt.Errorf("unknown transaction type %q: %w", in.Type, serviceerr.ErrInvalidInput)
	}

	for _, locID := range []*string{in.SourceLocationID, in.DestinationLocationID} {
		if locID == nil {
			continue
		}
		if _, err := s.locationRepo.FindByID(ctx, *locID); err != nil {
			return asNotFound(err, "location", *locID)
		}
	}
	return nil
}

// applyMovementTx validates against the locked cache rows and writes the
// ledger entry plus the cache mutation as one unit. Callers hold the
// transaction.
func (s *inventoryService) applyMovementTx(tx *gorm.DB, in MovementInput) (*model.InventoryTransaction, error) {
	switch in.Type {
	case model.TransactionCheckIn:
		if err := s.creditTx(tx, in.ProductID, *in.DestinationLocationID, in.Quantity); err != nil {
			return nil, err
		}
	case model.TransactionCheckOut:
		if err := s.debitTx(tx, in.ProductID, *in.SourceLocationID, in.Quantity); err != nil {
			return nil, err
		}
	case model.TransactionTransfer:
		// Lock in a fixed order so two opposing transfers cannot deadlock.
		if *in.SourceLocationID < *in.DestinationLocationID {
			if err := s.debitTx(tx, in.ProductID, *in.SourceLocationID, in.Quantity); err != nil {
				return nil, err
			}
			if err := s.creditTx(tx, in.ProductID, *in.DestinationLocationID, in.Quantity); err != nil {
				return nil, err
			}
		} else {
			if err := s.creditTx(tx, in.ProductID, *in.DestinationLocationID, in.Quantity); err != nil {
				return nil, err
			}
			if err := s.debitTx(tx, in.ProductID, *in.SourceLocationID, in.Quantity); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported movement type %q: %w", in.Type, serviceerr.ErrInvalidInput)
	}

	trx := &model.InventoryTransaction{
		ID:                    ident.New(ident.PrefixTransaction),
		Type:                  in.Type,
		ProductID:             in.ProductID,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		Quantity:              in.Quantity,
		BatchNumber:           in.BatchNumber,
		ExpirationDate:        in.ExpirationDate,
		Notes:                 in.Notes,
		CreatedBy:             in.Actor.ID,
		SessionID:             in.SessionID,
		CreatedAt:             time.Now().UTC(),
	}
	if err := s.repo.CreateTransactionTx(tx, trx); err != nil {
		return nil, err
	}
	return trx, nil
}

// debitTx subtracts quantity from the locked (product, location) record.
// The record must exist and hold enough stock.
func (s *inventoryService) debitTx(tx *gorm.DB, productID, locationID string, quantity int) error {
	rec, err := s.repo.FindRecordForUpdateTx(tx, productID, locationID)
	if err != nil {
		if isMissing(err) {
			return fmt.Errorf("no stock record for product %s at location %s: %w", productID, locationID, serviceerr.ErrNotFound)
		}
		return err
	}
	if rec.Quantity < quantity {
		return fmt.Errorf("product %s at location %s: have %d, requested %d: %w",
			productID, locationID, rec.Quantity, quantity, serviceerr.ErrInsufficientStock)
	}
	return s.repo.UpdateRecordQuantityTx(tx, rec.ID, rec.Quantity-quantity, nil)
}

// creditTx adds quantity to the locked (product, location) record, creating
// it on first movement into the pair.
func (s *inventoryService) creditTx(tx *gorm.DB, productID, locationID string, quantity int) error {
	rec, err := s.repo.FindRecordForUpdateTx(tx, productID, locationID)
	if err != nil {
		if isMissing(err) {
			return s.repo.CreateRecordTx(tx, &model.InventoryRecord{
				ID:         ident.New(ident.PrefixInventory),
				ProductID:  productID,
				LocationID: locationID,
				Quantity:   quantity,
			})
		}
		return err
	}
	return s.repo.UpdateRecordQuantityTx(tx, rec.ID, rec.Quantity+quantity, nil)
}

// ── SetQuantity ──────────────────────────────────────────────────────────────

// SetQuantity writes an absolute quantity for manual counts and corrections.
// The engine derives the signed delta itself and logs one adjustment ledger
// entry with before/after values; a no-op count only stamps last_counted_at.
func (s *inventoryService) SetQuantity(ctx context.Context, req dto.SetQuantityRequest, actor Actor) (*dto.RecordResponse, error) {
	if req.Quantity < 0 {
		return nil, fmt.Errorf("target quantity must be non-negative, got %d: %w", req.Quantity, serviceerr.ErrInvalidInput)
	}
	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		return nil, asNotFound(err, "product", req.ProductID)
	}
	if _, err := s.locationRepo.FindByID(ctx, req.LocationID); err != nil {
		return nil, asNotFound(err, "location", req.LocationID)
	}

	now := time.Now().UTC()
	var out dto.RecordResponse

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		before := 0
		recID := ""
		rec, err := s.repo.FindRecordForUpdateTx(tx, req.ProductID, req.LocationID)
		switch {
		case err == nil:
			before = rec.Quantity
			recID = rec.ID
		case isMissing(err):
			recID = ident.New(ident.PrefixInventory)
			if err := s.repo.CreateRecordTx(tx, &model.InventoryRecord{
				ID:         recID,
				ProductID:  req.ProductID,
				LocationID: req.LocationID,
				Quantity:   0,
			}); err != nil {
				return err
			}
		default:
			return err
		}

		delta := req.Quantity - before
		if delta != 0 {
			note := fmt.Sprintf("count adjustment: %d -> %d", before, req.Quantity)
			if req.Notes != nil && *req.Notes != "" {
				note = note + " — " + *req.Notes
			}
			trx := &model.InventoryTransaction{
				ID:        ident.New(ident.PrefixTransaction),
				Type:      model.TransactionAdjustment,
				ProductID: req.ProductID,
				Quantity:  delta,
				Notes:     &note,
				CreatedBy: actor.ID,
				CreatedAt: now,
			}
			// Direction encoded via source/destination; quantity stays positive.
			if delta > 0 {
				loc := req.LocationID
				trx.DestinationLocationID = &loc
			} else {
				loc := req.LocationID
				trx.SourceLocationID = &loc
				trx.Quantity = -delta
			}
			if err := s.repo.CreateTransactionTx(tx, trx); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateRecordQuantityTx(tx, recID, req.Quantity, &now); err != nil {
			return err
		}

		counted := formatTime(now)
		out = dto.RecordResponse{
			ID:            recID,
			ProductID:     req.ProductID,
			LocationID:    req.LocationID,
			Quantity:      req.Quantity,
			LastCountedAt: &counted,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Record(ctx, actor.ID, "inventory.set_quantity", "inventory", out.ID, map[string]interface{}{
		"product_id":  req.ProductID,
		"location_id": req.LocationID,
		"quantity":    req.Quantity,
	}, actor.Origin)

	return &out, nil
}

// ── ReverseSessionTx ─────────────────────────────────────────────────────────

func (s *inventoryService) ReverseSessionTx(tx *gorm.DB, sessionID string, actor Actor) (int, error) {
	entries, err := s.repo.ListTransactionsBySessionTx(tx, sessionID)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	for i := range entries {
		orig := &entries[i]

		// Undo the cache effect: debit what the entry credited, credit what
		// it debited.
		if orig.DestinationLocationID != nil {
			if err := s.debitTx(tx, orig.ProductID, *orig.DestinationLocationID, orig.Quantity); err != nil {
				return 0, fmt.Errorf("reversing %s: %w", orig.ID, err)
			}
		}
		if orig.SourceLocationID != nil {
			if err := s.creditTx(tx, orig.ProductID, *orig.SourceLocationID, orig.Quantity); err != nil {
				return 0, fmt.Errorf("reversing %s: %w", orig.ID, err)
			}
		}

		// Compensating ledger entry so the ledger keeps reconstructing the
		// cache after cancellation: same quantity, swapped direction.
		note := fmt.Sprintf("reversal of %s (session %s cancelled)", orig.ID, sessionID)
		comp := &model.InventoryTransaction{
			ID:                    ident.New(ident.PrefixTransaction),
			Type:                  model.TransactionAdjustment,
			ProductID:             orig.ProductID,
			SourceLocationID:      orig.DestinationLocationID,
			DestinationLocationID: orig.SourceLocationID,
			Quantity:              orig.Quantity,
			Notes:                 &note,
			CreatedBy:             actor.ID,
			SessionID:             &sessionID,
			CreatedAt:             now,
		}
		if err := s.repo.CreateTransactionTx(tx, comp); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

// ── GetLevels ────────────────────────────────────────────────────────────────

func (s *inventoryService) GetLevels(ctx context.Context, filter dto.LevelFilter) (*dto.LevelListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	q := repository.LevelQuery{
		LocationID:   filter.LocationID,
		Search:       filter.Search,
		LowStockOnly: filter.LowStockOnly,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}

	// One level of hierarchy: a category filter also matches its direct children.
	if filter.CategoryID != "" {
		ids := []string{filter.CategoryID}
		children, err := s.categoryRepo.ChildIDs(ctx, filter.CategoryID)
		if err != nil {
			return nil, err
		}
		q.CategoryIDs = append(ids, children...)
	}

	rows, total, err := s.repo.ListLevels(ctx, q)
	if err != nil {
		return nil, err
	}

	data := make([]dto.LevelResponse, 0, len(rows))
	for i := range rows {
		data = append(data, levelRowToResponse(&rows[i]))
	}
	return &dto.LevelListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── GetSummary ───────────────────────────────────────────────────────────────

func (s *inventoryService) GetSummary(ctx context.Context) (*dto.SummaryResponse, error) {
	rows, err := s.repo.ListAllLevels(ctx)
	if err != nil {
		return nil, err
	}

	summary := &dto.SummaryResponse{
		TotalValue: decimal.Zero,
		TotalCost:  decimal.Zero,
	}
	type bucket struct {
		name     string
		quantity int
		value    decimal.Decimal
		cost     decimal.Decimal
	}
	buckets := make(map[string]*bucket)
	var order []string

	for i := range rows {
		row := &rows[i]
		qty := decimal.NewFromInt(int64(row.Quantity))
		value := row.UnitPrice.Mul(qty)
		cost := row.UnitCost.Mul(qty)

		summary.TotalQuantity += row.Quantity
		summary.TotalValue = summary.TotalValue.Add(value)
		summary.TotalCost = summary.TotalCost.Add(cost)
		if row.Quantity <= row.MinimumStock {
			summary.LowStockCount++
		}

		catID, catName := "", "uncategorized"
		if row.CategoryID != nil {
			catID = *row.CategoryID
		}
		if row.CategoryName != nil {
			catName = *row.CategoryName
		}
		b, ok := buckets[catID]
		if !ok {
			b = &bucket{name: catName, value: decimal.Zero, cost: decimal.Zero}
			buckets[catID] = b
			order = append(order, catID)
		}
		b.quantity += row.Quantity
		b.value = b.value.Add(value)
		b.cost = b.cost.Add(cost)
	}

	for _, id := range order {
		b := buckets[id]
		summary.Categories = append(summary.Categories, dto.CategoryBreakdown{
			CategoryID:   id,
			CategoryName: b.name,
			Quantity:     b.quantity,
			Value:        b.value,
			Cost:         b.cost,
		})
	}
	return summary, nil
}

// ── ListTransactions ─────────────────────────────────────────────────────────

func (s *inventoryService) ListTransactions(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	txs, total, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		data = append(data, TransactionToResponse(&txs[i]))
	}
	return &dto.TransactionListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Mappers ──────────────────────────────────────────────────────────────────

func TransactionToResponse(t *model.InventoryTransaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:                    t.ID,
		Type:                  string(t.Type),
		ProductID:             t.ProductID,
		SourceLocationID:      t.SourceLocationID,
		DestinationLocationID: t.DestinationLocationID,
		Quantity:              t.Quantity,
		BatchNumber:           t.BatchNumber,
		Notes:                 t.Notes,
		CreatedBy:             t.CreatedBy,
		SessionID:             t.SessionID,
		CreatedAt:             formatTime(t.CreatedAt),
	}
	if t.Product != nil {
		resp.ProductName = t.Product.Name
	}
	resp.ExpirationDate = formatTimePtr(t.ExpirationDate)
	return resp
}

func levelRowToResponse(row *repository.LevelRow) dto.LevelResponse {
	locationName := row.LocationName
	return dto.LevelResponse{
		ProductID:     row.ProductID,
		ProductName:   row.ProductName,
		Barcode:       row.Barcode,
		CategoryID:    row.CategoryID,
		CategoryName:  row.CategoryName,
		LocationID:    row.LocationID,
		LocationName:  locationName,
		Quantity:      row.Quantity,
		MinimumStock:  row.MinimumStock,
		LowStock:      row.Quantity <= row.MinimumStock,
		UnitPrice:     row.UnitPrice,
		Value:         row.UnitPrice.Mul(decimal.NewFromInt(int64(row.Quantity))),
		LastCountedAt: formatTimePtr(row.LastCountedAt),
	}
}
