package infra

import (
	"fmt"

	"github.com/tkamphefner/Inventory/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate to create / update all tables. TranslateError turns driver
// unique-violation errors into gorm.ErrDuplicatedKey so the service layer
// can map them without inspecting SQLSTATE codes.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the schema. Safe to re-run on an existing database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Location{},
		&model.Product{},
		&model.InventoryRecord{},
		&model.InventoryTransaction{},
		&model.Session{},
		&model.Report{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Ledger listings filter by product and by either location column.
		`CREATE INDEX IF NOT EXISTS idx_transactions_product_created
		     ON inventory_transactions (product_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_source_location
		     ON inventory_transactions (source_location_id)
		     WHERE source_location_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_destination_location
		     ON inventory_transactions (destination_location_id)
		     WHERE destination_location_id IS NOT NULL`,
		// Session ledger entries are replayed in insertion order on cancel.
		`CREATE INDEX IF NOT EXISTS idx_transactions_session
		     ON inventory_transactions (session_id)
		     WHERE session_id IS NOT NULL`,
		// Audit listings are keyed by entity and by actor.
		`CREATE INDEX IF NOT EXISTS idx_audit_entity
		     ON audit_logs (entity_type, entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_actor
		     ON audit_logs (actor_id, created_at DESC)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
