package infra

import (
	"fmt"

	"jewelpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the schema
// up to date (AutoMigrate followed by the idempotent patches below).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

// RunMigrations creates / updates all tables and applies the schema patches.
// Safe to call on every start and from integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Merchant{},
		&model.Ornament{},
		&model.OrnamentSequence{},
		&model.Client{},
		&model.Bill{},
		&model.BillItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches adds the CHECK constraints GORM tags cannot express.
// Every statement is guarded by an existence check so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"ornaments positive weight and cost", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ornaments_positive') THEN
    ALTER TABLE ornaments ADD CONSTRAINT chk_ornaments_positive
      CHECK (weight > 0 AND cost_price > 0);
  END IF;
END $$`},
		{"ornaments purity enum", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ornaments_purity') THEN
    ALTER TABLE ornaments ADD CONSTRAINT chk_ornaments_purity
      CHECK (purity IN ('18K', '22K', '24K'));
  END IF;
END $$`},
		// sold flag, timestamp and price move together
		{"ornaments sold consistency", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ornaments_sold') THEN
    ALTER TABLE ornaments ADD CONSTRAINT chk_ornaments_sold
      CHECK ((is_sold AND sold_at IS NOT NULL AND sold_price IS NOT NULL)
          OR (NOT is_sold AND sold_at IS NULL AND sold_price IS NULL));
  END IF;
END $$`},
		{"bills payment method enum", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_bills_payment_method') THEN
    ALTER TABLE bills ADD CONSTRAINT chk_bills_payment_method
      CHECK (payment_method IN ('cash', 'card', 'upi', 'bank'));
  END IF;
END $$`},
		{"bills total equals subtotal plus tax", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_bills_total') THEN
    ALTER TABLE bills ADD CONSTRAINT chk_bills_total
      CHECK (subtotal >= 0 AND tax >= 0 AND total_amount = subtotal + tax);
  END IF;
END $$`},
		{"bill items non-negative price", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_bill_items_price') THEN
    ALTER TABLE bill_items ADD CONSTRAINT chk_bill_items_price CHECK (selling_price >= 0);
  END IF;
END $$`},
		// stock listings filter on (is_sold, type)
		{"ornaments in-stock partial index",
			`CREATE INDEX IF NOT EXISTS idx_ornaments_in_stock ON ornaments (type) WHERE is_sold = false`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
