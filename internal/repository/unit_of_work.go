package repository

import (
	"context"
	"errors"
	"regexp"
	"time"
	"unicode/utf8"

	"jewelpos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTxDone is returned when Commit is called on a finished transaction.
var ErrTxDone = errors.New("transaction already finished")

// UnitOfWork opens explicit transactions. Every write that must be atomic with
// another write goes through a Tx.
type UnitOfWork interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx scopes the transactional writers. Rollback after Commit is a no-op, so
// callers can always `defer tx.Rollback()`.
type Tx interface {
	Ornaments() OrnamentWriter
	Clients() ClientWriter
	Bills() BillWriter
	Commit() error
	Rollback() error
}

// OrnamentWriter holds the ornament mutations that must run inside a Tx.
type OrnamentWriter interface {
	// NextSequence allocates the next per-type sequence value. Concurrent
	// callers for the same type never receive the same value.
	NextSequence(ctx context.Context, ornamentType string) (int, error)
	// SkipTaken moves the sequence of ornamentType past the highest numeric
	// suffix already used by any ornament ID starting with prefix, and
	// returns the new value.
	SkipTaken(ctx context.Context, ornamentType, prefix string) (int, error)
	// Insert creates the ornament behind a savepoint; on a unique violation the
	// transaction stays usable and the error is returned as ErrDuplicate.
	Insert(ctx context.Context, o *model.Ornament) error
	// LockForSale returns the requested ornaments locked FOR UPDATE, ordered
	// by ornament_id. Missing IDs are simply absent from the result.
	LockForSale(ctx context.Context, ornamentIDs []string) ([]model.Ornament, error)
	// MarkSold flips an unsold ornament to sold. ErrNotModified when it was
	// already sold.
	MarkSold(ctx context.Context, ornamentID string, price decimal.Decimal, at time.Time) error
}

type ClientWriter interface {
	// FindOrCreate returns the client owning c.Phone, inserting c when no such
	// client exists. An existing client keeps its stored details.
	FindOrCreate(ctx context.Context, c *model.Client) (*model.Client, error)
}

type BillWriter interface {
	// Create inserts the bill header and then its items.
	Create(ctx context.Context, b *model.Bill) error
}

type gormUnitOfWork struct{ db *gorm.DB }

func NewUnitOfWork(db *gorm.DB) UnitOfWork { return &gormUnitOfWork{db: db} }

func (u *gormUnitOfWork) Begin(ctx context.Context) (Tx, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, translate(tx.Error)
	}
	return &gormTx{db: tx}, nil
}

type gormTx struct {
	db   *gorm.DB
	done bool
}

func (t *gormTx) Ornaments() OrnamentWriter { return ornamentWriter{db: t.db} }
func (t *gormTx) Clients() ClientWriter     { return clientWriter{db: t.db} }
func (t *gormTx) Bills() BillWriter         { return billWriter{db: t.db} }

func (t *gormTx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	return translate(t.db.Commit().Error)
}

func (t *gormTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.db.Rollback().Error
}

// ── Ornaments ────────────────────────────────────────────────────────────────

type ornamentWriter struct{ db *gorm.DB }

// The first allocation for a type is seeded from the ornaments already stored
// under it, so rows created before the sequence table existed are respected.
const nextSequenceSQL = `
INSERT INTO ornament_sequences (type, last_value)
SELECT ?, COUNT(*) + 1 FROM ornaments WHERE type = ?
ON CONFLICT (type) DO UPDATE SET last_value = ornament_sequences.last_value + 1
RETURNING last_value`

func (w ornamentWriter) NextSequence(ctx context.Context, ornamentType string) (int, error) {
	var last int
	err := w.db.WithContext(ctx).Raw(nextSequenceSQL, ornamentType, ornamentType).Scan(&last).Error
	return last, translate(err)
}

// Types sharing a first letter share the ID space, so the jump is computed
// from every ID carrying the prefix, not just the rows of this type.
const skipTakenSQL = `
UPDATE ornament_sequences
SET last_value = GREATEST(last_value, (
	SELECT COALESCE(MAX(CAST(SUBSTRING(ornament_id FROM ?) AS BIGINT)), 0)
	FROM ornaments
	WHERE ornament_id ~ ?
)) + 1
WHERE type = ?
RETURNING last_value`

func (w ornamentWriter) SkipTaken(ctx context.Context, ornamentType, prefix string) (int, error) {
	var last int
	pattern := "^" + regexp.QuoteMeta(prefix) + "[0-9]+$"
	from := utf8.RuneCountInString(prefix) + 1
	err := w.db.WithContext(ctx).Raw(skipTakenSQL, from, pattern, ornamentType).Scan(&last).Error
	if err == nil && last == 0 {
		return 0, ErrNotFound
	}
	return last, translate(err)
}

const insertSavepoint = "ornament_insert"

func (w ornamentWriter) Insert(ctx context.Context, o *model.Ornament) error {
	db := w.db.WithContext(ctx)
	if err := db.SavePoint(insertSavepoint).Error; err != nil {
		return translate(err)
	}
	if err := db.Create(o).Error; err != nil {
		if rbErr := db.RollbackTo(insertSavepoint).Error; rbErr != nil {
			return translate(rbErr)
		}
		return translate(err)
	}
	return nil
}

func (w ornamentWriter) LockForSale(ctx context.Context, ornamentIDs []string) ([]model.Ornament, error) {
	var ornaments []model.Ornament
	err := w.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("ornament_id IN ?", ornamentIDs).
		Order("ornament_id ASC").
		Find(&ornaments).Error
	return ornaments, translate(err)
}

func (w ornamentWriter) MarkSold(ctx context.Context, ornamentID string, price decimal.Decimal, at time.Time) error {
	res := w.db.WithContext(ctx).Model(&model.Ornament{}).
		Where("ornament_id = ? AND is_sold = false", ornamentID).
		Updates(map[string]interface{}{
			"is_sold":    true,
			"sold_at":    at,
			"sold_price": price,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotModified
	}
	return nil
}

// ── Clients ──────────────────────────────────────────────────────────────────

type clientWriter struct{ db *gorm.DB }

func (w clientWriter) FindOrCreate(ctx context.Context, c *model.Client) (*model.Client, error) {
	db := w.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoNothing: true,
	}).Create(c).Error
	if err != nil {
		return nil, translate(err)
	}
	var existing model.Client
	if err := db.Where("phone = ?", c.Phone).First(&existing).Error; err != nil {
		return nil, translate(err)
	}
	return &existing, nil
}

// ── Bills ────────────────────────────────────────────────────────────────────

type billWriter struct{ db *gorm.DB }

// Items are inserted on their own: association saving adds ON CONFLICT DO
// NOTHING, and a duplicate ornament_id must fail the sale.
func (w billWriter) Create(ctx context.Context, b *model.Bill) error {
	db := w.db.WithContext(ctx)
	items := b.Items
	if err := db.Omit(clause.Associations).Create(b).Error; err != nil {
		return translate(err)
	}
	for i := range items {
		items[i].BillID = b.ID
	}
	if len(items) > 0 {
		if err := db.Omit(clause.Associations).Create(&items).Error; err != nil {
			return translate(err)
		}
	}
	b.Items = items
	return nil
}
