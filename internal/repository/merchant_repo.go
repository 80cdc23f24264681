package repository

import (
	"context"
	"time"

	"jewelpos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MerchantSummary is a merchant with totals over its ornaments. TotalValue
// only counts ornaments still in stock.
type MerchantSummary struct {
	MerchantCode   string
	Name           string
	Phone          string
	CreatedAt      time.Time
	TotalOrnaments int64
	TotalValue     decimal.Decimal
}

type MerchantRepository interface {
	Create(ctx context.Context, m *model.Merchant) error
	FindByCode(ctx context.Context, code string) (*model.Merchant, error)
	// FindWithOrnaments preloads the merchant's ornaments, newest first.
	FindWithOrnaments(ctx context.Context, code string) (*model.Merchant, error)
	List(ctx context.Context, search string) ([]MerchantSummary, error)
}

type merchantRepo struct{ db *gorm.DB }

func NewMerchantRepository(db *gorm.DB) MerchantRepository { return &merchantRepo{db: db} }

func (r *merchantRepo) Create(ctx context.Context, m *model.Merchant) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *merchantRepo) FindByCode(ctx context.Context, code string) (*model.Merchant, error) {
	var m model.Merchant
	if err := r.db.WithContext(ctx).Where("merchant_code = ?", code).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *merchantRepo) FindWithOrnaments(ctx context.Context, code string) (*model.Merchant, error) {
	var m model.Merchant
	err := r.db.WithContext(ctx).
		Preload("Ornaments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Where("merchant_code = ?", code).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *merchantRepo) List(ctx context.Context, search string) ([]MerchantSummary, error) {
	var rows []MerchantSummary

	q := r.db.WithContext(ctx).Table("merchants m").
		Select(`m.merchant_code, m.name, m.phone, m.created_at,
			COUNT(o.id) AS total_ornaments,
			COALESCE(SUM(o.cost_price) FILTER (WHERE o.is_sold = false), 0) AS total_value`).
		Joins("LEFT JOIN ornaments o ON o.merchant_code = m.merchant_code")

	if search != "" {
		like := "%" + search + "%"
		q = q.Where("m.name ILIKE ? OR m.merchant_code ILIKE ? OR m.phone LIKE ?", like, like, like)
	}

	err := q.Group("m.merchant_code").Order("m.name ASC").Scan(&rows).Error
	return rows, translate(err)
}
