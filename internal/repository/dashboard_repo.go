package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Totals is a SUM/COUNT pair.
type Totals struct {
	Total decimal.Decimal
	Count int64
}

// MerchantSales is a merchant ranked by revenue from sold ornaments.
type MerchantSales struct {
	MerchantCode string
	Name         string
	TotalSales   int64
	Revenue      decimal.Decimal
}

// TypeStock groups the in-stock inventory by ornament type.
type TypeStock struct {
	Type  string
	Count int64
	Value decimal.Decimal
}

// DashboardRepository holds the read-only aggregates behind the dashboard.
// Every method is a single statement and safe to run concurrently.
type DashboardRepository interface {
	Revenue(ctx context.Context) (Totals, error)
	InventoryValue(ctx context.Context) (Totals, error)
	TopMerchants(ctx context.Context, limit int) ([]MerchantSales, error)
	InventoryByType(ctx context.Context) ([]TypeStock, error)
}

type dashboardRepo struct{ db *gorm.DB }

func NewDashboardRepository(db *gorm.DB) DashboardRepository { return &dashboardRepo{db: db} }

func (r *dashboardRepo) Revenue(ctx context.Context) (Totals, error) {
	var t Totals
	err := r.db.WithContext(ctx).
		Raw("SELECT COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count FROM bills").
		Scan(&t).Error
	return t, translate(err)
}

func (r *dashboardRepo) InventoryValue(ctx context.Context) (Totals, error) {
	var t Totals
	err := r.db.WithContext(ctx).
		Raw("SELECT COALESCE(SUM(cost_price), 0) AS total, COUNT(*) AS count FROM ornaments WHERE is_sold = false").
		Scan(&t).Error
	return t, translate(err)
}

func (r *dashboardRepo) TopMerchants(ctx context.Context, limit int) ([]MerchantSales, error) {
	var rows []MerchantSales
	err := r.db.WithContext(ctx).Raw(`
		SELECT m.merchant_code, m.name,
			COUNT(o.id) AS total_sales,
			COALESCE(SUM(o.sold_price), 0) AS revenue
		FROM merchants m
		LEFT JOIN ornaments o ON o.merchant_code = m.merchant_code AND o.is_sold = true
		GROUP BY m.merchant_code, m.name
		ORDER BY revenue DESC, m.merchant_code ASC
		LIMIT ?`, limit).
		Scan(&rows).Error
	return rows, translate(err)
}

func (r *dashboardRepo) InventoryByType(ctx context.Context) ([]TypeStock, error) {
	var rows []TypeStock
	err := r.db.WithContext(ctx).Raw(`
		SELECT type, COUNT(*) AS count, COALESCE(SUM(cost_price), 0) AS value
		FROM ornaments
		WHERE is_sold = false
		GROUP BY type
		ORDER BY type ASC`).
		Scan(&rows).Error
	return rows, translate(err)
}
