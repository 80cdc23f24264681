package repository

import (
	"context"

	"jewelpos/internal/dto"
	"jewelpos/internal/model"

	"gorm.io/gorm"
)

// OrnamentRepository is the read side of the inventory. Writes that take part
// in a sale or an ID allocation go through Tx.Ornaments().
type OrnamentRepository interface {
	FindByOrnamentID(ctx context.Context, ornamentID string) (*model.Ornament, error)
	ListAvailable(ctx context.Context, ornamentType string) ([]model.Ornament, error)
	List(ctx context.Context, filter dto.StockFilter) ([]model.Ornament, error)

	// DB exposes the underlying *gorm.DB for health checks.
	DB() *gorm.DB
}

type ornamentRepo struct{ db *gorm.DB }

func NewOrnamentRepository(db *gorm.DB) OrnamentRepository { return &ornamentRepo{db: db} }

func (r *ornamentRepo) FindByOrnamentID(ctx context.Context, ornamentID string) (*model.Ornament, error) {
	var o model.Ornament
	err := r.db.WithContext(ctx).Where("ornament_id = ?", ornamentID).First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *ornamentRepo) ListAvailable(ctx context.Context, ornamentType string) ([]model.Ornament, error) {
	var ornaments []model.Ornament
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_sold = false", ornamentType).
		Order("created_at DESC").
		Find(&ornaments).Error
	return ornaments, translate(err)
}

func (r *ornamentRepo) List(ctx context.Context, filter dto.StockFilter) ([]model.Ornament, error) {
	var ornaments []model.Ornament

	q := r.db.WithContext(ctx).Model(&model.Ornament{}).Preload("Merchant")

	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	// Status filter: "sold" = sold only, "in_stock" = unsold only, empty = all
	switch filter.Status {
	case "sold":
		q = q.Where("is_sold = true")
	case "in_stock":
		q = q.Where("is_sold = false")
	}
	if filter.Merchant != "" {
		q = q.Where("merchant_code = ?", filter.Merchant)
	}
	if filter.Purity != "" {
		q = q.Where("purity = ?", filter.Purity)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("ornament_id ILIKE ? OR merchant_code ILIKE ?", like, like)
	}

	err := q.Order("created_at DESC").Find(&ornaments).Error
	return ornaments, translate(err)
}

func (r *ornamentRepo) DB() *gorm.DB { return r.db }
