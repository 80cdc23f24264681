package repository

import (
	"context"

	"jewelpos/internal/model"

	"gorm.io/gorm"
)

// BillRepository reads bills. Bills are immutable once committed, so there is
// no update path.
type BillRepository interface {
	// FindByID loads the bill with its client and items (each with its ornament).
	FindByID(ctx context.Context, id uint) (*model.Bill, error)
	// List returns bills newest first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]model.Bill, error)
}

type billRepo struct{ db *gorm.DB }

func NewBillRepository(db *gorm.DB) BillRepository { return &billRepo{db: db} }

func (r *billRepo) FindByID(ctx context.Context, id uint) (*model.Bill, error) {
	var b model.Bill
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Ornament").
		First(&b, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *billRepo) List(ctx context.Context, limit int) ([]model.Bill, error) {
	var bills []model.Bill
	q := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Ornament").
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&bills).Error
	return bills, translate(err)
}
