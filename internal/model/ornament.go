package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purity grades accepted for an ornament.
const (
	Purity18K = "18K"
	Purity22K = "22K"
	Purity24K = "24K"
)

// ValidPurity reports whether p is one of the supported karat grades.
func ValidPurity(p string) bool {
	switch p {
	case Purity18K, Purity22K, Purity24K:
		return true
	}
	return false
}

// Ornament is one physical inventory item.
// IsSold is true iff SoldAt and SoldPrice are both set; the transition happens
// exactly once, inside the sale transaction.
type Ornament struct {
	ID           uint            `gorm:"primaryKey"`
	OrnamentID   string          `gorm:"column:ornament_id;type:varchar(32);uniqueIndex;not null"`
	Type         string          `gorm:"type:varchar(64);index;not null"` // normalised lowercase
	Weight       decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	Purity       string          `gorm:"type:varchar(4);not null"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MerchantCode string          `gorm:"type:varchar(32);index;not null"`
	IsSold       bool            `gorm:"not null;default:false;index"`
	SoldAt       *time.Time
	SoldPrice    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// QRCode is the serialized payload printed on the physical label
	QRCode    string `gorm:"column:qr_code;type:text;not null"`
	CreatedAt time.Time

	Merchant *Merchant `gorm:"foreignKey:MerchantCode;references:MerchantCode"`
}

// OrnamentSequence is the per-type allocation counter behind ornament IDs.
// LastValue is only ever advanced with an atomic upsert.
type OrnamentSequence struct {
	Type      string `gorm:"primaryKey;type:varchar(64)"`
	LastValue int    `gorm:"not null"`
}
