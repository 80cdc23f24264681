package model

import "time"

// Merchant is a supplier of ornaments. MerchantCode is the business key.
type Merchant struct {
	MerchantCode string `gorm:"primaryKey;type:varchar(32)"`
	Name         string `gorm:"not null"`
	Phone        string `gorm:"type:varchar(20);uniqueIndex;not null"`
	CreatedAt    time.Time

	Ornaments []Ornament `gorm:"foreignKey:MerchantCode;references:MerchantCode"`
}
