package model

import "time"

// Client is a buyer. Phone is the natural key used for find-or-create at checkout.
type Client struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Phone     string `gorm:"type:varchar(20);uniqueIndex;not null"`
	Email     *string
	Address   *string
	CreatedAt time.Time

	Bills []Bill `gorm:"foreignKey:ClientID"`
}
