package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
	PaymentUPI  = "upi"
	PaymentBank = "bank"
)

// ValidPaymentMethod reports whether m is a recognised payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentBank:
		return true
	}
	return false
}

// BillNumberPrefix and BillNumberWidth define the one display format used for
// every bill: BILL-000042.
const (
	BillNumberPrefix = "BILL-"
	BillNumberWidth  = 6
)

// Bill is one completed sale. Bills are immutable once created.
// TotalAmount == Subtotal + Tax; Tax == round(Subtotal * 0.03).
type Bill struct {
	ID            uint            `gorm:"primaryKey"`
	ClientID      uint            `gorm:"not null;index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(10);not null"`
	CreatedAt     time.Time       `gorm:"index"`

	Client *Client    `gorm:"foreignKey:ClientID"`
	Items  []BillItem `gorm:"foreignKey:BillID"`
}

// Number returns the display bill number.
func (b *Bill) Number() string { return FormatBillNumber(b.ID) }

// FormatBillNumber formats a bill key as BILL-000042.
func FormatBillNumber(id uint) string {
	return fmt.Sprintf("%s%0*d", BillNumberPrefix, BillNumberWidth, id)
}

// BillItem is one sold ornament within a Bill. OrnamentID is unique across all
// bill items because an ornament can be sold only once.
type BillItem struct {
	ID           uint            `gorm:"primaryKey"`
	BillID       uint            `gorm:"not null;index"`
	OrnamentID   string          `gorm:"column:ornament_id;type:varchar(32);uniqueIndex;not null"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Ornament *Ornament `gorm:"foreignKey:OrnamentID;references:OrnamentID"`
}
