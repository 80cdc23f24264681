package dto

import "github.com/shopspring/decimal"

type CreateClientRequest struct {
	Name    string  `json:"name"    validate:"required,max=120"`
	Phone   string  `json:"phone"   validate:"required,max=20"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

type ClientResponse struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
	Address   *string `json:"address"`
	CreatedAt string  `json:"createdAt"`
}

type ClientPurchase struct {
	BillID        string          `json:"billId"`
	Date          string          `json:"date"`
	Items         int             `json:"items"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
}

// ClientDetail is a client with the purchase history, newest first.
type ClientDetail struct {
	ClientResponse
	TotalPurchases int              `json:"totalPurchases"`
	TotalSpent     decimal.Decimal  `json:"totalSpent"`
	LastPurchase   string           `json:"lastPurchase"` // empty when none
	Purchases      []ClientPurchase `json:"purchases"`
}
