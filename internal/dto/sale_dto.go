package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SaleItemRequest is one cart line. Range and enum checks live in the sale
// service so that they surface with their own error codes.
type SaleItemRequest struct {
	OrnamentID   string          `json:"ornamentId"   validate:"required"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
}

// CompleteSaleRequest converts a cart into a bill. Subtotal, Tax and Total are
// optional echoes of what the client displayed; when sent they must match the
// server-side computation.
type CompleteSaleRequest struct {
	ClientName    string            `json:"clientName"    validate:"required,max=120"`
	ClientPhone   string            `json:"clientPhone"   validate:"required,max=20"`
	ClientEmail   *string           `json:"clientEmail"   validate:"omitempty,email"`
	Items         []SaleItemRequest `json:"items"         validate:"dive"`
	Subtotal      *decimal.Decimal  `json:"subtotal"`
	Tax           *decimal.Decimal  `json:"tax"`
	Total         *decimal.Decimal  `json:"total"`
	PaymentMethod string            `json:"paymentMethod"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CompleteSaleResponse struct {
	Success    bool            `json:"success"`
	BillID     uint            `json:"billId"`
	BillNumber string          `json:"billNumber"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  string          `json:"createdAt"`
}

// SaleLine is one ornament on a bill, enriched with the ornament description.
type SaleLine struct {
	OrnamentID   string          `json:"ornamentId"`
	Type         string          `json:"type"`
	Weight       decimal.Decimal `json:"weight"`
	Purity       string          `json:"purity"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
}

// SaleListItem is returned by GET /v1/sales.
type SaleListItem struct {
	ID            uint            `json:"id"`
	BillID        string          `json:"billId"` // display bill number
	Date          string          `json:"date"`
	ClientName    string          `json:"clientName"`
	ClientPhone   string          `json:"clientPhone"`
	Items         int             `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	BillItems     []SaleLine      `json:"billItems"`
}

type BillClient struct {
	ID      uint    `json:"id"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// BillResponse is the full bill returned by FetchBill.
type BillResponse struct {
	ID            uint            `json:"id"`
	BillNumber    string          `json:"billNumber"`
	CreatedAt     string          `json:"createdAt"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	Client        BillClient      `json:"client"`
	Items         []SaleLine      `json:"items"`
}
