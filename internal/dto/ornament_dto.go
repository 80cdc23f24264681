package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AddOrnamentRequest registers one physical item. The ornament ID is generated
// server side and never accepted from the client.
type AddOrnamentRequest struct {
	Type         string          `json:"type"         validate:"required,max=64"`
	Weight       decimal.Decimal `json:"weight"       validate:"gt=0"`
	CostPrice    decimal.Decimal `json:"costPrice"    validate:"gt=0"`
	MerchantCode string          `json:"merchantCode" validate:"required,max=32"`
	Purity       string          `json:"purity"       validate:"required,oneof=18K 22K 24K"`
}

// ScanRequest carries whatever the scanner read: a JSON QR payload or a bare
// ornament ID typed by the cashier.
type ScanRequest struct {
	Code string `json:"code" validate:"required"`
}

// StockFilter is bound from the query string of GET /v1/ornaments.
type StockFilter struct {
	Type     string `form:"type"`
	Status   string `form:"status"` // in_stock | sold | empty = all
	Merchant string `form:"merchant"`
	Purity   string `form:"purity"`
	Search   string `form:"search"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AddOrnamentResponse struct {
	Success    bool   `json:"success"`
	OrnamentID string `json:"ornamentId"`
	QRCode     string `json:"qrCode"`
}

type ScanResponse struct {
	OrnamentID   string          `json:"ornamentId"`
	Type         string          `json:"type"`
	Weight       decimal.Decimal `json:"weight"`
	Purity       string          `json:"purity"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
}

type StockItem struct {
	ID           uint            `json:"id"`
	OrnamentID   string          `json:"ornamentId"`
	Type         string          `json:"type"`
	Weight       decimal.Decimal `json:"weight"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	Merchant     string          `json:"merchant"`
	MerchantName string          `json:"merchantName"`
	Status       string          `json:"status"` // in_stock | sold
	Purity       string          `json:"purity"`
	AddedDate    string          `json:"addedDate"` // YYYY-MM-DD
}

// AvailableItem is an unsold ornament with its suggested selling price.
type AvailableItem struct {
	ID           uint            `json:"id"`
	OrnamentID   string          `json:"ornamentId"`
	Type         string          `json:"type"`
	Weight       decimal.Decimal `json:"weight"`
	Purity       string          `json:"purity"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	CreatedAt    string          `json:"createdAt"`
}

type AvailableItemsResponse struct {
	Success bool            `json:"success"`
	Items   []AvailableItem `json:"items"`
}
