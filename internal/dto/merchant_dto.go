package dto

import "github.com/shopspring/decimal"

type CreateMerchantRequest struct {
	MerchantCode string `json:"merchantCode" validate:"required,alphanum,max=32"`
	Name         string `json:"name"         validate:"required,min=2,max=120"`
	Phone        string `json:"phone"        validate:"required,max=20"`
}

type MerchantFilter struct {
	Search string `form:"search"`
}

type MerchantResponse struct {
	MerchantCode string `json:"merchantCode"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	CreatedAt    string `json:"createdAt"`
}

// MerchantListItem adds inventory totals; TotalValue only counts unsold stock.
type MerchantListItem struct {
	MerchantResponse
	TotalOrnaments int             `json:"totalOrnaments"`
	TotalValue     decimal.Decimal `json:"totalValue"`
}

type MerchantOrnament struct {
	OrnamentID string          `json:"ornamentId"`
	Type       string          `json:"type"`
	Weight     decimal.Decimal `json:"weight"`
	Purity     string          `json:"purity"`
	CostPrice  decimal.Decimal `json:"costPrice"`
	IsSold     bool            `json:"isSold"`
}

type MerchantDetail struct {
	MerchantResponse
	TotalOrnaments int                `json:"totalOrnaments"`
	InStock        int                `json:"inStock"`
	Sold           int                `json:"sold"`
	TotalValue     decimal.Decimal    `json:"totalValue"`
	Ornaments      []MerchantOrnament `json:"ornaments"`
}
