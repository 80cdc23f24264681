package dto

import "github.com/shopspring/decimal"

type RevenueSummary struct {
	Total      decimal.Decimal `json:"total"`
	SalesCount int64           `json:"salesCount"`
}

type InventoryTotals struct {
	TotalValue   decimal.Decimal `json:"totalValue"`
	ItemsInStock int64           `json:"itemsInStock"`
}

type RecentSale struct {
	ID         uint            `json:"id"`
	BillNumber string          `json:"billNumber"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
	Client     string          `json:"client"`
	Items      int             `json:"items"`
}

type TopMerchant struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	TotalSales int64           `json:"totalSales"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type TypeSummary struct {
	Category string          `json:"category"`
	Count    int64           `json:"count"`
	Value    decimal.Decimal `json:"value"`
}

// DashboardSummary is derived on every request; nothing here is stored.
type DashboardSummary struct {
	Revenue          RevenueSummary  `json:"revenue"`
	Inventory        InventoryTotals `json:"inventory"`
	RecentSales      []RecentSale    `json:"recentSales"`
	TopMerchants     []TopMerchant   `json:"topMerchants"`
	InventorySummary []TypeSummary   `json:"inventorySummary"`
}

type GoldPriceResponse struct {
	Price          decimal.Decimal `json:"price"` // per gram
	Timestamp      string          `json:"timestamp"`
	IsDefaultPrice bool            `json:"isDefaultPrice,omitempty"`
}
