package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// goldPriceResponse is the subset of the goldpricez payload we read. The
// provider sends gram_in_inr either as a number or as a quoted string;
// decimal.Decimal accepts both.
type goldPriceResponse struct {
	GramInINR decimal.Decimal `json:"gram_in_inr"`
}

// GoldPriceClient fetches the per-gram gold price from the upstream provider.
type GoldPriceClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

func NewGoldPriceClient(url, apiKey string) *GoldPriceClient {
	return &GoldPriceClient{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchPerGram returns the current price per gram rounded to 2 decimals.
func (c *GoldPriceClient) FetchPerGram(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("goldprice: create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("goldprice: upstream unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("goldprice: upstream returned %d", resp.StatusCode)
	}

	var result goldPriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, fmt.Errorf("goldprice: decode response: %w", err)
	}
	if !result.GramInINR.IsPositive() {
		return decimal.Zero, fmt.Errorf("goldprice: non-positive price %s", result.GramInINR)
	}
	return result.GramInINR.Round(2), nil
}
