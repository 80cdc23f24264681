package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"jewelpos/internal/model"

	"github.com/shopspring/decimal"
)

// ornamentIDWidth is the minimum number of digits after the prefix. Larger
// sequences keep all their digits (R1000).
const ornamentIDWidth = 3

var (
	taxRate    = decimal.RequireFromString("0.03")
	markupRate = decimal.RequireFromString("1.03")
)

// NormalizeType trims and lowercases an ornament type. Counting, storage and
// filtering all use the normalised form.
func NormalizeType(ornamentType string) string {
	return strings.ToLower(strings.TrimSpace(ornamentType))
}

// typePrefix returns the uppercased first letter of a normalised type.
func typePrefix(normalized string) (string, error) {
	r, _ := utf8.DecodeRuneInString(normalized)
	if normalized == "" || !unicode.IsLetter(r) {
		return "", ErrInvalidType
	}
	return string(unicode.ToUpper(r)), nil
}

// GenerateOrnamentID builds the display ID for the seq-th ornament of a type:
// ("ring", 1) → "R001", ("Necklace", 12) → "N012".
func GenerateOrnamentID(ornamentType string, seq int) (string, error) {
	prefix, err := typePrefix(NormalizeType(ornamentType))
	if err != nil {
		return "", err
	}
	if seq < 1 {
		return "", ErrInvalidSequence
	}
	return fmt.Sprintf("%s%0*d", prefix, ornamentIDWidth, seq), nil
}

// QRPayload is the JSON printed on each ornament's label. Field order and
// names are part of the label format and must not change.
type QRPayload struct {
	OrnamentID   string      `json:"ornamentId"`
	Type         string      `json:"type"`
	Weight       json.Number `json:"weight"`
	CostPrice    json.Number `json:"costPrice"`
	MerchantCode string      `json:"merchantCode"`
	Purity       string      `json:"purity"`
}

// BuildQRPayload serialises the label payload for o.
func BuildQRPayload(o *model.Ornament) (string, error) {
	payload := QRPayload{
		OrnamentID:   o.OrnamentID,
		Type:         o.Type,
		Weight:       json.Number(o.Weight.String()),
		CostPrice:    json.Number(o.CostPrice.String()),
		MerchantCode: o.MerchantCode,
		Purity:       o.Purity,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseScanCode extracts the ornament ID from whatever a scanner produced: a
// JSON label payload (only ornamentId is read) or an ID typed by hand.
func ParseScanCode(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return "", ErrInvalidCode
	}
	if strings.HasPrefix(code, "{") {
		var p struct {
			OrnamentID string `json:"ornamentId"`
		}
		if err := json.Unmarshal([]byte(code), &p); err != nil {
			return "", ErrInvalidCode.Wrap("scanned QR payload is not valid JSON", err)
		}
		code = strings.TrimSpace(p.OrnamentID)
		if code == "" {
			return "", ErrInvalidCode.Withf("scanned QR payload has no ornamentId")
		}
	}
	return strings.ToUpper(code), nil
}

// Stored scales and exclusive upper bounds: money is decimal(12,2), weight is
// decimal(10,3).
const (
	moneyScale  int32 = 2
	weightScale int32 = 3
)

var (
	maxMoney  = decimal.New(1, 10)
	maxWeight = decimal.New(1, 7)
)

// checkStorable rejects values the column would round or overflow.
func checkStorable(what string, d decimal.Decimal, scale int32, limit decimal.Decimal) error {
	if !d.Equal(d.Truncate(scale)) {
		return ErrAmountPrecision.Withf("%s %s has more than %d decimal places", what, d, scale)
	}
	if d.Abs().GreaterThanOrEqual(limit) {
		return ErrAmountTooLarge.Withf("%s %s exceeds the largest storable value", what, d)
	}
	return nil
}

// ComputeTax is 3% of subtotal rounded half-up to a whole currency unit.
func ComputeTax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate).Round(0)
}

// SuggestedSellingPrice is cost plus 3% markup, rounded half-up to a whole unit.
func SuggestedSellingPrice(cost decimal.Decimal) decimal.Decimal {
	return cost.Mul(markupRate).Round(0)
}
