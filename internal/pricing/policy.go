// Package pricing holds all currency and minimum-amount arithmetic used at checkout.
//
// Amounts come in two denominations: major units, the display currency shown to
// shoppers (whole rupiah), and minor units, the processor's accounting unit
// (1/MinorFactor of a major unit, even for currencies without real subunits).
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/storefront-checkout/internal/apperr"
)

// FloorMode selects where the minimum chargeable amount is enforced
type FloorMode string

const (
	// FloorPerItem raises every unit price to the minimum and also requires the
	// cart total to meet it.
	FloorPerItem FloorMode = "per_item"
	// FloorCartTotal only requires the total to meet the minimum.
	FloorCartTotal FloorMode = "cart_total"
)

const (
	DefaultMinimumMajor     int64 = 15000
	DefaultMinorFactor      int64 = 100
	DefaultSanityFloorMinor int64 = 1000
)

// Policy is the process-wide price policy. It is immutable after construction.
type Policy struct {
	Currency         string
	MinimumMajor     int64
	MinorFactor      int64
	SanityFloorMinor int64
	Mode             FloorMode
}

// DefaultPolicy returns the IDR policy with a per-item floor
func DefaultPolicy() Policy {
	return Policy{
		Currency:         "idr",
		MinimumMajor:     DefaultMinimumMajor,
		MinorFactor:      DefaultMinorFactor,
		SanityFloorMinor: DefaultSanityFloorMinor,
		Mode:             FloorPerItem,
	}
}

// ParseFloorMode converts a configuration string into a FloorMode
func ParseFloorMode(s string) (FloorMode, error) {
	switch FloorMode(s) {
	case FloorPerItem, FloorCartTotal:
		return FloorMode(s), nil
	default:
		return "", fmt.Errorf("unknown floor mode %q", s)
	}
}

// RoundMajor rounds a display price to the nearest whole major unit, half away
// from zero. Prices such as 14999.999999 become 15000.
func RoundMajor(price float64) int64 {
	return decimal.NewFromFloat(price).Round(0).IntPart()
}

// ToMinorUnits rounds amountMajor to a whole major unit and scales it to minor units
func (p Policy) ToMinorUnits(amountMajor float64) int64 {
	return RoundMajor(amountMajor) * p.MinorFactor
}

// FromMinorUnits converts minor units back to major units, rounded to nearest
func (p Policy) FromMinorUnits(amountMinor int64) int64 {
	return decimal.NewFromInt(amountMinor).
		Div(decimal.NewFromInt(p.MinorFactor)).
		Round(0).
		IntPart()
}

// MeetsMinimum reports whether amountMajor reaches the configured minimum
func (p Policy) MeetsMinimum(amountMajor int64) bool {
	return amountMajor >= p.MinimumMajor
}

// ClampToMinimum raises amountMajor to the minimum when it falls short
func (p Policy) ClampToMinimum(amountMajor int64) int64 {
	return max(amountMajor, p.MinimumMajor)
}

// NormalizeUnit turns a snapshotted unit price into the minor-unit amount
// submitted to the processor: round, apply the per-item floor when enabled,
// then scale. This is a silent upward correction for prices under the floor.
func (p Policy) NormalizeUnit(price float64) int64 {
	major := RoundMajor(price)
	if p.Mode == FloorPerItem {
		major = p.ClampToMinimum(major)
	}
	return major * p.MinorFactor
}

// Item is the pricing view of a line item
type Item struct {
	Price    float64
	Quantity int
}

// Validation is the outcome of ValidateCart
type Validation struct {
	Total        int64 `json:"total"`
	MinimumMajor int64 `json:"minimum"`
	InvalidItems []int `json:"invalidItems"`
}

// ValidateCart checks raw cart prices against the floor before any
// normalization. In per-item mode every unit price must reach the minimum;
// in both modes the summed total must.
func (p Policy) ValidateCart(items []Item) (Validation, error) {
	total := decimal.Zero
	invalid := make([]int, 0)

	for i, item := range items {
		price := decimal.NewFromFloat(item.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))

		if p.Mode == FloorPerItem && price.LessThan(decimal.NewFromInt(p.MinimumMajor)) {
			invalid = append(invalid, i)
		}
	}

	v := Validation{
		Total:        total.Round(0).IntPart(),
		MinimumMajor: p.MinimumMajor,
		InvalidItems: invalid,
	}

	if len(invalid) > 0 {
		return v, &apperr.Error{
			Kind:         apperr.KindBelowItemMinimum,
			Currency:     p.Currency,
			AmountMajor:  v.Total,
			MinimumMajor: p.MinimumMajor,
			ItemIndexes:  invalid,
		}
	}

	if !p.MeetsMinimum(v.Total) {
		return v, &apperr.Error{
			Kind:         apperr.KindBelowCartMinimum,
			Currency:     p.Currency,
			AmountMajor:  v.Total,
			MinimumMajor: p.MinimumMajor,
		}
	}

	return v, nil
}
