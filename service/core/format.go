package core

import (
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

const displayPlaces = 4

// FormatValue renders a price or ratio for display, rounded half away from zero.
func FormatValue(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(displayPlaces)
}

// FormatRatio renders an undefined ratio as an empty string.
func FormatRatio(r null.Float) string {
	if !r.Valid {
		return ""
	}
	return FormatValue(r.Float64)
}

// FormatChange renders a relative change as a signed percentage.
func FormatChange(v float64) string {
	d := decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}
