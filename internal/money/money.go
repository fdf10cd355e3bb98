// Package money formats engine values for display. Rounding happens here and
// nowhere else, so derived values stay unrounded through the pipeline.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Cents rounds v half away from zero to two decimal places.
func Cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Format renders v as a dollar amount with thousands separators, e.g. "$9,792.00".
func Format(v float64) string {
	d := Cents(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + "$" + group(whole) + "." + frac
}

// Whole renders v rounded to whole dollars, e.g. "$9,792".
func Whole(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "$" + group(d.StringFixed(0))
}

// Percent renders a fraction as a percentage with up to one decimal, e.g. 0.155 -> "15.5%".
func Percent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Shift(2).Round(1).String() + "%"
}

// Multiplier renders a scalar multiplier, e.g. 1.15 -> "×1.15".
func Multiplier(v float64) string {
	return "×" + decimal.NewFromFloat(v).Round(2).String()
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Points renders a fraction as a bare percentage number for form fields, e.g. 0.155 -> "15.5".
func Points(fraction float64) string {
	return decimal.NewFromFloat(fraction).Shift(2).String()
}
