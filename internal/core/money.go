// Package core holds the procurement domain: normalized records, quarter
// classification and the aggregation of contracts and announcements.
//
// This file contains the amount presentation helpers shared by the report
// layouts: thousand-tenge rounding and digit grouping.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// Thousands converts tenge into whole thousand tenge, rounding half to even.
//
// Examples:
//
//	Thousands(1450000) -> 1450
//	Thousands(2500)    -> 2
//	Thousands(3500)    -> 4
func Thousands(d decimal.Decimal) int64 {
	return d.Div(thousand).RoundBank(0).IntPart()
}

// GroupDigits formats n with a space between each group of three digits.
func GroupDigits(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Round2 rounds to two decimals for register output.
func Round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
