package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Quarter is a calendar quarter; QuarterNone means whole-year scope.
type Quarter int

const (
	QuarterNone Quarter = 0
	Q1          Quarter = 1
	Q2          Quarter = 2
	Q3          Quarter = 3
	Q4          Quarter = 4
)

// ParseQuarter accepts "" (whole year) or 1..4.
func ParseQuarter(s string) (Quarter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return QuarterNone, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 4 {
		return QuarterNone, fmt.Errorf("invalid quarter %q: must be 1-4 or empty", s)
	}
	return Quarter(n), nil
}

func (q Quarter) String() string {
	if q == QuarterNone {
		return ""
	}
	return strconv.Itoa(int(q))
}

// Active reports whether q restricts the scope.
func (q Quarter) Active() bool {
	return q >= Q1 && q <= Q4
}

// Months returns the first and last month of the quarter.
func (q Quarter) Months() (first, last int) {
	if !q.Active() {
		return 1, 12
	}
	first = (int(q)-1)*3 + 1
	return first, first + 2
}

// ClassifyQuarter reads the month at fixed positions of a YYYY-MM-DD string.
// Missing or malformed dates are not classifiable.
func ClassifyQuarter(signDate string) (Quarter, bool) {
	if len(signDate) < 7 || signDate[4] != '-' {
		return QuarterNone, false
	}
	d1, d2 := signDate[5], signDate[6]
	if d1 < '0' || d1 > '9' || d2 < '0' || d2 > '9' {
		return QuarterNone, false
	}
	month := int(d1-'0')*10 + int(d2-'0')
	if month < 1 || month > 12 {
		return QuarterNone, false
	}
	return Quarter((month-1)/3 + 1), true
}

// FilterByQuarter keeps the items whose date falls into q, in input order.
// For QuarterNone the input is returned unchanged.
func FilterByQuarter[T any](items []T, q Quarter, dateOf func(T) string) []T {
	if !q.Active() {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if got, ok := ClassifyQuarter(dateOf(it)); ok && got == q {
			out = append(out, it)
		}
	}
	return out
}
