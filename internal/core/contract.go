package core

import (
	"github.com/shopspring/decimal"
)

// UnspecifiedLabel replaces a missing purchase method or subject type name.
const UnspecifiedLabel = "Не указан"

type (
	// OptionalAmount distinguishes an absent amount from a present zero.
	OptionalAmount struct {
		Value decimal.Decimal
		Valid bool
	}

	// Contract is the flat view of one contract record.
	Contract struct {
		ID               int64
		ContractNumber   string
		AnnouncementNo   string
		Description      string
		FinYear          int
		SignDate         string // YYYY-MM-DD or empty
		ContractSum      decimal.Decimal
		ContractSumWnds  decimal.Decimal // sum with VAT; decoded but not reported or aggregated
		FaktSum          decimal.Decimal
		PlanAmount       OptionalAmount
		MethodLabel      string
		SubjectTypeLabel string
		ContractType     string
		Status           string
		SupplierName     string
		StatusID         int
		ContractTypeID   int
	}

	// Announcement is the flat view of one purchase announcement.
	Announcement struct {
		ID          int64
		MethodLabel string
	}
)

// SomeAmount returns a present amount.
func SomeAmount(v decimal.Decimal) OptionalAmount {
	return OptionalAmount{Value: v, Valid: true}
}

// Add sums two optional amounts; the result is present when either side is.
func (a OptionalAmount) Add(b OptionalAmount) OptionalAmount {
	switch {
	case a.Valid && b.Valid:
		return SomeAmount(a.Value.Add(b.Value))
	case a.Valid:
		return a
	default:
		return b
	}
}

// OrZero returns the value, or zero when absent.
func (a OptionalAmount) OrZero() decimal.Decimal {
	if !a.Valid {
		return decimal.Zero
	}
	return a.Value
}

// ActualSum is the fact-based amount when strictly positive, otherwise the
// contractual amount.
func (c Contract) ActualSum() decimal.Decimal {
	if c.FaktSum.IsPositive() {
		return c.FaktSum
	}
	return c.ContractSum
}

// LabelOrUnspecified returns name, or UnspecifiedLabel when it is missing
// or empty.
func LabelOrUnspecified(name *string) string {
	if name == nil || *name == "" {
		return UnspecifiedLabel
	}
	return *name
}
