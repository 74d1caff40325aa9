package core

import "github.com/shopspring/decimal"

type (
	// MethodTotals accumulates contracts of one purchase method.
	MethodTotals struct {
		Plan     decimal.Decimal
		HasPlan  bool // at least one contract carried a plan amount
		Contract decimal.Decimal
		Actual   decimal.Decimal
		Count    int
	}

	// SubjectTotals accumulates contracts of one method and subject type.
	SubjectTotals struct {
		Count int
		Sum   decimal.Decimal
	}

	// Aggregates are the three co-indexed tables built from one contract set.
	Aggregates struct {
		ByMethod        *OrderedMap[string, MethodTotals]
		ByMethodSubject *OrderedMap[string, *OrderedMap[string, SubjectTotals]]
		BySubject       *OrderedMap[string, decimal.Decimal]
	}

	// Totals are the grand totals derived from ByMethod.
	Totals struct {
		Plan     decimal.Decimal
		Contract decimal.Decimal
		Actual   decimal.Decimal
		Economy  decimal.Decimal
		Count    int
	}
)

// Economy is the planned amount minus the actual amount.
func (m MethodTotals) Economy() decimal.Decimal {
	return m.Plan.Sub(m.Actual)
}

// Aggregate folds contracts into per-method, per-method-and-subject and
// per-subject tables in one pass. Every contract is counted; date
// filtering belongs upstream.
func Aggregate(contracts []Contract) Aggregates {
	agg := Aggregates{
		ByMethod:        NewOrderedMap[string, MethodTotals](),
		ByMethodSubject: NewOrderedMap[string, *OrderedMap[string, SubjectTotals]](),
		BySubject:       NewOrderedMap[string, decimal.Decimal](),
	}
	for _, c := range contracts {
		method := c.MethodLabel
		if method == "" {
			method = UnspecifiedLabel
		}
		subject := c.SubjectTypeLabel
		if subject == "" {
			subject = UnspecifiedLabel
		}

		mt := agg.ByMethod.GetOrInsert(method, nil)
		mt.Plan = mt.Plan.Add(c.PlanAmount.OrZero())
		mt.HasPlan = mt.HasPlan || c.PlanAmount.Valid
		mt.Contract = mt.Contract.Add(c.ContractSum)
		mt.Actual = mt.Actual.Add(c.ActualSum())
		mt.Count++

		subjects := agg.ByMethodSubject.GetOrInsert(method, NewOrderedMap[string, SubjectTotals])
		st := (*subjects).GetOrInsert(subject, nil)
		st.Count++
		st.Sum = st.Sum.Add(c.ContractSum)

		sum := agg.BySubject.GetOrInsert(subject, nil)
		*sum = sum.Add(c.ContractSum)
	}
	return agg
}

// Totals folds over ByMethod so grand totals always match the per-method
// breakdown.
func (a Aggregates) Totals() Totals {
	var t Totals
	if a.ByMethod == nil {
		return t
	}
	for _, m := range a.ByMethod.All() {
		t.Plan = t.Plan.Add(m.Plan)
		t.Contract = t.Contract.Add(m.Contract)
		t.Actual = t.Actual.Add(m.Actual)
		t.Count += m.Count
	}
	t.Economy = t.Plan.Sub(t.Actual)
	return t
}
