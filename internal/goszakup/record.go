package goszakup

import (
	"github.com/shopspring/decimal"

	"goszakup/internal/core"
)

type (
	// Ref is any nested reference object carrying a Russian name.
	Ref struct {
		NameRu *string `json:"nameRu"`
	}

	// Plan is the plan line referenced by a contract unit.
	Plan struct {
		Amount decimal.NullDecimal `json:"amount"`
	}

	// ContractUnit is one line item of a contract.
	ContractUnit struct {
		Plans *Plan `json:"Plans"`
	}

	// TrdBuyRef is the announcement a contract was concluded under.
	TrdBuyRef struct {
		NumberAnno *string `json:"numberAnno"`
	}

	// RawContract mirrors a Contract item; every field may be absent.
	RawContract struct {
		ID                  *int64              `json:"id"`
		ContractNumber      *string             `json:"contractNumber"`
		SignDate            *string             `json:"signDate"`
		ContractSum         decimal.NullDecimal `json:"contractSum"`
		ContractSumWnds     decimal.NullDecimal `json:"contractSumWnds"`
		FaktSum             decimal.NullDecimal `json:"faktSum"`
		SupplierBiin        *string             `json:"supplierBiin"`
		DescriptionRu       *string             `json:"descriptionRu"`
		FinYear             *int                `json:"finYear"`
		RefContractStatusID *int                `json:"refContractStatusId"`
		RefContractTypeID   *int                `json:"refContractTypeId"`
		Supplier            *Ref                `json:"Supplier"`
		RefContractStatus   *Ref                `json:"RefContractStatus"`
		RefSubjectType      *Ref                `json:"RefSubjectType"`
		RefContractType     *Ref                `json:"RefContractType"`
		FaktTradeMethods    *Ref                `json:"FaktTradeMethods"`
		TrdBuy              *TrdBuyRef          `json:"TrdBuy"`
		ContractUnits       []ContractUnit      `json:"ContractUnits"`
	}

	// RawAnnouncement mirrors a TrdBuy item.
	RawAnnouncement struct {
		ID              *int64 `json:"id"`
		RefTradeMethods *Ref   `json:"RefTradeMethods"`
	}
)

func (r *Ref) name() *string {
	if r == nil {
		return nil
	}
	return r.NameRu
}

// SignDateValue returns the raw sign date or "".
func (rc RawContract) SignDateValue() string {
	return str(rc.SignDate)
}

// PlanAmount sums the present plan amounts over all contract units. It is
// absent when no unit carries one.
func (rc RawContract) PlanAmount() core.OptionalAmount {
	var total core.OptionalAmount
	for _, unit := range rc.ContractUnits {
		if unit.Plans == nil || !unit.Plans.Amount.Valid {
			continue
		}
		total = total.Add(core.SomeAmount(unit.Plans.Amount.Decimal))
	}
	return total
}

// NormalizeContract flattens a raw contract. Missing numbers become zero,
// missing method and subject names become core.UnspecifiedLabel, and other
// missing strings become "".
func NormalizeContract(rc RawContract) core.Contract {
	c := core.Contract{
		ID:               num(rc.ID),
		ContractNumber:   str(rc.ContractNumber),
		Description:      str(rc.DescriptionRu),
		FinYear:          num(rc.FinYear),
		SignDate:         dateOnly(str(rc.SignDate)),
		ContractSum:      amount(rc.ContractSum),
		ContractSumWnds:  amount(rc.ContractSumWnds),
		FaktSum:          amount(rc.FaktSum),
		PlanAmount:       rc.PlanAmount(),
		MethodLabel:      core.LabelOrUnspecified(rc.FaktTradeMethods.name()),
		SubjectTypeLabel: core.LabelOrUnspecified(rc.RefSubjectType.name()),
		ContractType:     str(rc.RefContractType.name()),
		Status:           str(rc.RefContractStatus.name()),
		SupplierName:     str(rc.Supplier.name()),
		StatusID:         num(rc.RefContractStatusID),
		ContractTypeID:   num(rc.RefContractTypeID),
	}
	if rc.TrdBuy != nil {
		c.AnnouncementNo = str(rc.TrdBuy.NumberAnno)
	}
	return c
}

// NormalizeAnnouncement flattens a raw announcement.
func NormalizeAnnouncement(ra RawAnnouncement) core.Announcement {
	return core.Announcement{
		ID:          num(ra.ID),
		MethodLabel: core.LabelOrUnspecified(ra.RefTradeMethods.name()),
	}
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func num[T int | int64](p *T) T {
	if p == nil {
		return 0
	}
	return *p
}

func amount(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// dateOnly keeps the YYYY-MM-DD prefix of a timestamp.
func dateOnly(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
