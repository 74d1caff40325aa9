package goszakup_test

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goszakup/internal/core"
	"goszakup/internal/goszakup"
	"goszakup/internal/log"
)

func TestDecodeContract_MalformedFieldKeepsTheRest(t *testing.T) {
	rc, err := goszakup.DecodeContract(json.RawMessage(`{
		"id": 9,
		"contractSum": {"unexpected": true},
		"faktSum": 120,
		"signDate": "2024-02-01",
		"FaktTradeMethods": {"nameRu": "Из одного источника"}
	}`))

	var mre *goszakup.MalformedRecordError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, goszakup.EntityContract, mre.Entity)
	assert.Equal(t, []string{"contractSum"}, mre.Fields)

	c := goszakup.NormalizeContract(rc)
	assert.Equal(t, int64(9), c.ID)
	assert.True(t, c.ContractSum.IsZero())
	assert.True(t, decimal.NewFromInt(120).Equal(c.FaktSum))
	assert.Equal(t, "2024-02-01", c.SignDate)
	assert.Equal(t, "Из одного источника", c.MethodLabel)
}

func TestDecodeContract_BadPlanAmountKeepsOtherUnits(t *testing.T) {
	rc, err := goszakup.DecodeContract(json.RawMessage(`{
		"id": 4,
		"contractSum": 300,
		"ContractUnits": [
			{"Plans": {"amount": "x"}},
			{"Plans": {"amount": 250}},
			{"Plans": null}
		]
	}`))

	var mre *goszakup.MalformedRecordError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, []string{"ContractUnits"}, mre.Fields)
	require.Len(t, rc.ContractUnits, 3)

	c := goszakup.NormalizeContract(rc)
	assert.True(t, decimal.NewFromInt(300).Equal(c.ContractSum))
	require.True(t, c.PlanAmount.Valid)
	assert.True(t, decimal.NewFromInt(250).Equal(c.PlanAmount.Value))
}

func TestDecodeContract_UnitsNotAList(t *testing.T) {
	rc, err := goszakup.DecodeContract(json.RawMessage(`{"id": 5, "ContractUnits": "none"}`))

	require.Error(t, err)
	assert.Empty(t, rc.ContractUnits)
	assert.False(t, goszakup.NormalizeContract(rc).PlanAmount.Valid)
}

func TestDecodeContract_NotAnObject(t *testing.T) {
	_, err := goszakup.DecodeContract(json.RawMessage(`"oops"`))

	var mre *goszakup.MalformedRecordError
	require.True(t, errors.As(err, &mre))
	assert.Empty(t, mre.Fields)
}

func TestDecodeContracts_CountsMalformedAndKeepsOrder(t *testing.T) {
	records := []json.RawMessage{
		json.RawMessage(`{"id": 1, "contractSum": 10}`),
		json.RawMessage(`{"id": 2, "contractSum": [1, 2]}`),
		json.RawMessage(`{"id": 3, "contractSum": 30}`),
	}

	raws, malformed := goszakup.DecodeContracts(records, log.Discard())

	assert.Equal(t, 1, malformed)
	require.Len(t, raws, 3)
	contracts := make([]core.Contract, 0, len(raws))
	for _, rc := range raws {
		contracts = append(contracts, goszakup.NormalizeContract(rc))
	}
	assert.Equal(t, []int64{1, 2, 3}, []int64{contracts[0].ID, contracts[1].ID, contracts[2].ID})

	agg := core.Aggregate(contracts)
	assert.Equal(t, 3, agg.Totals().Count)
	assert.True(t, decimal.NewFromInt(40).Equal(agg.Totals().Contract))
}

func TestDecodeAnnouncements(t *testing.T) {
	raws, malformed := goszakup.DecodeAnnouncements([]json.RawMessage{
		json.RawMessage(`{"id": 1, "RefTradeMethods": {"nameRu": "A"}}`),
		json.RawMessage(`{"id": "x", "RefTradeMethods": {"nameRu": "B"}}`),
	}, log.Discard())

	assert.Equal(t, 1, malformed)
	require.Len(t, raws, 2)
	assert.Equal(t, "B", goszakup.NormalizeAnnouncement(raws[1]).MethodLabel)
	assert.Equal(t, int64(0), goszakup.NormalizeAnnouncement(raws[1]).ID)
}

func TestRawContractQuarterFilter(t *testing.T) {
	raws, _ := goszakup.DecodeContracts([]json.RawMessage{
		json.RawMessage(`{"id": 1, "signDate": "2024-07-15T00:00:00"}`),
		json.RawMessage(`{"id": 2, "signDate": "2024-12-31"}`),
		json.RawMessage(`{"id": 3}`),
	}, log.Discard())

	q3 := core.FilterByQuarter(raws, core.Q3, goszakup.RawContract.SignDateValue)
	require.Len(t, q3, 1)
	assert.Equal(t, int64(1), *q3[0].ID)

	all := core.FilterByQuarter(raws, core.QuarterNone, goszakup.RawContract.SignDateValue)
	assert.Len(t, all, 3)
}
