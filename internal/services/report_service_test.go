package services

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goszakup/internal/core"
	"goszakup/internal/goszakup"
	"goszakup/internal/graphql"
	mock_graphql "goszakup/internal/graphql/mocks"
	"goszakup/internal/log"
)

const testBIN = "123456789012"

var (
	reportStatuses     = []int{390, 375, 190}
	terminatedStatuses = []int{340, 350}
)

const reportContracts = `[
	{"id": 1, "signDate": "2024-05-10", "contractSum": 1000, "faktSum": 900, "refContractTypeId": 1,
	 "FaktTradeMethods": {"nameRu": "Открытый конкурс"}, "RefSubjectType": {"nameRu": "Товары"},
	 "ContractUnits": [{"Plans": {"amount": 1200}}]},
	{"id": 2, "signDate": "2024-02-01", "contractSum": 500, "faktSum": 0, "refContractTypeId": 2,
	 "FaktTradeMethods": {"nameRu": "Открытый конкурс"}, "RefSubjectType": {"nameRu": "Услуги"}},
	{"id": 3, "signDate": "2024-05-20", "contractSum": 300, "refContractTypeId": 3,
	 "FaktTradeMethods": {"nameRu": "Из одного источника"}},
	{"id": 4, "signDate": "2024-11-01", "contractSum": 200}
]`

const terminatedContracts = `[
	{"id": 10, "signDate": "2024-04-02"},
	{"id": 11, "signDate": "2024-08-02"},
	{"id": 12, "signDate": null}
]`

const announcements = `[
	{"id": 1, "RefTradeMethods": {"nameRu": "Открытый конкурс"}},
	{"id": 2, "RefTradeMethods": {"nameRu": "Запрос ценовых предложений"}},
	{"id": 3, "RefTradeMethods": {"nameRu": "Запрос ценовых предложений"}},
	{"id": 4}
]`

// fakeAPI answers every query with a single page chosen by its filter.
type fakeAPI struct {
	register         string
	terminatedTotal  int
	announcementErr  error
	countErr         error
	windows          [][2]string
	terminatedLimits []int
}

func reply(entity, body string, total int) *graphql.Response {
	resp := &graphql.Response{Data: map[string]json.RawMessage{entity: json.RawMessage(body)}}
	resp.Extensions.PageInfo = graphql.PageInfo{TotalCount: total}
	return resp
}

func (a *fakeAPI) do(_ context.Context, req graphql.Request) (*graphql.Response, error) {
	switch f := req.Variables.Filter.(type) {
	case goszakup.TrdBuyFilter:
		a.windows = append(a.windows, f.PublishDate)
		if a.announcementErr != nil {
			return nil, a.announcementErr
		}
		return reply(goszakup.EntityTrdBuy, announcements, 4), nil
	case goszakup.ContractFilter:
		switch {
		case slices.Equal(f.RefContractStatusID, terminatedStatuses):
			a.terminatedLimits = append(a.terminatedLimits, req.Variables.Limit)
			if req.Variables.After == nil {
				if a.countErr != nil {
					return nil, a.countErr
				}
				return reply(goszakup.EntityContract, `[{"id": 10}]`, a.terminatedTotal), nil
			}
			return reply(goszakup.EntityContract, terminatedContracts, 3), nil
		case slices.Equal(f.RefContractStatusID, reportStatuses):
			return reply(goszakup.EntityContract, reportContracts, 4), nil
		case f.RefContractStatusID == nil:
			return reply(goszakup.EntityContract, a.register, 0), nil
		}
	}
	return nil, errors.New("unexpected query")
}

func newTestService(t *testing.T, api *fakeAPI) *ReportService {
	t.Helper()
	ctrl := gomock.NewController(t)
	fetcher := mock_graphql.NewMockFetcher(ctrl)
	fetcher.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(api.do).AnyTimes()

	p := graphql.NewPaginator(fetcher, 200, log.Discard())
	p.OnProgress(nil)
	svc := NewReportService(p, ReportServiceConfig{
		ContractStatuses:   reportStatuses,
		TerminatedStatuses: terminatedStatuses,
		ContractTypes:      []int{1, 2},
	}, log.Discard())
	svc.now = func() time.Time { return time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestContractReport_WholeYear(t *testing.T) {
	api := &fakeAPI{terminatedTotal: 7}
	svc := newTestService(t, api)

	r, err := svc.ContractReport(context.Background(), core.Scope{CustomerBIN: testBIN, FinYear: 2024})
	require.NoError(t, err)

	assert.Empty(t, r.Warnings)
	assert.Equal(t, core.PullStats{Fetched: 4, OutOfScope: 1}, r.Stats)
	assert.Equal(t, 3, r.Totals.Count)
	assert.True(t, r.Totals.Contract.Equal(dec("1700")))
	assert.True(t, r.Totals.Actual.Equal(dec("1600")))
	assert.True(t, r.Totals.Plan.Equal(dec("1200")))
	assert.True(t, r.Totals.Economy.Equal(dec("-400")))

	assert.Equal(t, []string{"Открытый конкурс", core.UnspecifiedLabel}, r.Aggregates.ByMethod.Keys())
	open, _ := r.Aggregates.ByMethod.Get("Открытый конкурс")
	assert.True(t, open.HasPlan)
	assert.Equal(t, 2, open.Count)
	unspecified, _ := r.Aggregates.ByMethod.Get(core.UnspecifiedLabel)
	assert.False(t, unspecified.HasPlan)

	assert.Equal(t, 7, r.TerminatedCount)
	assert.Equal(t, []int{1}, api.terminatedLimits)

	assert.Equal(t, [][2]string{{"2024-01-01", "2024-12-31"}}, api.windows)
	assert.Equal(t, 4, r.AnnouncementSum)
	assert.Equal(t, []core.MethodCount{
		{Method: "Запрос ценовых предложений", Count: 2},
		{Method: "Открытый конкурс", Count: 1},
		{Method: core.UnspecifiedLabel, Count: 1},
	}, r.Announcements)
	assert.Equal(t, 2024, r.GeneratedAt.Year())
}

func TestContractReport_Quarter(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api)

	r, err := svc.ContractReport(context.Background(), core.Scope{CustomerBIN: testBIN, FinYear: 2024, Quarter: core.Q2})
	require.NoError(t, err)

	assert.Equal(t, 1, r.Totals.Count)
	assert.True(t, r.Totals.Contract.Equal(dec("1000")))
	assert.Equal(t, 3, r.Stats.OutOfScope)
	assert.Equal(t, 1, r.TerminatedCount)
	assert.Equal(t, []int{200}, api.terminatedLimits)
	assert.Equal(t, [][2]string{{"2024-04-01", "2024-06-30"}}, api.windows)
}

func TestContractReport_ConfiguredWindow(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api)

	scope := core.Scope{CustomerBIN: testBIN, FinYear: 2024, DateFrom: "2024-03-01"}
	_, err := svc.ContractReport(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"2024-03-01", "2024-12-31"}}, api.windows)
}

func TestContractReport_FailedPullsBecomeWarnings(t *testing.T) {
	api := &fakeAPI{
		announcementErr: &graphql.APIError{Errors: []graphql.Error{{Message: "rate limited"}}},
		countErr:        &graphql.TransportError{StatusCode: 502, Body: "bad gateway"},
	}
	svc := newTestService(t, api)

	r, err := svc.ContractReport(context.Background(), core.Scope{CustomerBIN: testBIN, FinYear: 2024})
	require.NoError(t, err)

	require.Len(t, r.Warnings, 2)
	assert.Contains(t, r.Warnings[0], "расторгнутых")
	assert.Contains(t, r.Warnings[0], "status 502")
	assert.Contains(t, r.Warnings[1], "объявления")
	assert.Contains(t, r.Warnings[1], "rate limited")
	assert.True(t, r.Partial())
	assert.Equal(t, 3, r.Totals.Count)
	assert.Zero(t, r.AnnouncementSum)
	assert.Empty(t, r.Announcements)
}

func TestContractReport_InvalidScope(t *testing.T) {
	svc := newTestService(t, &fakeAPI{})

	_, err := svc.ContractReport(context.Background(), core.Scope{FinYear: 2024})
	assert.ErrorIs(t, err, ErrInvalidScope)

	_, err = svc.ContractReport(context.Background(), core.Scope{CustomerBIN: testBIN})
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestContractRegister(t *testing.T) {
	api := &fakeAPI{register: `[
		{"id": 1, "contractNumber": "A-1", "signDate": "2024-01-15", "contractSum": 10},
		{"id": 2, "contractNumber": "A-2", "signDate": "2024-07-15", "contractSum": "oops"},
		{"id": 3, "contractNumber": "A-3", "signDate": "2024-08-01", "contractSum": 30}
	]`}
	svc := newTestService(t, api)

	reg, err := svc.ContractRegister(context.Background(), core.Scope{CustomerBIN: testBIN, FinYear: 2024})
	require.NoError(t, err)
	require.Len(t, reg.Contracts, 3)
	assert.Equal(t, "A-2", reg.Contracts[1].ContractNumber)
	assert.True(t, reg.Contracts[1].ContractSum.IsZero())

	q3, err := svc.ContractRegister(context.Background(), core.Scope{CustomerBIN: testBIN, FinYear: 2024, Quarter: core.Q3})
	require.NoError(t, err)
	require.Len(t, q3.Contracts, 2)
	assert.Equal(t, int64(2), q3.Contracts[0].ID)
	assert.Empty(t, q3.Warnings)
}

func TestAnnouncementSummary(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api)

	s, err := svc.AnnouncementSummary(context.Background(), core.Scope{
		CustomerBIN: testBIN, FinYear: 2024, DateFrom: "2024-01-01", DateTo: "2024-03-31",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Total)
	assert.Len(t, s.Methods, 3)
	assert.Empty(t, s.Warnings)
	assert.Equal(t, [][2]string{{"2024-01-01", "2024-03-31"}}, api.windows)

	_, err = svc.AnnouncementSummary(context.Background(), core.Scope{FinYear: 2024})
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestFilterContractTypes(t *testing.T) {
	one, three := 1, 3
	raws := []goszakup.RawContract{{RefContractTypeID: &one}, {RefContractTypeID: &three}, {}}

	svc := &ReportService{config: ReportServiceConfig{ContractTypes: []int{1}}}
	assert.Len(t, svc.filterContractTypes(raws), 2)

	svc.config.ContractTypes = nil
	assert.Len(t, svc.filterContractTypes(raws), 3)
}
