// Package goszakup knows the goszakup OWS v3 schema: the query documents,
// their filters and the shape of the returned records.
package goszakup

import "goszakup/internal/graphql"

// Entities served by the API.
const (
	EntityContract = "Contract"
	EntityTrdBuy   = "TrdBuy"
)

type (
	// ContractFilter is ContractFiltersInput.
	ContractFilter struct {
		CustomerBin         string `json:"customerBin"`
		FinYear             int    `json:"finYear"`
		RefContractStatusID []int  `json:"refContractStatusId,omitempty"`
	}

	// TrdBuyFilter is TrdBuyFiltersInput. PublishDate is a [from, to] pair.
	TrdBuyFilter struct {
		OrgBin      string    `json:"orgBin"`
		PublishDate [2]string `json:"publishDate"`
	}
)

const registerDocument = `query($limit: Int, $after: Int, $filter: ContractFiltersInput!) {
  Contract(limit: $limit, after: $after, filter: $filter) {
    id
    contractNumber
    signDate
    contractSum
    contractSumWnds
    faktSum
    supplierBiin
    descriptionRu
    finYear
    refContractStatusId
    refContractTypeId
    Supplier { nameRu }
    RefContractStatus { nameRu }
    RefSubjectType { nameRu }
    RefContractType { nameRu }
    FaktTradeMethods { nameRu }
    TrdBuy { numberAnno }
    ContractUnits { Plans { amount } }
  }
}`

const reportDocument = `query($limit: Int, $after: Int, $filter: ContractFiltersInput!) {
  Contract(limit: $limit, after: $after, filter: $filter) {
    id
    signDate
    contractSum
    faktSum
    refContractStatusId
    refContractTypeId
    FaktTradeMethods { nameRu }
    RefContractStatus { nameRu }
    RefSubjectType { nameRu }
    RefContractType { nameRu }
    ContractUnits { Plans { amount } }
  }
}`

const terminatedDocument = `query($limit: Int, $after: Int, $filter: ContractFiltersInput!) {
  Contract(limit: $limit, after: $after, filter: $filter) {
    id
    signDate
  }
}`

const trdBuyDocument = `query($limit: Int, $after: Int, $filter: TrdBuyFiltersInput!) {
  TrdBuy(limit: $limit, after: $after, filter: $filter) {
    id
    RefTradeMethods { nameRu }
  }
}`

// RegisterQuery lists every contract of a customer for a fin year with the
// fields of the register export.
func RegisterQuery(customerBIN string, finYear int) graphql.Query {
	return graphql.Query{
		Entity:   EntityContract,
		Document: registerDocument,
		Filter:   ContractFilter{CustomerBin: customerBIN, FinYear: finYear},
	}
}

// ReportQuery lists the contracts in the given statuses with the fields
// the aggregation needs.
func ReportQuery(customerBIN string, finYear int, statuses []int) graphql.Query {
	return graphql.Query{
		Entity:   EntityContract,
		Document: reportDocument,
		Filter:   ContractFilter{CustomerBin: customerBIN, FinYear: finYear, RefContractStatusID: statuses},
	}
}

// TerminatedQuery selects terminated contracts. Use it with Paginator.Count
// for a whole-year total or with FetchAll to bucket them by sign date.
func TerminatedQuery(customerBIN string, finYear int, statuses []int) graphql.Query {
	return graphql.Query{
		Entity:   EntityContract,
		Document: terminatedDocument,
		Filter:   ContractFilter{CustomerBin: customerBIN, FinYear: finYear, RefContractStatusID: statuses},
	}
}

// AnnouncementQuery lists purchase announcements published by orgBIN within
// [from, to].
func AnnouncementQuery(orgBIN, from, to string) graphql.Query {
	return graphql.Query{
		Entity:   EntityTrdBuy,
		Document: trdBuyDocument,
		Filter:   TrdBuyFilter{OrgBin: orgBIN, PublishDate: [2]string{from, to}},
	}
}
