package graphql

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"goszakup/internal/log"
)

// MaxPageSize is the largest page the API serves.
const MaxPageSize = 200

// Query names one logical paginated query.
type Query struct {
	Entity   string // key under data holding the item list
	Document string
	Filter   any
}

// Result is the outcome of FetchAll. When Err is set the records are the
// pages accumulated before the failure.
type Result struct {
	Records    []json.RawMessage
	Pages      int // requests issued
	TotalCount int // as last reported by the API, 0 if never reported
	Err        error
}

// Partial reports whether the pull was cut short.
func (r Result) Partial() bool {
	return r.Err != nil
}

// ProgressFunc is called after every non-empty page with the number of
// records accumulated so far.
type ProgressFunc func(entity string, fetched int)

// Paginator walks a cursor-paginated query to completion.
type Paginator struct {
	fetcher  Fetcher
	pageSize int
	logger   *log.Logger
	progress ProgressFunc
}

// NewPaginator returns a paginator issuing pages of pageSize items,
// clamped to 1..MaxPageSize.
func NewPaginator(fetcher Fetcher, pageSize int, logger *log.Logger) *Paginator {
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if logger == nil {
		logger = log.Default(log.ComponentPaginator)
	}
	p := &Paginator{fetcher: fetcher, pageSize: pageSize, logger: logger.WithComponent(log.ComponentPaginator)}
	p.progress = func(entity string, fetched int) {
		p.logger.Info("Loaded records", log.FieldEntity, entity, log.FieldFetched, fetched)
	}
	return p
}

// OnProgress replaces the progress callback.
func (p *Paginator) OnProgress(fn ProgressFunc) {
	if fn == nil {
		fn = func(string, int) {}
	}
	p.progress = fn
}

// PageSize returns the page size used for every request.
func (p *Paginator) PageSize() int {
	return p.pageSize
}

// FetchAll requests pages starting at cursor 0 until a page is empty or the
// API reports no next page. The next cursor is always the lastId of the
// current response. A failed page stops the loop and keeps what was read.
func (p *Paginator) FetchAll(ctx context.Context, q Query) Result {
	var res Result
	var after int64
	for {
		cursor := after
		resp, err := p.fetcher.Do(ctx, Request{
			Query:     q.Document,
			Variables: Variables{Limit: p.pageSize, After: &cursor, Filter: q.Filter},
		})
		res.Pages++
		if err == nil && len(resp.Errors) > 0 {
			err = &APIError{Errors: resp.Errors}
		}
		if err != nil {
			return p.abort(ctx, q, res, cursor, err)
		}
		records, err := resp.Records(q.Entity)
		if err != nil {
			return p.abort(ctx, q, res, cursor, err)
		}
		if len(records) == 0 {
			break
		}
		res.Records = append(res.Records, records...)
		info := resp.Extensions.PageInfo
		if info.TotalCount > 0 {
			res.TotalCount = info.TotalCount
		}
		p.progress(q.Entity, len(res.Records))

		if !info.HasNextPage {
			break
		}
		if info.LastID == cursor {
			return p.abort(ctx, q, res, cursor, ErrStalledCursor)
		}
		after = info.LastID
	}
	return res
}

func (p *Paginator) abort(ctx context.Context, q Query, res Result, cursor int64, err error) Result {
	res.Err = fmt.Errorf("%s page %d (after=%d): %w", q.Entity, res.Pages, cursor, err)
	fields := log.NewFields().
		WithPage(q.Entity, res.Pages, cursor, len(res.Records)).
		WithOperation(log.OpFetch).
		WithError(err)
	p.logger.WarnContext(ctx, "Pagination stopped early, keeping partial result", fields.ToSlice()...)
	return res
}

// Count issues a single one-item request and returns the total count
// reported in pageInfo, without reading the records.
func (p *Paginator) Count(ctx context.Context, q Query) (int, error) {
	resp, err := p.fetcher.Do(ctx, Request{
		Query:     q.Document,
		Variables: Variables{Limit: 1, Filter: q.Filter},
	})
	if err == nil && len(resp.Errors) > 0 {
		err = &APIError{Errors: resp.Errors}
	}
	if err != nil {
		p.logger.WarnContext(ctx, "Count query failed",
			log.FieldEntity, q.Entity, log.FieldOperation, log.OpCount, log.FieldError, err)
		return 0, fmt.Errorf("%s count: %w", q.Entity, err)
	}
	return resp.Extensions.PageInfo.TotalCount, nil
}
