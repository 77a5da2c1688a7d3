// Package pager walks the result set of a "get by statement" operation.
//
// The ad service caps every response at PageSize rows, so listing a whole
// entity type means re-issuing the same statement with a growing OFFSET
// until the reported total has been covered.
package pager

import (
	"context"
	"errors"
	"fmt"

	"github.com/coderi421/adkit/statement"
)

// PageSize is the largest page the service returns for one call.
const PageSize = 500

// MaxResultSetSize bounds the totalResultSetSize FetchAll and ForEach accept.
const MaxResultSetSize = 1 << 24

var ErrResultSetTooLarge = errors.New("pager: result set too large")

// Page is one batch of results plus the size of the whole result set.
type Page[T any] struct {
	Results            []T `json:"results,omitempty"`
	StartIndex         int `json:"startIndex"`
	TotalResultSetSize int `json:"totalResultSetSize"`
}

// ListFunc issues a single "get by statement" call.
type ListFunc[T any] func(ctx context.Context, st statement.Statement) (*Page[T], error)

type Option func(o *options)

type options struct {
	concurrency int
}

// WithConcurrency lets FetchAll issue up to n page requests at the same time
// once the first page has revealed the total. n <= 1 keeps the sequential walk.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// FetchAll returns every row matching base. LIMIT is forced to PageSize and
// OFFSET advances by PageSize until it reaches the total reported by the
// latest page. Only an empty first page ends the walk early; an empty page
// further on counts as zero rows and the walk goes on.
//
// A total above MaxResultSetSize fails with ErrResultSetTooLarge.
//
// Errors from list are returned unchanged and nothing collected so far is
// returned with them. ctx is checked before every call.
func FetchAll[T any](ctx context.Context, list ListFunc[T], base statement.Statement, opts ...Option) ([]T, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.concurrency > 1 {
		return fetchConcurrently(ctx, list, base, o.concurrency)
	}

	var res []T
	err := ForEach(ctx, list, base, func(p *Page[T]) error {
		res = append(res, p.Results...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []T{}
	}
	return res, nil
}

// ForEach walks the pages of base one at a time and hands each non-empty page
// to fn. It stops at an empty first page or once OFFSET has covered the
// total. An error from fn stops the walk and is returned as is.
func ForEach[T any](ctx context.Context, list ListFunc[T], base statement.Statement, fn func(p *Page[T]) error) error {
	paged, err := base.WithLimit(PageSize)
	if err != nil {
		return err
	}

	total := 0
	for offset := 0; ; offset += PageSize {
		if err = ctx.Err(); err != nil {
			return err
		}
		page, err := fetchPage(ctx, list, paged, offset, total)
		if err != nil {
			return err
		}
		total = page.TotalResultSetSize
		if err = checkTotal(total); err != nil {
			return err
		}
		if len(page.Results) == 0 {
			if offset == 0 {
				return nil
			}
		} else if err = fn(page); err != nil {
			return err
		}
		// offset 每次都加 PageSize，total 有上限，所以一定会结束
		if offset+PageSize >= total {
			return nil
		}
	}
}

// FetchUpTo issues exactly one call with filter as given and returns at most
// maxCount rows. The caller owns the LIMIT clause; no further pages are requested.
// A negative maxCount is treated as 0.
func FetchUpTo[T any](ctx context.Context, list ListFunc[T], filter statement.Statement, maxCount int) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxCount < 0 {
		maxCount = 0
	}
	page, err := list(ctx, filter)
	if err != nil {
		return nil, err
	}
	if page == nil || len(page.Results) == 0 {
		return []T{}, nil
	}
	res := page.Results
	if len(res) > maxCount {
		res = res[:maxCount]
	}
	return res, nil
}

// fetchPage 返回 offset 处的一页。service 没有返回 page 的时候，当作 0 行，
// total 沿用之前已知的 total
func fetchPage[T any](ctx context.Context, list ListFunc[T], paged statement.Statement, offset int, total int) (*Page[T], error) {
	st, err := paged.WithOffset(offset)
	if err != nil {
		return nil, err
	}
	page, err := list(ctx, st)
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = &Page[T]{StartIndex: offset, TotalResultSetSize: total}
	}
	return page, nil
}

func checkTotal(total int) error {
	if total > MaxResultSetSize {
		return fmt.Errorf("%w: totalResultSetSize %d exceeds %d", ErrResultSetTooLarge, total, MaxResultSetSize)
	}
	return nil
}
