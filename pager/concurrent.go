package pager

import (
	"context"

	"github.com/coderi421/adkit/statement"
	"golang.org/x/sync/errgroup"
)

// fetchConcurrently reads the first page sequentially to learn the total,
// then fetches the remaining offsets with at most limit calls in flight.
// Every page lands in its own slot, so the result keeps offset order no
// matter which call finishes first.
func fetchConcurrently[T any](ctx context.Context, list ListFunc[T], base statement.Statement, limit int) ([]T, error) {
	paged, err := base.WithLimit(PageSize)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	first, err := fetchPage(ctx, list, paged, 0, 0)
	if err != nil {
		return nil, err
	}
	if err = checkTotal(first.TotalResultSetSize); err != nil {
		return nil, err
	}
	if len(first.Results) == 0 || first.TotalResultSetSize <= PageSize {
		return append([]T{}, first.Results...), nil
	}

	remaining := (first.TotalResultSetSize - 1) / PageSize
	pages := make([][]T, remaining)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i := 0; i < remaining; i++ {
		idx := i
		offset := (i + 1) * PageSize
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			page, err := fetchPage(egCtx, list, paged, offset, first.TotalResultSetSize)
			if err != nil {
				return err
			}
			pages[idx] = page.Results
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return nil, err
	}

	n := len(first.Results)
	for _, p := range pages {
		n += len(p)
	}
	res := make([]T, 0, n)
	res = append(res, first.Results...)
	for _, p := range pages {
		res = append(res, p...)
	}
	return res, nil
}
