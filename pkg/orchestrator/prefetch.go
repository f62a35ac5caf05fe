package orchestrator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/model"
)

const defaultConcurrency = 4

// Prefetch loads the definitions of dates, and their media when
// opts.WithMedia is set, with bounded parallelism. A failing date does not
// stop the others; every date gets a result, in input order.
func (o *Orchestrator) Prefetch(ctx context.Context, dates []model.DateKey, opts PrefetchOptions) []PrefetchResult {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = o.Concurrency
	}
	if limit <= 0 {
		limit = defaultConcurrency
	}

	results := make([]PrefetchResult, len(dates))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(limit)
	for i, date := range dates {
		g.Go(func() error {
			res := o.prefetchOne(ctx, date, opts.WithMedia)
			results[i] = res
			if opts.OnResult != nil {
				mu.Lock()
				opts.OnResult(res)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Debug("Prefetch finished", logger.Fields{"dates": len(dates), "failed": failed})
	return results
}

func (o *Orchestrator) prefetchOne(ctx context.Context, date model.DateKey, withMedia bool) PrefetchResult {
	res := PrefetchResult{Date: date}
	if withMedia {
		var pic Picture
		pic, res.Err = o.GetPicture(ctx, date, nil)
		res.Definition, res.MediaPath = pic.Definition, pic.MediaPath
		return res
	}

	if err := o.ValidateDate(date); err != nil {
		res.Err = err
		return res
	}
	res.Definition, res.Err = o.Definitions.Load(ctx, date)
	return res
}
