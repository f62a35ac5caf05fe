package cache

import (
	"context"

	apoderrors "github.com/glorpus-work/apod/pkg/errors"
	"github.com/glorpus-work/apod/pkg/model"
	"golang.org/x/sync/singleflight"
)

// Flight coalesces concurrent work on the same cache key so that two callers
// asking for the same missing artifact share one fetch. The zero value is
// ready to use; a Flight must not be copied after first use.
type Flight struct {
	group singleflight.Group
}

// Do runs fn for key unless a call for key is already in flight, in which case
// it waits for that call's outcome. A caller whose ctx ends returns a
// cancellation error; if that caller started fn, Do waits for fn to return so
// that fn's cleanup has finished. A waiter that receives another caller's
// cancellation while its own ctx is alive runs the work again.
func (f *Flight) Do(ctx context.Context, key model.CacheKey, fn func() error) error {
	for {
		started := make(chan struct{})
		ch := f.group.DoChan(key.String(), func() (interface{}, error) {
			close(started)
			return nil, fn()
		})

		select {
		case res := <-ch:
			if res.Err != nil && res.Shared && apoderrors.IsCancelled(res.Err) && ctx.Err() == nil {
				continue
			}
			return res.Err
		case <-ctx.Done():
			select {
			case <-started:
				<-ch
			default:
			}
			return apoderrors.Cancelled(ctx.Err())
		}
	}
}
