package arena

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parallel runs fn once per worker, each on its own partition of the
// arena's available space. The space is held as a scratch region for the
// duration of the call and handed back before Parallel returns, so anything
// a worker allocates must be copied out before fn returns. The first error
// cancels ctx for the remaining workers and is returned.
func (a *Arena) Parallel(ctx context.Context, workers int,
	fn func(ctx context.Context, worker int, sub *Arena) error) error {
	s := a.Scratch(a.end - a.begin)
	defer a.ReleaseScratch(s)

	parts := s.Partition(workers)
	g, ctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		g.Go(func() error {
			return fn(ctx, i, part)
		})
	}
	return g.Wait()
}
