// Fetches the commits for several tag ranges at once.
//
// Running git log for each range is independent of the others, so we can have
// a few going at the same time. Results are still handed back in range order
// so the report comes out the same either way.
package concurrent

import (
	"context"
	"iter"
	"sync"

	"golang.org/x/sync/errgroup"
)

type result[T any] struct {
	value T
	err   error
}

// Calls fn for each index in [0, n) with at most limit calls running at once,
// yielding the results in index order.
//
// An error from fn does not stop the other calls; it is yielded alongside the
// zero value for that index. Stopping iteration early cancels the context
// passed to calls still running and waits for them to return.
func Ordered[T any](
	ctx context.Context,
	n int,
	limit int,
	fn func(ctx context.Context, i int) (T, error),
) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		ctx, cancel := context.WithCancel(ctx)

		slots := make([]chan result[T], n)
		for i := range slots {
			slots[i] = make(chan result[T], 1)
		}

		var g errgroup.Group
		g.SetLimit(max(1, limit))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			runSpawner(ctx, &g, slots, fn)
		}()

		defer func() {
			cancel()
			wg.Wait()
			g.Wait()
			logger().Debug("all fetches finished")
		}()

		for i := range n {
			res := <-slots[i]
			if !yield(res.value, res.err) {
				return
			}
		}
	}
}

// Starts a call for each slot in order, blocking while limit calls are in
// flight. Slots left once ctx is cancelled get the context's error.
func runSpawner[T any](
	ctx context.Context,
	g *errgroup.Group,
	slots []chan result[T],
	fn func(ctx context.Context, i int) (T, error),
) {
	logger().Debug("spawner started", "n", len(slots))
	defer logger().Debug("spawner exited")

	for i, slot := range slots {
		if err := ctx.Err(); err != nil {
			var zero T
			slot <- result[T]{value: zero, err: err}
			continue
		}

		g.Go(func() error {
			logger().Debug("fetch started", "index", i)
			value, err := fn(ctx, i)
			slot <- result[T]{value: value, err: err}
			logger().Debug("fetch finished", "index", i)
			return nil
		})
	}
}
