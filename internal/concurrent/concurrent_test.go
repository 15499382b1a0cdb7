package concurrent_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/sinclairtarget/git-tagstats/internal/concurrent"
)

func TestOrderedKeepsOrder(t *testing.T) {
	for _, limit := range []int{0, 1, 3, 10} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			// Later indexes finish first
			fn := func(ctx context.Context, i int) (int, error) {
				time.Sleep(time.Duration(5-i) * time.Millisecond)
				return i * i, nil
			}

			var got []int
			for v, err := range concurrent.Ordered(context.Background(), 5, limit, fn) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				got = append(got, v)
			}

			if diff := cmp.Diff([]int{0, 1, 4, 9, 16}, got); diff != "" {
				t.Errorf("results out of order:\n%s", diff)
			}
		})
	}
}

func TestOrderedRespectsLimit(t *testing.T) {
	var running, peak atomic.Int32

	fn := func(ctx context.Context, i int) (int, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		return i, nil
	}

	for _, err := range concurrent.Ordered(context.Background(), 12, 2, fn) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if peak.Load() > 2 {
		t.Errorf("expected at most 2 calls at once but saw %d", peak.Load())
	}
}

func TestOrderedErrorsDoNotStopOthers(t *testing.T) {
	boom := errors.New("boom")

	fn := func(ctx context.Context, i int) (string, error) {
		if i == 1 {
			return "", boom
		}
		return fmt.Sprintf("r%d", i), nil
	}

	var values []string
	var errs []error
	for v, err := range concurrent.Ordered(context.Background(), 3, 2, fn) {
		values = append(values, v)
		errs = append(errs, err)
	}

	if diff := cmp.Diff([]string{"r0", "", "r2"}, values); diff != "" {
		t.Errorf("values are wrong:\n%s", diff)
	}

	if errs[0] != nil || !errors.Is(errs[1], boom) || errs[2] != nil {
		t.Errorf("errors are wrong: %v", errs)
	}
}

func TestOrderedStopEarly(t *testing.T) {
	var calls atomic.Int32

	fn := func(ctx context.Context, i int) (int, error) {
		calls.Add(1)
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Millisecond):
			return i, nil
		}
	}

	for v := range concurrent.Ordered(context.Background(), 100, 1, fn) {
		if v == 1 {
			break
		}
	}

	// Returning from the loop waits for everything in flight, so the count is
	// stable here.
	if n := calls.Load(); n >= 100 {
		t.Errorf("expected remaining calls to be skipped, but %d ran", n)
	}
}
