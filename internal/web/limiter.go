package web

// limiter.go bounds how many sorts run at once. When all slots are taken a
// request waits up to maxWait for one before failing with errBusy.

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/JonMunkholm/tablesort/internal/metrics"
)

// errBusy is returned when no sort slot frees up in time. Clients should
// retry after a short delay.
var errBusy = errors.New("too many concurrent sorts")

type sortLimiter struct {
	sem     *semaphore.Weighted
	maxWait time.Duration
}

func newSortLimiter(maxConcurrent int, maxWait time.Duration) *sortLimiter {
	return &sortLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		maxWait: maxWait,
	}
}

// acquire takes a slot. The caller must call release when the sort is done.
func (l *sortLimiter) acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		// The request itself went away, as opposed to the wait timing out.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errBusy
	}
	metrics.ActiveSorts.Inc()
	return nil
}

func (l *sortLimiter) release() {
	metrics.ActiveSorts.Dec()
	l.sem.Release(1)
}
