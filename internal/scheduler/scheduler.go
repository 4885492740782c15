package scheduler

import (
	"context"
	"time"
)

// Ticker runs repeating tasks, each on its own goroutine. Invocations
// of one task never overlap: the next fires only after the previous
// one returned.
type Ticker struct{}

// ScheduleRepeating invokes fn immediately and then once per interval
// until the returned cancel function is called. Cancel never blocks;
// an invocation already in flight completes on its own.
func (t *Ticker) ScheduleRepeating(interval time.Duration, fn func()) (cancel func()) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fn()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	return cancel
}
