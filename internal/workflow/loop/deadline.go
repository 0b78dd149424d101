package loop

import (
	"context"
	"sync"
	"time"

	"github.com/Cyclone1070/codeagent/internal/tool"
)

// turnDeadline cancels a turn once it has run for its budget. The clock stops while a
// tool waits on the user, so a slow answer never expires the turn.
type turnDeadline struct {
	mu        sync.Mutex
	timer     *time.Timer
	remaining time.Duration
	resumedAt time.Time
	waiting   int
	expired   bool
	cancel    context.CancelCauseFunc
	now       func() time.Time
}

// withTurnDeadline derives the turn context. On expiry the context is cancelled with
// context.DeadlineExceeded as its cause.
func withTurnDeadline(parent context.Context, budget time.Duration, now func() time.Time) (context.Context, *turnDeadline, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	d := &turnDeadline{remaining: budget, resumedAt: now(), cancel: cancel, now: now}
	d.timer = time.AfterFunc(budget, d.expire)
	ctx = tool.WithUserWait(ctx, d.pause)
	return ctx, d, func() {
		d.timer.Stop()
		cancel(context.Canceled)
	}
}

func (d *turnDeadline) expire() {
	d.mu.Lock()
	defer d.mu.Unlock()
	// A wait that began as the timer fired wins
	if d.waiting > 0 || d.expired {
		return
	}
	d.expired = true
	d.cancel(context.DeadlineExceeded)
}

func (d *turnDeadline) pause() func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waiting++
	if d.waiting == 1 && !d.expired {
		d.timer.Stop()
		d.remaining -= d.now().Sub(d.resumedAt)
	}
	return sync.OnceFunc(d.resume)
}

func (d *turnDeadline) resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waiting--
	if d.waiting == 0 && !d.expired {
		d.resumedAt = d.now()
		d.timer.Reset(max(d.remaining, 0))
	}
}

// Expired reports whether the budget ran out.
func (d *turnDeadline) Expired() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.expired
}
