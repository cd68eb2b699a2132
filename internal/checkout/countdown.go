package checkout

import (
	"context"
	"sync"
	"time"
)

// Post-success redirect countdown
const (
	CountdownSteps = 3
	CountdownTick  = time.Second
)

// Countdown ticks from steps down to zero and then fires its done callback.
// It is owned by ctx: cancelling ctx or calling Stop tears it down and no
// callback runs afterwards. Callbacks run on the countdown goroutine and must
// not call Stop or Dismiss.
type Countdown struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	remaining int
	stopped   bool

	fireOnce sync.Once
	onDone   func()
}

// StartCountdown starts a countdown reporting each remaining value (steps
// first, zero last) to onTick and calling onDone once it reaches zero
func StartCountdown(ctx context.Context, steps int, tick time.Duration, onTick func(remaining int), onDone func()) *Countdown {
	if steps < 0 {
		steps = 0
	}
	if onTick == nil {
		onTick = func(int) {}
	}
	if onDone == nil {
		onDone = func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Countdown{
		cancel:    cancel,
		done:      make(chan struct{}),
		remaining: steps,
		onDone:    onDone,
	}

	go c.run(ctx, tick, onTick)
	return c
}

func (c *Countdown) run(ctx context.Context, tick time.Duration, onTick func(int)) {
	defer close(c.done)

	if ctx.Err() != nil {
		return
	}
	onTick(c.Remaining())

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for c.Remaining() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		c.remaining--
		remaining := c.remaining
		c.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		onTick(remaining)
	}

	if ctx.Err() != nil {
		return
	}
	c.fire()
}

func (c *Countdown) fire() {
	c.fireOnce.Do(c.onDone)
}

// Remaining returns the current countdown value
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Done is closed once the countdown goroutine has exited
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// Stop cancels the countdown and waits for its goroutine. No callback runs
// after Stop returns.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()

	c.cancel()
	<-c.done
}

// Dismiss ends the countdown early and fires the done callback now. It does
// nothing after Stop, and the callback never fires twice.
func (c *Countdown) Dismiss() {
	c.mu.Lock()
	stopped := c.stopped
	c.mu.Unlock()
	if stopped {
		return
	}

	c.cancel()
	<-c.done
	c.fire()
}
