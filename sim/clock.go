package sim

import (
	"context"
	"time"
)

// startClockLocked launches a ticker goroutine bound to the current
// generation. A zero period leaves the engine on manual stepping.
func (e *Engine) startClockLocked() {
	if e.params.TickPeriod <= 0 {
		return
	}
	e.stopClockLocked()

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	gen := e.gen

	e.clocks.Add(1)
	go func() {
		defer e.clocks.Done()
		e.runClock(ctx, gen)
	}()
}

// stopClockLocked invalidates the running clock. Ticks already waiting on
// the lock see the new generation and drop out.
func (e *Engine) stopClockLocked() {
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) runClock(ctx context.Context, gen uint64) {
	t := time.NewTicker(e.params.TickPeriod)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !e.clockTick(gen) {
				return
			}
		}
	}
}

func (e *Engine) clockTick(gen uint64) bool {
	e.mu.Lock()
	if gen != e.gen || e.state != Running || e.closed {
		e.mu.Unlock()
		return false
	}
	events, finished := e.tickLocked()
	sum := e.summaryLocked()
	keep := e.state == Running
	listener := e.listener
	e.mu.Unlock()

	notify(listener, events)
	if finished {
		e.recordRun(sum)
	}
	return keep
}
