// Package poller runs a function immediately and then on a fixed interval
// until stopped.
package poller

import (
	"context"
	"sync"
	"time"
)

// Poller is a running periodic task. Stop releases it.
type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start runs fn once right away, then every interval, until parent is
// cancelled or Stop is called. fn receives a context that is cancelled on
// stop so in-flight reads can bail out.
func Start(parent context.Context, interval time.Duration, fn func(context.Context)) *Poller {
	ctx, cancel := context.WithCancel(parent)
	p := &Poller{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		fn(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()
	return p
}

// Stop cancels the task and waits for the current run to return. After Stop
// returns fn is never called again. Safe to call more than once and on nil.
func (p *Poller) Stop() {
	if p == nil {
		return
	}
	p.once.Do(p.cancel)
	<-p.done
}

// Done is closed once the task has fully exited
func (p *Poller) Done() <-chan struct{} {
	return p.done
}
