package resolver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/feed"
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

// Subscription is a live Subscribe registration.
type Subscription struct {
	cancel context.CancelFunc
	alive  atomic.Bool
	once   sync.Once
	done   chan struct{}
}

// Unsubscribe stops the timer and releases the change feed. Calling it again
// is a no-op, and a resolution still in flight is discarded rather than
// delivered. It is safe to call from inside the callback.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.alive.Store(false)
		s.cancel()
	})
}

// Done is closed once the subscription goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Subscribe calls onChange with the current resolution before returning, then
// again after every change signal and on every timer tick, always from a fresh
// read of all three collections. Calls are serialized.
func (r *Resolver) Subscribe(ctx context.Context, onChange func(model.ActiveContent)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	sub.alive.Store(true)

	// register for changes before the first read so nothing slips between them
	var changes <-chan feed.Change
	stop := func() {}
	if r.changes != nil {
		changes, stop = r.changes.Subscribe()
	}

	deliver := func() {
		content := r.Resolve(ctx, r.now())
		if ctx.Err() != nil || !sub.alive.Load() {
			return
		}
		onChange(content)
	}

	deliver()

	go func() {
		defer close(sub.done)
		defer stop()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-changes:
				if !ok {
					log.Warn().Msg("change feed closed, falling back to timer only")
					changes = nil
					continue
				}
				log.Debug().Str("collection", string(c.Collection)).Str("op", string(c.Op)).Msg("re-resolving after change")
				deliver()
			case <-ticker.C:
				deliver()
			}
		}
	}()

	return sub
}
