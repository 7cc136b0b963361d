// Package display keeps one live resolution for the whole deployment and fans
// it out to websocket sessions and external sinks.
package display

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
	"github.com/Nixie-Tech-LLC/beacon/internal/resolver"
)

// Sink receives every distinct resolution, e.g. the Redis cache or MQTT.
type Sink interface {
	Publish(ctx context.Context, content model.ActiveContent) error
}

// Subscriber is the part of resolver.Resolver the broadcaster needs.
type Subscriber interface {
	Subscribe(ctx context.Context, onChange func(model.ActiveContent)) *resolver.Subscription
}

const sinkTimeout = 5 * time.Second

type Broadcaster struct {
	source Subscriber
	sinks  []Sink

	mu        sync.RWMutex
	current   model.ActiveContent
	ready     bool
	listeners map[uint64]chan model.ActiveContent
	nextID    uint64
}

func NewBroadcaster(source Subscriber, sinks ...Sink) *Broadcaster {
	return &Broadcaster{
		source:    source,
		sinks:     sinks,
		listeners: make(map[uint64]chan model.ActiveContent),
	}
}

// Run subscribes to the resolver and blocks until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	sub := b.source.Subscribe(ctx, func(c model.ActiveContent) { b.update(ctx, c) })
	<-ctx.Done()
	sub.Unsubscribe()
	<-sub.Done()
	log.Info().Msg("display broadcaster stopped")
}

// update is only called from the subscription, so sends never race each other.
func (b *Broadcaster) update(ctx context.Context, c model.ActiveContent) {
	b.mu.Lock()
	if b.ready && b.current.Equal(c) {
		b.mu.Unlock()
		return
	}
	b.current = c
	b.ready = true
	for _, ch := range b.listeners {
		offer(ch, c)
	}
	n := len(b.listeners)
	b.mu.Unlock()

	log.Info().Str("kind", string(c.Kind)).Int("sessions", n).Msg("active content changed")

	for _, s := range b.sinks {
		sctx, cancel := context.WithTimeout(ctx, sinkTimeout)
		if err := s.Publish(sctx, c); err != nil {
			log.Warn().Err(err).Msg("failed to publish active content")
		}
		cancel()
	}
}

// offer replaces whatever is pending so a slow session only ever sees the latest.
func offer(ch chan model.ActiveContent, c model.ActiveContent) {
	select {
	case ch <- c:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- c:
	default:
	}
}

// Current returns the latest resolution and whether one has arrived yet.
func (b *Broadcaster) Current() (model.ActiveContent, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current, b.ready
}

// Listen registers a session. The channel holds at most one pending value and
// is primed with the current resolution when there is one.
func (b *Broadcaster) Listen() (<-chan model.ActiveContent, func()) {
	ch := make(chan model.ActiveContent, 1)

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[id] = ch
	if b.ready {
		ch <- b.current
	}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

func (b *Broadcaster) Sessions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
