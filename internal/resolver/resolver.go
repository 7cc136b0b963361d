package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/Nixie-Tech-LLC/beacon/internal/feed"
	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

const (
	DefaultInterval = 5 * time.Second
	DefaultTimeout  = 3 * time.Second
)

// Source is the read side of the three store adapters.
type Source interface {
	ListScheduleItems(ctx context.Context) ([]model.ScheduleItem, error)
	ListPlaylistForPlayback(ctx context.Context) ([]model.PlaylistItem, error)
	GetFallback(ctx context.Context) (*model.FallbackContent, error)
}

// Resolver reads fresh snapshots from the store and resolves them. It never
// returns an error: when the store cannot be read it answers with the last
// fallback it managed to read, or None.
type Resolver struct {
	source   Source
	changes  feed.Source
	now      func() time.Time
	timeout  time.Duration
	interval time.Duration

	mu           sync.Mutex
	lastFallback *model.FallbackContent
	onFallback   func(*model.FallbackContent)
}

type Option func(*Resolver)

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithTimeout bounds each snapshot read.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithInterval sets how often subscriptions re-resolve without a data change,
// which is how schedule windows opening and closing are noticed.
func WithInterval(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.interval = d
		}
	}
}

// New builds a Resolver. changes may be nil, in which case subscriptions only
// re-resolve on the timer.
func New(source Source, changes feed.Source, opts ...Option) *Resolver {
	r := &Resolver{
		source:   source,
		changes:  changes,
		now:      time.Now,
		timeout:  DefaultTimeout,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Snapshot reads all three collections concurrently. Any failure fails the
// whole read so callers never act on a partial view.
func (r *Resolver) Snapshot(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var snap Snapshot
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := r.source.ListScheduleItems(ctx)
		if err != nil {
			return fmt.Errorf("read schedule: %w", err)
		}
		snap.Schedule = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := r.source.ListPlaylistForPlayback(ctx)
		if err != nil {
			return fmt.Errorf("read playlist: %w", err)
		}
		snap.Playlist = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		f, err := r.source.GetFallback(ctx)
		if err != nil {
			return fmt.Errorf("read fallback: %w", err)
		}
		snap.Fallback = f
		return nil
	})
	if err := p.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Resolve returns what should be showing at now.
func (r *Resolver) Resolve(ctx context.Context, now time.Time) model.ActiveContent {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Msg("store unreachable, showing last known fallback")
		}
		return r.degraded()
	}

	r.mu.Lock()
	changed := !sameFallback(r.lastFallback, snap.Fallback)
	r.lastFallback = snap.Fallback
	notify := r.onFallback
	r.mu.Unlock()

	if changed && notify != nil {
		notify(snap.Fallback)
	}
	return Resolve(now, snap)
}

// Current resolves at the resolver's clock.
func (r *Resolver) Current(ctx context.Context) model.ActiveContent {
	return r.Resolve(ctx, r.now())
}

// Seed primes the degraded answer, e.g. from a cache, before the first
// successful read. A later successful read replaces it.
func (r *Resolver) Seed(f *model.FallbackContent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f != nil {
		cp := *f
		r.lastFallback = &cp
	}
}

// OnFallbackChange registers fn to be called after a successful read finds a
// fallback different from the last one known, including nil when it was cleared.
// fn runs on the resolving goroutine and must not block for long.
func (r *Resolver) OnFallbackChange(fn func(*model.FallbackContent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFallback = fn
}

func sameFallback(a, b *model.FallbackContent) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Type == b.Type && a.URL == b.URL
}

func (r *Resolver) degraded() model.ActiveContent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastFallback == nil {
		return model.NoContent()
	}
	return model.FallbackActive(*r.lastFallback)
}
