// Package feed fans collection mutations into per-subscriber recompute signals.
package feed

import (
	"sync"
	"sync/atomic"
)

type Collection string

const (
	Schedule Collection = "schedule"
	Playlist Collection = "playlist"
	Fallback Collection = "fallback"
)

// Collections lists every collection the resolver depends on.
var Collections = []Collection{Schedule, Playlist, Fallback}

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	// OpResync is emitted after a lost connection, when individual events may
	// have been missed.
	OpResync Op = "resync"
)

type Change struct {
	Collection Collection `json:"collection"`
	Op         Op         `json:"op"`
}

// Source is anything that can hand out change subscriptions.
type Source interface {
	Subscribe() (<-chan Change, func())
}

// Publisher accepts changes observed by a store.
type Publisher interface {
	Publish(Change)
}

// Hub is an in-process broadcaster. Each subscriber gets a one-slot channel:
// consumers recompute from scratch on every signal, so a signal that is already
// pending makes any further one redundant and it is dropped instead of blocking
// the publisher.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Change
	nextID  uint64
	closed  bool
	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]chan Change)}
}

func (h *Hub) Publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- c:
			h.sent.Add(1)
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribe registers a new listener. The returned cancel func closes the
// channel and may be called more than once.
func (h *Hub) Subscribe() (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Change, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	h.nextID++
	id := h.nextID
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Subscribers reports the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stats returns how many signals were delivered and how many were coalesced.
func (h *Hub) Stats() (sent, dropped uint64) {
	return h.sent.Load(), h.dropped.Load()
}

// Close drops every subscriber. Publishing after Close is a no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
}
