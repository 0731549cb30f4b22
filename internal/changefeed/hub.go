// Package changefeed implements the change-notification channel: an
// in-process hub delivering row-change events to per-owner
// subscriptions, with an optional AMQP relay that fans events out across
// server instances.
package changefeed

import (
	"log/slog"
	"sync"

	"github.com/Vijay-1289/Expense-Tracker/internal/core"
)

// Hub is the in-process pub/sub fabric. Publishing never blocks: a
// subscriber whose buffer is full misses the event, which is acceptable
// because every event triggers the same full re-fetch.
type Hub struct {
	mu     sync.Mutex
	subs   map[core.Identity]map[*Subscription]struct{}
	buffer int
	closed bool
}

// Subscription is one owner's live feed. It must be closed when the
// identity is cleared or the dashboard is torn down, otherwise the
// channel leaks across sign-ins.
type Subscription struct {
	hub    *Hub
	owner  core.Identity
	events chan Event
	once   sync.Once
}

func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[core.Identity]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe opens a feed of the given owner's row changes.
func (h *Hub) Subscribe(owner core.Identity) *Subscription {
	sub := &Subscription{
		hub:    h,
		owner:  owner,
		events: make(chan Event, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.once.Do(func() { close(sub.events) })
		return sub
	}
	set, ok := h.subs[owner]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[owner] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Publish delivers the event to every subscription of its owner.
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for sub := range h.subs[e.Owner] {
		select {
		case sub.events <- e:
		default:
			slog.Warn("Change feed subscriber lagging, dropping event",
				"owner", e.Owner,
				"table", e.Table,
				"op", e.Op)
		}
	}
}

// Close shuts down the hub and closes every open subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, set := range h.subs {
		for sub := range set {
			sub.once.Do(func() { close(sub.events) })
		}
	}
	h.subs = nil
}

// Events returns the subscription's delivery channel. It is closed when
// the subscription or the hub is closed.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close detaches the subscription from the hub and closes its channel.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	if set, ok := s.hub.subs[s.owner]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(s.hub.subs, s.owner)
		}
	}
	s.hub.mu.Unlock()

	s.once.Do(func() { close(s.events) })
}
