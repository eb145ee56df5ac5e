// Package middleware sits between the pipeline and its consumers. The
// progress hub fans pipeline events out to WebSocket subscribers without
// ever letting a slow client stall a fit batch.
package middleware

import (
	"sync"

	"TTVPull/internal/domain/models"
)

// HubOption configures ProgressHub.
type HubOption func(*ProgressHub)

// WithSubscriberBuffer sets the per-subscriber channel depth.
func WithSubscriberBuffer(n int) HubOption {
	return func(h *ProgressHub) {
		if n > 0 {
			h.bufSize = n
		}
	}
}

// ProgressHub implements service.ProgressSink. Subscribers register per
// campaign ID; the empty ID receives every event. Delivery is best effort:
// when a subscriber's buffer is full the event is dropped for that
// subscriber only.
type ProgressHub struct {
	mu      sync.RWMutex
	subs    map[string]map[int]chan models.ProgressEvent
	nextID  int
	bufSize int
	closed  bool
}

// NewProgressHub creates a hub.
func NewProgressHub(opts ...HubOption) *ProgressHub {
	h := &ProgressHub{
		subs:    make(map[string]map[int]chan models.ProgressEvent),
		bufSize: 64,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Notify delivers an event to campaign subscribers and wildcard subscribers.
// Never blocks.
func (h *ProgressHub) Notify(ev models.ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	h.deliver(h.subs[ev.CampaignID], ev)
	h.deliver(h.subs[""], ev)
}

func (h *ProgressHub) deliver(chans map[int]chan models.ProgressEvent, ev models.ProgressEvent) {
	for _, ch := range chans {
		select {
		case ch <- ev:
		default: // subscriber too slow, drop
		}
	}
}

// Subscribe registers for events of one campaign ID ("" for all). The
// returned cancel func must be called when the consumer goes away.
func (h *ProgressHub) Subscribe(campaignID string) (<-chan models.ProgressEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan models.ProgressEvent, h.bufSize)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	if h.subs[campaignID] == nil {
		h.subs[campaignID] = make(map[int]chan models.ProgressEvent)
	}
	h.subs[campaignID][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if chans, ok := h.subs[campaignID]; ok {
			if c, ok := chans[id]; ok {
				delete(chans, id)
				close(c)
				if len(chans) == 0 {
					delete(h.subs, campaignID)
				}
			}
		}
	}
	return ch, cancel
}

// Close shuts the hub down and closes every subscriber channel.
func (h *ProgressHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, chans := range h.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	h.subs = make(map[string]map[int]chan models.ProgressEvent)
}
