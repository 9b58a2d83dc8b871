package registry

import (
	"github.com/happypapa636/RentChain/pkg/domain"
)

type EventType string

const (
	EventLeaseCreated      EventType = "LEASE_CREATED"
	EventLeaseStateChanged EventType = "LEASE_STATE_CHANGED"
)

// Event is what subscribers receive. LeaseCreated carries the landlord and
// document reference; LeaseStateChanged carries the old and new state.
type Event struct {
	ID          string            `json:"event_id"`
	Type        EventType         `json:"type"`
	LeaseID     string            `json:"lease_id"`
	Landlord    string            `json:"landlord,omitempty"`
	DocumentRef string            `json:"document_ref,omitempty"`
	OldState    domain.LeaseState `json:"old_state,omitempty"`
	NewState    domain.LeaseState `json:"new_state,omitempty"`
}

const subscriberBuffer = 64

type subscriber struct {
	ch chan Event
}

// Subscribe registers a listener for registry events. Events arrive in
// emission order. The returned cancel func must be called to release the
// subscription; after cancel the channel is closed. A subscriber that falls
// more than subscriberBuffer events behind loses the overflow (counted in
// Dropped).
func (r *Registry) Subscribe() (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}
	r.mu.Lock()
	r.subs[sub] = struct{}{}
	r.mu.Unlock()
	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subs[sub]; ok {
			delete(r.subs, sub)
			close(sub.ch)
		}
		r.mu.Unlock()
	}
	return sub.ch, cancel
}

// Dropped reports how many events were discarded because a subscriber's
// buffer was full.
func (r *Registry) Dropped() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dropped
}

// publish is called with r.mu held for writing, so emission order matches
// mutation order.
func (r *Registry) publish(ev Event) {
	for sub := range r.subs {
		select {
		case sub.ch <- ev:
		default:
			r.dropped++
		}
	}
}
