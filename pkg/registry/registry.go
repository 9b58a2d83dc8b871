// Package registry owns the authoritative collection of leases. It is the
// only path to create one, and the only holder of the underlying maps;
// callers get value snapshots, never references into the collection.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/happypapa636/RentChain/pkg/domain"
)

// Registry maps lease ids to snapshots and keeps per-party indices in
// insertion order. All mutation happens under one writer lock, so
// transitions on a lease are linearized and the indices are never observed
// out of sync with the primary map.
type Registry struct {
	mu         sync.RWMutex
	leases     map[string]domain.Lease
	byLandlord map[string][]string
	byTenant   map[string][]string
	subs       map[*subscriber]struct{}
	dropped    uint64
	now        func() time.Time
}

func New() *Registry {
	return &Registry{
		leases:     make(map[string]domain.Lease),
		byLandlord: make(map[string][]string),
		byTenant:   make(map[string][]string),
		subs:       make(map[*subscriber]struct{}),
		now:        time.Now,
	}
}

// SetClock overrides the registry's time source. Test hook.
func (r *Registry) SetClock(now func() time.Time) { r.now = now }

func NewLeaseID() string { return "lse_" + uuid.NewString() }

// CreateLease constructs a lease in CREATED state, assigns a fresh id,
// indexes it under the landlord and publishes LEASE_CREATED.
func (r *Registry) CreateLease(landlord string, terms domain.Terms, documentRef string) (domain.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, err := domain.NewLease(NewLeaseID(), landlord, terms, documentRef, r.now())
	if err != nil {
		return domain.Lease{}, err
	}
	r.leases[l.ID] = l
	r.byLandlord[landlord] = append(r.byLandlord[landlord], l.ID)
	r.publish(Event{
		ID:          "evt_" + uuid.NewString(),
		Type:        EventLeaseCreated,
		LeaseID:     l.ID,
		Landlord:    landlord,
		DocumentRef: documentRef,
	})
	return l, nil
}

func (r *Registry) Lease(id string) (domain.Lease, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.leases[id]
	if !ok {
		return domain.Lease{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return l, nil
}

func (r *Registry) LeasesByLandlord(landlord string) []domain.Lease {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.byLandlord[landlord])
}

func (r *Registry) LeasesByTenant(tenant string) []domain.Lease {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.byTenant[tenant])
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leases)
}

// collect is called with r.mu held.
func (r *Registry) collect(ids []string) []domain.Lease {
	out := make([]domain.Lease, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.leases[id])
	}
	return out
}

// Apply looks up the lease and runs fn on its snapshot. Only when fn
// succeeds is the stored snapshot replaced; the tenant index is updated in
// the same critical section when a tenant is newly assigned, and a
// LEASE_STATE_CHANGED event is published.
func (r *Registry) Apply(id string, fn func(domain.Lease) (domain.Lease, error)) (domain.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.leases[id]
	if !ok {
		return domain.Lease{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	next, err := fn(cur)
	if err != nil {
		return domain.Lease{}, err
	}
	if next.ID != cur.ID || next.Landlord != cur.Landlord {
		return domain.Lease{}, fmt.Errorf("%w: transition must not reassign identity", domain.ErrIllegalTransition)
	}
	r.leases[id] = next
	if cur.Tenant == "" && next.Tenant != "" {
		r.byTenant[next.Tenant] = append(r.byTenant[next.Tenant], id)
	}
	if next.State != cur.State {
		r.publish(Event{
			ID:       "evt_" + uuid.NewString(),
			Type:     EventLeaseStateChanged,
			LeaseID:  id,
			OldState: cur.State,
			NewState: next.State,
		})
	}
	return next, nil
}

// Restore inserts an existing snapshot without validation or events. Used
// by the persistence layer to rebuild the registry on boot; leases must be
// supplied in creation order so the indices keep it.
func (r *Registry) Restore(l domain.Lease) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leases[l.ID]; ok {
		return
	}
	r.leases[l.ID] = l
	r.byLandlord[l.Landlord] = append(r.byLandlord[l.Landlord], l.ID)
	if l.Tenant != "" {
		r.byTenant[l.Tenant] = append(r.byTenant[l.Tenant], l.ID)
	}
}
