// Package ledger is the append-only record of rent payments and the
// derivation of payment-status queries. Records are never mutated or
// deleted once appended.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/happypapa636/RentChain/pkg/domain"
)

// LeaseReader resolves lease snapshots; satisfied by *registry.Registry.
type LeaseReader interface {
	Lease(id string) (domain.Lease, error)
}

type Ledger struct {
	mu      sync.RWMutex
	byLease map[string][]domain.Payment
	leases  LeaseReader
	now     func() time.Time
}

func New(leases LeaseReader) *Ledger {
	return &Ledger{
		byLease: make(map[string][]domain.Payment),
		leases:  leases,
		now:     time.Now,
	}
}

// SetClock overrides the ledger's time source. Test hook.
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

// Record appends a payment against an ACTIVE lease. Duplicate period
// indices are allowed: overpayment and partial payments are tracked, and
// callers derive status from the running balance instead of relying on
// uniqueness.
func (l *Ledger) Record(leaseID, payer string, amount int64, periodIndex int) (domain.Payment, error) {
	lease, err := l.leases.Lease(leaseID)
	if err != nil {
		return domain.Payment{}, err
	}
	if lease.State != domain.StateActive {
		return domain.Payment{}, fmt.Errorf("%w: %s is %s", domain.ErrLeaseNotActive, leaseID, lease.State)
	}
	p, err := domain.NewPayment("pay_"+uuid.NewString(), leaseID, payer, amount, periodIndex, l.now())
	if err != nil {
		return domain.Payment{}, err
	}
	l.mu.Lock()
	l.byLease[leaseID] = append(l.byLease[leaseID], p)
	l.mu.Unlock()
	return p, nil
}

// Restore appends a persisted payment without state checks. Used by the
// persistence layer on boot; payments must arrive in record order.
func (l *Ledger) Restore(p domain.Payment) {
	l.mu.Lock()
	l.byLease[p.LeaseID] = append(l.byLease[p.LeaseID], p)
	l.mu.Unlock()
}

// Payments returns the lease's records in append order.
func (l *Ledger) Payments(leaseID string) []domain.Payment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	recs := l.byLease[leaseID]
	out := make([]domain.Payment, len(recs))
	copy(out, recs)
	return out
}

func (l *Ledger) TotalPaid(leaseID string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total int64
	for _, p := range l.byLease[leaseID] {
		total += p.Amount
	}
	return total
}

// PeriodSatisfied reports whether cumulative payments attributed to periods
// <= periodIndex cover rent for every period up to and including it. Rent
// is fungible across periods (running-balance model, no proration).
func (l *Ledger) PeriodSatisfied(leaseID string, periodIndex int) (bool, error) {
	lease, err := l.leases.Lease(leaseID)
	if err != nil {
		return false, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.periodSatisfied(lease, leaseID, periodIndex), nil
}

// periodSatisfied is called with l.mu held for reading.
func (l *Ledger) periodSatisfied(lease domain.Lease, leaseID string, periodIndex int) bool {
	var paid int64
	for _, p := range l.byLease[leaseID] {
		if p.PeriodIndex <= periodIndex {
			paid += p.Amount
		}
	}
	return paid >= lease.Terms.RentAmount*int64(periodIndex+1)
}

// NextDuePeriod returns the smallest period index that is not yet
// satisfied. It only ever grows for a given lease, since records are append
// only. Not capped at the lease duration: a fully paid lease reports the
// first period past its term.
func (l *Ledger) NextDuePeriod(leaseID string) (int, error) {
	lease, err := l.leases.Lease(leaseID)
	if err != nil {
		return 0, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	p := 0
	for l.periodSatisfied(lease, leaseID, p) {
		p++
	}
	return p, nil
}
