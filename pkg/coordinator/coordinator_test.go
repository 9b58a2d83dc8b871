package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/happypapa636/RentChain/pkg/domain"
	"github.com/happypapa636/RentChain/pkg/ledger"
	"github.com/happypapa636/RentChain/pkg/registry"
)

type memJournal struct {
	mu       sync.Mutex
	leases   []domain.Lease
	payments []domain.Payment
	fail     bool
}

func (j *memJournal) LeaseSaved(_ context.Context, l domain.Lease) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		return errors.New("journal down")
	}
	j.leases = append(j.leases, l)
	return nil
}

func (j *memJournal) PaymentRecorded(_ context.Context, p domain.Payment) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		return errors.New("journal down")
	}
	j.payments = append(j.payments, p)
	return nil
}

func newCoordinator(j Journal) *Coordinator {
	reg := registry.New()
	return New(reg, ledger.New(reg), j, nil)
}

func terms() domain.Terms {
	return domain.Terms{RentAmount: 500, SecurityDeposit: 1000, DurationPeriods: 12}
}

func TestCreateActivateRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newCoordinator(nil)

	l, err := c.CreateLease(ctx, "acct_alice", terms(), "QmDoc")
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if l.State != domain.StateCreated {
		t.Fatalf("expected CREATED, got %+v", l)
	}

	res, err := c.ActivateLease(ctx, l.ID, "acct_tom", 500)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if res.Lease.State != domain.StateActive || res.Payment == nil || res.PaymentErr != nil {
		t.Fatalf("expected ACTIVE with recorded payment, got %+v", res)
	}

	st, err := c.Status(l.ID)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if st.TotalPaid != 500 || st.NextDuePeriod != 1 {
		t.Fatalf("expected total 500 next due 1, got %+v", st)
	}
}

func TestActivationSurvivesFailedFirstPayment(t *testing.T) {
	ctx := context.Background()
	c := newCoordinator(nil)
	l, _ := c.CreateLease(ctx, "acct_alice", terms(), "QmDoc")

	res, err := c.ActivateLease(ctx, l.ID, "acct_tom", 0)
	if err != nil {
		t.Fatalf("expected activation to succeed, got %v", err)
	}
	if res.Lease.State != domain.StateActive {
		t.Fatalf("expected ACTIVE, got %+v", res.Lease)
	}
	if res.Payment != nil || !errors.Is(res.PaymentErr, domain.ErrInvalidAmount) {
		t.Fatalf("expected rejected first payment, got %+v", res)
	}

	// lease is Active with period 0 unsatisfied
	st, _ := c.Status(l.ID)
	if st.TotalPaid != 0 || st.NextDuePeriod != 0 {
		t.Fatalf("expected period 0 outstanding, got %+v", st)
	}
}

func TestPayRentOnCreatedLeaseFails(t *testing.T) {
	ctx := context.Background()
	c := newCoordinator(nil)
	l, _ := c.CreateLease(ctx, "acct_alice", terms(), "QmDoc")
	if _, err := c.PayRent(ctx, l.ID, "acct_tom", 500); !errors.Is(err, domain.ErrLeaseNotActive) {
		t.Fatalf("expected ErrLeaseNotActive, got %v", err)
	}
}

func TestPayRentTargetsNextDuePeriod(t *testing.T) {
	ctx := context.Background()
	c := newCoordinator(nil)
	l, _ := c.CreateLease(ctx, "acct_alice", terms(), "QmDoc")
	if _, err := c.ActivateLease(ctx, l.ID, "acct_tom", 500); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	p, err := c.PayRent(ctx, l.ID, "acct_tom", 500)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if p.PeriodIndex != 1 {
		t.Fatalf("expected payment against period 1, got %+v", p)
	}
	st, _ := c.Status(l.ID)
	if st.NextDuePeriod != 2 {
		t.Fatalf("expected next due 2, got %+v", st)
	}
}

func TestTerminateDisputeIsTerminal(t *testing.T) {
	ctx := context.Background()
	c := newCoordinator(nil)
	l, _ := c.CreateLease(ctx, "acct_alice", terms(), "QmDoc")
	if _, err := c.ActivateLease(ctx, l.ID, "acct_tom", 500); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	got, err := c.TerminateLease(ctx, l.ID, domain.ReasonDispute)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got.State != domain.StateDisputed {
		t.Fatalf("expected DISPUTED, got %+v", got)
	}
	if _, err := c.TerminateLease(ctx, l.ID, domain.ReasonNormal); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if _, err := c.PayRent(ctx, l.ID, "acct_tom", 500); !errors.Is(err, domain.ErrLeaseNotActive) {
		t.Fatalf("expected ErrLeaseNotActive after dispute, got %v", err)
	}
}

func TestJournalReceivesCommittedState(t *testing.T) {
	ctx := context.Background()
	j := &memJournal{}
	c := newCoordinator(j)
	l, _ := c.CreateLease(ctx, "acct_alice", terms(), "QmDoc")
	if _, err := c.ActivateLease(ctx, l.ID, "acct_tom", 500); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(j.leases) != 2 { // created + activated snapshots
		t.Fatalf("expected 2 lease journal writes, got %d", len(j.leases))
	}
	if len(j.payments) != 1 {
		t.Fatalf("expected 1 payment journal write, got %d", len(j.payments))
	}
	if j.leases[1].State != domain.StateActive {
		t.Fatalf("expected activated snapshot journaled, got %+v", j.leases[1])
	}
}

func TestJournalFailureDoesNotUnwindState(t *testing.T) {
	ctx := context.Background()
	j := &memJournal{fail: true}
	c := newCoordinator(j)
	l, err := c.CreateLease(ctx, "acct_alice", terms(), "QmDoc")
	if err != nil {
		t.Fatalf("expected create to succeed despite journal failure, got %v", err)
	}
	if _, err := c.Lease(l.ID); err != nil {
		t.Fatalf("expected lease present in memory, got %v", err)
	}
}

func TestStatusDelinquency(t *testing.T) {
	ctx := context.Background()
	c := newCoordinator(nil)
	l, _ := c.CreateLease(ctx, "acct_alice", terms(), "QmDoc")
	if _, err := c.ActivateLease(ctx, l.ID, "acct_tom", 500); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	// freshly activated, period 0 paid: current
	st, _ := c.Status(l.ID)
	if st.Delinquent {
		t.Fatalf("expected current lease, got %+v", st)
	}

	// two months later with only period 0 paid: overdue
	c.now = func() time.Time { return time.Now().AddDate(0, 2, 0) }
	st, _ = c.Status(l.ID)
	if !st.Delinquent {
		t.Fatalf("expected delinquent lease, got %+v", st)
	}
}
