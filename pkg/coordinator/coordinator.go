// Package coordinator is the single entry point used by outer layers. It
// sequences registry and ledger operations so a caller never observes an
// inconsistent combination, and writes committed state through to a journal
// for recovery.
package coordinator

import (
	"context"
	"log/slog"
	"time"

	"github.com/happypapa636/RentChain/pkg/domain"
	"github.com/happypapa636/RentChain/pkg/ledger"
	"github.com/happypapa636/RentChain/pkg/registry"
)

// Journal persists committed mutations. Implementations must be safe for
// concurrent use. Journal calls happen outside the registry's critical
// section; a journal failure is logged and never unwinds in-memory state.
type Journal interface {
	LeaseSaved(ctx context.Context, l domain.Lease) error
	PaymentRecorded(ctx context.Context, p domain.Payment) error
}

// NopJournal discards everything. Used when no persistence is configured.
type NopJournal struct{}

func (NopJournal) LeaseSaved(context.Context, domain.Lease) error        { return nil }
func (NopJournal) PaymentRecorded(context.Context, domain.Payment) error { return nil }

type Coordinator struct {
	reg     *registry.Registry
	led     *ledger.Ledger
	journal Journal
	log     *slog.Logger
	now     func() time.Time
}

func New(reg *registry.Registry, led *ledger.Ledger, journal Journal, log *slog.Logger) *Coordinator {
	if journal == nil {
		journal = NopJournal{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{reg: reg, led: led, journal: journal, log: log, now: time.Now}
}

func (c *Coordinator) CreateLease(ctx context.Context, landlord string, terms domain.Terms, documentRef string) (domain.Lease, error) {
	l, err := c.reg.CreateLease(landlord, terms, documentRef)
	if err != nil {
		return domain.Lease{}, err
	}
	c.saveLease(ctx, l)
	return l, nil
}

func (c *Coordinator) Lease(id string) (domain.Lease, error) { return c.reg.Lease(id) }

func (c *Coordinator) LeasesByLandlord(landlord string) []domain.Lease {
	return c.reg.LeasesByLandlord(landlord)
}

func (c *Coordinator) LeasesByTenant(tenant string) []domain.Lease {
	return c.reg.LeasesByTenant(tenant)
}

func (c *Coordinator) Payments(id string) []domain.Payment { return c.led.Payments(id) }

// PaymentStatus is the derived view the presentation layer renders.
type PaymentStatus struct {
	TotalPaid     int64 `json:"total_paid"`
	NextDuePeriod int   `json:"next_due_period"`
	Delinquent    bool  `json:"delinquent"`
}

// Status reports the running payment balance. A lease is delinquent when
// the period that started at activation (or any before the current one,
// counting from activatedAt in period lengths) is unsatisfied. Period
// length is one month.
func (c *Coordinator) Status(id string) (PaymentStatus, error) {
	l, err := c.reg.Lease(id)
	if err != nil {
		return PaymentStatus{}, err
	}
	next, err := c.led.NextDuePeriod(id)
	if err != nil {
		return PaymentStatus{}, err
	}
	st := PaymentStatus{TotalPaid: c.led.TotalPaid(id), NextDuePeriod: next}
	if l.State == domain.StateActive && l.ActivatedAt != nil {
		elapsed := periodsElapsed(*l.ActivatedAt, c.now())
		st.Delinquent = next <= elapsed && next < l.Terms.DurationPeriods
	}
	return st, nil
}

func periodsElapsed(since, now time.Time) int {
	months := 0
	for t := since.AddDate(0, 1, 0); !t.After(now); t = t.AddDate(0, 1, 0) {
		months++
	}
	return months
}

// ActivationResult reports the activation outcome. A failed first payment
// does not roll the activation back: the lease stays ACTIVE with period 0
// unsatisfied ("payment overdue since creation"), and PaymentErr carries
// the rejection.
type ActivationResult struct {
	Lease      domain.Lease
	Payment    *domain.Payment
	PaymentErr error
}

func (c *Coordinator) ActivateLease(ctx context.Context, id, tenant string, firstPayment int64) (ActivationResult, error) {
	l, err := c.reg.Apply(id, func(cur domain.Lease) (domain.Lease, error) {
		return cur.Activate(tenant, c.now())
	})
	if err != nil {
		return ActivationResult{}, err
	}
	c.saveLease(ctx, l)

	res := ActivationResult{Lease: l}
	p, perr := c.led.Record(id, tenant, firstPayment, 0)
	if perr != nil {
		c.log.Warn("first payment not recorded", "lease_id", id, "error", perr)
		res.PaymentErr = perr
		return res, nil
	}
	c.savePayment(ctx, p)
	res.Payment = &p
	return res, nil
}

// PayRent records a payment against the lease's next unsatisfied period.
func (c *Coordinator) PayRent(ctx context.Context, id, payer string, amount int64) (domain.Payment, error) {
	period, err := c.led.NextDuePeriod(id)
	if err != nil {
		return domain.Payment{}, err
	}
	p, err := c.led.Record(id, payer, amount, period)
	if err != nil {
		return domain.Payment{}, err
	}
	c.savePayment(ctx, p)
	return p, nil
}

func (c *Coordinator) TerminateLease(ctx context.Context, id string, reason domain.TerminationReason) (domain.Lease, error) {
	l, err := c.reg.Apply(id, func(cur domain.Lease) (domain.Lease, error) {
		return cur.Terminate(reason, c.now())
	})
	if err != nil {
		return domain.Lease{}, err
	}
	c.saveLease(ctx, l)
	return l, nil
}

func (c *Coordinator) saveLease(ctx context.Context, l domain.Lease) {
	if err := c.journal.LeaseSaved(ctx, l); err != nil {
		c.log.Error("journal lease write failed", "lease_id", l.ID, "error", err)
	}
}

func (c *Coordinator) savePayment(ctx context.Context, p domain.Payment) {
	if err := c.journal.PaymentRecorded(ctx, p); err != nil {
		c.log.Error("journal payment write failed", "payment_id", p.ID, "error", err)
	}
}
