package domain

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func validTerms() Terms {
	return Terms{RentAmount: 500, SecurityDeposit: 1000, DurationPeriods: 12}
}

func TestNewLeaseStartsCreatedWithoutTenant(t *testing.T) {
	l, err := NewLease("lse_1", "acct_landlord", validTerms(), "QmDoc", t0)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if l.State != StateCreated || l.Tenant != "" {
		t.Fatalf("expected CREATED without tenant, got %+v", l)
	}
	if l.ActivatedAt != nil || l.EndedAt != nil {
		t.Fatalf("expected no lifecycle timestamps, got %+v", l)
	}
}

func TestNewLeaseRejectsBadTerms(t *testing.T) {
	cases := []Terms{
		{RentAmount: 0, SecurityDeposit: 0, DurationPeriods: 12},
		{RentAmount: -5, SecurityDeposit: 0, DurationPeriods: 12},
		{RentAmount: 500, SecurityDeposit: -1, DurationPeriods: 12},
		{RentAmount: 500, SecurityDeposit: 0, DurationPeriods: 0},
	}
	for _, terms := range cases {
		if _, err := NewLease("lse_1", "acct_landlord", terms, "QmDoc", t0); !errors.Is(err, ErrInvalidTerms) {
			t.Fatalf("terms %+v: expected ErrInvalidTerms, got %v", terms, err)
		}
	}
}

func TestActivateSetsTenantAndTimestamp(t *testing.T) {
	l, _ := NewLease("lse_1", "acct_landlord", validTerms(), "QmDoc", t0)
	active, err := l.Activate("acct_tenant", t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if active.State != StateActive || active.Tenant != "acct_tenant" || active.ActivatedAt == nil {
		t.Fatalf("expected ACTIVE with tenant, got %+v", active)
	}
	// receiver untouched
	if l.State != StateCreated || l.Tenant != "" {
		t.Fatalf("expected original snapshot unchanged, got %+v", l)
	}
}

func TestActivateRejectsMissingOrSelfTenant(t *testing.T) {
	l, _ := NewLease("lse_1", "acct_landlord", validTerms(), "QmDoc", t0)
	if _, err := l.Activate("", t0); !errors.Is(err, ErrMissingParty) {
		t.Fatalf("expected ErrMissingParty, got %v", err)
	}
	if _, err := l.Activate("acct_landlord", t0); !errors.Is(err, ErrMissingParty) {
		t.Fatalf("expected ErrMissingParty for self-lease, got %v", err)
	}
}

func TestTerminateRequiresActive(t *testing.T) {
	l, _ := NewLease("lse_1", "acct_landlord", validTerms(), "QmDoc", t0)
	if _, err := l.Terminate(ReasonNormal, t0); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition from CREATED, got %v", err)
	}
}

func TestTerminalStatesAreAbsorbing(t *testing.T) {
	l, _ := NewLease("lse_1", "acct_landlord", validTerms(), "QmDoc", t0)
	active, _ := l.Activate("acct_tenant", t0)
	disputed, err := active.Terminate(ReasonDispute, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if disputed.State != StateDisputed || disputed.EndedAt == nil {
		t.Fatalf("expected DISPUTED with ended_at, got %+v", disputed)
	}
	if _, err := disputed.Terminate(ReasonNormal, t0); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if _, err := disputed.Activate("acct_other", t0); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}

	ended, _ := active.Terminate(ReasonNormal, t0)
	if ended.State != StateTerminated {
		t.Fatalf("expected TERMINATED, got %+v", ended)
	}
	if _, err := ended.Terminate(ReasonDispute, t0); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestNewPaymentRejectsNonPositiveAmount(t *testing.T) {
	for _, amt := range []int64{0, -100} {
		if _, err := NewPayment("pay_1", "lse_1", "acct_tenant", amt, 0, t0); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amt, err)
		}
	}
}
