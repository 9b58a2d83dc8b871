package domain

import (
	"fmt"
	"time"
)

type LeaseState string

const (
	StateCreated    LeaseState = "CREATED"
	StateActive     LeaseState = "ACTIVE"
	StateTerminated LeaseState = "TERMINATED"
	StateDisputed   LeaseState = "DISPUTED"
)

func (s LeaseState) Terminal() bool {
	return s == StateTerminated || s == StateDisputed
}

type TerminationReason string

const (
	ReasonNormal  TerminationReason = "NORMAL"
	ReasonDispute TerminationReason = "DISPUTE"
)

// Terms are the numeric conditions of an agreement. Amounts are integer
// minor units (wei-equivalent); never floats.
type Terms struct {
	RentAmount      int64 `json:"rent_amount"`
	SecurityDeposit int64 `json:"security_deposit"`
	DurationPeriods int   `json:"duration_periods"`
}

func (t Terms) Validate() error {
	if t.RentAmount <= 0 {
		return fmt.Errorf("%w: rent_amount must be > 0", ErrInvalidTerms)
	}
	if t.SecurityDeposit < 0 {
		return fmt.Errorf("%w: security_deposit must be >= 0", ErrInvalidTerms)
	}
	if t.DurationPeriods <= 0 {
		return fmt.Errorf("%w: duration_periods must be > 0", ErrInvalidTerms)
	}
	return nil
}

// Lease is one rental agreement. Values are immutable snapshots: every
// transition returns a new Lease and leaves the receiver untouched, so a
// snapshot handed to a reader is never seen half-updated.
type Lease struct {
	ID          string     `json:"lease_id"`
	Landlord    string     `json:"landlord"`
	Tenant      string     `json:"tenant,omitempty"`
	Terms       Terms      `json:"terms"`
	DocumentRef string     `json:"document_ref"`
	State       LeaseState `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
}

func NewLease(id, landlord string, terms Terms, documentRef string, at time.Time) (Lease, error) {
	if landlord == "" {
		return Lease{}, fmt.Errorf("%w: landlord is required", ErrMissingParty)
	}
	if err := terms.Validate(); err != nil {
		return Lease{}, err
	}
	return Lease{
		ID:          id,
		Landlord:    landlord,
		Terms:       terms,
		DocumentRef: documentRef,
		State:       StateCreated,
		CreatedAt:   at.UTC(),
	}, nil
}

// Activate assigns the tenant and moves the lease to ACTIVE. Legal only
// from CREATED.
func (l Lease) Activate(tenant string, at time.Time) (Lease, error) {
	if l.State != StateCreated {
		return Lease{}, fmt.Errorf("%w: cannot activate from %s", ErrIllegalTransition, l.State)
	}
	if tenant == "" {
		return Lease{}, fmt.Errorf("%w: tenant is required", ErrMissingParty)
	}
	if tenant == l.Landlord {
		return Lease{}, fmt.Errorf("%w: tenant must differ from landlord", ErrMissingParty)
	}
	ts := at.UTC()
	l.Tenant = tenant
	l.State = StateActive
	l.ActivatedAt = &ts
	return l, nil
}

// Terminate closes an ACTIVE lease. A CREATED lease has no tenant and
// cannot be terminated or disputed; terminal states are absorbing.
func (l Lease) Terminate(reason TerminationReason, at time.Time) (Lease, error) {
	if l.State != StateActive {
		return Lease{}, fmt.Errorf("%w: cannot terminate from %s", ErrIllegalTransition, l.State)
	}
	ts := at.UTC()
	switch reason {
	case ReasonDispute:
		l.State = StateDisputed
	case ReasonNormal:
		l.State = StateTerminated
	default:
		return Lease{}, fmt.Errorf("%w: unknown termination reason %q", ErrIllegalTransition, reason)
	}
	l.EndedAt = &ts
	return l, nil
}
