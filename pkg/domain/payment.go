package domain

import (
	"fmt"
	"time"
)

// Payment is one entry in the append-only rent ledger. Records are never
// mutated or deleted; the payer and amount are authenticated facts supplied
// by the wallet collaborator.
type Payment struct {
	ID          string    `json:"payment_id"`
	LeaseID     string    `json:"lease_id"`
	Payer       string    `json:"payer"`
	Amount      int64     `json:"amount"`
	PeriodIndex int       `json:"period_index"`
	At          time.Time `json:"at"`
}

func NewPayment(id, leaseID, payer string, amount int64, periodIndex int, at time.Time) (Payment, error) {
	if amount <= 0 {
		return Payment{}, fmt.Errorf("%w: amount must be > 0", ErrInvalidAmount)
	}
	if periodIndex < 0 {
		return Payment{}, fmt.Errorf("%w: period_index must be >= 0", ErrInvalidAmount)
	}
	return Payment{
		ID:          id,
		LeaseID:     leaseID,
		Payer:       payer,
		Amount:      amount,
		PeriodIndex: periodIndex,
		At:          at.UTC(),
	}, nil
}
