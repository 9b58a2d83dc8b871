// Package store persists the lease table, payment log and party
// credentials in Postgres. It implements the coordinator's journal on the
// write side and rebuilds the in-memory registry and ledger on boot.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/happypapa636/RentChain/pkg/domain"
)

type Store struct{ DB *pgxpool.Pool }

func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, `
CREATE TABLE IF NOT EXISTS leases (
  lease_id         text PRIMARY KEY,
  landlord         text NOT NULL,
  tenant           text,
  rent_amount      bigint NOT NULL,
  security_deposit bigint NOT NULL,
  duration_periods int NOT NULL,
  document_ref     text NOT NULL,
  state            text NOT NULL,
  created_at       timestamptz NOT NULL,
  activated_at     timestamptz,
  ended_at         timestamptz,
  seq              bigserial
);
CREATE INDEX IF NOT EXISTS leases_landlord_idx ON leases(landlord, seq);
CREATE INDEX IF NOT EXISTS leases_tenant_idx ON leases(tenant, seq);

CREATE TABLE IF NOT EXISTS lease_payments (
  payment_id   text PRIMARY KEY,
  lease_id     text NOT NULL REFERENCES leases(lease_id),
  payer        text NOT NULL,
  amount       bigint NOT NULL,
  period_index int NOT NULL,
  paid_at      timestamptz NOT NULL,
  seq          bigserial
);
CREATE INDEX IF NOT EXISTS lease_payments_lease_idx ON lease_payments(lease_id, seq);

CREATE TABLE IF NOT EXISTS party_credentials (
  token_hash text PRIMARY KEY,
  party_id   text NOT NULL,
  role       text NOT NULL,
  created_at timestamptz NOT NULL DEFAULT now(),
  revoked_at timestamptz
);
`)
	return err
}

// LeaseSaved upserts the committed snapshot. Coordinator journal port.
func (s *Store) LeaseSaved(ctx context.Context, l domain.Lease) error {
	var tenant *string
	if l.Tenant != "" {
		tenant = &l.Tenant
	}
	_, err := s.DB.Exec(ctx, `
INSERT INTO leases(lease_id,landlord,tenant,rent_amount,security_deposit,duration_periods,document_ref,state,created_at,activated_at,ended_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (lease_id) DO UPDATE SET
  tenant=EXCLUDED.tenant,
  state=EXCLUDED.state,
  activated_at=EXCLUDED.activated_at,
  ended_at=EXCLUDED.ended_at
`, l.ID, l.Landlord, tenant, l.Terms.RentAmount, l.Terms.SecurityDeposit, l.Terms.DurationPeriods,
		l.DocumentRef, string(l.State), l.CreatedAt, l.ActivatedAt, l.EndedAt)
	return err
}

// PaymentRecorded appends to the payment log. Rows are never updated.
func (s *Store) PaymentRecorded(ctx context.Context, p domain.Payment) error {
	_, err := s.DB.Exec(ctx, `
INSERT INTO lease_payments(payment_id,lease_id,payer,amount,period_index,paid_at)
VALUES($1,$2,$3,$4,$5,$6)
ON CONFLICT (payment_id) DO NOTHING
`, p.ID, p.LeaseID, p.Payer, p.Amount, p.PeriodIndex, p.At)
	return err
}

// LoadLeases returns every lease in creation order.
func (s *Store) LoadLeases(ctx context.Context) ([]domain.Lease, error) {
	rows, err := s.DB.Query(ctx, `
SELECT lease_id,landlord,tenant,rent_amount,security_deposit,duration_periods,document_ref,state,created_at,activated_at,ended_at
FROM leases ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Lease
	for rows.Next() {
		var l domain.Lease
		var tenant *string
		var state string
		if err := rows.Scan(&l.ID, &l.Landlord, &tenant, &l.Terms.RentAmount, &l.Terms.SecurityDeposit,
			&l.Terms.DurationPeriods, &l.DocumentRef, &state, &l.CreatedAt, &l.ActivatedAt, &l.EndedAt); err != nil {
			return nil, err
		}
		if tenant != nil {
			l.Tenant = *tenant
		}
		l.State = domain.LeaseState(state)
		out = append(out, l)
	}
	return out, rows.Err()
}

// LoadPayments returns every payment in record order.
func (s *Store) LoadPayments(ctx context.Context) ([]domain.Payment, error) {
	rows, err := s.DB.Query(ctx, `
SELECT payment_id,lease_id,payer,amount,period_index,paid_at
FROM lease_payments ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.LeaseID, &p.Payer, &p.Amount, &p.PeriodIndex, &p.At); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertCredential registers a bearer token hash for a party. Used by the
// dev seeding endpoint; production credentials are provisioned out of band.
func (s *Store) UpsertCredential(ctx context.Context, tokenHash, partyID, role string) error {
	_, err := s.DB.Exec(ctx, `
INSERT INTO party_credentials(token_hash,party_id,role)
VALUES($1,$2,$3)
ON CONFLICT (token_hash) DO UPDATE SET party_id=$2, role=$3, revoked_at=NULL
`, tokenHash, partyID, role)
	return err
}

func (s *Store) RevokeCredential(ctx context.Context, tokenHash string, at time.Time) error {
	_, err := s.DB.Exec(ctx, `UPDATE party_credentials SET revoked_at=$2 WHERE token_hash=$1`, tokenHash, at)
	return err
}
