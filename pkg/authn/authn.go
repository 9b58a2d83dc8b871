package authn

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUnauthorized = errors.New("unauthorized")

const (
	RoleLandlord = "LANDLORD"
	RoleTenant   = "TENANT"
)

// PartyIdentity is the authenticated caller of a mutating endpoint. The
// party id is the same opaque account identifier the lease core stores.
type PartyIdentity struct {
	PartyID string
	Role    string
}

// AuthenticateBearer resolves an Authorization header against the hashed
// token in party_credentials. Revoked credentials do not authenticate.
func AuthenticateBearer(ctx context.Context, db *pgxpool.Pool, authorization string) (*PartyIdentity, error) {
	token, ok := parseBearerToken(authorization)
	if !ok {
		return nil, ErrUnauthorized
	}
	var out PartyIdentity
	err := db.QueryRow(ctx, `
SELECT party_id, role
FROM party_credentials
WHERE token_hash=$1
  AND revoked_at IS NULL
`, HashToken(token)).Scan(&out.PartyID, &out.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return &out, nil
}

func parseBearerToken(authorization string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(authorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
