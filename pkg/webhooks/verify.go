// Package webhooks implements the HMAC scheme used on both edges of the
// system: verifying payment confirmations delivered by the wallet
// collaborator, and signing the events RentChain pushes to its own
// subscribers.
package webhooks

import (
	"net/http"
	"time"
)

type VerificationResult struct {
	Valid           bool           `json:"valid"`
	Scheme          string         `json:"scheme"`
	Details         map[string]any `json:"details"`
	ProviderEventID string         `json:"provider_event_id,omitempty"`
	EventType       string         `json:"event_type,omitempty"`
}

type Verifier interface {
	Provider() string
	Verify(headers http.Header, rawBody []byte, receivedAt time.Time, secret string) (VerificationResult, error)
}
