package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	SignatureHeader = "X-Signature"
	EventIDHeader   = "X-Event-Id"
	EventTypeHeader = "X-Event-Type"

	genericHMACScheme = "generic-hmac-sha256/v1"
)

type genericHMACVerifier struct {
	provider string
}

func NewGenericHMACVerifier(provider string) Verifier {
	return &genericHMACVerifier{provider: strings.TrimSpace(provider)}
}

func (v *genericHMACVerifier) Provider() string {
	return v.provider
}

func (v *genericHMACVerifier) Verify(headers http.Header, rawBody []byte, _ time.Time, secret string) (VerificationResult, error) {
	if strings.TrimSpace(secret) == "" {
		return VerificationResult{}, fmt.Errorf("webhook verifier secret is empty")
	}

	res := VerificationResult{
		Valid:  false,
		Scheme: genericHMACScheme,
		Details: map[string]any{
			"signature_header_present": false,
			"signature_hex_decodable":  false,
			"provider":                 v.provider,
			"used_header":              SignatureHeader,
		},
		ProviderEventID: strings.TrimSpace(headers.Get(EventIDHeader)),
		EventType:       strings.TrimSpace(headers.Get(EventTypeHeader)),
	}
	if res.EventType == "" {
		res.EventType = "unknown"
	}

	sigHex := strings.TrimSpace(headers.Get(SignatureHeader))
	if sigHex == "" {
		return res, nil
	}
	res.Details["signature_header_present"] = true

	providedSig, err := hex.DecodeString(sigHex)
	if err != nil {
		return res, nil
	}
	res.Details["signature_hex_decodable"] = true

	res.Valid = hmac.Equal(Sign(secret, rawBody), providedSig)
	return res, nil
}

// Sign computes the HMAC-SHA256 signature the scheme expects in
// X-Signature (hex encoded by the sender).
func Sign(secret string, rawBody []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(rawBody)
	return mac.Sum(nil)
}

// SignHex is Sign encoded the way the header carries it.
func SignHex(secret string, rawBody []byte) string {
	return hex.EncodeToString(Sign(secret, rawBody))
}
