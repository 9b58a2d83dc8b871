// Package wallethook ingests payment confirmations from the wallet and
// broadcast collaborator. The collaborator signs each delivery with the
// shared HMAC scheme; only verified facts reach the lease core.
package wallethook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/happypapa636/RentChain/pkg/domain"
	"github.com/happypapa636/RentChain/pkg/httpx"
	"github.com/happypapa636/RentChain/pkg/webhooks"
	"github.com/happypapa636/RentChain/services/lease/internal/config"
)

const maxBodyBytes = 1 << 20 // 1MB

// Payments is the slice of the coordinator the handler drives.
type Payments interface {
	PayRent(ctx context.Context, id, payer string, amount int64) (domain.Payment, error)
}

type IngressHandler struct {
	endpoints config.Webhooks
	payments  Payments
	verifier  webhooks.Verifier
	log       *slog.Logger
}

func NewIngressHandler(endpoints config.Webhooks, payments Payments, log *slog.Logger) *IngressHandler {
	if log == nil {
		log = slog.Default()
	}
	return &IngressHandler{
		endpoints: endpoints,
		payments:  payments,
		verifier:  webhooks.NewGenericHMACVerifier("wallet"),
		log:       log,
	}
}

type confirmation struct {
	LeaseID string `json:"lease_id"`
	Payer   string `json:"payer"`
	Amount  int64  `json:"amount"`
	TxHash  string `json:"tx_hash"`
}

func (h *IngressHandler) HandleIngress(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "endpoint_token")
	secret, ok := h.endpoints.WalletSecret(token)
	if !ok {
		httpx.WriteError(w, 404, "NOT_FOUND", "webhook endpoint not found", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.WriteError(w, 413, "PAYLOAD_TOO_LARGE", "payload exceeds 1MB limit", nil)
			return
		}
		httpx.WriteError(w, 400, "BAD_BODY", err.Error(), nil)
		return
	}

	result, err := h.verifier.Verify(r.Header, rawBody, time.Now().UTC(), secret)
	if err != nil {
		httpx.WriteError(w, 500, "VERIFIER_ERROR", err.Error(), nil)
		return
	}
	if !result.Valid {
		httpx.WriteError(w, 403, "BAD_SIGNATURE", "webhook signature verification failed", nil)
		return
	}

	var conf confirmation
	if err := json.Unmarshal(rawBody, &conf); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}

	p, err := h.payments.PayRent(r.Context(), conf.LeaseID, conf.Payer, conf.Amount)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	h.log.Info("wallet payment recorded",
		"lease_id", conf.LeaseID, "payment_id", p.ID, "tx_hash", conf.TxHash, "event_id", result.ProviderEventID)
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id": httpx.NewRequestID(),
		"payment":    p,
	})
}
