package wallethook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/happypapa636/RentChain/pkg/domain"
	"github.com/happypapa636/RentChain/pkg/webhooks"
	"github.com/happypapa636/RentChain/services/lease/internal/config"
)

type fakePayments struct {
	calls []string
	err   error
}

func (f *fakePayments) PayRent(_ context.Context, id, payer string, amount int64) (domain.Payment, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s/%s/%d", id, payer, amount))
	if f.err != nil {
		return domain.Payment{}, f.err
	}
	return domain.Payment{ID: "pay_1", LeaseID: id, Payer: payer, Amount: amount}, nil
}

func newRouter(h *IngressHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/webhooks/wallet/{endpoint_token}", h.HandleIngress)
	return r
}

func endpoints() config.Webhooks {
	return config.Webhooks{WalletEndpoints: []config.WalletEndpoint{{Token: "whk_dev", Secret: "topsecret"}}}
}

func post(t *testing.T, router http.Handler, token string, body []byte, sign bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/wallet/"+token, bytes.NewReader(body))
	if sign {
		req.Header.Set(webhooks.SignatureHeader, webhooks.SignHex("topsecret", body))
		req.Header.Set(webhooks.EventIDHeader, "evt_wallet_1")
		req.Header.Set(webhooks.EventTypeHeader, "lease.payment_confirmed")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIngressRecordsVerifiedPayment(t *testing.T) {
	payments := &fakePayments{}
	router := newRouter(NewIngressHandler(endpoints(), payments, nil))

	body, _ := json.Marshal(map[string]any{"lease_id": "lse_1", "payer": "acct_tom", "amount": 500, "tx_hash": "0xabc"})
	rec := post(t, router, "whk_dev", body, true)
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(payments.calls) != 1 || payments.calls[0] != "lse_1/acct_tom/500" {
		t.Fatalf("unexpected calls: %+v", payments.calls)
	}
}

func TestIngressRejectsBadSignature(t *testing.T) {
	payments := &fakePayments{}
	router := newRouter(NewIngressHandler(endpoints(), payments, nil))

	body, _ := json.Marshal(map[string]any{"lease_id": "lse_1", "payer": "acct_tom", "amount": 500})
	rec := post(t, router, "whk_dev", body, false)
	if rec.Code != 403 {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if len(payments.calls) != 0 {
		t.Fatalf("expected no payment recorded, got %+v", payments.calls)
	}
}

func TestIngressUnknownEndpoint(t *testing.T) {
	router := newRouter(NewIngressHandler(endpoints(), &fakePayments{}, nil))
	body := []byte(`{}`)
	rec := post(t, router, "whk_other", body, true)
	if rec.Code != 404 {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestIngressMapsDomainErrors(t *testing.T) {
	payments := &fakePayments{err: domain.ErrLeaseNotActive}
	router := newRouter(NewIngressHandler(endpoints(), payments, nil))
	body, _ := json.Marshal(map[string]any{"lease_id": "lse_1", "payer": "acct_tom", "amount": 500})
	rec := post(t, router, "whk_dev", body, true)
	if rec.Code != 409 {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}
