// Package leasesdk is the typed HTTP client for the RentChain lease
// service, used by rentctl and by external integrators.
package leasesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/happypapa636/RentChain/pkg/domain"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Bearer     string
}

func New(baseURL, bearer string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		Bearer:     bearer,
	}
}

type CreateLeaseRequest struct {
	Landlord    string       `json:"landlord"`
	Terms       domain.Terms `json:"terms"`
	DocumentRef string       `json:"document_ref"`
}

type LeaseResponse struct {
	RequestID string       `json:"request_id"`
	Lease     domain.Lease `json:"lease"`
}

type LeaseListResponse struct {
	RequestID string         `json:"request_id"`
	Leases    []domain.Lease `json:"leases"`
}

type ActivateRequest struct {
	Tenant       string `json:"tenant"`
	FirstPayment int64  `json:"first_payment"`
}

type ActivateResponse struct {
	RequestID    string          `json:"request_id"`
	Lease        domain.Lease    `json:"lease"`
	Payment      *domain.Payment `json:"payment,omitempty"`
	PaymentError string          `json:"payment_error,omitempty"`
}

type PayRentRequest struct {
	Payer  string `json:"payer"`
	Amount int64  `json:"amount"`
}

type PaymentResponse struct {
	RequestID string         `json:"request_id"`
	Payment   domain.Payment `json:"payment"`
}

type PaymentListResponse struct {
	RequestID string           `json:"request_id"`
	Payments  []domain.Payment `json:"payments"`
}

type TerminateRequest struct {
	Reason domain.TerminationReason `json:"reason"`
}

type StatusResponse struct {
	RequestID     string `json:"request_id"`
	TotalPaid     int64  `json:"total_paid"`
	NextDuePeriod int    `json:"next_due_period"`
	Delinquent    bool   `json:"delinquent"`
}

type ExplainResponse struct {
	RequestID       string   `json:"request_id"`
	Summary         string   `json:"summary"`
	KeyTerms        []string `json:"key_terms"`
	Risks           []Risk   `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

type Risk struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

func (c *Client) CreateLease(ctx context.Context, in CreateLeaseRequest) (*LeaseResponse, error) {
	return postJSON[LeaseResponse](c, ctx, "/leases", in)
}

func (c *Client) Lease(ctx context.Context, id string) (*LeaseResponse, error) {
	return getJSON[LeaseResponse](c, ctx, "/leases/"+url.PathEscape(id))
}

func (c *Client) LeasesByLandlord(ctx context.Context, landlord string) (*LeaseListResponse, error) {
	return getJSON[LeaseListResponse](c, ctx, "/landlords/"+url.PathEscape(landlord)+"/leases")
}

func (c *Client) LeasesByTenant(ctx context.Context, tenant string) (*LeaseListResponse, error) {
	return getJSON[LeaseListResponse](c, ctx, "/tenants/"+url.PathEscape(tenant)+"/leases")
}

func (c *Client) Activate(ctx context.Context, id string, in ActivateRequest) (*ActivateResponse, error) {
	return postJSON[ActivateResponse](c, ctx, "/leases/"+url.PathEscape(id)+":activate", in)
}

func (c *Client) PayRent(ctx context.Context, id string, in PayRentRequest) (*PaymentResponse, error) {
	return postJSON[PaymentResponse](c, ctx, "/leases/"+url.PathEscape(id)+":payRent", in)
}

func (c *Client) Terminate(ctx context.Context, id string, in TerminateRequest) (*LeaseResponse, error) {
	return postJSON[LeaseResponse](c, ctx, "/leases/"+url.PathEscape(id)+":terminate", in)
}

func (c *Client) Payments(ctx context.Context, id string) (*PaymentListResponse, error) {
	return getJSON[PaymentListResponse](c, ctx, "/leases/"+url.PathEscape(id)+"/payments")
}

func (c *Client) Status(ctx context.Context, id string) (*StatusResponse, error) {
	return getJSON[StatusResponse](c, ctx, "/leases/"+url.PathEscape(id)+"/status")
}

func (c *Client) Explain(ctx context.Context, id string) (*ExplainResponse, error) {
	return postJSON[ExplainResponse](c, ctx, "/leases/"+url.PathEscape(id)+":explain", struct{}{})
}

func getJSON[T any](c *Client, ctx context.Context, path string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return doJSON[T](c, req)
}

func postJSON[T any](c *Client, ctx context.Context, path string, in any) (*T, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return doJSON[T](c, req)
}

func doJSON[T any](c *Client, req *http.Request) (*T, error) {
	if c.Bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.Bearer)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return nil, fmt.Errorf("http %d: %v", resp.StatusCode, errBody)
	}
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
