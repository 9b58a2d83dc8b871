// Package explain talks to the contract-explanation collaborator: an
// opaque text-generation service that turns a lease document into a plain
// language summary. The core never depends on its output being correct, or
// even deterministic.
package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type Risk struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type Analysis struct {
	Summary         string   `json:"summary"`
	KeyTerms        []string `json:"key_terms"`
	Risks           []Risk   `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

type Explainer interface {
	Explain(ctx context.Context, documentRef string) (*Analysis, error)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{}}
}

func (c *Client) Explain(ctx context.Context, documentRef string) (*Analysis, error) {
	body, _ := json.Marshal(map[string]any{"document_ref": documentRef})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/explain", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("explainer returned %d", resp.StatusCode)
	}
	var out struct {
		Analysis Analysis `json:"analysis"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out.Analysis, nil
}

// Static is the fallback when no explainer service is configured. It
// returns the canned analysis the demo UI shipped.
type Static struct{}

func (Static) Explain(_ context.Context, _ string) (*Analysis, error) {
	return &Analysis{
		Summary: "This is a standard 12-month rental agreement between the landlord and tenant. " +
			"The contract includes provisions for monthly rent payments, security deposit handling, " +
			"and standard termination clauses. The smart contract automatically handles payment " +
			"tracking and deposit returns.",
		KeyTerms: []string{
			"Monthly rent due on the 1st of each month",
			"Security deposit refundable upon lease termination",
			"Lease duration: 12 months with automatic renewal option",
			"Termination: 30-day notice required from either party",
		},
		Risks: []Risk{
			{Level: "low", Text: "Standard market-rate terms with no unusual clauses"},
			{Level: "medium", Text: "Cryptocurrency volatility may affect real value of payments"},
			{Level: "low", Text: "Smart contract is verified and follows OpenZeppelin standards"},
		},
		Recommendations: []string{
			"Consider setting up automatic payments to avoid late fees",
			"Keep records of all transactions for tax purposes",
			"Review the contract terms before the renewal date",
		},
	}, nil
}
