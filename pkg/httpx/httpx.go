package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/happypapa636/RentChain/pkg/domain"
)

func NewRequestID() string { return "req_" + uuid.NewString() }

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ReadJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	resp := map[string]any{
		"request_id": NewRequestID(),
		"error": map[string]any{
			"code": code, "message": message, "details": details,
		},
	}
	WriteJSON(w, status, resp)
}

// WriteDomainError maps the lease core's error taxonomy onto HTTP statuses
// and UPPER_SNAKE codes.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTerms):
		WriteError(w, 400, "INVALID_TERMS", err.Error(), nil)
	case errors.Is(err, domain.ErrMissingParty):
		WriteError(w, 400, "MISSING_PARTY", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidAmount):
		WriteError(w, 400, "INVALID_AMOUNT", err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, 404, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, domain.ErrIllegalTransition):
		WriteError(w, 409, "ILLEGAL_TRANSITION", err.Error(), nil)
	case errors.Is(err, domain.ErrLeaseNotActive):
		WriteError(w, 409, "LEASE_NOT_ACTIVE", err.Error(), nil)
	default:
		WriteError(w, 500, "INTERNAL", err.Error(), nil)
	}
}
