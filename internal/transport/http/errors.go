package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goldaccess/ga-core/internal/domain"
)

const (
	codeCardUnknown         = "card_unknown"
	codeCardBlocked         = "card_blocked"
	codeNoRidesAvailable    = "no_rides_available"
	codeContention          = "contention"
	codeLocationRequired    = "location_required"
	codeInvalidProduct      = "invalid_product"
	codeQueueFull           = "queue_full"
	codeSearchQueryRequired = "search_query_required"
	codeCommuterNotFound    = "commuter_not_found"
	codeCredentialsRequired = "credentials_required"
	codeBadCredentials      = "bad_credentials"
	codeInvalidRequestBody  = "invalid_request_body"
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the shared sentinel errors every handler can hit.
// Handler-specific mappings happen before calling this.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCardNotFound):
		writeError(w, http.StatusNotFound, codeCardUnknown, err.Error())
	case errors.Is(err, domain.ErrCardBlocked):
		writeError(w, http.StatusForbidden, codeCardBlocked, err.Error())
	case errors.Is(err, domain.ErrNoRidesAvailable):
		writeError(w, http.StatusPaymentRequired, codeNoRidesAvailable, err.Error())
	case errors.Is(err, domain.ErrContention):
		writeError(w, http.StatusServiceUnavailable, codeContention, err.Error())
	case errors.Is(err, domain.ErrLocationRequired):
		writeError(w, http.StatusBadRequest, codeLocationRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidProduct):
		writeError(w, http.StatusBadRequest, codeInvalidProduct, err.Error())
	case errors.Is(err, domain.ErrQueueFull):
		writeError(w, http.StatusBadRequest, codeQueueFull, err.Error())
	case errors.Is(err, domain.ErrSearchQueryRequired):
		writeError(w, http.StatusBadRequest, codeSearchQueryRequired, err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, codeCommuterNotFound, err.Error())
	case errors.Is(err, domain.ErrCredentialsRequired):
		writeError(w, http.StatusBadRequest, codeCredentialsRequired, err.Error())
	case errors.Is(err, domain.ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, codeBadCredentials, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
