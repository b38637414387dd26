package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/goldaccess/ga-core/internal/app"
)

// Authenticator is the minimal interface needed for portal login.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (app.LoginResult, error)
}

// HandleLogin returns the handler for POST /api/portal/auth/login.
func HandleLogin(svc Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, loginResponse{
			Message:      "Authentication successful",
			FullName:     res.FullName,
			LinkedGACard: res.LinkedCard,
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message      string `json:"message"`
	FullName     string `json:"full_name"`
	LinkedGACard string `json:"linked_ga_card"`
}
