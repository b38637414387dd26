package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/goldaccess/ga-core/internal/app"
)

// SupportSearcher is the minimal interface needed for the support desk view.
type SupportSearcher interface {
	Search(ctx context.Context, query string) (app.SupportView, error)
}

// HandleSupportSearch returns the handler for POST /api/support/search.
func HandleSupportSearch(svc SupportSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req supportSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		view, err := svc.Search(r.Context(), req.Query)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := supportSearchResponse{
			Customer: customerPayload{FullName: "Unregistered Card", Email: "N/A"},
			Hardware: hardwarePayload{
				CardNumber: view.CardNumber,
				Status:     string(view.Status),
			},
			Products: make([]productPayload, 0, len(view.Products)),
			Ledger:   make([]ledgerPayload, 0, len(view.Ledger)),
		}
		if view.Customer != nil {
			resp.Customer = customerPayload{
				FullName: view.Customer.FullName,
				Email:    view.Customer.Email,
			}
		}
		for _, p := range view.Products {
			resp.Products = append(resp.Products, newProductPayload(p))
		}
		for _, rec := range view.Ledger {
			resp.Ledger = append(resp.Ledger, ledgerPayload{
				ID:         rec.ID,
				CardNumber: rec.CardNumber,
				Location:   rec.Location,
				Timestamp:  rec.Timestamp,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type supportSearchRequest struct {
	Query string `json:"query"`
}

type customerPayload struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type hardwarePayload struct {
	CardNumber string `json:"card_number"`
	Status     string `json:"status"`
}

type ledgerPayload struct {
	ID         string    `json:"id"`
	CardNumber string    `json:"card_number"`
	Location   string    `json:"location"`
	Timestamp  time.Time `json:"timestamp"`
}

type supportSearchResponse struct {
	Customer customerPayload  `json:"customer"`
	Hardware hardwarePayload  `json:"hardware"`
	Products []productPayload `json:"products"`
	Ledger   []ledgerPayload  `json:"ledger"`
}
