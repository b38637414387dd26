package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/goldaccess/ga-core/internal/app"
)

// TapAuthorizer is the minimal interface needed to authorize a ride.
type TapAuthorizer interface {
	Tap(ctx context.Context, in app.TapInput) (app.TapResult, error)
}

// HandleTap returns the handler for POST /api/ga/cards/{card_number}/tap.
func HandleTap(svc TapAuthorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tapRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.Tap(r.Context(), app.TapInput{
			CardNumber: chi.URLParam(r, "card_number"),
			Location:   req.Location,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, tapResponse{
			Message:        "Tap successful. Enjoy your ride.",
			Granted:        true,
			RidesRemaining: res.RidesRemaining,
			ProductStatus:  string(res.ProductStatus),
			Receipt: tapReceipt{
				ID:         res.Receipt.ID,
				CardNumber: res.Receipt.CardNumber,
				Location:   res.Receipt.Location,
				Timestamp:  res.Receipt.Timestamp,
			},
		})
	}
}

type tapRequest struct {
	Location string `json:"location"`
}

type tapReceipt struct {
	ID         string    `json:"id"`
	CardNumber string    `json:"card_number"`
	Location   string    `json:"location"`
	Timestamp  time.Time `json:"timestamp"`
}

type tapResponse struct {
	Message        string     `json:"message"`
	Granted        bool       `json:"granted"`
	RidesRemaining int        `json:"rides_remaining"`
	ProductStatus  string     `json:"product_status"`
	Receipt        tapReceipt `json:"receipt"`
}
