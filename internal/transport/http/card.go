package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/goldaccess/ga-core/internal/app"
)

// CardSummarizer is the minimal interface needed for the card summary view.
type CardSummarizer interface {
	GetCardSummary(ctx context.Context, cardNumber string) (app.CardSummary, error)
}

// HandleCardSummary returns the handler for GET /api/ga/cards/{card_number}.
func HandleCardSummary(svc CardSummarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.GetCardSummary(r.Context(), chi.URLParam(r, "card_number"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := cardSummaryResponse{
			CardNumber:     summary.CardNumber,
			HardwareStatus: string(summary.HardwareStatus),
			ActiveProduct:  "No Active Product",
			RecentTrips:    make([]tripPayload, 0, len(summary.RecentTrips)),
		}
		if p := summary.ActiveProduct; p != nil {
			resp.ActiveProduct = p.Type
			resp.RidesRemaining = p.RidesRemaining
			resp.ProductExpiry = &p.ExpiryDate
		}
		for _, trip := range summary.RecentTrips {
			resp.RecentTrips = append(resp.RecentTrips, tripPayload{
				Location:  trip.Location,
				Timestamp: trip.Timestamp,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type tripPayload struct {
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`
}

type cardSummaryResponse struct {
	CardNumber     string        `json:"card_number"`
	HardwareStatus string        `json:"hardware_status"`
	ActiveProduct  string        `json:"active_product"`
	RidesRemaining int           `json:"rides_remaining"`
	ProductExpiry  *time.Time    `json:"product_expiry"`
	RecentTrips    []tripPayload `json:"recent_trips"`
}
