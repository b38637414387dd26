package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldaccess/ga-core/internal/app"
	"github.com/goldaccess/ga-core/internal/domain"
)

type stubSummaryService struct {
	summary app.CardSummary
	err     error
}

func (s *stubSummaryService) GetCardSummary(_ context.Context, _ string) (app.CardSummary, error) {
	if s.err != nil {
		return app.CardSummary{}, s.err
	}
	return s.summary, nil
}

func TestHandleCardSummary(t *testing.T) {
	t.Parallel()

	newRouter := func(svc *stubSummaryService) *chi.Mux {
		r := chi.NewRouter()
		r.Get("/api/ga/cards/{card_number}", HandleCardSummary(svc))
		return r
	}

	t.Run("card with an active product", func(t *testing.T) {
		expiry := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		svc := &stubSummaryService{summary: app.CardSummary{
			CardNumber:     "GA-00001",
			HardwareStatus: domain.CardStatusActive,
			ActiveProduct: &domain.Product{
				Type:           "Monthly (48 Rides)",
				RidesRemaining: 31,
				ExpiryDate:     expiry,
			},
			RecentTrips: []domain.TapRecord{
				{Location: "Belhar", Timestamp: expiry.AddDate(0, 0, -3)},
			},
		}}

		req := httptest.NewRequest(http.MethodGet, "/api/ga/cards/GA-00001", nil)
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"active_product":"Monthly (48 Rides)"`)
		assert.Contains(t, rec.Body.String(), `"rides_remaining":31`)
		assert.Contains(t, rec.Body.String(), `"Belhar"`)
	})

	t.Run("card without an active product", func(t *testing.T) {
		svc := &stubSummaryService{summary: app.CardSummary{
			CardNumber:     "GA-00002",
			HardwareStatus: domain.CardStatusBlocked,
		}}

		req := httptest.NewRequest(http.MethodGet, "/api/ga/cards/GA-00002", nil)
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"active_product":"No Active Product"`)
		assert.Contains(t, rec.Body.String(), `"rides_remaining":0`)
		assert.Contains(t, rec.Body.String(), `"product_expiry":null`)
		assert.Contains(t, rec.Body.String(), `"recent_trips":[]`)
	})

	t.Run("unknown card", func(t *testing.T) {
		svc := &stubSummaryService{err: domain.ErrCardNotFound}

		req := httptest.NewRequest(http.MethodGet, "/api/ga/cards/GA-99999", nil)
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), codeCardUnknown)
	})
}
