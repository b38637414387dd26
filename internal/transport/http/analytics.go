package http

import (
	"context"
	"net/http"

	"github.com/goldaccess/ga-core/internal/app"
)

// AnalyticsReporter is the minimal interface needed for the dashboard feed.
type AnalyticsReporter interface {
	Report(ctx context.Context) (app.AnalyticsReport, error)
}

// HandleAnalytics returns the handler for GET /api/analytics.
func HandleAnalytics(svc AnalyticsReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Report(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := analyticsResponse{
			TodayTaps:   report.TodayTaps,
			Heatmap:     make([]heatmapPayload, 0, len(report.Heatmap)),
			HourlyCurve: make([]hourlyPayload, 0, len(report.HourlyCurve)),
		}
		for _, row := range report.Heatmap {
			resp.Heatmap = append(resp.Heatmap, heatmapPayload{
				Location: row.Location,
				Taps:     row.Taps,
			})
		}
		for _, row := range report.HourlyCurve {
			resp.HourlyCurve = append(resp.HourlyCurve, hourlyPayload{
				Hour: row.Hour,
				Taps: row.Taps,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type heatmapPayload struct {
	Location string `json:"location"`
	Taps     int    `json:"total_taps"`
}

type hourlyPayload struct {
	Hour int `json:"hour_of_day"`
	Taps int `json:"total_taps"`
}

type analyticsResponse struct {
	TodayTaps   int              `json:"today_taps"`
	Heatmap     []heatmapPayload `json:"heatmap"`
	HourlyCurve []hourlyPayload  `json:"hourly_curve"`
}
