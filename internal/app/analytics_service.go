package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// LocationCount is one row of the boarding-location heatmap.
type LocationCount struct {
	Location string
	Taps     int
}

// HourlyCount is one point of the hour-of-day ridership curve.
type HourlyCount struct {
	Hour int
	Taps int
}

// AnalyticsRepository reads the reporting views.
type AnalyticsRepository interface {
	TapsToday(ctx context.Context) (int, error)
	LocationHeatmap(ctx context.Context, limit int) ([]LocationCount, error)
	HourlyTrend(ctx context.Context) ([]HourlyCount, error)
}

// AnalyticsService aggregates ridership for the operations dashboard.
// Read-only over SQL views; nothing here feeds back into fare decisions.
type AnalyticsService struct {
	repo AnalyticsRepository
}

const heatmapLimit = 5

func NewAnalyticsService(repo AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

type AnalyticsReport struct {
	TodayTaps   int
	Heatmap     []LocationCount
	HourlyCurve []HourlyCount
}

func (s *AnalyticsService) Report(ctx context.Context) (AnalyticsReport, error) {
	var report AnalyticsReport

	// The three views are independent; fetch them in parallel.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.repo.TapsToday(gctx)
		if err != nil {
			return err
		}
		report.TodayTaps = total
		return nil
	})
	g.Go(func() error {
		heatmap, err := s.repo.LocationHeatmap(gctx, heatmapLimit)
		if err != nil {
			return err
		}
		report.Heatmap = heatmap
		return nil
	})
	g.Go(func() error {
		curve, err := s.repo.HourlyTrend(gctx)
		if err != nil {
			return err
		}
		report.HourlyCurve = curve
		return nil
	})
	if err := g.Wait(); err != nil {
		return AnalyticsReport{}, err
	}
	return report, nil
}
