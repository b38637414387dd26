package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goldaccess/ga-core/internal/app"
)

// AnalyticsRepository reads the reporting views created by the migrations.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

func (r *AnalyticsRepository) TapsToday(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT total_taps FROM view_taps_today`).Scan(&total); err != nil {
		return 0, fmt.Errorf("taps today: %w", err)
	}
	return total, nil
}

func (r *AnalyticsRepository) LocationHeatmap(ctx context.Context, limit int) ([]app.LocationCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT location, total_taps FROM view_location_heatmap LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("location heatmap: %w", err)
	}
	defer rows.Close()

	var counts []app.LocationCount
	for rows.Next() {
		var c app.LocationCount
		if err := rows.Scan(&c.Location, &c.Taps); err != nil {
			return nil, fmt.Errorf("scan heatmap row: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *AnalyticsRepository) HourlyTrend(ctx context.Context) ([]app.HourlyCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT hour_of_day, total_taps FROM view_hourly_trend ORDER BY hour_of_day`)
	if err != nil {
		return nil, fmt.Errorf("hourly trend: %w", err)
	}
	defer rows.Close()

	var counts []app.HourlyCount
	for rows.Next() {
		var c app.HourlyCount
		if err := rows.Scan(&c.Hour, &c.Taps); err != nil {
			return nil, fmt.Errorf("scan hourly row: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
