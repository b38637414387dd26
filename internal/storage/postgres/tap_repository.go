package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goldaccess/ga-core/internal/domain"
)

// TapRepository owns ga_tap_ledger: append for the fare engine, range reads
// for reporting, and the extract/purge pair for the archiver. There is no
// update statement for this table anywhere.
type TapRepository struct {
	pool *pgxpool.Pool
}

func NewTapRepository(pool *pgxpool.Pool) *TapRepository {
	return &TapRepository{pool: pool}
}

func (r *TapRepository) Append(ctx context.Context, rec domain.TapRecord) error {
	const stmt = `INSERT INTO ga_tap_ledger (id, card_number, location, timestamp) VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, stmt, rec.ID, rec.CardNumber, rec.Location, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("append tap record: %w", err)
	}
	return nil
}

func (r *TapRepository) RecentTaps(ctx context.Context, cardNumber string, limit int) ([]domain.TapRecord, error) {
	const query = `
SELECT id, card_number, location, timestamp
FROM ga_tap_ledger
WHERE card_number = $1
ORDER BY timestamp DESC
LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cardNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("recent taps: %w", err)
	}
	return collectTaps(rows)
}

func (r *TapRepository) TapsBefore(ctx context.Context, cutoff time.Time) ([]domain.TapRecord, error) {
	const query = `
SELECT id, card_number, location, timestamp
FROM ga_tap_ledger
WHERE timestamp < $1
ORDER BY timestamp ASC`

	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("taps before cutoff: %w", err)
	}
	return collectTaps(rows)
}

func (r *TapRepository) DeleteTapsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const stmt = `DELETE FROM ga_tap_ledger WHERE timestamp < $1`

	tag, err := r.pool.Exec(ctx, stmt, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete taps before cutoff: %w", err)
	}
	return tag.RowsAffected(), nil
}

func collectTaps(rows pgx.Rows) ([]domain.TapRecord, error) {
	defer rows.Close()

	var records []domain.TapRecord
	for rows.Next() {
		var rec domain.TapRecord
		if err := rows.Scan(&rec.ID, &rec.CardNumber, &rec.Location, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan tap record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
