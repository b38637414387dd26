package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goldaccess/ga-core/internal/domain"
)

// CardRepository is the card registry: a pure status lookup over ga_cards.
type CardRepository struct {
	pool *pgxpool.Pool
}

func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

func (r *CardRepository) GetStatus(ctx context.Context, cardNumber string) (domain.CardStatus, error) {
	const query = `SELECT status FROM ga_cards WHERE card_number = $1`

	var status domain.CardStatus
	err := r.queryRow(ctx, query, cardNumber).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", domain.ErrCardNotFound
		}
		return "", fmt.Errorf("get card status: %w", err)
	}
	return status, nil
}

// GetCardStatus is GetStatus under the name the read-side services use.
func (r *CardRepository) GetCardStatus(ctx context.Context, cardNumber string) (domain.CardStatus, error) {
	return r.GetStatus(ctx, cardNumber)
}

func (r *CardRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
