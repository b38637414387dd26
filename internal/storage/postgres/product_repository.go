package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goldaccess/ga-core/internal/domain"
)

// Partial-unique-index constraint names from 0001_init.sql. They are the
// database-level enforcement of the one-ACTIVE / one-QUEUED slot rules.
const (
	constraintOneActive = "ux_ga_card_products_one_active"
	constraintOneQueued = "ux_ga_card_products_one_queued"
)

const productColumns = `product_id, card_number, product_type, rides_remaining, status, purchase_date, expiry_date`

// ProductRepository owns ga_card_products. Promote and Debit are the only
// statements in the schema that update a product row, and both are
// conditional so a lost race affects zero rows instead of clobbering state.
type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ProductRepository) FindActive(ctx context.Context, cardNumber string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM ga_card_products WHERE card_number = $1 AND status = 'ACTIVE'`, productColumns)
	return r.findOne(ctx, query, cardNumber)
}

func (r *ProductRepository) FindOldestQueued(ctx context.Context, cardNumber string) (*domain.Product, error) {
	// product_id breaks purchase-date ties so promotion stays deterministic.
	query := fmt.Sprintf(`
SELECT %s FROM ga_card_products
WHERE card_number = $1 AND status = 'QUEUED'
ORDER BY purchase_date ASC, product_id ASC
LIMIT 1`, productColumns)
	return r.findOne(ctx, query, cardNumber)
}

// Promote flips a QUEUED product to ACTIVE. Zero rows affected means a
// concurrent tap promoted it first; a one-ACTIVE index violation means the
// active slot filled first. Both are a lost race, not a failure.
func (r *ProductRepository) Promote(ctx context.Context, productID string) error {
	const stmt = `UPDATE ga_card_products SET status = 'ACTIVE' WHERE product_id = $1 AND status = 'QUEUED'`

	tag, err := r.exec(ctx, stmt, productID)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == constraintOneActive {
			return domain.ErrAlreadyPromoted
		}
		return fmt.Errorf("promote product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyPromoted
	}
	return nil
}

// Debit spends one ride, guarded by the rides_remaining value the caller
// read (the optimistic token). The same statement flips the product to
// EXHAUSTED when the last ride goes, so no tap can ever observe a partial
// deduction.
func (r *ProductRepository) Debit(ctx context.Context, productID string, expectedRemaining int) (int, domain.ProductStatus, error) {
	const stmt = `
UPDATE ga_card_products
SET rides_remaining = rides_remaining - 1,
    status = CASE WHEN rides_remaining = 1 THEN 'EXHAUSTED' ELSE status END
WHERE product_id = $1 AND status = 'ACTIVE' AND rides_remaining = $2 AND rides_remaining > 0
RETURNING rides_remaining, status`

	var remaining int
	var status domain.ProductStatus
	err := r.queryRow(ctx, stmt, productID, expectedRemaining).Scan(&remaining, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, "", domain.ErrStaleProduct
		}
		return 0, "", fmt.Errorf("debit product: %w", err)
	}
	return remaining, status, nil
}

func (r *ProductRepository) ListCurrentStatuses(ctx context.Context, cardNumber string) ([]domain.ProductStatus, error) {
	const query = `SELECT status FROM ga_card_products WHERE card_number = $1 AND status IN ('ACTIVE', 'QUEUED')`

	rows, err := r.query(ctx, query, cardNumber)
	if err != nil {
		return nil, fmt.Errorf("list current statuses: %w", err)
	}
	defer rows.Close()

	var statuses []domain.ProductStatus
	for rows.Next() {
		var st domain.ProductStatus
		if err := rows.Scan(&st); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

func (r *ProductRepository) InsertProduct(ctx context.Context, p domain.Product) error {
	const stmt = `
INSERT INTO ga_card_products (product_id, card_number, product_type, rides_remaining, status, purchase_date, expiry_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		p.ID,
		p.CardNumber,
		p.Type,
		p.RidesRemaining,
		p.Status,
		p.PurchaseDate,
		p.ExpiryDate,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case constraintOneActive:
				return domain.ErrStaleProduct
			case constraintOneQueued:
				return domain.ErrQueueFull
			}
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// ProductHistory lists every product ever bought for the card, newest first.
func (r *ProductRepository) ProductHistory(ctx context.Context, cardNumber string) ([]domain.Product, error) {
	query := fmt.Sprintf(`
SELECT %s FROM ga_card_products
WHERE card_number = $1
ORDER BY purchase_date DESC, product_id DESC`, productColumns)

	rows, err := r.query(ctx, query, cardNumber)
	if err != nil {
		return nil, fmt.Errorf("product history: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	p, err := scanProduct(r.queryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.CardNumber, &p.Type, &p.RidesRemaining, &p.Status, &p.PurchaseDate, &p.ExpiryDate)
	return p, err
}

func (r *ProductRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ProductRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *ProductRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
