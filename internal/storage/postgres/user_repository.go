package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goldaccess/ga-core/internal/domain"
)

// UserRepository looks up portal accounts for login and support search.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, full_name, email, password_hash, linked_ga_card`

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.PortalUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM portal_users WHERE email = $1`, userColumns)
	return r.findOne(ctx, query, email)
}

func (r *UserRepository) FindUserByCard(ctx context.Context, cardNumber string) (*domain.PortalUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM portal_users WHERE linked_ga_card = $1`, userColumns)
	return r.findOne(ctx, query, cardNumber)
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (*domain.PortalUser, error) {
	var u domain.PortalUser
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.LinkedCard)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find portal user: %w", err)
	}
	return &u, nil
}
