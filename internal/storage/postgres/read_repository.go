package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// ReadRepository aggregates the lookups behind the summary and support
// projections. It adds no queries of its own.
type ReadRepository struct {
	*CardRepository
	*ProductRepository
	*TapRepository
	*UserRepository
}

func NewReadRepository(pool *pgxpool.Pool) *ReadRepository {
	return &ReadRepository{
		CardRepository:    NewCardRepository(pool),
		ProductRepository: NewProductRepository(pool),
		TapRepository:     NewTapRepository(pool),
		UserRepository:    NewUserRepository(pool),
	}
}
