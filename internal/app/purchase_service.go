package app

import (
	"context"
	"errors"

	"github.com/goldaccess/ga-core/internal/clock"
	"github.com/goldaccess/ga-core/internal/domain"
)

// PurchaseRepository persists new products. InsertProduct must surface a
// lost race for the single ACTIVE slot as domain.ErrStaleProduct and a lost
// race for the single QUEUED slot as domain.ErrQueueFull; the database's
// partial unique indexes are the authority, not the read in this service.
type PurchaseRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListCurrentStatuses(ctx context.Context, cardNumber string) ([]domain.ProductStatus, error)
	InsertProduct(ctx context.Context, product domain.Product) error
}

// PurchaseService validates buy requests and inserts products in the right
// initial state. It never mutates existing rows.
type PurchaseService struct {
	repo     PurchaseRepository
	registry CardRegistry
	clock    clock.Clock
}

func NewPurchaseService(repo PurchaseRepository, registry CardRegistry, clk clock.Clock) *PurchaseService {
	return &PurchaseService{
		repo:     repo,
		registry: registry,
		clock:    clk,
	}
}

type PurchaseInput struct {
	CardNumber string
	Kind       domain.ProductKind
}

// Purchase inserts exactly one product row. The first purchase on a card
// becomes ACTIVE, the next one QUEUED; a card holds at most one queued
// product, so anything beyond that is rejected.
func (s *PurchaseService) Purchase(ctx context.Context, in PurchaseInput) (domain.Product, error) {
	entry, err := domain.LookupKind(in.Kind)
	if err != nil {
		return domain.Product{}, err
	}

	// The ledger only needs the card to exist; a blocked card may still be
	// loaded, it just cannot ride.
	if _, err := s.registry.GetStatus(ctx, in.CardNumber); err != nil {
		return domain.Product{}, err
	}

	var result domain.Product
	attempt := func() error {
		return s.repo.WithTx(ctx, func(txCtx context.Context) error {
			statuses, err := s.repo.ListCurrentStatuses(txCtx, in.CardNumber)
			if err != nil {
				return err
			}

			status := domain.ProductStatusActive
			for _, st := range statuses {
				if st == domain.ProductStatusQueued {
					return domain.ErrQueueFull
				}
				status = domain.ProductStatusQueued
			}

			now := s.clock.Now()
			product := domain.Product{
				ID:             newID(),
				CardNumber:     in.CardNumber,
				Type:           entry.Label(),
				RidesRemaining: entry.Rides,
				Status:         status,
				PurchaseDate:   now,
				ExpiryDate:     now.AddDate(0, 0, entry.ValidDays),
			}
			if err := s.repo.InsertProduct(txCtx, product); err != nil {
				return err
			}
			result = product
			return nil
		})
	}

	err = attempt()
	if errors.Is(err, domain.ErrStaleProduct) {
		// A concurrent purchase took the ACTIVE slot between our read and
		// our insert. One re-run sees it and queues behind it instead.
		err = attempt()
	}
	if err != nil {
		return domain.Product{}, err
	}
	return result, nil
}
