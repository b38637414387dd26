package app

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/goldaccess/ga-core/internal/clock"
	"github.com/goldaccess/ga-core/internal/domain"
)

// CardRegistry reports hardware validity for a card.
type CardRegistry interface {
	GetStatus(ctx context.Context, cardNumber string) (domain.CardStatus, error)
}

// ProductLedger is the lifecycle authority for products. Promote and Debit
// are the only operations anywhere that mutate a product row, and both are
// conditional: they fail instead of overwriting state written by a
// concurrent tap.
type ProductLedger interface {
	FindActive(ctx context.Context, cardNumber string) (*domain.Product, error)
	// FindOldestQueued orders by purchase date, then product id, so two
	// products bought in the same instant still promote deterministically.
	FindOldestQueued(ctx context.Context, cardNumber string) (*domain.Product, error)
	// Promote flips QUEUED to ACTIVE. Returns domain.ErrAlreadyPromoted when
	// the row is no longer QUEUED or another product holds the active slot.
	Promote(ctx context.Context, productID string) error
	// Debit decrements rides_remaining by one and flips the product to
	// EXHAUSTED when it reaches zero, provided the row is still ACTIVE and
	// rides_remaining still equals expectedRemaining. Returns
	// domain.ErrStaleProduct when the precondition fails.
	Debit(ctx context.Context, productID string, expectedRemaining int) (remaining int, status domain.ProductStatus, err error)
}

// TapLedger appends ride receipts.
type TapLedger interface {
	Append(ctx context.Context, rec domain.TapRecord) error
}

// FareService decides whether a tap grants a ride. It holds no locks: every
// write is conditional on the state the request last read, and a lost race
// is resolved by re-reading, bounded by maxTapAttempts.
type FareService struct {
	registry CardRegistry
	products ProductLedger
	taps     TapLedger
	clock    clock.Clock
	log      *logrus.Logger
}

// maxTapAttempts bounds the re-read loop when debits keep losing races.
// Exceeding it denies the tap with Contention rather than blocking.
const maxTapAttempts = 3

func NewFareService(registry CardRegistry, products ProductLedger, taps TapLedger, clk clock.Clock, log *logrus.Logger) *FareService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FareService{
		registry: registry,
		products: products,
		taps:     taps,
		clock:    clk,
		log:      log,
	}
}

type TapInput struct {
	CardNumber string
	Location   string
}

type TapResult struct {
	RidesRemaining int
	ProductStatus  domain.ProductStatus
	Receipt        domain.TapRecord
}

// Tap authorizes a single ride.
func (s *FareService) Tap(ctx context.Context, in TapInput) (TapResult, error) {
	if in.Location == "" {
		return TapResult{}, domain.ErrLocationRequired
	}

	status, err := s.registry.GetStatus(ctx, in.CardNumber)
	if err != nil {
		return TapResult{}, err
	}
	if status == domain.CardStatusBlocked {
		return TapResult{}, domain.ErrCardBlocked
	}

	for attempt := 1; attempt <= maxTapAttempts; attempt++ {
		product, err := s.resolveProduct(ctx, in.CardNumber)
		if err != nil {
			return TapResult{}, err
		}

		remaining, productStatus, err := s.products.Debit(ctx, product.ID, product.RidesRemaining)
		if errors.Is(err, domain.ErrStaleProduct) {
			// A concurrent tap debited (or exhausted) this product between
			// our read and our write. Re-resolve and try again.
			s.log.WithFields(logrus.Fields{
				"card":    in.CardNumber,
				"product": product.ID,
				"attempt": attempt,
			}).Debug("stale debit, retrying")
			continue
		}
		if err != nil {
			return TapResult{}, err
		}

		receipt := domain.TapRecord{
			ID:         newID(),
			CardNumber: in.CardNumber,
			Location:   in.Location,
			Timestamp:  s.clock.Now(),
		}
		if err := s.taps.Append(ctx, receipt); err != nil {
			return TapResult{}, err
		}

		return TapResult{
			RidesRemaining: remaining,
			ProductStatus:  productStatus,
			Receipt:        receipt,
		}, nil
	}

	s.log.WithField("card", in.CardNumber).Warn("tap denied after retry budget")
	return TapResult{}, domain.ErrContention
}

// resolveProduct returns the product the tap should debit: the active one,
// or the oldest queued one promoted into the active slot.
func (s *FareService) resolveProduct(ctx context.Context, cardNumber string) (*domain.Product, error) {
	active, err := s.products.FindActive(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return active, nil
	}

	queued, err := s.products.FindOldestQueued(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	if queued == nil {
		return nil, domain.ErrNoRidesAvailable
	}

	err = s.products.Promote(ctx, queued.ID)
	if errors.Is(err, domain.ErrAlreadyPromoted) {
		// Another tap won the promotion. The active slot is filled now
		// (by this product or a different one), so read it back.
		active, err := s.products.FindActive(ctx, cardNumber)
		if err != nil {
			return nil, err
		}
		if active == nil {
			// The winner already exhausted it. Treat as no rides; the next
			// attempt of the retry loop does not reach here because the
			// queued slot is empty too by then.
			return nil, domain.ErrNoRidesAvailable
		}
		return active, nil
	}
	if err != nil {
		return nil, err
	}

	promoted := *queued
	promoted.Status = domain.ProductStatusActive
	return &promoted, nil
}
