package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/goldaccess/ga-core/internal/domain"
)

// SummaryRepository serves the read-only projection behind the card summary.
type SummaryRepository interface {
	GetCardStatus(ctx context.Context, cardNumber string) (domain.CardStatus, error)
	FindActive(ctx context.Context, cardNumber string) (*domain.Product, error)
	RecentTaps(ctx context.Context, cardNumber string, limit int) ([]domain.TapRecord, error)
}

// SummaryService assembles the commuter-facing card view. Reporting only;
// it takes no part in fare decisions.
type SummaryService struct {
	repo SummaryRepository
}

const recentTripLimit = 10

func NewSummaryService(repo SummaryRepository) *SummaryService {
	return &SummaryService{repo: repo}
}

type CardSummary struct {
	CardNumber     string
	HardwareStatus domain.CardStatus
	ActiveProduct  *domain.Product
	RecentTrips    []domain.TapRecord
}

func (s *SummaryService) GetCardSummary(ctx context.Context, cardNumber string) (CardSummary, error) {
	status, err := s.repo.GetCardStatus(ctx, cardNumber)
	if err != nil {
		return CardSummary{}, err
	}

	summary := CardSummary{
		CardNumber:     cardNumber,
		HardwareStatus: status,
	}

	// Product and receipt reads are independent; issue them together.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		product, err := s.repo.FindActive(gctx, cardNumber)
		if err != nil {
			return err
		}
		summary.ActiveProduct = product
		return nil
	})
	g.Go(func() error {
		trips, err := s.repo.RecentTaps(gctx, cardNumber, recentTripLimit)
		if err != nil {
			return err
		}
		summary.RecentTrips = trips
		return nil
	})
	if err := g.Wait(); err != nil {
		return CardSummary{}, err
	}
	return summary, nil
}
