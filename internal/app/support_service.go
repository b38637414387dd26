package app

import (
	"context"
	"errors"
	"strings"

	"github.com/goldaccess/ga-core/internal/domain"
)

// SupportRepository serves the support desk's 360-degree card view.
type SupportRepository interface {
	GetCardStatus(ctx context.Context, cardNumber string) (domain.CardStatus, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.PortalUser, error)
	FindUserByCard(ctx context.Context, cardNumber string) (*domain.PortalUser, error)
	ProductHistory(ctx context.Context, cardNumber string) ([]domain.Product, error)
	RecentTaps(ctx context.Context, cardNumber string, limit int) ([]domain.TapRecord, error)
}

// SupportService resolves a free-form support query (email or card number)
// into the full history of the card: who holds it, its hardware status,
// every product ever purchased, and the latest receipts.
type SupportService struct {
	repo SupportRepository
}

const supportLedgerLimit = 50

func NewSupportService(repo SupportRepository) *SupportService {
	return &SupportService{repo: repo}
}

type SupportView struct {
	Customer   *domain.PortalUser
	CardNumber string
	Status     domain.CardStatus
	Products   []domain.Product
	Ledger     []domain.TapRecord
}

func (s *SupportService) Search(ctx context.Context, query string) (SupportView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SupportView{}, domain.ErrSearchQueryRequired
	}

	var view SupportView

	if strings.Contains(query, "@") {
		user, err := s.repo.FindUserByEmail(ctx, strings.ToLower(query))
		if err != nil {
			return SupportView{}, err
		}
		if user == nil {
			return SupportView{}, domain.ErrUserNotFound
		}
		view.Customer = user
		view.CardNumber = user.LinkedCard
	} else {
		view.CardNumber = strings.ToUpper(query)
		user, err := s.repo.FindUserByCard(ctx, view.CardNumber)
		if err != nil {
			return SupportView{}, err
		}
		// Unregistered cards are still searchable; Customer stays nil.
		view.Customer = user
	}

	status, err := s.repo.GetCardStatus(ctx, view.CardNumber)
	if err != nil {
		if errors.Is(err, domain.ErrCardNotFound) {
			return SupportView{}, domain.ErrCardNotFound
		}
		return SupportView{}, err
	}
	view.Status = status

	products, err := s.repo.ProductHistory(ctx, view.CardNumber)
	if err != nil {
		return SupportView{}, err
	}
	view.Products = products

	ledger, err := s.repo.RecentTaps(ctx, view.CardNumber, supportLedgerLimit)
	if err != nil {
		return SupportView{}, err
	}
	view.Ledger = ledger

	return view, nil
}
