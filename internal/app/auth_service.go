package app

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/goldaccess/ga-core/internal/domain"
)

// UserRepository looks up portal accounts.
type UserRepository interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.PortalUser, error)
}

// AuthService handles commuter portal logins. It sits outside the fare
// core: its only output is the identity and linked card number, never a
// fare decision.
type AuthService struct {
	repo UserRepository
}

func NewAuthService(repo UserRepository) *AuthService {
	return &AuthService{repo: repo}
}

type LoginResult struct {
	FullName   string
	LinkedCard string
}

func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, domain.ErrCredentialsRequired
	}

	user, err := s.repo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return LoginResult{}, err
	}
	if user == nil {
		return LoginResult{}, domain.ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, domain.ErrBadCredentials
	}

	return LoginResult{
		FullName:   user.FullName,
		LinkedCard: user.LinkedCard,
	}, nil
}
