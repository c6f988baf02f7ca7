// Package accounts implements user balance account queries.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/akulikov/walletd/internal/domain"
	"github.com/akulikov/walletd/internal/identity"
)

// UserDirectory resolves users. Implemented by the identity service.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Service implements account business logic.
type Service struct {
	repo  Repository
	users UserDirectory
}

// NewService creates a new accounts service.
func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{
		repo:  repo,
		users: users,
	}
}

// GetUserAccounts returns the accounts of the given user.
// Returns ErrNoAccounts when the user has none.
func (s *Service) GetUserAccounts(ctx context.Context, userID int64) ([]domain.Account, error) {
	accounts, err := s.repo.GetAccountsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	return accounts, nil
}

// GetAccountsForUser returns the accounts of a target user on behalf of
// an administrator. Existence is checked before the admin shield, so an
// unknown id yields not-found rather than forbidden.
func (s *Service) GetAccountsForUser(ctx context.Context, targetUserID int64) ([]domain.Account, error) {
	user, err := s.users.GetUserByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if user.IsAdmin() {
		return nil, ErrAdminAccount
	}

	return s.GetUserAccounts(ctx, targetUserID)
}
