package accounts

import (
	"context"

	"github.com/akulikov/walletd/internal/domain"
)

// Repository defines the interface for account data operations.
type Repository interface {
	GetAccountsByUserID(ctx context.Context, userID int64) ([]domain.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*domain.Account, error)
}
