package identity

import (
	"context"

	"github.com/akulikov/walletd/internal/domain"
)

// Repository defines the interface for identity data operations.
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, filter UserFilter) ([]domain.User, error)

	SaveRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
	DeleteUserRefreshTokens(ctx context.Context, userID int64) error
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}

// UserFilter represents filter criteria for listing users.
type UserFilter struct {
	Role *domain.Role
}
