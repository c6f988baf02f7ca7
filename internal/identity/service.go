// Package identity implements authentication and user management.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akulikov/walletd/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/secure/precis"
)

// TokenPair holds an access token and its companion refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Authenticator issues and validates token pairs.
type Authenticator interface {
	GenerateTokens(ctx context.Context, user *domain.User) (*TokenPair, error)
	ValidateAccessToken(ctx context.Context, token string) (userID int64, role domain.Role, err error)
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
	Type() string
}

// Service implements identity business logic.
type Service struct {
	repo Repository
	auth Authenticator
}

// NewService creates a new identity service.
func NewService(repo Repository, auth Authenticator) *Service {
	return &Service{
		repo: repo,
		auth: auth,
	}
}

// LoginInput contains login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Login authenticates a user and issues a token pair.
func (s *Service) Login(ctx context.Context, input LoginInput) (*domain.User, *TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, CanonicalEmail(input.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Unknown email and wrong password are indistinguishable to the caller.
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.auth.GenerateTokens(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	return user, tokens, nil
}

// RefreshTokens exchanges a valid refresh token for a new token pair.
// The presented refresh token is rotated out.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.auth.RefreshTokens(ctx, refreshToken)
}

// Logout revokes the presented refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.auth.RevokeRefreshToken(ctx, refreshToken)
}

// ValidateToken validates an access token. Used by the auth middleware.
func (s *Service) ValidateToken(ctx context.Context, token string) (int64, domain.Role, error) {
	return s.auth.ValidateAccessToken(ctx, token)
}

// GetUserByID returns a user without the admin shield. Used for /me.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// CreateUserInput contains data for admin user creation.
type CreateUserInput struct {
	Email    string
	FullName string
	Password string
}

// CreateUser creates a regular user. Admin-only operation.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:    CanonicalEmail(input.Email),
		FullName: input.FullName,
		Password: string(hash),
		Role:     domain.RoleUser,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser returns a non-admin user by id. Admin-only operation.
// Admin targets are shielded even from other admins.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return nil, ErrAdminTarget
	}
	return user, nil
}

// UpdateUserInput contains the optional fields of a user update.
type UpdateUserInput struct {
	Email    *string
	FullName *string
	Password *string
}

// IsEmpty returns true when no field is set.
func (i UpdateUserInput) IsEmpty() bool {
	return i.Email == nil && i.FullName == nil && i.Password == nil
}

// UpdateUser partially updates a non-admin user. Admin-only operation.
func (s *Service) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return nil, ErrAdminTarget
	}

	if input.Email != nil {
		user.Email = CanonicalEmail(*input.Email)
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hash)
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser removes a non-admin user. Admin-only operation. The user's
// refresh tokens are revoked with the account.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return ErrAdminTarget
	}

	if err := s.repo.DeleteUserRefreshTokens(ctx, id); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}

	return s.repo.DeleteUser(ctx, id)
}

// ListUsers returns all non-admin users. Admin-only operation.
// Returns ErrNoUsers when no non-admin user exists.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	role := domain.RoleUser
	users, err := s.repo.ListUsers(ctx, UserFilter{Role: &role})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNoUsers
	}
	return users, nil
}

// EnsureUser creates a user with the given role unless the email is
// already taken. Used to seed the default accounts on startup.
func (s *Service) EnsureUser(ctx context.Context, email, fullName, password string, role domain.Role) (*domain.User, error) {
	canon := CanonicalEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, canon)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("lookup seed user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user = &domain.User{
		Email:    canon,
		FullName: fullName,
		Password: string(hash),
		Role:     role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// CanonicalEmail normalizes an email address for storage and lookup.
// PRECIS UsernameCaseMapped handles unicode case folding; plain ASCII
// lowering is the fallback for inputs the profile rejects.
func CanonicalEmail(email string) string {
	email = strings.TrimSpace(email)
	canon, err := precis.UsernameCaseMapped.String(email)
	if err != nil {
		return strings.ToLower(email)
	}
	return canon
}
