// Package jwt implements the identity.Authenticator interface with
// HS256-signed JSON Web Tokens and server-side refresh token storage.
package jwt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/akulikov/walletd/internal/domain"
	"github.com/akulikov/walletd/internal/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Config contains JWT settings.
type Config struct {
	SecretKey            string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// Claims are the custom claims carried by walletd tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role      domain.Role `json:"role,omitempty"`
	TokenType string      `json:"typ"`
}

// Authenticator issues and validates token pairs. Refresh tokens are
// additionally persisted (hashed) so they can be rotated and revoked.
type Authenticator struct {
	config Config
	repo   identity.Repository
}

// NewAuthenticator creates a new JWT authenticator.
func NewAuthenticator(config Config, repo identity.Repository) *Authenticator {
	return &Authenticator{
		config: config,
		repo:   repo,
	}
}

// Type returns the authenticator type name.
func (a *Authenticator) Type() string {
	return "jwt"
}

// GenerateTokens issues a new access/refresh pair for the user and stores
// the refresh token hash.
func (a *Authenticator) GenerateTokens(ctx context.Context, user *domain.User) (*identity.TokenPair, error) {
	accessToken, _, err := a.signToken(user, tokenTypeAccess, a.config.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, refreshID, err := a.signToken(user, tokenTypeRefresh, a.config.RefreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	err = a.repo.SaveRefreshToken(ctx, &domain.RefreshToken{
		ID:        refreshID,
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: time.Now().Add(a.config.RefreshTokenDuration),
	})
	if err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &identity.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccessToken parses and validates an access token.
func (a *Authenticator) ValidateAccessToken(_ context.Context, token string) (int64, domain.Role, error) {
	claims, err := a.parseToken(token, tokenTypeAccess)
	if err != nil {
		return 0, "", err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, "", identity.ErrInvalidToken
	}

	return userID, claims.Role, nil
}

// RefreshTokens validates a refresh token against the store, revokes it
// and issues a fresh pair.
func (a *Authenticator) RefreshTokens(ctx context.Context, refreshToken string) (*identity.TokenPair, error) {
	if _, err := a.parseToken(refreshToken, tokenTypeRefresh); err != nil {
		return nil, err
	}

	stored, err := a.repo.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, identity.ErrInvalidToken
	}
	if stored.IsExpired() {
		return nil, identity.ErrInvalidToken
	}

	user, err := a.repo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, identity.ErrInvalidToken
	}

	// Rotation: the presented token is single-use.
	if err := a.repo.DeleteRefreshToken(ctx, stored.TokenHash); err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	return a.GenerateTokens(ctx, user)
}

// RevokeRefreshToken removes a refresh token from the store.
func (a *Authenticator) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return a.repo.DeleteRefreshToken(ctx, hashToken(refreshToken))
}

func (a *Authenticator) signToken(user *domain.User, tokenType string, ttl time.Duration) (string, string, error) {
	now := time.Now()
	id := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:      user.Role,
		TokenType: tokenType,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.config.SecretKey))
	if err != nil {
		return "", "", err
	}

	return token, id, nil
}

func (a *Authenticator) parseToken(token, wantType string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.config.SecretKey), nil
	})
	if err != nil || !parsed.Valid {
		return nil, identity.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.TokenType != wantType {
		return nil, identity.ErrInvalidToken
	}

	return claims, nil
}

// hashToken returns the hex SHA-256 of a token. Only hashes are stored
// server-side.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
