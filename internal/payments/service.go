// Package payments implements processing of payment webhooks from the
// external payment system and payment history queries.
package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/akulikov/walletd/internal/domain"
	"github.com/akulikov/walletd/internal/identity"
	"github.com/akulikov/walletd/internal/pkg/ctxlog"
	"github.com/akulikov/walletd/internal/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserDirectory resolves users. Implemented by the identity service.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Service implements payment business logic.
type Service struct {
	repo   Repository
	users  UserDirectory
	signer *Signer
}

// NewService creates a new payments service.
func NewService(repo Repository, users UserDirectory, signer *Signer) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		signer: signer,
	}
}

// PaymentInput is an incoming payment webhook payload.
type PaymentInput struct {
	TransactionID uuid.UUID
	UserID        int64
	AccountID     int64
	Amount        float64
	Signature     string
}

// ProcessPayment validates and applies a payment. The target account is
// created when missing. Account creation, balance credit and payment
// insert happen in one database transaction; the unique constraint on
// transaction_id makes retries of the same webhook idempotent errors.
func (s *Service) ProcessPayment(ctx context.Context, input PaymentInput) (err error) {
	defer func() {
		metrics.PaymentsProcessed.WithLabelValues(paymentOutcome(err)).Inc()
	}()

	if err := s.checkUser(ctx, input.UserID); err != nil {
		return err
	}

	if !s.signer.Verify(input.TransactionID, input.UserID, input.AccountID, input.Amount, input.Signature) {
		return ErrBadSignature
	}

	if _, err := s.repo.GetPaymentByTransactionID(ctx, input.TransactionID); err == nil {
		return ErrDuplicateTransaction
	} else if !errors.Is(err, ErrPaymentNotFound) {
		return fmt.Errorf("check transaction: %w", err)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			ctxlog.FromContext(ctx).Error("rollback payment transaction", "error", rbErr)
		}
	}()

	account, err := s.repo.GetAccountForUpdateTx(ctx, tx, input.AccountID)
	switch {
	case err == nil:
		if account.UserID != input.UserID {
			return ErrAccountOwnership
		}
	case errors.Is(err, ErrAccountNotFound):
		if _, err := s.repo.CreateAccountTx(ctx, tx, input.AccountID, input.UserID); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
	default:
		return fmt.Errorf("get account: %w", err)
	}

	if err := s.repo.CreditAccountTx(ctx, tx, input.AccountID, input.Amount); err != nil {
		return fmt.Errorf("credit account: %w", err)
	}

	payment := &domain.Payment{
		TransactionID: input.TransactionID,
		UserID:        input.UserID,
		AccountID:     input.AccountID,
		Amount:        input.Amount,
		Signature:     input.Signature,
	}
	if err := s.repo.CreatePaymentTx(ctx, tx, payment); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit payment: %w", err)
	}

	metrics.PaymentsAmount.Add(input.Amount)

	ctxlog.FromContext(ctx).Info("payment processed",
		"transaction_id", input.TransactionID,
		"account_id", input.AccountID,
		"amount", input.Amount,
	)

	return nil
}

// GetUserPayments returns payments across all accounts of the user.
// Returns ErrNoPayments when there are none.
func (s *Service) GetUserPayments(ctx context.Context, userID int64) ([]domain.Payment, error) {
	payments, err := s.repo.ListPaymentsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	if len(payments) == 0 {
		return nil, ErrNoPayments
	}
	return payments, nil
}

func (s *Service) checkUser(ctx context.Context, userID int64) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("resolve user: %w", err)
	}
	if user.IsAdmin() {
		return ErrAdminPayment
	}
	return nil
}

func paymentOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrDuplicateTransaction):
		return "duplicate"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrAdminPayment),
		errors.Is(err, ErrAccountOwnership):
		return "rejected"
	}
	return "error"
}
