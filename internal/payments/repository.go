package payments

import (
	"context"

	"github.com/akulikov/walletd/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines the interface for payment data operations.
type Repository interface {
	GetPaymentByTransactionID(ctx context.Context, transactionID uuid.UUID) (*domain.Payment, error)
	ListPaymentsByUserID(ctx context.Context, userID int64) ([]domain.Payment, error)

	// Transaction methods. A payment credit spans an account upsert, a
	// balance update and a payment insert.
	BeginTx(ctx context.Context) (pgx.Tx, error)
	GetAccountForUpdateTx(ctx context.Context, tx pgx.Tx, accountID int64) (*domain.Account, error)
	CreateAccountTx(ctx context.Context, tx pgx.Tx, accountID, userID int64) (*domain.Account, error)
	CreditAccountTx(ctx context.Context, tx pgx.Tx, accountID int64, amount float64) error
	CreatePaymentTx(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error
}
