// Package postgres provides PostgreSQL implementation of the payments repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/akulikov/walletd/internal/domain"
	"github.com/akulikov/walletd/internal/payments"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// Repository implements the payments.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetPaymentByTransactionID retrieves a payment by its transaction id.
func (r *Repository) GetPaymentByTransactionID(ctx context.Context, transactionID uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT id, transaction_id, user_id, account_id, amount, signature, created_at
		FROM payments
		WHERE transaction_id = $1
	`
	var payment domain.Payment
	err := r.db.QueryRow(ctx, query, transactionID).Scan(
		&payment.ID,
		&payment.TransactionID,
		&payment.UserID,
		&payment.AccountID,
		&payment.Amount,
		&payment.Signature,
		&payment.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payments.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment by transaction id: %w", err)
	}

	return &payment, nil
}

// ListPaymentsByUserID retrieves payments across all accounts of a user,
// newest first.
func (r *Repository) ListPaymentsByUserID(ctx context.Context, userID int64) ([]domain.Payment, error) {
	query := `
		SELECT p.id, p.transaction_id, p.user_id, p.account_id, p.amount, p.signature, p.created_at
		FROM payments p
		JOIN accounts a ON a.id = p.account_id
		WHERE a.user_id = $1
		ORDER BY p.created_at DESC, p.id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Payment, 0)
	for rows.Next() {
		var payment domain.Payment
		err := rows.Scan(
			&payment.ID,
			&payment.TransactionID,
			&payment.UserID,
			&payment.AccountID,
			&payment.Amount,
			&payment.Signature,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		result = append(result, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	return result, nil
}

// BeginTx starts a database transaction.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// GetAccountForUpdateTx locks and retrieves an account inside a transaction.
func (r *Repository) GetAccountForUpdateTx(ctx context.Context, tx pgx.Tx, accountID int64) (*domain.Account, error) {
	query := `
		SELECT id, user_id, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`
	var account domain.Account
	err := tx.QueryRow(ctx, query, accountID).Scan(
		&account.ID,
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payments.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account for update: %w", err)
	}

	return &account, nil
}

// CreateAccountTx creates an account with an externally assigned id.
func (r *Repository) CreateAccountTx(ctx context.Context, tx pgx.Tx, accountID, userID int64) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (id, user_id, balance)
		VALUES ($1, $2, 0)
		RETURNING id, user_id, balance, created_at, updated_at
	`
	var account domain.Account
	err := tx.QueryRow(ctx, query, accountID, userID).Scan(
		&account.ID,
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	return &account, nil
}

// CreditAccountTx adds amount to the account balance.
func (r *Repository) CreditAccountTx(ctx context.Context, tx pgx.Tx, accountID int64, amount float64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = balance + $1, updated_at = now() WHERE id = $2`,
		amount, accountID,
	)
	if err != nil {
		return fmt.Errorf("credit account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payments.ErrAccountNotFound
	}
	return nil
}

// CreatePaymentTx inserts a payment record.
func (r *Repository) CreatePaymentTx(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (transaction_id, user_id, account_id, amount, signature)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := tx.QueryRow(ctx, query,
		payment.TransactionID,
		payment.UserID,
		payment.AccountID,
		payment.Amount,
		payment.Signature,
	).Scan(&payment.ID, &payment.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return payments.ErrDuplicateTransaction
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
