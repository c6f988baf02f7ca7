package payments

import (
	"context"
	"testing"

	"github.com/akulikov/walletd/internal/domain"
	"github.com/akulikov/walletd/internal/identity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx implements pgx.Tx with just enough behavior to track the
// commit/rollback lifecycle. Query methods are never reached because the
// repository mock intercepts all data access.
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(_ context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(_ context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

func (t *fakeTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *fakeTx) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }

func (t *fakeTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *fakeTx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *fakeTx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return nil, nil }

func (t *fakeTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row { return nil }

func (t *fakeTx) Conn() *pgx.Conn { return nil }

// mockRepository implements Repository for testing.
type mockRepository struct {
	payments map[uuid.UUID]*domain.Payment
	accounts map[int64]*domain.Account
	tx       *fakeTx

	credited       map[int64]float64
	createdAccount bool
	createErr      error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		payments: make(map[uuid.UUID]*domain.Payment),
		accounts: make(map[int64]*domain.Account),
		tx:       &fakeTx{},
		credited: make(map[int64]float64),
	}
}

func (m *mockRepository) GetPaymentByTransactionID(_ context.Context, transactionID uuid.UUID) (*domain.Payment, error) {
	if p, ok := m.payments[transactionID]; ok {
		return p, nil
	}
	return nil, ErrPaymentNotFound
}

func (m *mockRepository) ListPaymentsByUserID(_ context.Context, userID int64) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockRepository) BeginTx(_ context.Context) (pgx.Tx, error) {
	return m.tx, nil
}

func (m *mockRepository) GetAccountForUpdateTx(_ context.Context, _ pgx.Tx, accountID int64) (*domain.Account, error) {
	if a, ok := m.accounts[accountID]; ok {
		return a, nil
	}
	return nil, ErrAccountNotFound
}

func (m *mockRepository) CreateAccountTx(_ context.Context, _ pgx.Tx, accountID, userID int64) (*domain.Account, error) {
	account := &domain.Account{ID: accountID, UserID: userID}
	m.accounts[accountID] = account
	m.createdAccount = true
	return account, nil
}

func (m *mockRepository) CreditAccountTx(_ context.Context, _ pgx.Tx, accountID int64, amount float64) error {
	m.credited[accountID] += amount
	return nil
}

func (m *mockRepository) CreatePaymentTx(_ context.Context, _ pgx.Tx, payment *domain.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.payments[payment.TransactionID]; ok {
		return ErrDuplicateTransaction
	}
	payment.ID = int64(len(m.payments) + 1)
	m.payments[payment.TransactionID] = payment
	return nil
}

// mockUsers implements UserDirectory for testing.
type mockUsers struct {
	users map[int64]*domain.User
}

func newMockUsers() *mockUsers {
	return &mockUsers{users: make(map[int64]*domain.User)}
}

func (m *mockUsers) addUser(id int64, role domain.Role) *domain.User {
	u := &domain.User{ID: id, Email: "user@example.com", Role: role}
	m.users[id] = u
	return u
}

func (m *mockUsers) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, identity.ErrUserNotFound
}

func signedInput(signer *Signer, userID, accountID int64, amount float64) PaymentInput {
	txID := uuid.New()
	return PaymentInput{
		TransactionID: txID,
		UserID:        userID,
		AccountID:     accountID,
		Amount:        amount,
		Signature:     signer.Sign(txID, userID, accountID, amount),
	}
}

func TestProcessPayment_CreatesAccountAndCredits(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	users := newMockUsers()
	users.addUser(1, domain.RoleUser)
	signer := NewSigner("test-secret")
	service := NewService(repo, users, signer)

	input := signedInput(signer, 1, 10, 100)

	// Act
	err := service.ProcessPayment(context.Background(), input)

	// Assert
	require.NoError(t, err)
	assert.True(t, repo.createdAccount, "missing account must be opened")
	assert.Equal(t, 100.0, repo.credited[10])
	assert.True(t, repo.tx.committed)
}

func TestProcessPayment_ExistingAccount(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	repo.accounts[10] = &domain.Account{ID: 10, UserID: 1, Balance: 50}
	users := newMockUsers()
	users.addUser(1, domain.RoleUser)
	signer := NewSigner("test-secret")
	service := NewService(repo, users, signer)

	// Act
	err := service.ProcessPayment(context.Background(), signedInput(signer, 1, 10, 25.5))

	// Assert
	require.NoError(t, err)
	assert.False(t, repo.createdAccount)
	assert.Equal(t, 25.5, repo.credited[10])
}

func TestProcessPayment_UnknownUser(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	signer := NewSigner("test-secret")
	service := NewService(repo, newMockUsers(), signer)

	// Act
	err := service.ProcessPayment(context.Background(), signedInput(signer, 404, 10, 100))

	// Assert
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, repo.tx.committed)
}

func TestProcessPayment_AdminUserRejected(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	users := newMockUsers()
	users.addUser(1, domain.RoleAdmin)
	signer := NewSigner("test-secret")
	service := NewService(repo, users, signer)

	// Act
	err := service.ProcessPayment(context.Background(), signedInput(signer, 1, 10, 100))

	// Assert
	assert.ErrorIs(t, err, ErrAdminPayment)
}

func TestProcessPayment_BadSignature(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	users := newMockUsers()
	users.addUser(1, domain.RoleUser)
	signer := NewSigner("test-secret")
	service := NewService(repo, users, signer)

	input := signedInput(signer, 1, 10, 100)
	input.Signature = "deadbeef"

	// Act
	err := service.ProcessPayment(context.Background(), input)

	// Assert
	assert.ErrorIs(t, err, ErrBadSignature)
	assert.Empty(t, repo.credited)
}

func TestProcessPayment_DuplicateTransaction(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	users := newMockUsers()
	users.addUser(1, domain.RoleUser)
	signer := NewSigner("test-secret")
	service := NewService(repo, users, signer)

	input := signedInput(signer, 1, 10, 100)

	require.NoError(t, service.ProcessPayment(context.Background(), input))
	repo.tx = &fakeTx{}

	// Act
	err := service.ProcessPayment(context.Background(), input)

	// Assert
	assert.ErrorIs(t, err, ErrDuplicateTransaction)
	assert.Equal(t, 100.0, repo.credited[10], "balance must be credited once")
}

func TestProcessPayment_AccountOwnedByAnotherUser(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	repo.accounts[10] = &domain.Account{ID: 10, UserID: 2}
	users := newMockUsers()
	users.addUser(1, domain.RoleUser)
	signer := NewSigner("test-secret")
	service := NewService(repo, users, signer)

	// Act
	err := service.ProcessPayment(context.Background(), signedInput(signer, 1, 10, 100))

	// Assert
	assert.ErrorIs(t, err, ErrAccountOwnership)
	assert.Empty(t, repo.credited)
	assert.True(t, repo.tx.rolledBack)
}

func TestGetUserPayments_EmptyIsNotFound(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, newMockUsers(), NewSigner("test-secret"))

	// Act
	payments, err := service.GetUserPayments(context.Background(), 1)

	// Assert
	assert.Nil(t, payments)
	assert.ErrorIs(t, err, ErrNoPayments)
}

func TestGetUserPayments_ReturnsUserPayments(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	txID := uuid.New()
	repo.payments[txID] = &domain.Payment{ID: 1, TransactionID: txID, UserID: 1, AccountID: 10, Amount: 100}
	service := NewService(repo, newMockUsers(), NewSigner("test-secret"))

	// Act
	payments, err := service.GetUserPayments(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, txID, payments[0].TransactionID)
}
