package payments

import "errors"

var (
	// ErrUserNotFound is returned when the payment targets an unknown user.
	ErrUserNotFound = errors.New("user not found")
	// ErrAdminPayment is returned when the payment targets an administrator.
	ErrAdminPayment = errors.New("cannot process a payment for an administrator")
	// ErrBadSignature is returned when signature verification fails.
	ErrBadSignature = errors.New("signature is incorrect")
	// ErrDuplicateTransaction is returned when the transaction id was
	// already processed.
	ErrDuplicateTransaction = errors.New("transaction with this id already exists")
	// ErrAccountOwnership is returned when the target account exists but
	// belongs to a different user.
	ErrAccountOwnership = errors.New("account does not belong to the specified user")
	// ErrNoPayments is returned when a user has no payments.
	ErrNoPayments = errors.New("user has no payments")
	// ErrAccountNotFound is returned by the repository when the target
	// account does not exist yet.
	ErrAccountNotFound = errors.New("account not found")
	// ErrPaymentNotFound is returned by the repository when no payment
	// matches the transaction id.
	ErrPaymentNotFound = errors.New("payment not found")
)
