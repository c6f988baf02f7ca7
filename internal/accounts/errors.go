package accounts

import "errors"

var (
	// ErrNoAccounts is returned when a user has no accounts.
	ErrNoAccounts = errors.New("user has no accounts")
	// ErrUserNotFound is returned when the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrAdminAccount is returned when accounts are requested for an
	// administrator. Admins do not own accounts.
	ErrAdminAccount = errors.New("administrators cannot have accounts")
)
