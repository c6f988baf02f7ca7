package identity

import "errors"

var (
	// ErrUserNotFound is returned when the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoUsers is returned when no non-admin users exist.
	ErrNoUsers = errors.New("no users found")
	// ErrEmailExists is returned on an email uniqueness conflict.
	ErrEmailExists = errors.New("user with this email already exists")
	// ErrInvalidCredentials is returned on a failed login. The same error
	// covers unknown email and wrong password.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrInvalidToken is returned for malformed, expired or revoked tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrAdminTarget is returned when an operation targets an administrator
	// account. Admins cannot read, modify or delete other admins.
	ErrAdminTarget = errors.New("administrator accounts cannot be managed")
)
