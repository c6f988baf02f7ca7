package identity

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLength = 8
	maxFullNameLength = 20

	passwordSpecialSymbols = "!@#$%^&*()-_=+[{]};:'\",<.>/?\\|`~"
)

// fullNamePattern allows Latin and Cyrillic letters, spaces and hyphens.
var fullNamePattern = regexp.MustCompile(`^[а-яА-Яa-zA-Z\- ]+$`)

// RegisterValidators registers walletd-specific validators on v.
// Tags: "password_strength", "full_name".
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("password_strength", validatePasswordStrength); err != nil {
		return err
	}
	return v.RegisterValidation("full_name", validateFullName)
}

func validatePasswordStrength(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

// IsStrongPassword checks the password policy: minimum length plus at
// least one upper-case letter, lower-case letter, digit and special symbol.
func IsStrongPassword(password string) bool {
	if len(password) < minPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecialSymbols, r):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}

func validateFullName(fl validator.FieldLevel) bool {
	return IsValidFullName(fl.Field().String())
}

// IsValidFullName checks full name length and allowed characters.
// Length is counted in runes, not bytes.
func IsValidFullName(name string) bool {
	length := utf8.RuneCountInString(name)
	if length < 1 || length > maxFullNameLength {
		return false
	}
	return fullNamePattern.MatchString(name)
}
