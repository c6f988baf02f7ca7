package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"valid", "Passw0rd!", true},
		{"too short", "Pa0!", false},
		{"no upper", "passw0rd!", false},
		{"no lower", "PASSW0RD!", false},
		{"no digit", "Password!", false},
		{"no special", "Passw0rds", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStrongPassword(tt.password))
		})
	}
}

func TestIsValidFullName(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		want     bool
	}{
		{"latin", "Ivan Petrov", true},
		{"cyrillic", "Иван Петров", true},
		{"hyphenated", "Anna-Maria", true},
		{"empty", "", false},
		{"digits", "Ivan2", false},
		{"too long", "Verylongfullnamethatexceeds", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidFullName(tt.fullName))
		})
	}
}
