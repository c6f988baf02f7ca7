package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomEmail returns a unique email address for test fixtures.
func RandomEmail() string {
	return fmt.Sprintf("test-%s@example.com", randomHex(6))
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
