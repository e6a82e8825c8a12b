// Package password implements one-way hashing for stored credentials.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/shopcore/identity/internal/common"
)

// Cost is the bcrypt work factor. 12 keeps a single hash above ~50ms on
// commodity hardware while staying comfortably under interactive latency.
const Cost = 12

// Hash generates a salted bcrypt hash for the given password.
func Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", common.ErrValidation)
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(h), nil
}

// Verify reports whether the cleartext password matches the stored hash.
// A malformed hash yields false, never an error.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// decoyHash is a throwaway hash at the real work factor, generated once at
// startup. It backs VerifyDecoy and never corresponds to any account.
var decoyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("decoy"), Cost)
	if err != nil {
		panic(err)
	}
	return h
}()

// VerifyDecoy burns a full-cost comparison against a hash that matches
// nothing. Callers run it on lookup misses so a response for an unknown
// account takes as long as one for a wrong password.
func VerifyDecoy(password string) {
	_ = bcrypt.CompareHashAndPassword(decoyHash, []byte(password))
}
