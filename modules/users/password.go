package users

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost balances brute-force resistance against the
// per-login CPU cost of verification.
const DefaultBcryptCost = 12

// PasswordHasher turns plaintext passwords into salted bcrypt digests
// and verifies plaintext against stored digests.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a PasswordHasher with the default cost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: DefaultBcryptCost}
}

// Hash generates a salted bcrypt digest of the given password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether the password matches the stored digest.
// A mismatch is not an error; it simply returns false.
func (h *PasswordHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
