package utils // package utils provides helper functions for credential derivation and session tokens

import (
	"crypto/rand"   // secure random salt generation
	"crypto/sha256" // HMAC hash underlying the key derivation
	"crypto/subtle" // constant-time comparison of derived keys

	"golang.org/x/crypto/pbkdf2" // memory/CPU-hard keyed derivation
)

// DeriveKey derives a password hash with PBKDF2-HMAC-SHA256. The
// iteration count (work factor) and output length are fixed
// process-wide through configuration so that stored hashes stay
// comparable across restarts.
func DeriveKey(password string, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New)
}

// NewSalt returns n bytes of cryptographically secure random salt.
func NewSalt(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// CredentialsEqual compares two derived keys in constant time so the
// comparison leaks nothing about where they diverge.
func CredentialsEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
