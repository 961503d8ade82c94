// Package credentials implements the salted password hashing scheme: a
// 16-byte random salt, hex-encoded, mixed into a SHA-256 digest over the
// concatenation of password and salt.
//
// The digest is intentionally deterministic so stored hashes remain
// verifiable across processes and releases. Treat this as scheme v1; any
// change to the construction needs a migration for existing hashes.
package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// SaltLength is the hex-encoded length of a generated salt (16 random bytes).
const SaltLength = 32

// HashLength is the hex-encoded length of a SHA-256 digest.
const HashLength = 64

// GenerateSalt returns a fresh hex-encoded salt from a cryptographically
// secure source. Uniqueness across users is probabilistic, guaranteed only by
// entropy width.
func GenerateSalt() (string, error) {
	buf := make([]byte, SaltLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash computes the hex-encoded SHA-256 digest of password+salt.
// Pure function: equal inputs always produce equal output.
func Hash(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the digest for the candidate password and compares it to
// the stored hash in constant time.
func Verify(password, salt, storedHash string) bool {
	computed := Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
