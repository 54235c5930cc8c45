package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

const (
	// Prefix marks a refresh credential.
	Prefix = "skrt_"

	// Length is the number of random bytes in a credential.
	Length = 32
)

var bodyLen = base64.RawURLEncoding.EncodedLen(Length)

// New returns a fresh credential.
func New() string {
	b := make([]byte, Length)
	rand.Read(b) // never fails since Go 1.24
	return Prefix + base64.RawURLEncoding.EncodeToString(b)
}

// Valid reports whether s has the shape of a credential from New.
func Valid(s string) bool {
	body, ok := strings.CutPrefix(s, Prefix)
	if !ok || len(body) != bodyLen {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(body)
	return err == nil
}

// Hash returns the hex SHA-256 digest of a credential.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Equal reports whether s hashes to digest.
func Equal(s, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(s)), []byte(digest)) == 1
}
