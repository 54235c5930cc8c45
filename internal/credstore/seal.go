package credstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/yndnr/sessionkit-go/pkg/crypto/adaptive"
)

// Sealed record format: version byte, cipher type byte, nonce, ciphertext+tag.
const (
	sealVersion   byte = 1
	sealHeaderLen      = 2
	keySize            = adaptive.KeySize
)

// kdfSalt is fixed: the same passphrase must open the store on every run.
var kdfSalt = []byte("sessionkit/credstore/v1")

// ErrSealedRecord is returned when a stored record cannot be authenticated.
var ErrSealedRecord = errors.New("credstore: sealed record is corrupt or was written with another key")

// DeriveKey turns the configured encryption key into 32 key bytes. A 64-character
// hex string is used as-is; anything else is treated as a passphrase and
// stretched with argon2id.
func DeriveKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("credstore: empty encryption key")
	}
	if len(secret) == 2*keySize {
		if raw, err := hex.DecodeString(secret); err == nil {
			return raw, nil
		}
	}
	return argon2.IDKey([]byte(secret), kdfSalt, 1, 64*1024, 4, keySize), nil
}

// SealedBackend encrypts every record of an inner Backend. The record key is
// bound as additional data so a ciphertext cannot be moved to another key.
type SealedBackend struct {
	inner   Backend
	ciphers map[adaptive.Type]adaptive.Cipher
	write   adaptive.Type
}

// Sealed wraps inner with authenticated encryption under key (32 bytes).
// New records use the platform's preferred cipher; either can be read back.
func Sealed(inner Backend, key []byte) (*SealedBackend, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("credstore: encryption key must be %d bytes, got %d", keySize, len(key))
	}
	ciphers, err := adaptive.NewSet(key)
	if err != nil {
		return nil, err
	}
	return &SealedBackend{inner: inner, ciphers: ciphers, write: adaptive.Preferred()}, nil
}

// Load decrypts the record stored under key.
func (s *SealedBackend) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.open(key, raw)
}

// Save encrypts value and stores it under key.
func (s *SealedBackend) Save(ctx context.Context, key string, value []byte) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.inner.Save(ctx, key, sealed)
}

// Delete removes the record.
func (s *SealedBackend) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Close closes the inner backend.
func (s *SealedBackend) Close() error {
	return s.inner.Close()
}

func (s *SealedBackend) seal(key string, plaintext []byte) ([]byte, error) {
	body, err := s.ciphers[s.write].Seal(plaintext, []byte(key))
	if err != nil {
		return nil, err
	}
	return append([]byte{sealVersion, byte(s.write)}, body...), nil
}

func (s *SealedBackend) open(key string, sealed []byte) ([]byte, error) {
	if len(sealed) < sealHeaderLen || sealed[0] != sealVersion {
		return nil, ErrSealedRecord
	}
	c, ok := s.ciphers[adaptive.Type(sealed[1])]
	if !ok {
		return nil, ErrSealedRecord
	}
	plaintext, err := c.Open(sealed[sealHeaderLen:], []byte(key))
	if err != nil {
		return nil, ErrSealedRecord
	}
	return plaintext, nil
}
