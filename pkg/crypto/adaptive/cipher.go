package adaptive

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"
)

// KeySize is the key length every cipher here expects.
const KeySize = 32

// Type identifies a cipher. The values are stored on disk; never renumber them.
type Type byte

const (
	AESGCM   Type = 1
	ChaCha20 Type = 2
)

// String returns the algorithm name.
func (t Type) String() string {
	switch t {
	case AESGCM:
		return "aes-256-gcm"
	case ChaCha20:
		return "chacha20-poly1305"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// ErrOpen is returned when a ciphertext fails authentication or is malformed.
var ErrOpen = errors.New("adaptive: message authentication failed")

// Cipher seals and opens messages. Sealed output is nonce || ciphertext || tag.
// Implementations are safe for concurrent use.
type Cipher interface {
	Type() Type
	Seal(plaintext, additionalData []byte) ([]byte, error)
	Open(sealed, additionalData []byte) ([]byte, error)
	// Overhead is the length difference between sealed output and plaintext.
	Overhead() int
}

// New returns the preferred cipher for this platform.
func New(key []byte) (Cipher, error) {
	return NewWithType(key, Preferred())
}

// NewWithType returns the cipher t keyed with key.
func NewWithType(key []byte, t Type) (Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("adaptive: key must be %d bytes, got %d", KeySize, len(key))
	}
	switch t {
	case AESGCM:
		return newAESGCM(key)
	case ChaCha20:
		return newChaCha20(key)
	default:
		return nil, fmt.Errorf("adaptive: unknown cipher %s", t)
	}
}

// NewSet returns every supported cipher keyed with key, by type.
func NewSet(key []byte) (map[Type]Cipher, error) {
	set := make(map[Type]Cipher, 2)
	for _, t := range []Type{AESGCM, ChaCha20} {
		c, err := NewWithType(key, t)
		if err != nil {
			return nil, err
		}
		set[t] = c
	}
	return set, nil
}

// Preferred reports the cipher to write with on this platform. Go uses AES
// instructions on amd64 and arm64.
func Preferred() Type {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return AESGCM
	default:
		return ChaCha20
	}
}

type aead struct {
	typ  Type
	aead cipher.AEAD
}

func (a *aead) Type() Type { return a.typ }

func (a *aead) Overhead() int {
	return a.aead.NonceSize() + a.aead.Overhead()
}

func (a *aead) Seal(plaintext, additionalData []byte) ([]byte, error) {
	n := a.aead.NonceSize()
	out := make([]byte, n, n+len(plaintext)+a.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, out); err != nil {
		return nil, err
	}
	return a.aead.Seal(out, out[:n], plaintext, additionalData), nil
}

func (a *aead) Open(sealed, additionalData []byte) ([]byte, error) {
	n := a.aead.NonceSize()
	if len(sealed) < n+a.aead.Overhead() {
		return nil, ErrOpen
	}
	plaintext, err := a.aead.Open(nil, sealed[:n], sealed[n:], additionalData)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}
