package adaptive

import "golang.org/x/crypto/chacha20poly1305"

func newChaCha20(key []byte) (Cipher, error) {
	c, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &aead{typ: ChaCha20, aead: c}, nil
}
