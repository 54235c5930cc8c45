package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
)

func newAESGCM(key []byte) (Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &aead{typ: AESGCM, aead: gcm}, nil
}
