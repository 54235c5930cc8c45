// Package adaptive provides the authenticated ciphers used to seal stored
// credentials.
//
// Two AEADs are supported, both with 256-bit keys:
//
//   - AES-256-GCM, preferred where Go's AES is hardware accelerated
//   - ChaCha20-Poly1305 everywhere else
//
// Each cipher has a one-byte Type that callers persist next to the
// ciphertext, so records written on one machine open on any other.
//
// Usage:
//
//	c, err := adaptive.New(key)
//	sealed, err := c.Seal(plaintext, aad)
//	plaintext, err := c.Open(sealed, aad)
package adaptive
