// Package token generates the opaque refresh credentials the mock API puts in
// its cookie, and the digests it keeps in their place.
//
// Format:
//
//   - Prefix: skrt_
//   - Body: 43 characters, 32 random bytes in Base64 RawURL encoding
//
// Only Hash(token) is ever stored; Equal compares in constant time.
package token
