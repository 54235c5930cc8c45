// Command sessionkit-mockapi serves the vault or marketplace REST contract
// for local development: login, registration, cookie-based refresh with
// rotation, the profile endpoints and the resource endpoints the CLI uses.
//
// Usage:
//
//	SESSIONKIT_MOCK_AUTH_JWT_SECRET=dev \
//	SESSIONKIT_MOCK_AUTH_SESSION_KEY=0123456789abcdef0123456789abcdef \
//	sessionkit-mockapi --profile vault --seed ann@example.com:secret
package main
