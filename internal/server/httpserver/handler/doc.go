// Package handler implements the mock API endpoints for both product
// profiles.
//
//   - auth.go: login, registration, refresh and logout
//   - vault.go: dashboard, passwords and todos
//   - market.go: agent profile, products and payment verification
//   - health.go: health check
//
// Failures are answered as {"message": "..."}, the field the client reads
// for error details.
package handler
