// Package domain defines the core models of a SessionKit client.
//
// Domain models are plain values without IO dependencies:
//
//   - Principal: the authenticated user or agent as reported by the server
//   - Session: a snapshot of the client-side authentication state
//   - Errors: the error taxonomy shared by the transport, auth and service layers
package domain
