// Package tlsroots builds the trust store used by the HTTP client: the system
// roots plus any private CA configured for a self-hosted API.
package tlsroots
