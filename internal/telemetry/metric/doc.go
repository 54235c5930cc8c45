// Package metric provides Prometheus metrics for SessionKit.
//
// The client side counts requests, latency, token refresh outcomes and
// forced logouts; the development mock server counts requests per route.
// Every metric lives on an explicit Registry so tests can use a fresh one.
package metric
