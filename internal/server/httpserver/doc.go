// Package httpserver runs the development mock API: a gin engine with
// request-ID, recovery and audit middleware in front of the handlers of one
// product profile, plus optional Prometheus metrics.
package httpserver
