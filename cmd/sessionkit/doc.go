// Command sessionkit signs in to the vault or marketplace API and keeps the
// session between invocations.
//
// Usage:
//
//	sessionkit --server http://localhost:5000 login -e ann@example.com
//	sessionkit password list
//	sessionkit --profile market payment verify ref-123
//	sessionkit shell
//
// An expired access token is refreshed transparently; when the refresh
// credential has expired too, the command fails and asks for a new login.
package main
