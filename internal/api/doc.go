// Package api provides typed clients for the vault and marketplace resources.
//
// Every call goes through a transport.Client, so an expired access token is
// refreshed and the call resent transparently.
package api
