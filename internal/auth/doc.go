// Package auth holds the wire contract of the authentication server.
//
// It names the endpoints of each product profile, the access token field
// returned by login and refresh, the refresher used by the transport's
// reauth middleware, and the decoders that turn a profile response into a
// domain.Principal.
package auth
