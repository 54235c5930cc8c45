// Package transport is the HTTP layer of the client.
//
// HTTPClient sends JSON requests to one API base URL, attaching the stored
// bearer token and the refresh cookie jar. Reauth is a middleware that turns
// a 401 into one refresh of the access token followed by one resend of the
// original request; when the refresh fails it clears the session and tells
// the registered expiry handlers. Client sits on top and converts non-2xx
// responses into domain errors.
//
//	base := transport.NewHTTPClient(baseURL, transport.WithTokenStore(store), transport.WithCookieJar(jar))
//	reauth := transport.NewReauth(refresher, store)
//	api := transport.NewClient(transport.Chain(base, reauth.Wrap))
package transport
