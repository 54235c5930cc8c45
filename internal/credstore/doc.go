// Package credstore keeps the client's access token and refresh cookies.
//
// A Cached store answers Get from memory and writes through to a Backend:
// a JSON file, a badger database, Redis, or process memory. Any backend can
// be wrapped with Sealed to encrypt records at rest.
package credstore
