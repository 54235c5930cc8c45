// Package service provides the session lifecycle of the client.
//
// SessionManager is the only component that changes the Session: it logs in,
// registers, logs out, fetches the principal and reacts to forced logout
// when the transport's refresh protocol gives up. It owns no global state;
// create one per process (or per test) and call Init before use.
package service
