package domain

// Session is a point-in-time view of the client's authentication state.
//
// A session is authenticated only when a Principal is present. HasToken alone
// means a token is stored but has not (yet) been confirmed by a profile fetch.
type Session struct {
	Principal *Principal `json:"principal,omitempty"`
	HasToken  bool       `json:"has_token"`
	Loading   bool       `json:"loading"`
}

// Authenticated reports whether the session holds a confirmed principal.
func (s Session) Authenticated() bool {
	return s.Principal != nil
}

// State returns a short label for the session, used by the CLI and logs.
func (s Session) State() string {
	switch {
	case s.Loading:
		return "loading"
	case s.Authenticated():
		return "authenticated"
	case s.HasToken:
		return "unconfirmed"
	default:
		return "anonymous"
	}
}
