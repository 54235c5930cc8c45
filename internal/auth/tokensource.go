package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/transport"
)

// StoreTokenSource exposes the stored access token as an oauth2.TokenSource,
// so oauth2.NewClient and similar helpers can reuse the session.
type StoreTokenSource struct {
	store transport.TokenSource
}

// NewTokenSource wraps store. Every call reads the store, so a refreshed
// token is picked up immediately.
func NewTokenSource(store transport.TokenSource) *StoreTokenSource {
	return &StoreTokenSource{store: store}
}

// Token implements oauth2.TokenSource. Expiry comes from the exp claim when
// the token is a JWT and is zero otherwise.
func (s *StoreTokenSource) Token() (*oauth2.Token, error) {
	token, ok := s.store.Get()
	if !ok {
		return nil, domain.ErrNotAuthenticated.WithDetails("no stored access token")
	}
	tok := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
	if exp, ok := TokenExpiry(token); ok {
		tok.Expiry = exp
	}
	return tok, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying it. Opaque
// tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
