package handler

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yndnr/sessionkit-go/pkg/cmap"
	"github.com/yndnr/sessionkit-go/pkg/token"
)

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer.
func NewIssuer(secret string, ttl time.Duration, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue returns a token for userID that expires after the configured TTL.
func (i *Issuer) Issue(userID string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify validates a token and returns its subject.
func (i *Issuer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

type grant struct {
	userID  string
	expires time.Time
}

// Grants tracks the refresh credentials handed out in cookies, keyed by their
// hash. Each one is single use: Rotate retires it and returns its successor.
type Grants struct {
	ttl time.Duration
	now func() time.Time

	grants *cmap.Map[string, grant]
}

// NewGrants creates an empty grant table.
func NewGrants(ttl time.Duration, now func() time.Time) *Grants {
	if now == nil {
		now = time.Now
	}
	return &Grants{ttl: ttl, now: now, grants: cmap.New[string, grant]()}
}

// Issue creates a refresh credential for userID and drops expired ones.
func (g *Grants) Issue(userID string) string {
	now := g.now()
	g.grants.DeleteFunc(func(_ string, gr grant) bool {
		return !now.Before(gr.expires)
	})

	id := token.New()
	g.grants.Set(token.Hash(id), grant{userID: userID, expires: now.Add(g.ttl)})
	return id
}

// Rotate exchanges a live credential for a new one.
func (g *Grants) Rotate(id string) (next, userID string, ok bool) {
	if !token.Valid(id) {
		return "", "", false
	}
	gr, found := g.grants.Pop(token.Hash(id))
	if !found || !g.now().Before(gr.expires) {
		return "", "", false
	}

	next = token.New()
	g.grants.Set(token.Hash(next), grant{userID: gr.userID, expires: g.now().Add(g.ttl)})
	return next, gr.userID, true
}

// Revoke retires a credential. Unknown IDs are ignored.
func (g *Grants) Revoke(id string) {
	g.grants.Delete(token.Hash(id))
}

// Len reports the number of stored credentials.
func (g *Grants) Len() int {
	return g.grants.Count()
}
