package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
	"github.com/yndnr/sessionkit-go/internal/credstore"
	"github.com/yndnr/sessionkit-go/internal/transport"
)

func TestHTTPRefresher(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr error
	}{
		{"success", 200, `{"acesstoken":"tok2"}`, "tok2", nil},
		{"forbidden", 403, `{"message":"refresh token revoked"}`, "", domain.ErrRefreshRejected},
		{"unauthorized", 401, ``, "", domain.ErrRefreshRejected},
		{"missing field", 200, `{"accessToken":"tok2"}`, "", domain.ErrServer},
		{"empty body", 200, ``, "", domain.ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var method, path string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				method, path = r.Method, r.URL.Path
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			r := NewHTTPRefresher(transport.NewHTTPClient(srv.URL), "/refresh-token")
			got, err := r.Refresh(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Refresh() err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("Refresh() = %q, %v, want %q", got, err, tt.want)
			}
			if method != http.MethodPost || path != "/refresh-token" {
				t.Errorf("request = %s %s", method, path)
			}
		})
	}
}

func TestVaultProfile_Decode(t *testing.T) {
	p, err := NewVaultProfile("/dashboard").Decode([]byte(`{"id":"u1","name":"Ann"}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "u1" || p.DisplayName != "Ann" {
		t.Errorf("principal = %+v", p)
	}

	p, err = NewVaultProfile("/dashboard").Decode([]byte(`{"user":{"_id":"6650","username":"ann","email":"a@b.com","role":"admin"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "6650" || p.DisplayName != "ann" || p.Role != "admin" || p.Attr(domain.AttrUsername) != "ann" {
		t.Errorf("principal = %+v", p)
	}

	if _, err := NewVaultProfile("/dashboard").Decode([]byte(`{}`)); !errors.Is(err, domain.ErrServer) {
		t.Errorf("empty profile err = %v", err)
	}
	if _, err := NewVaultProfile("/dashboard").Decode([]byte(`not json`)); !errors.Is(err, domain.ErrServer) {
		t.Errorf("invalid json err = %v", err)
	}
}

func TestMarketProfile_Decode(t *testing.T) {
	body := `{"userinfo":[{"_id":"a1","fullName":"Ann Lee","agentName":"annie","matricNumber":"190401",
		"roomNumber":"B12","residence":"Hall 3","email":"a@b.com","phoneNumber":"080","hasPaid":true}]}`
	p, err := NewMarketProfile("/agent").Decode([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "a1" || p.DisplayName != "annie" || !p.Verified {
		t.Errorf("principal = %+v", p)
	}
	for key, want := range map[string]string{
		domain.AttrFullName:     "Ann Lee",
		domain.AttrMatricNumber: "190401",
		domain.AttrRoomNumber:   "B12",
		domain.AttrResidence:    "Hall 3",
		domain.AttrPhoneNumber:  "080",
	} {
		if got := p.Attr(key); got != want {
			t.Errorf("Attr(%s) = %q, want %q", key, got, want)
		}
	}

	if _, err := NewMarketProfile("/agent").Decode([]byte(`{"userinfo":[]}`)); !errors.Is(err, domain.ErrServer) {
		t.Errorf("empty userinfo err = %v", err)
	}
}

func TestProfileFor(t *testing.T) {
	if p, err := ProfileFor(ProfileMarket, "/agent"); err != nil || p.Path() != "/agent" {
		t.Errorf("ProfileFor(market) = %v, %v", p, err)
	}
	if _, err := ProfileFor("shop", "/x"); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("unknown profile err = %v", err)
	}
}

func TestEndpoints(t *testing.T) {
	e, err := EndpointsFor(ProfileMarket)
	if err != nil {
		t.Fatal(err)
	}
	if e.Refresh != "/refresh-token" || e.Profile != "/agent" {
		t.Errorf("market endpoints = %+v", e)
	}

	merged := VaultEndpoints().Merge(Endpoints{Refresh: "/auth/refresh", Logout: "/logout"})
	if merged.Refresh != "/auth/refresh" || merged.Logout != "/logout" || merged.Login != "/login" {
		t.Errorf("merged = %+v", merged)
	}
}

func TestStoreTokenSource(t *testing.T) {
	store, _ := credstore.Open(context.Background(), credstore.NewMemoryBackend())
	var ts oauth2.TokenSource = NewTokenSource(store)

	if _, err := ts.Token(); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("Token() on empty store err = %v", err)
	}

	store.Set("tok1")
	tok, err := ts.Token()
	if err != nil || tok.AccessToken != "tok1" || tok.Type() != "Bearer" {
		t.Fatalf("Token() = %+v, %v", tok, err)
	}

	store.Set("tok2")
	if tok, _ := ts.Token(); tok.AccessToken != "tok2" || !tok.Expiry.IsZero() {
		t.Errorf("Token() after refresh = %+v", tok)
	}

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	store.Set(signed)
	if tok, _ := ts.Token(); !tok.Expiry.Equal(exp) {
		t.Errorf("Token().Expiry = %v, want %v", tok.Expiry, exp)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "u1",
	}).SignedString([]byte("k"))

	tests := []struct {
		name   string
		token  string
		want   time.Time
		wantOK bool
	}{
		{"jwt", signed, exp, true},
		{"jwt without exp", noExp, time.Time{}, false},
		{"opaque", "opaque-token", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TokenExpiry(tt.token)
			if ok != tt.wantOK || !got.Equal(tt.want) {
				t.Errorf("TokenExpiry() = %v, %v, want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
