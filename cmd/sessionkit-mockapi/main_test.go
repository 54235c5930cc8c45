package main

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yndnr/sessionkit-go/internal/server/config"
	"github.com/yndnr/sessionkit-go/internal/server/httpserver/handler"
)

func TestSeedUsers(t *testing.T) {
	auth := config.AuthSection{
		JWTSecret:  "s",
		SessionKey: "0123456789abcdef0123456789abcdef",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		CookieName: "refreshToken",
		BcryptCost: bcrypt.MinCost,
	}

	tests := []struct {
		profile string
		seeds   []string
		field   string
		wantErr bool
	}{
		{"vault", []string{"ann@example.com:pw"}, "username", false},
		{"market", []string{"bo@example.com:pw"}, "agentName", false},
		{"vault", []string{"missing-colon"}, "", true},
		{"vault", []string{"a@b.c:pw", "a@b.c:pw"}, "", true},
	}
	for _, tt := range tests {
		h, err := handler.New(tt.profile, auth)
		if err != nil {
			t.Fatal(err)
		}
		err = seedUsers(h, tt.seeds)
		if (err != nil) != tt.wantErr {
			t.Errorf("seedUsers(%v) error = %v, wantErr %v", tt.seeds, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		email := tt.seeds[0][:len(tt.seeds[0])-3]
		u, err := h.Users().Authenticate(email, "pw")
		if err != nil {
			t.Fatalf("seeded user cannot log in: %v", err)
		}
		if u.Fields[tt.field] == "" {
			t.Errorf("%s profile: field %q not set: %v", tt.profile, tt.field, u.Fields)
		}
	}
}
