package token

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	a, b := New(), New()
	if a == b {
		t.Error("two credentials are equal")
	}
	if !strings.HasPrefix(a, Prefix) || len(a) != len(Prefix)+43 {
		t.Errorf("New() = %q", a)
	}
	if !Valid(a) {
		t.Errorf("Valid(%q) = false", a)
	}
}

func TestValid(t *testing.T) {
	good := New()
	tests := []struct {
		in   string
		want bool
	}{
		{good, true},
		{"", false},
		{strings.TrimPrefix(good, Prefix), false},
		{good[:len(good)-1], false},
		{Prefix + strings.Repeat("!", 43), false},
		{"9f1c2a7e-1111-4b2b-9c9c-000000000000", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHashEqual(t *testing.T) {
	tok := New()
	h := Hash(tok)
	if len(h) != 64 {
		t.Errorf("len(Hash()) = %d", len(h))
	}
	if Hash(tok) != h {
		t.Error("Hash is not deterministic")
	}
	if !Equal(tok, h) {
		t.Error("Equal(token, Hash(token)) = false")
	}
	if Equal(New(), h) || Equal(tok, h[:63]) {
		t.Error("Equal accepted a mismatch")
	}
}
