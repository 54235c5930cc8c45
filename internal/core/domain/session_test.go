package domain

import "testing"

func TestSession_State(t *testing.T) {
	p := &Principal{ID: "u1", Email: "a@b.c"}
	tests := []struct {
		name   string
		s      Session
		auth   bool
		expect string
	}{
		{"zero", Session{}, false, "anonymous"},
		{"loading", Session{Loading: true, HasToken: true}, false, "loading"},
		{"token only", Session{HasToken: true}, false, "unconfirmed"},
		{"principal", Session{Principal: p, HasToken: true}, true, "authenticated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Authenticated(); got != tt.auth {
				t.Errorf("Authenticated() = %v, want %v", got, tt.auth)
			}
			if got := tt.s.State(); got != tt.expect {
				t.Errorf("State() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestPrincipal_Clone(t *testing.T) {
	p := &Principal{ID: "a1", Attributes: map[string]string{AttrMatricNumber: "190404"}}
	c := p.Clone()
	c.Attributes[AttrMatricNumber] = "changed"
	if p.Attr(AttrMatricNumber) != "190404" {
		t.Error("Clone should deep-copy attributes")
	}

	var nilP *Principal
	if nilP.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
	if nilP.Attr(AttrFullName) != "" {
		t.Error("Attr on nil should be empty")
	}
}
