package vault

import "testing"

func TestRate(t *testing.T) {
	tests := []struct {
		password string
		score    int
		level    string
	}{
		{"", 10, Weak},
		{"abc", 25, Weak},
		{"abcdefgh", 40, Weak},
		{"abcdEFGH12", 70, Medium},
		{"abcdEFGH12!?", 100, Strong},
		{"Abcdefghijk1", 85, Medium},
	}
	for _, tt := range tests {
		got := Rate(tt.password)
		if got.Score != tt.score || got.Level != tt.level {
			t.Errorf("Rate(%q) = %+v, want {%d %s}", tt.password, got, tt.score, tt.level)
		}
	}
}

func TestScore(t *testing.T) {
	empty := Score(nil)
	if empty.Score != 100 || empty.Grade != "N/A" || empty.Level != "neutral" || empty.Message != "No passwords stored yet" {
		t.Errorf("Score(nil) = %+v", empty)
	}

	strong := Score([]string{"abcdEFGH12!?", "Zyxw9876$#@!"})
	if strong.Score != 100 || strong.Grade != "A+" || strong.Message != "Excellent security" || strong.Weak != 0 {
		t.Errorf("strong vault = %+v", strong)
	}

	mixed := Score([]string{"abcdEFGH12!?", "abc"})
	// (100 + 25) / 2 = 62.5 rounds to 63.
	if mixed.Score != 63 || mixed.Grade != "C" || mixed.Weak != 1 {
		t.Errorf("mixed vault = %+v", mixed)
	}
	if mixed.Message != "1 weak password detected" {
		t.Errorf("message = %q", mixed.Message)
	}

	bad := Score([]string{"a", "b"})
	if bad.Grade != "F" || bad.Level != "critical" || bad.Message != "2 weak passwords detected" {
		t.Errorf("weak vault = %+v", bad)
	}
}
