// Package vault scores stored passwords.
package vault

import (
	"fmt"
	"math"
)

// Strength levels.
const (
	Weak   = "weak"
	Medium = "medium"
	Strong = "strong"
)

// Strength is the score of a single password.
type Strength struct {
	Score int    `json:"score"`
	Level string `json:"level"`
}

// Rate scores a password from 0 to 100 by length and character classes.
func Rate(password string) Strength {
	score := 10
	switch n := len(password); {
	case n >= 12:
		score = 40
	case n >= 8:
		score = 25
	}

	var lower, upper, digit, other bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}
	for _, has := range []bool{lower, upper, digit, other} {
		if has {
			score += 15
		}
	}

	level := Weak
	switch {
	case score >= 90:
		level = Strong
	case score >= 60:
		level = Medium
	}
	return Strength{Score: score, Level: level}
}

// Report is the overall security score of a vault.
type Report struct {
	Score   int    `json:"score"`
	Grade   string `json:"grade"`
	Message string `json:"message"`
	Level   string `json:"level"`
	Weak    int    `json:"weak"`
	Total   int    `json:"total"`
}

var grades = []struct {
	min     int
	grade   string
	level   string
	message string
}{
	{90, "A+", "excellent", "Excellent security"},
	{80, "A", "strong", "Strong security"},
	{70, "B", "good", "Good security"},
	{60, "C", "fair", "Fair security"},
	{50, "D", "weak", "Weak security"},
	{0, "F", "critical", "Critical security issues"},
}

// Score grades a set of passwords by their average strength.
func Score(passwords []string) Report {
	if len(passwords) == 0 {
		return Report{Score: 100, Grade: "N/A", Message: "No passwords stored yet", Level: "neutral"}
	}

	total, weak := 0, 0
	for _, p := range passwords {
		s := Rate(p).Score
		total += s
		if s < 60 {
			weak++
		}
	}
	avg := int(math.Round(float64(total) / float64(len(passwords))))

	r := Report{Score: avg, Weak: weak, Total: len(passwords)}
	for _, g := range grades {
		if avg >= g.min {
			r.Grade, r.Level, r.Message = g.grade, g.level, g.message
			break
		}
	}
	switch {
	case weak == 1:
		r.Message = "1 weak password detected"
	case weak > 1:
		r.Message = fmt.Sprintf("%d weak passwords detected", weak)
	}
	return r
}
