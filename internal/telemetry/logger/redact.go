package logger

import (
	"log/slog"
	"strings"
)

// jwtPrefix is the base64url encoding of `{"` which starts every JWT header.
const jwtPrefix = "eyJ"

// Key fragments that mark an attribute as a credential.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token", // also matches the "acesstoken" wire field
	"cookie",
	"credential",
	"authorization",
	"bearer",
	"passphrase",
	"encryption_key",
}

const redactedValue = "***REDACTED***"

// redactSensitive replaces credential values in a log attribute.
// JWT-shaped values are masked wherever they appear; values under a
// sensitive key are replaced entirely.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if s == "" {
			return a
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if IsSensitiveValue(s) {
			return slog.String(a.Key, maskValue(s))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// maskValue keeps the first and last three characters of a value.
func maskValue(value string) string {
	if len(value) <= 12 {
		return "***"
	}
	return value[:3] + "..." + value[len(value)-3:]
}

// RedactString masks value if it looks like a credential and returns it unchanged otherwise.
func RedactString(value string) string {
	if IsSensitiveValue(value) {
		return maskValue(value)
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(k, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether value looks like a bearer credential.
func IsSensitiveValue(value string) bool {
	if strings.HasPrefix(value, "Bearer ") {
		return true
	}
	return strings.HasPrefix(value, jwtPrefix) && strings.Count(value, ".") == 2
}
