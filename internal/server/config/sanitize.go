package config

import "strings"

// Sanitize returns a copy of the config with secrets masked, for logging.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	if sanitized.Auth.JWTSecret != "" {
		sanitized.Auth.JWTSecret = maskSecret(sanitized.Auth.JWTSecret)
	}
	if sanitized.Auth.SessionKey != "" {
		sanitized.Auth.SessionKey = maskSecret(sanitized.Auth.SessionKey)
	}
	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
