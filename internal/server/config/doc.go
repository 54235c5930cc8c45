// Package config provides configuration for the development mock API.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (profile, secrets, TLS pair)
//   - sanitize.go: Log sanitization (hide secrets)
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// SESSIONKIT_MOCK_* environment variables and flags.
package config
