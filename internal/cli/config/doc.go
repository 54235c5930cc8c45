// Package config holds the configuration of the sessionkit CLI.
//
// Values are layered: built-in defaults, then ~/.sessionkit/config.yaml (or
// the file named by --config), then SESSIONKIT_* environment variables, then
// command-line flags.
package config
