package config

import (
	"github.com/yndnr/sessionkit-go/internal/client"
	"github.com/yndnr/sessionkit-go/internal/credstore"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// CLIConfig is the configuration for the sessionkit CLI.
type CLIConfig struct {
	Server  client.ServerSection  `koanf:"server" yaml:"server"`
	Profile client.ProfileSection `koanf:"profile" yaml:"profile"`
	Store   credstore.Config      `koanf:"store" yaml:"store"`
	Log     LogSection            `koanf:"log" yaml:"log"`
	Output  string                `koanf:"output" yaml:"output"`
}

// LogSection configures diagnostic logging on stderr.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	c := client.DefaultConfig()
	return &CLIConfig{
		Server:  c.Server,
		Profile: c.Profile,
		Store:   c.Store,
		Log: LogSection{
			Level:  "warn",
			Format: "text",
		},
		Output: OutputTable,
	}
}

// ClientConfig returns the part of the configuration the client library uses.
func (c *CLIConfig) ClientConfig() client.Config {
	return client.Config{
		Server:  c.Server,
		Profile: c.Profile,
		Store:   c.Store,
	}
}
