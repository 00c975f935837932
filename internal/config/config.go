// Package config exposes the strongly typed credentials configuration
// loaded from tradestack.yaml.
//
// The setup flow never reads this file — it only reminds the user it will
// be needed. The check command reads it to verify credentials are in place
// and, with --api, to probe the broker API.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/tradestack/internal/model"
)

// DefaultBaseURL is the Dhan production API endpoint, used when the
// config file does not set one.
const DefaultBaseURL = "https://api.dhan.co"

// DefaultFileName is the credentials file searched for in the working
// directory.
const DefaultFileName = "tradestack.yaml"

// Broker holds the Dhan API credentials and endpoint.
type Broker struct {
	// ClientID is the Dhan client identifier.
	ClientID string `yaml:"client_id"`

	// AccessToken is the Dhan API access token. Treated as a secret:
	// only ever printed redacted.
	AccessToken string `yaml:"access_token"`

	// BaseURL is the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string `yaml:"base_url"`
}

// Config is the root of tradestack.yaml.
type Config struct {
	Broker Broker `yaml:"broker"`
}

// Load reads and parses a credentials file, applying defaults.
// Returns a CLIError with ExitConfigError when the file is missing
// or unparsable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("credentials file not found: %s", path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid credentials file %s", path), err)
	}

	if cfg.Broker.BaseURL == "" {
		cfg.Broker.BaseURL = DefaultBaseURL
	}
	return &cfg, nil
}

// Validate checks that the credentials needed for API access are present.
func (c *Config) Validate() error {
	if c.Broker.ClientID == "" {
		return fmt.Errorf("broker.client_id is not set")
	}
	if c.Broker.AccessToken == "" {
		return fmt.Errorf("broker.access_token is not set")
	}
	return nil
}

// Find searches for the credentials file in the given directory.
// Returns "" when it does not exist — a missing file is reported by the
// check command, not treated as a hard error.
func Find(dir string) string {
	path := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// Redact shortens a secret for display: the first four characters
// followed by an ellipsis. Short values are fully masked.
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "…"
}
