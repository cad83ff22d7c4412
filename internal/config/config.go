// Package config loads the server configuration from the environment and an
// optional YAML file. The environment always wins, matching how MCP hosts
// pass settings to stdio servers.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"oktamcp/internal/auth"
)

// DefaultScopes is always requested; OKTA_SCOPES appends to it. The
// offline_access scope is what makes the device grant hand out a refresh
// token.
var DefaultScopes = []string{"openid", "profile", "email", "offline_access"}

// Environment variable names.
const (
	EnvOrgURL     = "OKTA_ORG_URL"
	EnvClientID   = "OKTA_CLIENT_ID"
	EnvScopes     = "OKTA_SCOPES"
	EnvPrivateKey = "OKTA_PRIVATE_KEY"
	EnvKeyID      = "OKTA_KEY_ID"
	EnvLogLevel   = "OKTA_LOG_LEVEL"
	EnvLogFile    = "OKTA_LOG_FILE"
)

// Config holds everything the process needs at startup.
type Config struct {
	OrgURL     string   `yaml:"orgUrl"`
	ClientID   string   `yaml:"clientId"`
	Scopes     []string `yaml:"scopes"`
	PrivateKey string   `yaml:"privateKey"`
	KeyID      string   `yaml:"keyId"`
	LogLevel   string   `yaml:"logLevel"`
	LogFile    string   `yaml:"logFile"`
}

// Load reads the optional YAML file at path (empty path skips the file
// layer), overlays environment variables, and normalizes the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvOrgURL); v != "" {
		c.OrgURL = v
	}
	if v := os.Getenv(EnvClientID); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv(EnvScopes); v != "" {
		c.Scopes = append(c.Scopes, strings.Fields(v)...)
	}
	if v := os.Getenv(EnvPrivateKey); v != "" {
		c.PrivateKey = v
	}
	if v := os.Getenv(EnvKeyID); v != "" {
		c.KeyID = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
}

func (c *Config) normalize() {
	c.OrgURL = strings.TrimSuffix(strings.TrimSpace(c.OrgURL), "/")
	if c.OrgURL != "" && !strings.Contains(c.OrgURL, "://") {
		c.OrgURL = "https://" + c.OrgURL
	}

	// Keys handed through environment blocks often arrive with escaped
	// newlines.
	c.PrivateKey = strings.ReplaceAll(c.PrivateKey, `\n`, "\n")

	c.Scopes = mergeScopes(DefaultScopes, c.Scopes)
}

// mergeScopes appends extras to the defaults, preserving order and dropping
// duplicates.
func mergeScopes(defaults, extras []string) []string {
	seen := make(map[string]bool, len(defaults)+len(extras))
	var merged []string
	for _, scope := range append(append([]string{}, defaults...), extras...) {
		if scope == "" || seen[scope] {
			continue
		}
		seen[scope] = true
		merged = append(merged, scope)
	}
	return merged
}

// Credentials converts the configuration into the credential set the auth
// resolver consumes.
func (c *Config) Credentials() auth.Credentials {
	return auth.Credentials{
		OrgURL:        c.OrgURL,
		ClientID:      c.ClientID,
		Scopes:        c.Scopes,
		PrivateKeyPEM: c.PrivateKey,
		KeyID:         c.KeyID,
	}
}
