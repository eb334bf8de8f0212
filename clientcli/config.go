package clientcli

import (
	"net/url"
	"os"
	"strings"
)

// DefaultEndpoint is the default admin API endpoint URL.
const DefaultEndpoint = "http://localhost:5709"

// Environment variables read by ConfigFromEnv.
const (
	EnvServer = "DBMANAGER_SERVER"
	EnvToken  = "DBMANAGER_TOKEN"
)

// Config holds the admin API endpoint and credentials.
type Config struct {
	Endpoint string
	Token    string
}

// WithDefaults returns a copy with empty fields filled in.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.Endpoint == "" {
		out.Endpoint = DefaultEndpoint
	}
	return &out
}

// Validate checks that the endpoint is an absolute http(s) URL.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpoint
	}
	return nil
}

// ConfigFromEnv reads DBMANAGER_SERVER and DBMANAGER_TOKEN.
func ConfigFromEnv() *Config {
	return &Config{
		Endpoint: strings.TrimSpace(os.Getenv(EnvServer)),
		Token:    os.Getenv(EnvToken),
	}
}

// MergeConfig merges configs left to right. Non-empty fields of later
// configs override earlier ones. Nil configs are skipped.
func MergeConfig(configs ...*Config) *Config {
	out := &Config{}
	for _, c := range configs {
		if c == nil {
			continue
		}
		if c.Endpoint != "" {
			out.Endpoint = c.Endpoint
		}
		if c.Token != "" {
			out.Token = c.Token
		}
	}
	return out
}
