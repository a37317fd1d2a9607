package config

import (
	"fmt"
	"strconv"
)

// configKeyInfo maps a user-facing dotted key name to a getter and setter
// on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"openai.base_url": {
		get: func(c *Config) string { return c.OpenAI.BaseURL },
		set: func(c *Config, v string) error { c.OpenAI.BaseURL = v; return nil },
	},
	"openai.api_key": {
		get: func(c *Config) string { return c.OpenAI.APIKey },
		set: func(c *Config, v string) error { c.OpenAI.APIKey = v; return nil },
	},
	"openai.model": {
		get: func(c *Config) string { return c.OpenAI.Model },
		set: func(c *Config, v string) error { c.OpenAI.Model = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"draft.timeout_seconds": {
		get: func(c *Config) string {
			if c.Draft.TimeoutSeconds == 0 {
				return ""
			}
			return strconv.Itoa(c.Draft.TimeoutSeconds)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("draft.timeout_seconds must be a positive integer, got %q", v)
			}
			c.Draft.TimeoutSeconds = n
			return nil
		},
	},
}

// ValidConfigKeys returns the list of all supported configuration key
// names in a stable, logical order matching the TOML section layout.
func ValidConfigKeys() []string {
	ordered := []string{
		"api.listen",
		"client.api_target",
		"openai.base_url",
		"openai.api_key",
		"openai.model",
		"storage.postgres_dsn",
		"draft.timeout_seconds",
	}

	result := make([]string, 0, len(ordered))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported
// configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}
