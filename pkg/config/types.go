package config

// Config represents the persistent flexpolicy configuration stored as
// config.toml in the .flexpolicy/ directory. The TOML layout uses
// sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	API     APIConfig     `toml:"api"`
	Client  ClientConfig  `toml:"client"`
	OpenAI  OpenAIConfig  `toml:"openai"`
	Storage StorageConfig `toml:"storage"`
	Draft   DraftConfig   `toml:"draft"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// API server (flexpolicy draft, health, items). APITarget is a full URL
// (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// OpenAIConfig holds settings for the upstream completion endpoint used
// by the draft service.
type OpenAIConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	APIKey  string `toml:"api_key,omitempty"`
	Model   string `toml:"model,omitempty"`
}

// StorageConfig holds the demo items store settings. An empty DSN makes
// the serve command fall back to the in-memory store.
type StorageConfig struct {
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// DraftConfig holds client-side draft streaming settings.
type DraftConfig struct {
	// TimeoutSeconds is the wall-clock deadline the draft command wires
	// to the session's cancel handle.
	TimeoutSeconds int `toml:"timeout_seconds,omitempty"`
}
