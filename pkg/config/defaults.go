package config

// NewDefaultConfig returns a fully-populated Config with sane defaults
// for local development.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: ":8000",
		},
		Client: ClientConfig{
			APITarget: "http://localhost:8000",
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Draft: DraftConfig{
			TimeoutSeconds: 120,
		},
	}
}
