package api

// Config holds the API server configuration.
type Config struct {
	// ListenAddr is the address the HTTP server binds to, e.g. ":8000".
	ListenAddr string
}
