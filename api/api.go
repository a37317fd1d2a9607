// Package api implements the FlexPolicy HTTP service: a liveness probe,
// a demo items round trip, and the /draft endpoint that streams policy
// drafts as a text/event-stream of data frames.
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/checkeredai/flexpolicy/pkg/completion"
	"github.com/checkeredai/flexpolicy/pkg/items"
)

// Server is the FlexPolicy API server.
type Server struct {
	config    Config
	store     items.Store
	completer completion.Completer
	logger    *zap.Logger
	app       *fiber.App
}

// NewServer creates a new API server. The item store and completer are
// injected so tests can swap in in-memory and canned implementations.
func NewServer(config Config, store items.Store, completer completion.Completer, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		store:     store,
		completer: completer,
		logger:    logger,
		app:       app,
	}

	app.Use(s.requestLogger)

	app.Get("/", s.handleIndex)
	app.Get("/health", s.handleHealth)
	app.Post("/items", s.handleInsertItem)
	app.Post("/draft", s.handleDraft)

	return s
}

// requestLogger tags each request with an id and logs it on completion.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	requestID := uuid.NewString()
	c.Locals("request_id", requestID)

	err := c.Next()

	s.logger.Info("request",
		zap.String("request_id", requestID),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
	)

	return err
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
