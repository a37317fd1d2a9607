package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/checkeredai/flexpolicy/pkg/completion"
)

// tokenBatchSize is how many completion deltas are coalesced into a
// single data frame before flushing to the client.
const tokenBatchSize = 10

// ErrorResponse is the JSON error body for non-streaming endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DraftRequest is the body of POST /draft.
type DraftRequest struct {
	Prompt string `json:"prompt"`
}

// InsertItemRequest is the body of POST /items.
type InsertItemRequest struct {
	Name string `json:"name"`
}

// handleIndex returns a service banner.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "FlexPolicy API",
		"status":  "ok",
	})
}

// handleHealth returns the liveness probe response.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleInsertItem stores a demo item and echoes the stored row.
func (s *Server) handleInsertItem(c *fiber.Ctx) error {
	var req InsertItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "name is required"})
	}

	item, err := s.store.Insert(c.Context(), req.Name)
	if err != nil {
		s.logger.Error("inserting item", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to insert item"})
	}

	return c.JSON(fiber.Map{"inserted": []any{item}})
}

// handleDraft streams a policy draft for the given prompt as a
// text/event-stream of data frames delimited by blank lines.
func (s *Server) handleDraft(c *fiber.Ctx) error {
	var req DraftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "prompt is required"})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// io.Pipe + SetBodyStream gives direct backpressure: pw.Write blocks
	// until fasthttp's chunked writer has pushed the frame to the socket,
	// so tokens reach the client as they arrive instead of buffering.
	pr, pw := io.Pipe()
	ctx := c.Context()
	go s.streamDraft(ctx, pw, req.Prompt)

	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// streamDraft runs the completer and writes batched token frames to the
// pipe. Completer failures are reported in-band as a final data frame of
// the form "<status>:<short code>" so the client can surface them.
func (s *Server) streamDraft(ctx context.Context, pw *io.PipeWriter, prompt string) {
	defer pw.Close()

	var batch []string

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := fmt.Fprintf(pw, "data: %s\n\n", strings.Join(batch, ""))
		batch = batch[:0]
		return err
	}

	err := s.completer.Stream(ctx, prompt, func(delta string) error {
		batch = append(batch, delta)
		if len(batch) >= tokenBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("draft stream failed", zap.Error(err))
		_, _ = fmt.Fprintf(pw, "data: %s\n\n", errorPayload(err))
		return
	}

	if err := flush(); err != nil {
		s.logger.Warn("flushing final draft frame", zap.Error(err))
	}
}

// errorPayload renders a completer error as the in-band "status:code"
// form the streaming clients interpret.
func errorPayload(err error) string {
	var se *completion.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("%d:%s", se.Status, se.Code)
	}
	return "500:upstream_error"
}
