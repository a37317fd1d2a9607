package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/checkeredai/flexpolicy/pkg/completion"
	"github.com/checkeredai/flexpolicy/pkg/completion/openai"
)

// chunkBody renders an OpenAI SSE chunk carrying one content delta.
func chunkBody(content string) string {
	payload, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"delta": map[string]any{"content": content}},
		},
	})
	Expect(err).NotTo(HaveOccurred())
	return fmt.Sprintf("data: %s\n\n", payload)
}

var _ = Describe("Completer", func() {
	var (
		upstream *httptest.Server
		ctx      context.Context
		deltas   []string
	)

	BeforeEach(func() {
		ctx = context.Background()
		deltas = nil
	})

	AfterEach(func() {
		if upstream != nil {
			upstream.Close()
			upstream = nil
		}
	})

	record := func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	}

	Context("with a well-formed streaming response", func() {
		BeforeEach(func() {
			upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()

				Expect(r.URL.Path).To(Equal("/chat/completions"))
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-key"))

				var req struct {
					Model    string `json:"model"`
					Stream   bool   `json:"stream"`
					Messages []struct {
						Role    string `json:"role"`
						Content string `json:"content"`
					} `json:"messages"`
				}
				body, err := io.ReadAll(r.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &req)).To(Succeed())
				Expect(req.Stream).To(BeTrue())
				Expect(req.Messages).To(HaveLen(2))
				Expect(req.Messages[0].Role).To(Equal("system"))
				Expect(req.Messages[1].Content).To(Equal("overtime rules"))

				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = io.WriteString(w, chunkBody("Over"))
				_, _ = io.WriteString(w, chunkBody("time"))
				_, _ = io.WriteString(w, "data: [DONE]\n\n")
			}))
		})

		It("forwards content deltas in order and stops at the done sentinel", func() {
			c := openai.New(upstream.URL, "test-key", "gpt-4o-mini")
			err := c.Stream(ctx, "overtime rules", record)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(Equal([]string{"Over", "time"}))
		})
	})

	Context("with empty and malformed chunks interleaved", func() {
		BeforeEach(func() {
			upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = io.WriteString(w, chunkBody("ok"))
				_, _ = io.WriteString(w, "data: {not json}\n\n")
				_, _ = io.WriteString(w, chunkBody(""))
				_, _ = io.WriteString(w, ": keep-alive\n\n")
				_, _ = io.WriteString(w, chunkBody("fine"))
				_, _ = io.WriteString(w, "data: [DONE]\n\n")
			}))
		})

		It("skips them without failing", func() {
			c := openai.New(upstream.URL, "", "gpt-4o-mini")
			err := c.Stream(ctx, "p", record)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(Equal([]string{"ok", "fine"}))
		})
	})

	Context("when the upstream rejects the request", func() {
		BeforeEach(func() {
			upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = io.WriteString(w, `{"error":{"code":"rate_limit_exceeded","message":"slow down"}}`)
			}))
		})

		It("returns a StatusError carrying status and short code", func() {
			c := openai.New(upstream.URL, "", "gpt-4o-mini")
			err := c.Stream(ctx, "p", record)

			var se *completion.StatusError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Status).To(Equal(http.StatusTooManyRequests))
			Expect(se.Code).To(Equal("rate_limit_exceeded"))
			Expect(deltas).To(BeEmpty())
		})
	})

	Context("when the error body has no short code", func() {
		BeforeEach(func() {
			upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, "boom")
			}))
		})

		It("falls back to the HTTP status text", func() {
			c := openai.New(upstream.URL, "", "gpt-4o-mini")
			err := c.Stream(ctx, "p", record)

			var se *completion.StatusError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Status).To(Equal(http.StatusInternalServerError))
			Expect(se.Code).To(Equal(http.StatusText(http.StatusInternalServerError)))
		})
	})

	Context("when the delta callback returns an error", func() {
		BeforeEach(func() {
			upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = io.WriteString(w, chunkBody("one"))
				_, _ = io.WriteString(w, chunkBody("two"))
				_, _ = io.WriteString(w, "data: [DONE]\n\n")
			}))
		})

		It("stops streaming and propagates the error", func() {
			stop := errors.New("stop")
			c := openai.New(upstream.URL, "", "gpt-4o-mini")
			err := c.Stream(ctx, "p", func(delta string) error {
				deltas = append(deltas, delta)
				return stop
			})
			Expect(err).To(MatchError(stop))
			Expect(deltas).To(Equal([]string{"one"}))
		})
	})
})
