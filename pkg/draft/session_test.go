package draft_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/checkeredai/flexpolicy/pkg/draft"
)

// recorder collects callback invocations. Callbacks run on the session
// goroutine; reads happen only after Session.Wait, which establishes the
// necessary ordering.
type recorder struct {
	tokens []string
	errors []string
}

func (r *recorder) onToken(tok string) { r.tokens = append(r.tokens, tok) }
func (r *recorder) onError(msg string) { r.errors = append(r.errors, msg) }

// sseHandler writes the given chunks to the response with a flush after
// each, forcing distinct chunk boundaries on the wire.
func sseHandler(chunks ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, chunk := range chunks {
			_, _ = w.Write([]byte(chunk))
			flusher.Flush()
		}
	}
}

var _ = Describe("Session", func() {
	var (
		server *httptest.Server
		rec    *recorder
		ctx    context.Context
	)

	BeforeEach(func() {
		rec = &recorder{}
		ctx = context.Background()
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
			server = nil
		}
	})

	stream := func(prompt string) draft.State {
		client := draft.NewClient(server.URL)
		session := client.Stream(ctx, draft.Request{Prompt: prompt}, rec.onToken, rec.onError)
		return session.Wait()
	}

	Context("with a well-formed stream in a single chunk", func() {
		BeforeEach(func() {
			server = httptest.NewServer(sseHandler("data: hello\n\ndata: world\n\n"))
		})

		It("dispatches tokens in stream order and completes", func() {
			state := stream("draft me a policy")
			Expect(state).To(Equal(draft.StateCompleted))
			Expect(rec.tokens).To(Equal([]string{"hello", "world"}))
			Expect(rec.errors).To(BeEmpty())
		})
	})

	Context("with the same stream split across three chunk arrivals", func() {
		BeforeEach(func() {
			server = httptest.NewServer(sseHandler("data: he", "llo\n\nda", "ta: world\n\n"))
		})

		It("produces the same token sequence as the single-chunk case", func() {
			state := stream("draft me a policy")
			Expect(state).To(Equal(draft.StateCompleted))
			Expect(rec.tokens).To(Equal([]string{"hello", "world"}))
			Expect(rec.errors).To(BeEmpty())
		})
	})

	Context("with frames lacking the data prefix", func() {
		BeforeEach(func() {
			server = httptest.NewServer(sseHandler(
				"event: noise\n\n: keep-alive\n\ndata: ok\n\n"))
		})

		It("skips them without tokens or errors", func() {
			state := stream("p")
			Expect(state).To(Equal(draft.StateCompleted))
			Expect(rec.tokens).To(Equal([]string{"ok"}))
			Expect(rec.errors).To(BeEmpty())
		})
	})

	Context("with an unterminated trailing span", func() {
		BeforeEach(func() {
			server = httptest.NewServer(sseHandler("data: hello\n\ndata: partial"))
		})

		It("drops the partial frame and completes", func() {
			state := stream("p")
			Expect(state).To(Equal(draft.StateCompleted))
			Expect(rec.tokens).To(Equal([]string{"hello"}))
			Expect(rec.errors).To(BeEmpty())
		})
	})

	Context("when the stream carries the quota sentinel", func() {
		BeforeEach(func() {
			// Everything in one chunk: the frames after the sentinel are
			// already buffered when it is interpreted.
			server = httptest.NewServer(sseHandler(
				"data: hello\n\ndata: 429 slow down\n\ndata: after\n\n"))
		})

		It("reports the quota message once and processes nothing further", func() {
			state := stream("p")
			Expect(state).To(Equal(draft.StateFailed))
			Expect(rec.tokens).To(Equal([]string{"hello"}))
			Expect(rec.errors).To(Equal([]string{draft.QuotaMessage}))
		})
	})

	Context("when the sentinel is a bare 429", func() {
		BeforeEach(func() {
			server = httptest.NewServer(sseHandler("data: 429\n\n"))
		})

		It("never forwards it as a token", func() {
			state := stream("p")
			Expect(state).To(Equal(draft.StateFailed))
			Expect(rec.tokens).To(BeEmpty())
			Expect(rec.errors).To(Equal([]string{draft.QuotaMessage}))
		})
	})

	Context("when the server responds with a non-success status", func() {
		BeforeEach(func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
		})

		It("reports HTTP 500 once without entering the read loop", func() {
			state := stream("p")
			Expect(state).To(Equal(draft.StateFailed))
			Expect(rec.tokens).To(BeEmpty())
			Expect(rec.errors).To(Equal([]string{"HTTP 500"}))
		})
	})

	Context("when the transport fails before a response", func() {
		It("surfaces the transport error text", func() {
			server = httptest.NewServer(sseHandler())
			url := server.URL
			server.Close()
			server = nil

			client := draft.NewClient(url)
			session := client.Stream(ctx, draft.Request{Prompt: "p"}, rec.onToken, rec.onError)
			Expect(session.Wait()).To(Equal(draft.StateFailed))
			Expect(rec.tokens).To(BeEmpty())
			Expect(rec.errors).To(HaveLen(1))
			Expect(rec.errors[0]).NotTo(BeEmpty())
		})
	})

	Context("when the caller cancels mid-stream", func() {
		var firstToken chan struct{}

		BeforeEach(func() {
			firstToken = make(chan struct{})
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				flusher := w.(http.Flusher)
				_, _ = w.Write([]byte("data: hello\n\n"))
				flusher.Flush()
				close(firstToken)
				// Hold the stream open until the client goes away.
				<-r.Context().Done()
			}))
		})

		It("terminates silently in the cancelled state", func() {
			client := draft.NewClient(server.URL)
			session := client.Stream(ctx, draft.Request{Prompt: "p"}, rec.onToken, rec.onError)

			Eventually(firstToken).Should(BeClosed())
			session.Cancel()

			Expect(session.Wait()).To(Equal(draft.StateCancelled))
			Expect(rec.tokens).To(Equal([]string{"hello"}))
			Expect(rec.errors).To(BeEmpty())
		})

		It("treats a second cancel as a no-op", func() {
			client := draft.NewClient(server.URL)
			session := client.Stream(ctx, draft.Request{Prompt: "p"}, rec.onToken, rec.onError)

			Eventually(firstToken).Should(BeClosed())
			session.Cancel()
			session.Cancel()

			Expect(session.Wait()).To(Equal(draft.StateCancelled))
			Expect(rec.errors).To(BeEmpty())
		})

		It("supports an external wall-clock deadline", func() {
			client := draft.NewClient(server.URL)
			session := client.Stream(ctx, draft.Request{Prompt: "p"}, rec.onToken, rec.onError)

			timer := time.AfterFunc(50*time.Millisecond, session.Cancel)
			defer timer.Stop()

			Expect(session.Wait()).To(Equal(draft.StateCancelled))
			Expect(rec.errors).To(BeEmpty())
		})
	})

	Context("when cancel is invoked after natural completion", func() {
		BeforeEach(func() {
			server = httptest.NewServer(sseHandler("data: done\n\n"))
		})

		It("leaves the completed state untouched", func() {
			client := draft.NewClient(server.URL)
			session := client.Stream(ctx, draft.Request{Prompt: "p"}, rec.onToken, rec.onError)
			Expect(session.Wait()).To(Equal(draft.StateCompleted))

			session.Cancel()
			session.Cancel()

			Expect(session.State()).To(Equal(draft.StateCompleted))
			Expect(rec.tokens).To(Equal([]string{"done"}))
			Expect(rec.errors).To(BeEmpty())
		})
	})
})
