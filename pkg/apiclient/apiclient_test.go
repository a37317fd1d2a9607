package apiclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/checkeredai/flexpolicy/pkg/apiclient"
)

var _ = Describe("Client", func() {
	var (
		server *httptest.Server
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
			server = nil
		}
	})

	Describe("Health", func() {
		It("succeeds when the probe reports ok", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"status":"ok"}`)
			}))

			err := apiclient.NewClient(server.URL).Health(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		It("fails on a non-success status", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))

			err := apiclient.NewClient(server.URL).Health(ctx)
			Expect(err).To(MatchError(ContainSubstring("HTTP 503")))
		})

		It("fails on an unexpected status body", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"status":"degraded"}`)
			}))

			err := apiclient.NewClient(server.URL).Health(ctx)
			Expect(err).To(MatchError(ContainSubstring("degraded")))
		})
	})

	Describe("AddItem", func() {
		It("returns the inserted row", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()

				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/items"))

				body, err := io.ReadAll(r.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(body).To(MatchJSON(`{"name":"widget"}`))

				_, _ = io.WriteString(w,
					`{"inserted":[{"id":"abc-123","name":"widget","created_at":"2026-01-02T15:04:05Z"}]}`)
			}))

			row, err := apiclient.NewClient(server.URL).AddItem(ctx, "widget")
			Expect(err).NotTo(HaveOccurred())
			Expect(row.ID).To(Equal("abc-123"))
			Expect(row.Name).To(Equal("widget"))
		})

		It("surfaces the response body on failure", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"error":"name is required"}`)
			}))

			_, err := apiclient.NewClient(server.URL).AddItem(ctx, "")
			Expect(err).To(MatchError(ContainSubstring("HTTP 400")))
			Expect(err).To(MatchError(ContainSubstring("name is required")))
		})

		It("rejects an empty inserted list", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"inserted":[]}`)
			}))

			_, err := apiclient.NewClient(server.URL).AddItem(ctx, "widget")
			Expect(err).To(MatchError(ContainSubstring("no rows")))
		})
	})
})
