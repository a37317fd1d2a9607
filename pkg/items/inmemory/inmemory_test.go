package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/checkeredai/flexpolicy/pkg/items/inmemory"
)

var _ = Describe("Store", func() {
	var (
		store *inmemory.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		store = inmemory.NewStore()
		ctx = context.Background()
	})

	It("returns the inserted row with a generated id", func() {
		row, err := store.Insert(ctx, "first")
		Expect(err).NotTo(HaveOccurred())
		Expect(row.ID).NotTo(BeEmpty())
		Expect(row.Name).To(Equal("first"))
		Expect(row.CreatedAt).NotTo(BeZero())
	})

	It("keeps rows in insertion order", func() {
		_, err := store.Insert(ctx, "first")
		Expect(err).NotTo(HaveOccurred())
		_, err = store.Insert(ctx, "second")
		Expect(err).NotTo(HaveOccurred())

		rows := store.Items()
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].Name).To(Equal("first"))
		Expect(rows[1].Name).To(Equal("second"))
	})

	It("assigns distinct ids", func() {
		a, err := store.Insert(ctx, "a")
		Expect(err).NotTo(HaveOccurred())
		b, err := store.Insert(ctx, "b")
		Expect(err).NotTo(HaveOccurred())
		Expect(a.ID).NotTo(Equal(b.ID))
	})
})
