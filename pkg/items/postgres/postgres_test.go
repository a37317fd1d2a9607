package postgres_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/checkeredai/flexpolicy/pkg/items/postgres"
)

// connStr returns the PostgreSQL connection string from the environment
// or skips the test.
func connStr() string {
	dsn := os.Getenv("FLEXPOLICY_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("FLEXPOLICY_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Store", func() {
	var (
		store *postgres.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		store, err = postgres.NewStore(ctx, connStr())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			Expect(store.Close()).To(Succeed())
		}
	})

	It("inserts a row and returns it", func() {
		row, err := store.Insert(ctx, "integration-item")
		Expect(err).NotTo(HaveOccurred())
		Expect(row.ID).NotTo(BeEmpty())
		Expect(row.Name).To(Equal("integration-item"))
		Expect(row.CreatedAt).NotTo(BeZero())
	})
})
