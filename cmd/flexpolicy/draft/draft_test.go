package draftcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	draftcmder "github.com/checkeredai/flexpolicy/cmd/flexpolicy/draft"
)

var _ = Describe("NewDraftCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := draftcmder.NewDraftCmd()
		Expect(cmd.Use).To(Equal("draft <prompt>"))
	})

	It("requires a prompt argument", func() {
		cmd := draftcmder.NewDraftCmd()
		cmd.SetArgs([]string{})
		err := cmd.Execute()
		Expect(err).To(HaveOccurred())
	})

	It("exposes api-target, timeout, and render flags", func() {
		cmd := draftcmder.NewDraftCmd()
		Expect(cmd.Flags().Lookup("api-target")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("timeout")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("render")).NotTo(BeNil())
	})

	It("defaults the timeout from the config defaults", func() {
		cmd := draftcmder.NewDraftCmd()
		Expect(cmd.Flags().Lookup("timeout").DefValue).To(Equal("120"))
	})
})
