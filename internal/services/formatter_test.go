package services_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/natindo/CountdownBot/internal/services"
)

var _ = Describe("Formatter", func() {
	DescribeTable("FormatRemaining",
		func(d time.Duration, want string) {
			Expect(services.FormatRemaining(d)).To(Equal(want))
		},
		Entry("hours force minutes", time.Hour+5*time.Second, "1h 0m 5s"),
		Entry("minutes and seconds", 2*time.Minute+30*time.Second, "2m 30s"),
		Entry("seconds only", 9*time.Second, "9s"),
		Entry("zero", time.Duration(0), "0s"),
		Entry("sub-second truncates", 900*time.Millisecond, "0s"),
		Entry("days with hours", 2*24*time.Hour+3*time.Hour+time.Second, "2d 3h 0m 1s"),
		Entry("days skip empty hours", 24*time.Hour+5*time.Second, "1d 5s"),
		Entry("days with minutes", 24*time.Hour+time.Minute, "1d 1m 0s"),
		Entry("exact minute", time.Minute, "1m 0s"),
	)

	Describe("EventText", func() {
		It("prefers ended over cancelled", func() {
			Expect(services.EventText(-time.Second, "party", false)).To(Equal(services.EndedText("party")))
		})

		It("renders cancelled for an absent record", func() {
			Expect(services.EventText(time.Minute, "party", false)).To(Equal(services.CancelledText("party")))
		})

		It("renders the countdown for a live record", func() {
			text := services.EventText(time.Hour, "party", true)
			Expect(text).To(Equal(services.CountdownText(time.Hour, "party")))
			Expect(text).To(ContainSubstring("party"))
			Expect(text).To(ContainSubstring("1h 0m 0s"))
		})
	})
})
