package services_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/natindo/CountdownBot/internal/database"
	"github.com/natindo/CountdownBot/internal/models"
	"github.com/natindo/CountdownBot/internal/services"
)

var _ = Describe("EventStore", func() {
	var (
		ctx     context.Context
		backend *database.MemoryStore
		store   *services.EventStore
		now     time.Time
	)

	clock := func() time.Time { return now }

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)
		backend = database.NewMemoryStore()
		store = services.NewEventStore(backend, services.PolicyOverwrite, discardLogger(), services.WithStoreClock(clock))
	})

	It("returns the computed deadline from Add and Get", func() {
		ev, err := store.Add(ctx, 1, "party", "2025-01-01 10:00")
		Expect(err).NotTo(HaveOccurred())

		want, err := services.ComputeDeadlineRaw("2025-01-01 10:00", now)
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Deadline).To(Equal(want))
		Expect(ev.Deadline.Sub(now)).To(Equal(time.Hour))

		got, err := store.Get(ctx, 1, "party")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).NotTo(BeNil())
		Expect(got.Deadline).To(Equal(want))
		Expect(got.ID).To(Equal(ev.ID))
	})

	It("renders the countdown branch for the chat1/party scenario", func() {
		ev, err := store.Add(ctx, 1, "party", "2025-01-01 10:00")
		Expect(err).NotTo(HaveOccurred())

		remaining := ev.Deadline.Sub(now)
		Expect(remaining).To(Equal(time.Hour))
		Expect(services.EventText(remaining, ev.Name, true)).To(Equal(services.CountdownText(time.Hour, "party")))
	})

	It("leaves nothing behind on a parse error", func() {
		_, err := store.Add(ctx, 1, "party", "2025-01-01 nope")
		Expect(err).To(MatchError(services.ErrParse))
		Expect(backend.Len()).To(BeZero())
	})

	It("treats surrounding spaces in the name as the same key", func() {
		ev, err := store.Add(ctx, 1, " party ", "2025-01-01 10:00")
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Name).To(Equal("party"))

		got, err := store.Get(ctx, 1, " party ")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).NotTo(BeNil())
		Expect(got.ID).To(Equal(ev.ID))

		got, err = store.Get(ctx, 1, "party")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).NotTo(BeNil())

		removed, err := store.Delete(ctx, 1, "  party")
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(BeTrue())
		Expect(backend.Len()).To(BeZero())
	})

	It("rejects an empty name", func() {
		_, err := store.Add(ctx, 1, "   ", "2025-01-01 10:00")
		Expect(err).To(MatchError(services.ErrParse))
		Expect(backend.Len()).To(BeZero())
	})

	It("returns false when deleting an unknown key and keeps the store intact", func() {
		_, err := store.Add(ctx, 1, "party", "2025-01-01 10:00")
		Expect(err).NotTo(HaveOccurred())

		removed, err := store.Delete(ctx, 1, "other")
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(BeFalse())

		removed, err = store.Delete(ctx, 2, "party")
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(BeFalse())
		Expect(backend.Len()).To(Equal(1))
	})

	It("deletes only once", func() {
		_, err := store.Add(ctx, 1, "party", "2025-01-01 10:00")
		Expect(err).NotTo(HaveOccurred())

		removed, err := store.Delete(ctx, 1, "party")
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(BeTrue())

		removed, err = store.Delete(ctx, 1, "party")
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(BeFalse())

		got, err := store.Get(ctx, 1, "party")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeNil())
	})

	It("maps a missing cancel to ErrNotFound", func() {
		Expect(store.Cancel(ctx, 1, "ghost")).To(MatchError(services.ErrNotFound))

		_, err := store.Add(ctx, 1, "party", "2025-01-01 10:00")
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Cancel(ctx, 1, "party")).To(Succeed())
		Expect(store.Cancel(ctx, 1, "party")).To(MatchError(services.ErrNotFound))
	})

	Context("with the overwrite policy", func() {
		It("keeps a single record with the newer deadline", func() {
			first, err := store.Add(ctx, 1, "party", "2025-01-01 10:00")
			Expect(err).NotTo(HaveOccurred())
			second, err := store.Add(ctx, 1, "party", "2025-01-02 12:30")
			Expect(err).NotTo(HaveOccurred())

			Expect(second.ID).NotTo(Equal(first.ID))
			Expect(backend.Len()).To(Equal(1))

			got, err := store.Get(ctx, 1, "party")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Deadline).To(Equal(time.Date(2025, 1, 2, 12, 30, 0, 0, time.Local)))
			Expect(got.ID).To(Equal(second.ID))
		})

		It("does not let an old generation release the new one", func() {
			first, err := store.Add(ctx, 1, "party", "2025-01-01 10:00")
			Expect(err).NotTo(HaveOccurred())
			second, err := store.Add(ctx, 1, "party", "2025-01-02 12:30")
			Expect(err).NotTo(HaveOccurred())

			released, err := store.Release(ctx, first)
			Expect(err).NotTo(HaveOccurred())
			Expect(released).To(BeFalse())

			released, err = store.Release(ctx, second)
			Expect(err).NotTo(HaveOccurred())
			Expect(released).To(BeTrue())
			Expect(backend.Len()).To(BeZero())
		})
	})

	Context("with the reject policy", func() {
		BeforeEach(func() {
			store = services.NewEventStore(backend, services.PolicyReject, discardLogger(), services.WithStoreClock(clock))
		})

		It("refuses a second event with the same name", func() {
			first, err := store.Add(ctx, 1, "party", "2025-01-01 10:00")
			Expect(err).NotTo(HaveOccurred())

			_, err = store.Add(ctx, 1, "party", "2025-01-02 12:30")
			Expect(err).To(MatchError(services.ErrDuplicate))

			got, err := store.Get(ctx, 1, "party")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(first.ID))
		})

		It("allows the same name in another chat", func() {
			_, err := store.Add(ctx, 1, "party", "2025-01-01 10:00")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Add(ctx, 2, "party", "2025-01-01 10:00")
			Expect(err).NotTo(HaveOccurred())
			Expect(backend.Len()).To(Equal(2))
		})
	})

	It("purges records past the cutoff", func() {
		old := models.Event{ID: uuid.New(), ChatID: 1, Name: "old", Deadline: now.Add(-2 * time.Hour)}
		fresh := models.Event{ID: uuid.New(), ChatID: 1, Name: "fresh", Deadline: now.Add(time.Hour)}
		Expect(backend.Insert(ctx, old, true)).To(Succeed())
		Expect(backend.Insert(ctx, fresh, true)).To(Succeed())

		n, err := store.PurgeExpired(ctx, now.Add(-time.Hour))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeEquivalentTo(1))
		Expect(backend.Len()).To(Equal(1))
	})
})
