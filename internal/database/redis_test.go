package database_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/natindo/CountdownBot/internal/database"
)

var _ = Describe("RedisStore", func() {
	var (
		mr     *miniredis.Miniredis
		client *redis.Client
	)

	BeforeEach(func() {
		mr = miniredis.RunT(GinkgoT())
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		DeferCleanup(client.Close)
	})

	itBehavesLikeBackend(func() backend { return database.NewRedisStore(client, time.Hour) })

	It("expires keys after the deadline plus grace", func() {
		ctx := context.Background()
		store := database.NewRedisStore(client, time.Hour)
		ev := newEvent(1, "party", time.Now().Add(time.Hour))
		Expect(store.Insert(ctx, ev, true)).To(Succeed())

		ttl := mr.TTL("countdown:event:1:party")
		Expect(ttl).To(BeNumerically("~", 2*time.Hour, time.Minute))

		mr.FastForward(3 * time.Hour)
		got, err := store.Get(ctx, ev.Key())
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeNil())
	})

	It("keeps a past event around for at least a minute", func() {
		ctx := context.Background()
		store := database.NewRedisStore(client, 0)
		ev := newEvent(1, "late", time.Now().Add(-time.Hour))
		Expect(store.Insert(ctx, ev, true)).To(Succeed())
		Expect(mr.TTL("countdown:event:1:late")).To(BeNumerically(">=", 59*time.Second))
	})

	It("leaves purging to redis", func() {
		n, err := database.NewRedisStore(client, time.Hour).PurgeExpired(context.Background(), time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())
	})

	It("fails to connect to a dead server", func() {
		dead, err := miniredis.Run()
		Expect(err).NotTo(HaveOccurred())
		addr := dead.Addr()
		dead.Close()

		_, err = database.ConnectRedis(context.Background(), addr, "", 0)
		Expect(err).To(HaveOccurred())
	})
})
