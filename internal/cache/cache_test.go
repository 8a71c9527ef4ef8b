package cache

import (
	"errors"
	"time"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/reviewradar/reviewradar/api/types"
)

var _ = ginkgo.Describe("ResultCache", func() {
	var (
		now   time.Time
		cache *ResultCache
	)

	ginkgo.BeforeEach(func() {
		now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		cache = NewResultCache(func() time.Time { return now })
	})

	ginkgo.It("should set and get success outcomes", func() {
		set := &types.ReviewSet{Host: "gerrit-main"}
		cache.Set("gerrit-main", Outcome{Reviews: set})

		entry, ok := cache.Get("gerrit-main")
		Expect(ok).To(BeTrue())
		Expect(entry.Outcome.Success()).To(BeTrue())
		Expect(entry.Outcome.Reviews.Host).To(Equal("gerrit-main"))
		Expect(entry.RecordedAt).To(Equal(now))
	})

	ginkgo.It("should set and get failure outcomes", func() {
		cache.Set("gerrit-main", Outcome{Err: errors.New("boom")})

		entry, ok := cache.Get("gerrit-main")
		Expect(ok).To(BeTrue())
		Expect(entry.Outcome.Success()).To(BeFalse())
		Expect(entry.Outcome.Err).To(MatchError("boom"))
	})

	ginkgo.It("should report absent hosts", func() {
		_, ok := cache.Get("nowhere")
		Expect(ok).To(BeFalse())
	})

	ginkgo.It("should overwrite entries wholesale", func() {
		cache.Set("gerrit-main", Outcome{Err: errors.New("boom")})
		now = now.Add(30 * time.Second)
		cache.Set("gerrit-main", Outcome{Reviews: &types.ReviewSet{Host: "gerrit-main"}})

		entry, ok := cache.Get("gerrit-main")
		Expect(ok).To(BeTrue())
		Expect(entry.Outcome.Success()).To(BeTrue())
		Expect(entry.RecordedAt).To(Equal(now))
		Expect(cache.Len()).To(Equal(1))
	})

	ginkgo.It("should keep stale entries until overwritten", func() {
		cache.Set("gerrit-main", Outcome{Reviews: &types.ReviewSet{Host: "gerrit-main"}})
		now = now.Add(time.Hour)

		entry, ok := cache.Get("gerrit-main")
		Expect(ok).To(BeTrue())
		Expect(entry.Fresh(now, time.Minute)).To(BeFalse())
	})

	ginkgo.It("should judge freshness strictly against the TTL", func() {
		cache.Set("gerrit-main", Outcome{Reviews: &types.ReviewSet{Host: "gerrit-main"}})
		entry, _ := cache.Get("gerrit-main")

		Expect(entry.Fresh(now.Add(59*time.Second), time.Minute)).To(BeTrue())
		Expect(entry.Fresh(now.Add(time.Minute), time.Minute)).To(BeFalse())
	})
})
