package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/reviewradar/reviewradar/api/types"
	"github.com/reviewradar/reviewradar/internal/cache"
)

// fakeClient counts fetches per host and serves canned outcomes. An optional
// gate blocks every fetch until released, for concurrency tests.
type fakeClient struct {
	mu           sync.Mutex
	accountCalls map[string]int
	accountErr   map[string]error
	reviewsErr   map[string]error
	reviews      map[string][]types.Review
	gate         chan struct{}
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		accountCalls: map[string]int{},
		accountErr:   map[string]error{},
		reviewsErr:   map[string]error{},
		reviews:      map[string][]types.Review{},
	}
}

func (f *fakeClient) FetchAccount(_ context.Context, host types.Host) (types.Account, error) {
	f.mu.Lock()
	f.accountCalls[host.Name]++
	gate := f.gate
	err := f.accountErr[host.Name]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return types.Account{}, err
	}
	return types.Account{AccountID: 7, Username: "viewer"}, nil
}

func (f *fakeClient) FetchReviews(_ context.Context, host types.Host, account types.Account) (types.ReviewSet, error) {
	f.mu.Lock()
	err := f.reviewsErr[host.Name]
	reviews := f.reviews[host.Name]
	f.mu.Unlock()

	if err != nil {
		return types.ReviewSet{}, err
	}
	return types.ReviewSet{Host: host.Name, Viewer: account, Reviews: reviews}, nil
}

func (f *fakeClient) calls(host string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accountCalls[host]
}

var _ = Describe("Orchestrator", func() {
	var (
		now    time.Time
		ttl    time.Duration
		client *fakeClient
		rc     *cache.ResultCache
		orch   *Orchestrator
		hostA  types.Host
		hostB  types.Host
	)

	clock := func() time.Time { return now }

	BeforeEach(func() {
		now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		ttl = time.Minute
		client = newFakeClient()
		rc = cache.NewResultCache(clock)
		orch = NewOrchestrator(client, rc, ttl, clock)
		hostA = types.Host{Name: "alpha", URL: "https://alpha.example.com"}
		hostB = types.Host{Name: "beta", URL: "https://beta.example.com"}
	})

	It("should fail with a configuration error for an empty host set", func() {
		_, err := orch.Refresh(context.Background(), nil)
		Expect(err).To(MatchError(ErrNoHosts))
		Expect(client.calls("alpha")).To(Equal(0))
	})

	It("should fetch every host on a cold cache and record the outcomes", func() {
		client.reviews["alpha"] = []types.Review{{ID: "x"}}

		out, err := orch.Refresh(context.Background(), []types.Host{hostA, hostB})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Results).To(HaveLen(2))
		Expect(out.Errors).To(BeEmpty())
		Expect(client.calls("alpha")).To(Equal(1))
		Expect(client.calls("beta")).To(Equal(1))

		entry, ok := rc.Get("alpha")
		Expect(ok).To(BeTrue())
		Expect(entry.RecordedAt).To(Equal(now))
		Expect(entry.Outcome.Reviews.Reviews).To(HaveLen(1))
	})

	It("should reuse a fresh cached success without any network access", func() {
		rc.Set("alpha", cache.Outcome{Reviews: &types.ReviewSet{Host: "alpha"}})
		now = now.Add(30 * time.Second)

		out, err := orch.Refresh(context.Background(), []types.Host{hostA})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Results).To(HaveLen(1))
		Expect(client.calls("alpha")).To(Equal(0))
	})

	It("should reuse a fresh cached failure verbatim", func() {
		rc.Set("alpha", cache.Outcome{Err: errors.New("boom")})

		out, err := orch.Refresh(context.Background(), []types.Host{hostA})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Results).To(BeEmpty())
		Expect(out.Errors).To(HaveLen(1))
		Expect(out.Errors[0].Host).To(Equal("alpha"))
		Expect(out.Errors[0].Err).To(MatchError("boom"))
		Expect(client.calls("alpha")).To(Equal(0))
	})

	It("should refetch once the entry reaches the TTL and overwrite it", func() {
		rc.Set("alpha", cache.Outcome{Err: errors.New("old failure")})
		now = now.Add(ttl)

		out, err := orch.Refresh(context.Background(), []types.Host{hostA})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Results).To(HaveLen(1))
		Expect(client.calls("alpha")).To(Equal(1))

		entry, _ := rc.Get("alpha")
		Expect(entry.Outcome.Success()).To(BeTrue())
		Expect(entry.RecordedAt).To(Equal(now))
	})

	It("should cache a fresh failure outcome too", func() {
		client.accountErr["alpha"] = errors.New("503 from upstream")

		_, err := orch.Refresh(context.Background(), []types.Host{hostA})
		Expect(err).NotTo(HaveOccurred())

		entry, ok := rc.Get("alpha")
		Expect(ok).To(BeTrue())
		Expect(entry.Outcome.Success()).To(BeFalse())
		Expect(entry.RecordedAt).To(Equal(now))
	})

	It("should isolate one host's failure from the others", func() {
		client.accountErr["alpha"] = errors.New("auth required")
		client.reviews["beta"] = []types.Review{{ID: "y"}}

		out, err := orch.Refresh(context.Background(), []types.Host{hostA, hostB})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Results).To(HaveLen(1))
		Expect(out.Results[0].Host).To(Equal("beta"))
		Expect(out.Errors).To(HaveLen(1))
		Expect(out.Errors[0].Host).To(Equal("alpha"))

		entryA, _ := rc.Get("alpha")
		Expect(entryA.Outcome.Success()).To(BeFalse())
		entryB, _ := rc.Get("beta")
		Expect(entryB.Outcome.Success()).To(BeTrue())
	})

	It("should treat a review-listing failure as the host's failure outcome", func() {
		client.reviewsErr["alpha"] = errors.New("query rejected")

		out, err := orch.Refresh(context.Background(), []types.Host{hostA})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Errors).To(HaveLen(1))
		Expect(out.Errors[0].Err).To(MatchError("query rejected"))
	})

	It("should share one in-flight fetch between concurrent passes", func() {
		client.gate = make(chan struct{})

		var wg sync.WaitGroup
		outcomes := make([]types.CombinedOutcome, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				out, err := orch.Refresh(context.Background(), []types.Host{hostA})
				Expect(err).NotTo(HaveOccurred())
				outcomes[i] = out
			}(i)
		}

		// Both passes are now parked on the same flight.
		Eventually(func() int { return client.calls("alpha") }).Should(Equal(1))
		Consistently(func() int { return client.calls("alpha") }, 100*time.Millisecond).Should(Equal(1))

		close(client.gate)
		wg.Wait()

		Expect(client.calls("alpha")).To(Equal(1))
		Expect(outcomes[0].Results).To(HaveLen(1))
		Expect(outcomes[1].Results).To(HaveLen(1))
	})

	It("should stamp host names onto fetched reviews", func() {
		client.reviews["alpha"] = []types.Review{{ID: "x"}, {ID: "y"}}

		out, err := orch.Refresh(context.Background(), []types.Host{hostA})
		Expect(err).NotTo(HaveOccurred())
		for _, review := range out.Results[0].Reviews {
			Expect(review.Host).To(Equal("alpha"))
		}
	})
})
