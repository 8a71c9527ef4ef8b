package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reviewradar/reviewradar/api/types"
	"github.com/reviewradar/reviewradar/internal/cache"
)

// ReviewClient fetches one host's account and reviews. Any failure from
// either step is treated as that host's failure outcome.
type ReviewClient interface {
	FetchAccount(ctx context.Context, host types.Host) (types.Account, error)
	FetchReviews(ctx context.Context, host types.Host, account types.Account) (types.ReviewSet, error)
}

// Orchestrator fans a refresh out over all configured hosts, reusing fresh
// cache entries and fetching the rest concurrently. One host's failure never
// aborts the others; the pass waits for every host to settle.
//
// Concurrent passes share in-flight fetches per host, so a scheduled pass and
// an on-demand refresh hitting the same stale host issue one network fetch,
// not two. Cache writes across passes remain last-write-wins.
type Orchestrator struct {
	client ReviewClient
	cache  *cache.ResultCache
	ttl    time.Duration
	now    func() time.Time

	lock     sync.Mutex
	inflight map[string]*flight
}

type flight struct {
	done    chan struct{}
	outcome cache.Outcome
}

// NewOrchestrator wires an orchestrator over the given client and cache.
// A nil clock defaults to time.Now.
func NewOrchestrator(client ReviewClient, rc *cache.ResultCache, ttl time.Duration, clock func() time.Time) *Orchestrator {
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{
		client:   client,
		cache:    rc,
		ttl:      ttl,
		now:      clock,
		inflight: make(map[string]*flight),
	}
}

type settled struct {
	host    string
	outcome cache.Outcome
}

// Refresh produces a CombinedOutcome for the given hosts. It fails with
// ErrNoHosts before any network activity if hosts is empty. Results and
// Errors are appended in settlement order, which is non-deterministic when
// fetches complete concurrently.
func (o *Orchestrator) Refresh(ctx context.Context, hosts []types.Host) (types.CombinedOutcome, error) {
	if len(hosts) == 0 {
		return types.CombinedOutcome{}, ErrNoHosts
	}

	ch := make(chan settled, len(hosts))
	for _, host := range hosts {
		go func(h types.Host) {
			ch <- settled{host: h.Name, outcome: o.hostOutcome(ctx, h)}
		}(host)
	}

	// Settle-all join: every host contributes exactly one outcome.
	var out types.CombinedOutcome
	for range hosts {
		s := <-ch
		if s.outcome.Success() {
			out.Results = append(out.Results, *s.outcome.Reviews)
		} else {
			out.Errors = append(out.Errors, types.HostError{Host: s.host, Err: s.outcome.Err})
		}
	}

	logrus.Debugf("refresh settled: %d results, %d errors", len(out.Results), len(out.Errors))
	return out, nil
}

// hostOutcome reuses a fresh cache entry verbatim, or fetches otherwise.
// Cache entry recency is the sole criterion for reuse.
func (o *Orchestrator) hostOutcome(ctx context.Context, host types.Host) cache.Outcome {
	if entry, ok := o.cache.Get(host.Name); ok && entry.Fresh(o.now(), o.ttl) {
		logrus.Debugf("reusing cached outcome for %s", host.Name)
		return entry.Outcome
	}
	return o.fetch(ctx, host)
}

// fetch runs the per-host client with single-flight semantics: concurrent
// callers for the same host await the in-flight fetch instead of starting a
// duplicate one. The fresh outcome, success or failure, is written back to
// the cache before waiters are released.
func (o *Orchestrator) fetch(ctx context.Context, host types.Host) cache.Outcome {
	o.lock.Lock()
	if f, exists := o.inflight[host.Name]; exists {
		o.lock.Unlock()
		<-f.done
		return f.outcome
	}
	f := &flight{done: make(chan struct{})}
	o.inflight[host.Name] = f
	o.lock.Unlock()

	f.outcome = o.fetchHost(ctx, host)
	o.cache.Set(host.Name, f.outcome)

	o.lock.Lock()
	delete(o.inflight, host.Name)
	o.lock.Unlock()
	close(f.done)

	return f.outcome
}

func (o *Orchestrator) fetchHost(ctx context.Context, host types.Host) cache.Outcome {
	account, err := o.client.FetchAccount(ctx, host)
	if err != nil {
		logrus.Debugf("account fetch for %s failed: %v", host.Name, err)
		return cache.Outcome{Err: err}
	}

	set, err := o.client.FetchReviews(ctx, host, account)
	if err != nil {
		logrus.Debugf("review fetch for %s failed: %v", host.Name, err)
		return cache.Outcome{Err: err}
	}

	set.Host = host.Name
	set.Viewer = account
	for i := range set.Reviews {
		set.Reviews[i].Host = host.Name
	}
	return cache.Outcome{Reviews: &set}
}
