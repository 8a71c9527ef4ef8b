package cache

import (
	"sync"
	"time"

	"github.com/reviewradar/reviewradar/api/types"
)

// Outcome is the success-or-failure result of fetching one host. Exactly one
// of Reviews and Err is set.
type Outcome struct {
	Reviews *types.ReviewSet
	Err     error
}

func (o Outcome) Success() bool {
	return o.Err == nil
}

// Entry is the most recent outcome recorded for a host, stamped with the time
// it was recorded. Entries are overwritten wholesale; there is no partial merge.
type Entry struct {
	Outcome    Outcome
	RecordedAt time.Time
}

// Fresh reports whether the entry is younger than ttl. Staleness is judged
// lazily at read time; stale entries are not swept.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.RecordedAt) < ttl
}

// ResultCache maps host name to the most recent fetch outcome. It is volatile
// and holds exactly one entry per host. A stale entry sits until the next
// fetch for that host overwrites it.
type ResultCache struct {
	lock    sync.Mutex
	entries map[string]Entry
	now     func() time.Time
}

// NewResultCache creates an empty ResultCache. A nil clock defaults to
// time.Now; tests inject a fake clock to control freshness.
func NewResultCache(clock func() time.Time) *ResultCache {
	if clock == nil {
		clock = time.Now
	}
	return &ResultCache{
		entries: make(map[string]Entry),
		now:     clock,
	}
}

// Set records the outcome for a host at the current time, overwriting any
// previous entry unconditionally.
func (rc *ResultCache) Set(host string, outcome Outcome) {
	rc.lock.Lock()
	defer rc.lock.Unlock()
	rc.entries[host] = Entry{
		Outcome:    outcome,
		RecordedAt: rc.now(),
	}
}

// Get returns the entry for a host, if any. Expired entries are still
// returned; freshness is the caller's call via Entry.Fresh.
func (rc *ResultCache) Get(host string) (Entry, bool) {
	rc.lock.Lock()
	defer rc.lock.Unlock()
	entry, exists := rc.entries[host]
	return entry, exists
}

// Len returns the number of hosts with a recorded entry.
func (rc *ResultCache) Len() int {
	rc.lock.Lock()
	defer rc.lock.Unlock()
	return len(rc.entries)
}
