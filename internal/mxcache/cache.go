// Package mxcache provides an opt-in, per-run cache layered over the MX
// resolver, with singleflight deduplication: concurrent validations of
// the same domain trigger a single lookup and share the answer. The
// resolver itself never caches; this wrapper exists for callers that
// need throughput on batches with many repeated domains.
package mxcache

import (
	"context"
	"sync"

	"github.com/dataview/mailscrub/check"
)

// Resolver is the interface the cache wraps. *check.Resolver satisfies it.
type Resolver interface {
	LookupMX(ctx context.Context, domain string) []check.MXRecord
}

// Cache memoizes MX answers for the lifetime of one run. Entries never
// expire: a validation run is short-lived by construction.
type Cache struct {
	next Resolver

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	records []check.MXRecord
	done    chan struct{} // closed when the lookup has completed
}

// New wraps next with a per-run cache.
func New(next Resolver) *Cache {
	return &Cache{next: next, entries: make(map[string]*entry)}
}

// LookupMX returns the cached answer for domain, performing at most one
// underlying lookup per domain regardless of concurrency. Late arrivals
// for an in-flight domain block until the first lookup completes.
func (c *Cache) LookupMX(ctx context.Context, domain string) []check.MXRecord {
	c.mu.Lock()
	if e, ok := c.entries[domain]; ok {
		c.mu.Unlock()
		<-e.done
		return cloneRecords(e.records)
	}
	e := &entry{done: make(chan struct{})}
	c.entries[domain] = e
	c.mu.Unlock()

	// Closing via defer publishes the entry even when the underlying
	// lookup panics: waiters for the same domain see an empty answer
	// instead of blocking forever, and the panic still propagates to
	// this caller's recovery boundary.
	defer close(e.done)
	e.records = c.next.LookupMX(ctx, domain)
	return cloneRecords(e.records)
}

// Len reports the number of cached domains, for diagnostics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cloneRecords copies the cached slice so callers cannot mutate shared
// data, e.g. by re-sorting it.
func cloneRecords(in []check.MXRecord) []check.MXRecord {
	if in == nil {
		return nil
	}
	out := make([]check.MXRecord, len(in))
	copy(out, in)
	return out
}
