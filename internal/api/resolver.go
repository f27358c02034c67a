package api

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"rainbow/internal/store"
)

// Resolver answers digest queries against the store. It is safe for concurrent use: every call
// borrows its own connection from the pool of db.
type Resolver struct {
	db *sql.DB

	// Only hits are cached. The store is append-only and is not written while serving, so a
	// cached value never goes stale.
	cache *lru.Cache[string, int64]
}

// NewResolver creates a resolver. A cacheSize of zero or less disables the cache.
func NewResolver(db *sql.DB, cacheSize int) (*Resolver, error) {
	r := &Resolver{db: db}
	if cacheSize > 0 {
		cache, err := lru.New[string, int64](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create digest cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// Resolve returns a record for every digest of the batch that is stored, in batch order.
// Unknown digests are left out. A digest repeated in the batch yields one record per
// occurrence. Any store failure fails the whole batch.
func (r *Resolver) Resolve(ctx context.Context, digests []string) ([]store.Record, error) {
	start := time.Now()
	defer func() {
		ResolveDuration.Observe(time.Since(start).Seconds())
	}()
	BatchSize.Observe(float64(len(digests)))

	known := make(map[string]int64, len(digests))
	seen := make(map[string]struct{}, len(digests))
	var pending []string
	for _, d := range digests {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}

		if v, ok := r.cached(d); ok {
			known[d] = v
			continue
		}
		pending = append(pending, d)
	}

	if len(pending) > 0 {
		found, err := store.LookupMany(ctx, r.db, pending)
		if err != nil {
			return nil, err
		}
		for d, v := range found {
			known[d] = v
			if r.cache != nil {
				r.cache.Add(d, v)
			}
		}
	}

	records := make([]store.Record, 0, len(digests))
	for _, d := range digests {
		v, ok := known[d]
		if !ok {
			ResolvedDigests.WithLabelValues("miss").Inc()
			continue
		}
		ResolvedDigests.WithLabelValues("hit").Inc()
		records = append(records, store.Record{Digest: d, Value: v})
	}

	return records, nil
}

// ResolveOne looks up a single digest.
func (r *Resolver) ResolveOne(ctx context.Context, digest string) (store.Record, bool, error) {
	if v, ok := r.cached(digest); ok {
		ResolvedDigests.WithLabelValues("hit").Inc()
		return store.Record{Digest: digest, Value: v}, true, nil
	}

	v, ok, err := store.Lookup(ctx, r.db, digest)
	if err != nil {
		return store.Record{}, false, err
	}
	if !ok {
		ResolvedDigests.WithLabelValues("miss").Inc()
		return store.Record{}, false, nil
	}

	if r.cache != nil {
		r.cache.Add(digest, v)
	}
	ResolvedDigests.WithLabelValues("hit").Inc()
	return store.Record{Digest: digest, Value: v}, true, nil
}

// Ping checks that the store is reachable.
func (r *Resolver) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Resolver) cached(digest string) (int64, bool) {
	if r.cache == nil {
		return 0, false
	}
	v, ok := r.cache.Get(digest)
	if ok {
		CacheLookups.WithLabelValues("hit").Inc()
	} else {
		CacheLookups.WithLabelValues("miss").Inc()
	}
	return v, ok
}
