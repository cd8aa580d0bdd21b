package provider

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/internal/parquet"
	"github.com/huangsam/starspin/schema"
)

// currentCacheVersion defines the version of the cached light curve encoding
const currentCacheVersion = 1

// CachedProvider serves light curves from a cache store before asking the wrapped provider.
// Entries hold Parquet-encoded samples; an empty entry records that the source had no data.
type CachedProvider struct {
	next   contract.LightCurveProvider
	store  contract.CacheStore
	ttl    time.Duration
	now    func() time.Time
	encode func(*schema.TimeSeries) ([]byte, error)
}

var _ contract.LightCurveProvider = &CachedProvider{} // Compile-time check

// NewCachedProvider wraps next with the given store and entry lifetime.
func NewCachedProvider(next contract.LightCurveProvider, store contract.CacheStore, ttl time.Duration) *CachedProvider {
	return &CachedProvider{next: next, store: store, ttl: ttl, now: time.Now, encode: parquet.EncodeLightCurve}
}

// Fetch implements the LightCurveProvider interface.
func (p *CachedProvider) Fetch(ctx context.Context, query schema.LightCurveQuery) (*schema.TimeSeries, error) {
	key := CacheKey(query)

	// Check for cache hit
	if ts, ok := p.checkCacheHit(key); ok {
		return ts, nil
	}

	// Cache miss: fetch and store
	return p.fetchAndStore(ctx, query, key)
}

// checkCacheHit attempts to retrieve and validate a cached series
func (p *CachedProvider) checkCacheHit(key string) (*schema.TimeSeries, bool) {
	data, version, ts, err := p.store.Get(key)
	if err != nil {
		return nil, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || p.now().Sub(time.Unix(ts, 0)) > p.ttl {
		return nil, false
	}
	if len(data) == 0 {
		return nil, true // Cached "no data"
	}
	series, err := parquet.DecodeLightCurve(data)
	if err != nil {
		return nil, false
	}
	return series, true
}

// fetchAndStore asks the wrapped provider and caches what it returns.
// Errors are never cached so transient failures are retried on the next run.
func (p *CachedProvider) fetchAndStore(ctx context.Context, query schema.LightCurveQuery, key string) (*schema.TimeSeries, error) {
	series, err := p.next.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	data := []byte{}
	if series != nil {
		if data, err = p.encode(series); err != nil {
			contract.LogWarn("light curve cache encode", err)
			return series, nil
		}
	}
	if err := p.store.Set(key, data, currentCacheVersion, p.now().Unix()); err != nil {
		contract.LogWarn("light curve cache write", err)
	}
	return series, nil
}

// CacheKey creates a unique key from the archive selectors of a query.
func CacheKey(query schema.LightCurveQuery) string {
	key := fmt.Sprintf("%s:%d:%s:%s", query.Mission, query.Sector, query.Author, query.Target)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
