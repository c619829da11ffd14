// Package fetcher is the read-through caching layer between the traversal
// engine and the FRED API. Responses are served from the TTL cache when
// possible; live calls are throttled and written back to the cache. Nothing
// here returns an error: any failure degrades to an empty page so a single
// bad call never aborts a crawl.
package fetcher

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fred-catalog/cache"
	"fred-catalog/fred"
)

const apiKeyParam = "api_key"

// Getter performs the live remote call for a credential-free request path.
type Getter interface {
	Get(ctx context.Context, path string) (string, error)
}

// Fetcher composes the TTL cache and the remote client.
type Fetcher struct {
	client      Getter
	cache       *cache.Cache
	throttle    time.Duration
	remoteCalls int64

	// sleep is swappable for tests.
	sleep func(time.Duration)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithThrottle sets the mandatory delay before each live remote call.
func WithThrottle(d time.Duration) Option {
	return func(f *Fetcher) {
		f.throttle = d
	}
}

// New creates a Fetcher over the given remote client and cache.
func New(client Getter, c *cache.Cache, opts ...Option) *Fetcher {
	f := &Fetcher{
		client: client,
		cache:  c,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RemoteCalls returns the number of live calls issued so far.
func (f *Fetcher) RemoteCalls() int64 {
	return f.remoteCalls
}

// ChildCategories returns the direct child categories of a category, or the
// empty page on any failure.
func (f *Fetcher) ChildCategories(ctx context.Context, categoryID int64) fred.CategoryPage {
	body, ok := f.get(ctx, fred.CategoryChildrenPath(categoryID))
	if !ok {
		return fred.CategoryPage{}
	}
	page, err := fred.ParseCategoryPage(body)
	if err != nil {
		slog.Error("malformed category response", "category_id", categoryID, "error", err)
		return fred.CategoryPage{}
	}
	return page
}

// ChildSeries returns up to limit series under a category plus the
// server-reported total, or the empty page on any failure.
func (f *Fetcher) ChildSeries(ctx context.Context, categoryID int64, limit int) fred.SeriesPage {
	body, ok := f.get(ctx, fred.CategorySeriesPath(categoryID, limit))
	if !ok {
		return fred.SeriesPage{}
	}
	page, err := fred.ParseSeriesPage(body)
	if err != nil {
		slog.Error("malformed series response", "category_id", categoryID, "error", err)
		return fred.SeriesPage{}
	}
	return page
}

// get resolves a request path through the cache, falling back to a throttled
// live call whose response is written back on success. The path doubles as
// the cache key, so it must never carry the API key.
func (f *Fetcher) get(ctx context.Context, path string) (string, bool) {
	if strings.Contains(strings.ToLower(path), apiKeyParam) {
		// A credential in the request path would end up in the cache file.
		slog.Error("request path contains the API key parameter, refusing", "path", path)
		return "", false
	}

	if body, ok := f.cache.Read(path); ok {
		return body, true
	}

	// Only live calls pay the throttle; cache hits short-circuit above.
	f.remoteCalls++
	f.sleep(f.throttle)

	body, err := f.client.Get(ctx, path)
	if err != nil {
		slog.Error("remote call failed", "path", path, "error", err)
		return "", false
	}

	f.cache.Write(path, body)
	return body, true
}
