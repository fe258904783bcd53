package providers

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/willibrandon/gorestore/cache"
	"github.com/willibrandon/gorestore/observability"
	"github.com/willibrandon/gorestore/version"
)

const (
	defaultFeedCacheEntries = 4096
	defaultFeedCacheTTL     = 30 * time.Minute
)

// CachedFeed memoizes the lookups of another feed in memory so that several
// walks of one session hit the underlying feed once per package.
type CachedFeed struct {
	feed      PackageFeed
	versions  *cache.MemoryCache[[]*version.NuGetVersion]
	manifests *cache.MemoryCache[[]byte]
	contents  *cache.MemoryCache[*PackageContent]
}

// NewCachedFeed wraps feed. Non-positive arguments select the defaults.
func NewCachedFeed(feed PackageFeed, maxEntries int, ttl time.Duration) *CachedFeed {
	if maxEntries <= 0 {
		maxEntries = defaultFeedCacheEntries
	}
	if ttl <= 0 {
		ttl = defaultFeedCacheTTL
	}
	return &CachedFeed{
		feed:      feed,
		versions:  cache.NewMemoryCache[[]*version.NuGetVersion](maxEntries, ttl),
		manifests: cache.NewMemoryCache[[]byte](maxEntries, ttl),
		contents:  cache.NewMemoryCache[*PackageContent](maxEntries, ttl),
	}
}

func (f *CachedFeed) Source() string { return f.feed.Source() }
func (f *CachedFeed) IsRemote() bool { return f.feed.IsRemote() }

// FindByID serves repeated lookups of id from memory.
func (f *CachedFeed) FindByID(ctx context.Context, id string) ([]*version.NuGetVersion, error) {
	key := strings.ToLower(id)
	if versions, ok := f.versions.Get(key); ok {
		observability.FeedCacheHitsTotal.Inc()
		return versions, nil
	}
	observability.FeedCacheMissesTotal.Inc()

	versions, err := f.feed.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.versions.Set(key, versions)
	return versions, nil
}

// OpenManifest buffers the manifest once and hands out readers over the copy.
func (f *CachedFeed) OpenManifest(ctx context.Context, id string, ver *version.NuGetVersion) (io.ReadCloser, error) {
	key := packageKey(id, ver)
	if data, ok := f.manifests.Get(key); ok {
		observability.FeedCacheHitsTotal.Inc()
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	observability.FeedCacheMissesTotal.Inc()

	rc, err := f.feed.OpenManifest(ctx, id, ver)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	f.manifests.Set(key, data)
	return io.NopCloser(bytes.NewReader(data)), nil
}

// OpenContent serves repeated content listings from memory.
func (f *CachedFeed) OpenContent(ctx context.Context, id string, ver *version.NuGetVersion) (*PackageContent, error) {
	key := packageKey(id, ver)
	if content, ok := f.contents.Get(key); ok {
		observability.FeedCacheHitsTotal.Inc()
		return content, nil
	}
	observability.FeedCacheMissesTotal.Inc()

	content, err := f.feed.OpenContent(ctx, id, ver)
	if err != nil {
		return nil, err
	}
	f.contents.Set(key, content)
	return content, nil
}

func packageKey(id string, ver *version.NuGetVersion) string {
	return strings.ToLower(id) + "/" + ver.ToNormalizedString()
}
