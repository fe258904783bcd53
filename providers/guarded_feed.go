package providers

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/willibrandon/gorestore/observability"
	"github.com/willibrandon/gorestore/resilience"
	"github.com/willibrandon/gorestore/version"
)

// GuardedFeed stops consulting a source after repeated failures. With
// ignoreFailures, a failing source answers version lookups as if it held
// nothing, so the restore continues with the other sources.
type GuardedFeed struct {
	feed           PackageFeed
	breaker        *resilience.Breaker
	ignoreFailures bool
	logger         observability.Logger
	warnOnce       sync.Once
}

// NewGuardedFeed wraps feed with breaker.
func NewGuardedFeed(feed PackageFeed, breaker *resilience.Breaker, ignoreFailures bool, opts ...Option) *GuardedFeed {
	o := buildOptions(opts)
	return &GuardedFeed{
		feed:           feed,
		breaker:        breaker,
		ignoreFailures: ignoreFailures,
		logger:         o.logger,
	}
}

func (f *GuardedFeed) Source() string { return f.feed.Source() }
func (f *GuardedFeed) IsRemote() bool { return f.feed.IsRemote() }

// FindByID returns no versions instead of an error when failures are
// ignored.
func (f *GuardedFeed) FindByID(ctx context.Context, id string) ([]*version.NuGetVersion, error) {
	var versions []*version.NuGetVersion
	err := f.guard(ctx, func() (err error) {
		versions, err = f.feed.FindByID(ctx, id)
		return err
	})
	if err != nil && f.ignoreFailures && ctx.Err() == nil {
		f.warnOnce.Do(func() {
			f.logger.Warn("Ignoring failed source {Source}: {Error}", f.Source(), err)
		})
		return nil, nil
	}
	return versions, err
}

func (f *GuardedFeed) OpenManifest(ctx context.Context, id string, ver *version.NuGetVersion) (io.ReadCloser, error) {
	var rc io.ReadCloser
	err := f.guard(ctx, func() (err error) {
		rc, err = f.feed.OpenManifest(ctx, id, ver)
		return err
	})
	return rc, err
}

func (f *GuardedFeed) OpenContent(ctx context.Context, id string, ver *version.NuGetVersion) (*PackageContent, error) {
	var content *PackageContent
	err := f.guard(ctx, func() (err error) {
		content, err = f.feed.OpenContent(ctx, id, ver)
		return err
	})
	return content, err
}

// guard runs op when the breaker allows it. A missing package or a
// cancelled context is an answer from the source, not a failure of it.
func (f *GuardedFeed) guard(ctx context.Context, op func() error) error {
	if err := f.breaker.Allow(); err != nil {
		return err
	}
	err := op()
	if err == nil || errors.Is(err, ErrPackageNotFound) || ctx.Err() != nil {
		f.breaker.Success()
		return err
	}
	f.breaker.Failure(err)
	f.logger.Debug("Source {Source} failed: {Error}", f.Source(), err)
	return err
}
