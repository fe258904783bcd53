package resolver

import (
	"context"

	"go.trai.ch/zerr"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/observability"
	"github.com/willibrandon/gorestore/version"
)

// resolveRange finds the item for r, memoized by range and by identity.
func (w *Walker) resolveRange(ctx context.Context, r library.Range, framework *frameworks.NuGetFramework, concurrent bool) (*Item, error) {
	key := framework.String() + "|" + r.Key()
	item, hit, err := w.ranges.GetOrStart(ctx, key, func(ctx context.Context) (*Item, error) {
		item, err := w.describe(ctx, r, framework, concurrent)
		if err != nil || item == nil || item.Description.Identity == nil {
			return item, err
		}

		idKey := framework.String() + "|" + item.Description.Identity.Key()
		if shared, loaded := w.identities.LoadOrStore(idKey, item); loaded {
			observability.MemoHitsTotal.WithLabelValues("identity").Inc()
			return shared.(*Item), nil
		}
		return item, nil
	})
	if hit {
		observability.MemoHitsTotal.WithLabelValues("range").Inc()
	}
	observability.RecordMemoHit(ctx, hit)
	return item, err
}

// describe asks the provider tiers for r. It never returns a nil item
// without an error.
func (w *Walker) describe(ctx context.Context, r library.Range, framework *frameworks.NuGetFramework, concurrent bool) (*Item, error) {
	item, err := w.firstMatch(ctx, w.providers.Project, r, framework)
	if err != nil || item != nil {
		return item, err
	}

	if r.IsPlatformReference {
		item, err = w.firstMatch(ctx, w.providers.Platform, r, framework)
	} else if concurrent {
		item, err = w.bestPackageMatch(ctx, r, framework)
	} else {
		item, err = w.firstMatch(ctx, w.providers.Local, r, framework)
		if err == nil && item == nil {
			item, err = w.firstMatch(ctx, w.providers.Remote, r, framework)
		}
	}
	if err != nil || item != nil {
		return item, err
	}

	if w.providers.Fallback != nil {
		item, err = w.firstMatch(ctx, []DependencyProvider{w.providers.Fallback}, r, framework)
		if err != nil || item != nil {
			return item, err
		}
	}

	w.logger.Debug("Unable to locate {Library} for {Framework}", r.String(), framework.String())
	return &Item{Description: library.NewUnresolved(r, framework)}, nil
}

// firstMatch returns the first provider match in order.
func (w *Walker) firstMatch(ctx context.Context, providers []DependencyProvider, r library.Range, framework *frameworks.NuGetFramework) (*Item, error) {
	for _, p := range providers {
		name := providerName(p)
		spanCtx, span := observability.StartDescribeSpan(ctx, name, r.String(), framework.String())
		desc, err := p.Describe(spanCtx, r, framework)
		observability.EndSpanWithError(span, err)

		switch {
		case err != nil:
			observability.ProviderLookupsTotal.WithLabelValues(name, "error").Inc()
			return nil, zerr.With(zerr.Wrap(err, ErrProviderFailed.Error()), "library", r.String())
		case desc == nil:
			observability.ProviderLookupsTotal.WithLabelValues(name, "miss").Inc()
		default:
			observability.ProviderLookupsTotal.WithLabelValues(name, "match").Inc()
			return &Item{Description: desc, Provider: p}, nil
		}
	}
	return nil, nil
}

type matchResult struct {
	item *Item
	err  error
}

// bestPackageMatch queries the local and remote tiers concurrently and
// keeps the better candidate by version.SelectBetter. A local match that
// equals the requested version of a non-floating range wins without
// waiting for the remote tier.
func (w *Walker) bestPackageMatch(ctx context.Context, r library.Range, framework *frameworks.NuGetFramework) (*Item, error) {
	if len(w.providers.Remote) == 0 {
		return w.firstMatch(ctx, w.providers.Local, r, framework)
	}
	if len(w.providers.Local) == 0 {
		return w.firstMatch(ctx, w.providers.Remote, r, framework)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	localCh := make(chan matchResult, 1)
	remoteCh := make(chan matchResult, 1)
	go func() {
		item, err := w.firstMatch(ctx, w.providers.Local, r, framework)
		localCh <- matchResult{item, err}
	}()
	go func() {
		item, err := w.firstMatch(ctx, w.providers.Remote, r, framework)
		remoteCh <- matchResult{item, err}
	}()

	var local matchResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case local = <-localCh:
	}
	if local.err != nil {
		return nil, local.err
	}
	if local.item != nil && isExactLocalMatch(r.VersionRange, local.item) {
		return local.item, nil
	}

	var remote matchResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case remote = <-remoteCh:
	}
	if remote.err != nil {
		if local.item != nil {
			w.logger.Warn("Remote lookup for {Library} failed, using local match: {Error}", r.String(), remote.err)
			return local.item, nil
		}
		return nil, remote.err
	}

	switch {
	case local.item == nil:
		return remote.item, nil
	case remote.item == nil || r.VersionRange == nil:
		return local.item, nil
	}
	if version.SelectBetter(itemVersion(local.item), itemVersion(remote.item), r.VersionRange) {
		return remote.item, nil
	}
	return local.item, nil
}

func isExactLocalMatch(vr *version.VersionRange, item *Item) bool {
	if vr == nil || vr.IsFloating() || vr.MinVersion == nil {
		return false
	}
	v := itemVersion(item)
	return v != nil && v.Equals(vr.MinVersion)
}

func itemVersion(item *Item) *version.NuGetVersion {
	if item == nil || item.Description.Identity == nil {
		return nil
	}
	return item.Description.Identity.Version
}
