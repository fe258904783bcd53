package providers_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/lockfile"
	"github.com/willibrandon/gorestore/observability"
	"github.com/willibrandon/gorestore/providers"
	"github.com/willibrandon/gorestore/providers/mocks"
	"github.com/willibrandon/gorestore/version"
)

var (
	dnx451    = frameworks.CommonFrameworks.DNX451
	dnxcore50 = frameworks.CommonFrameworks.DNXCore50
)

// installPackage lays out {root}/{id}/{ver}/ the way a restore leaves it.
func installPackage(t *testing.T, root, id, ver, metadata string, files ...string) {
	t.Helper()

	lowerID := strings.ToLower(id)
	dir := filepath.Join(root, lowerID, ver)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	nuspec := `<?xml version="1.0"?>
<package>
  <metadata>
    <id>` + id + `</id>
    <version>` + ver + `</version>
    <authors>test</authors>
    <description>test</description>
` + metadata + `
  </metadata>
</package>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, lowerID+".nuspec"), []byte(nuspec), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, lowerID+"."+ver+".nupkg.sha512"), []byte("hash-"+id+"-"+ver+"\n"), 0o644))

	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
}

func TestLocalFeed_FindByID(t *testing.T) {
	root := t.TempDir()
	installPackage(t, root, "Alpha", "2.0.0", "")
	installPackage(t, root, "Alpha", "1.0.0", "")
	installPackage(t, root, "Alpha", "1.5.0-beta", "")

	// A half-extracted version has no hash marker.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "alpha", "3.0.0"), 0o755))
	// Folders that are not versions are ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "alpha", "tools"), 0o755))

	feed := providers.NewLocalFeed(root)
	versions, err := feed.FindByID(context.Background(), "ALPHA")
	require.NoError(t, err)

	var got []string
	for _, v := range versions {
		got = append(got, v.String())
	}
	assert.Equal(t, []string{"1.0.0", "1.5.0-beta", "2.0.0"}, got)

	missing, err := feed.FindByID(context.Background(), "Nope")
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.False(t, feed.IsRemote())
	assert.Equal(t, root, feed.Source())
}

func TestLocalFeed_OpenContent(t *testing.T) {
	root := t.TempDir()
	installPackage(t, root, "Alpha", "1.0.0", "", "lib/net45/Alpha.dll", "content/readme.txt")

	feed := providers.NewLocalFeed(root)
	content, err := feed.OpenContent(context.Background(), "Alpha", version.MustParse("1.0.0"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "alpha", "1.0.0"), content.Path)
	assert.Equal(t, "hash-Alpha-1.0.0", content.Sha512)
	assert.Equal(t, []string{
		"alpha.1.0.0.nupkg.sha512",
		"alpha.nuspec",
		"content/readme.txt",
		"lib/net45/Alpha.dll",
	}, content.Files)
}

func TestLocalFeed_NotInstalled(t *testing.T) {
	feed := providers.NewLocalFeed(t.TempDir())
	ver := version.MustParse("1.0.0")

	_, err := feed.OpenContent(context.Background(), "Alpha", ver)
	assert.True(t, errors.Is(err, providers.ErrPackageNotFound))

	_, err = feed.OpenManifest(context.Background(), "Alpha", ver)
	assert.True(t, errors.Is(err, providers.ErrPackageNotFound))
}

func TestCachedFeed_HitsUnderlyingFeedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockPackageFeed(ctrl)

	ver := version.MustParse("1.0.0")
	feed.EXPECT().FindByID(gomock.Any(), "Alpha").Return([]*version.NuGetVersion{ver}, nil).Times(1)
	feed.EXPECT().OpenManifest(gomock.Any(), "Alpha", ver).
		Return(io.NopCloser(strings.NewReader("<package/>")), nil).Times(1)
	feed.EXPECT().OpenContent(gomock.Any(), "Alpha", ver).
		Return(&providers.PackageContent{Sha512: "abc"}, nil).Times(1)

	hitsBefore, err := observability.GetPlainCounterValue(observability.FeedCacheHitsTotal)
	require.NoError(t, err)

	cached := providers.NewCachedFeed(feed, 0, 0)
	ctx := context.Background()
	for range 3 {
		versions, err := cached.FindByID(ctx, "Alpha")
		require.NoError(t, err)
		assert.Len(t, versions, 1)

		rc, err := cached.OpenManifest(ctx, "Alpha", ver)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "<package/>", string(data))

		content, err := cached.OpenContent(ctx, "Alpha", ver)
		require.NoError(t, err)
		assert.Equal(t, "abc", content.Sha512)
	}

	hitsAfter, err := observability.GetPlainCounterValue(observability.FeedCacheHitsTotal)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, hitsAfter-hitsBefore, float64(6))
}

func TestCachedFeed_ErrorsAreNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockPackageFeed(ctrl)

	boom := errors.New("feed offline")
	feed.EXPECT().FindByID(gomock.Any(), "Alpha").Return(nil, boom).Times(2)

	cached := providers.NewCachedFeed(feed, 10, 0)
	for range 2 {
		_, err := cached.FindByID(context.Background(), "Alpha")
		assert.ErrorIs(t, err, boom)
	}
}

const alphaDependencies = `    <dependencies>
      <group targetFramework="dnx451">
        <dependency id="Beta" version="1.0.0" />
      </group>
      <group targetFramework="dnxcore50">
        <dependency id="System.Runtime" version="4.0.20" />
      </group>
    </dependencies>
    <frameworkAssemblies>
      <frameworkAssembly assemblyName="System.Xml" targetFramework="net45" />
    </frameworkAssemblies>`

func TestPackageProvider_Describe(t *testing.T) {
	root := t.TempDir()
	installPackage(t, root, "Alpha", "1.0.0", alphaDependencies, "lib/net45/Alpha.dll", "lib/dnxcore50/Alpha.dll")
	installPackage(t, root, "Alpha", "2.0.0", alphaDependencies, "lib/net45/Alpha.dll", "lib/dnxcore50/Alpha.dll")

	provider := providers.NewPackageProvider(providers.NewLocalFeed(root))
	assert.Equal(t, "local", provider.Name())
	assert.False(t, provider.IsRemote())

	t.Run("lowest version satisfying a minimum", func(t *testing.T) {
		desc, err := provider.Describe(context.Background(), library.NewRange("alpha", version.MustParseRange("1.0.0")), dnx451)
		require.NoError(t, err)
		require.NotNil(t, desc)

		assert.Equal(t, "Alpha", desc.Identity.Name)
		assert.Equal(t, "1.0.0", desc.Identity.Version.String())
		assert.Equal(t, library.KindPackage, desc.Kind)
		assert.True(t, desc.Resolved)
		assert.Equal(t, filepath.Join(root, "alpha", "1.0.0"), desc.Path)

		var deps []string
		for _, d := range desc.Dependencies {
			deps = append(deps, d.Range.String())
		}
		assert.Equal(t, []string{"Beta >= 1.0.0", "fx/System.Xml"}, deps)
	})

	t.Run("highest version without a range", func(t *testing.T) {
		desc, err := provider.Describe(context.Background(), library.NewRange("Alpha", nil), dnxcore50)
		require.NoError(t, err)
		require.NotNil(t, desc)

		assert.Equal(t, "2.0.0", desc.Identity.Version.String())
		require.Len(t, desc.Dependencies, 1)
		assert.Equal(t, "System.Runtime", desc.Dependencies[0].Name())
	})

	t.Run("no matching version", func(t *testing.T) {
		desc, err := provider.Describe(context.Background(), library.NewRange("Alpha", version.MustParseRange("3.0.0")), dnx451)
		require.NoError(t, err)
		assert.Nil(t, desc)
	})

	t.Run("platform references are not packages", func(t *testing.T) {
		desc, err := provider.Describe(context.Background(), library.NewRange("fx/Alpha", nil), dnx451)
		require.NoError(t, err)
		assert.Nil(t, desc)
	})
}

func TestPackageProvider_NoAssetsForFramework(t *testing.T) {
	root := t.TempDir()
	installPackage(t, root, "CoreOnly", "1.0.0", "", "lib/dnxcore50/CoreOnly.dll")
	installPackage(t, root, "ContentOnly", "1.0.0", "", "content/site.css")

	provider := providers.NewPackageProvider(providers.NewLocalFeed(root))

	desc, err := provider.Describe(context.Background(), library.NewRange("CoreOnly", nil), dnx451)
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.False(t, desc.Resolved)

	desc, err = provider.Describe(context.Background(), library.NewRange("CoreOnly", nil), dnxcore50)
	require.NoError(t, err)
	assert.True(t, desc.Resolved)

	desc, err = provider.Describe(context.Background(), library.NewRange("ContentOnly", nil), dnx451)
	require.NoError(t, err)
	assert.True(t, desc.Resolved)
}

func TestPackageProvider_Initialize(t *testing.T) {
	root := t.TempDir()
	installPackage(t, root, "Alpha", "1.0.0", "<serviceable>true</serviceable>\n"+alphaDependencies, "lib/net45/Alpha.dll")

	provider := providers.NewPackageProvider(providers.NewLocalFeed(root))
	desc, err := provider.Describe(context.Background(), library.NewRange("Alpha", nil), dnx451)
	require.NoError(t, err)

	project := &library.Description{Kind: library.KindProject, Identity: &library.Identity{Name: "App"}}
	provider.Initialize(context.Background(), []*library.Description{desc, project}, dnx451, "")

	require.NotNil(t, desc.Package)
	assert.Equal(t, "hash-Alpha-1.0.0", desc.Package.Sha512)
	assert.True(t, desc.Package.IsServiceable)
	assert.Contains(t, desc.Package.Files, "lib/net45/Alpha.dll")
	assert.Equal(t, []string{"System.Xml"}, desc.Package.FrameworkAssemblies)
	assert.Nil(t, project.Package)
}

func TestPackageProvider_InitializeStopsWhenCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockPackageFeed(ctrl)
	feed.EXPECT().Source().Return("mock").AnyTimes()
	feed.EXPECT().IsRemote().Return(false).AnyTimes()
	feed.EXPECT().OpenContent(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	feed.EXPECT().OpenManifest(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	provider := providers.NewPackageProvider(feed)
	desc := &library.Description{
		Kind:     library.KindPackage,
		Identity: &library.Identity{Name: "Alpha", Version: version.MustParse("1.0.0")},
		Resolved: true,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	provider.Initialize(ctx, []*library.Description{desc}, dnx451, "")
	assert.Nil(t, desc.Package)
}

func lockWith(sha string, deps ...lockfile.PackageDependency) *lockfile.LockFile {
	ver := version.MustParse("1.0.0")
	lf := lockfile.New()
	lf.Targets = []*lockfile.Target{{
		Framework: dnx451,
		Libraries: []*lockfile.TargetLibrary{{
			Name:                "Alpha",
			Version:             ver,
			Dependencies:        deps,
			FrameworkAssemblies: []string{"System.Data"},
		}},
	}}
	lf.Libraries = []*lockfile.Library{{Name: "Alpha", Version: ver, Sha512: sha}}
	return lf
}

func TestPackageProvider_LockedLibrary(t *testing.T) {
	root := t.TempDir()
	installPackage(t, root, "Alpha", "1.0.0", alphaDependencies, "lib/net45/Alpha.dll")
	installPackage(t, root, "Alpha", "2.0.0", alphaDependencies, "lib/net45/Alpha.dll")
	feed := providers.NewLocalFeed(root)

	pinned := lockfile.PackageDependency{ID: "Gamma", VersionRange: version.MustParseRange("[2.0.0]")}

	t.Run("edges come from the lock file", func(t *testing.T) {
		provider := providers.NewPackageProvider(feed, providers.WithLockFile(lockWith("hash-Alpha-1.0.0", pinned)))

		desc, err := provider.Describe(context.Background(), library.NewRange("Alpha", nil), dnx451)
		require.NoError(t, err)
		require.NotNil(t, desc)

		assert.True(t, desc.Resolved)
		assert.Equal(t, "1.0.0", desc.Identity.Version.String())
		var deps []string
		for _, d := range desc.Dependencies {
			deps = append(deps, d.Range.String())
		}
		assert.Equal(t, []string{"Gamma [2.0.0]", "fx/System.Data"}, deps)
	})

	t.Run("other frameworks are not pinned", func(t *testing.T) {
		provider := providers.NewPackageProvider(feed, providers.WithLockFile(lockWith("hash-Alpha-1.0.0", pinned)))

		desc, err := provider.Describe(context.Background(), library.NewRange("Alpha", nil), frameworks.CommonFrameworks.Net45)
		require.NoError(t, err)
		require.NotNil(t, desc)
		assert.Equal(t, "2.0.0", desc.Identity.Version.String())
	})

	t.Run("hash mismatch", func(t *testing.T) {
		provider := providers.NewPackageProvider(feed, providers.WithLockFile(lockWith("stale", pinned)))

		desc, err := provider.Describe(context.Background(), library.NewRange("Alpha", nil), dnx451)
		require.NoError(t, err)
		require.NotNil(t, desc)
		assert.False(t, desc.Resolved)
	})

	t.Run("locked version missing from the feed", func(t *testing.T) {
		lf := lockWith("hash-Alpha-1.0.0", pinned)
		lf.Targets[0].Libraries[0].Version = version.MustParse("1.5.0")

		provider := providers.NewPackageProvider(feed, providers.WithLockFile(lf))
		desc, err := provider.Describe(context.Background(), library.NewRange("Alpha", nil), dnx451)
		require.NoError(t, err)
		require.NotNil(t, desc)
		assert.False(t, desc.Resolved)
		assert.Equal(t, "1.5.0", desc.Identity.Version.String())
	})
}

func TestPackageProvider_FeedErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockPackageFeed(ctrl)
	ver := version.MustParse("1.0.0")

	feed.EXPECT().IsRemote().Return(true).AnyTimes()
	feed.EXPECT().FindByID(gomock.Any(), "Broken").Return([]*version.NuGetVersion{ver}, nil)
	feed.EXPECT().OpenManifest(gomock.Any(), "Broken", ver).
		Return(io.NopCloser(strings.NewReader("<package><metadata>")), nil)
	feed.EXPECT().FindByID(gomock.Any(), "Offline").Return(nil, errors.New("connection refused"))

	provider := providers.NewPackageProvider(feed)
	assert.Equal(t, "remote", provider.Name())

	_, err := provider.Describe(context.Background(), library.NewRange("Broken", nil), dnx451)
	require.Error(t, err)
	assert.Contains(t, err.Error(), providers.ErrInvalidManifest.Error())

	_, err = provider.Describe(context.Background(), library.NewRange("Offline", nil), dnx451)
	assert.EqualError(t, err, "connection refused")
}
