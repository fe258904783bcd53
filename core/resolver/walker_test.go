package resolver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/willibrandon/gorestore/core/resolver/mocks"
	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/version"
)

var dnx451 = frameworks.CommonFrameworks.DNX451

// fakeProvider serves libraries from memory. Each entry maps "Name/Version"
// to dependency range strings such as "C [1.0.0]".
type fakeProvider struct {
	name     string
	kind     library.Kind
	packages map[string][]string
	err      error

	calls       atomic.Int32
	mu          sync.Mutex
	initialized [][]*library.Description
}

func newFakeProvider(name string, packages map[string][]string) *fakeProvider {
	return &fakeProvider{name: name, kind: library.KindPackage, packages: packages}
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) AttemptedPaths(*frameworks.NuGetFramework) []string {
	return []string{p.name}
}

func (p *fakeProvider) Describe(_ context.Context, r library.Range, framework *frameworks.NuGetFramework) (*library.Description, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}

	var candidates []*version.NuGetVersion
	for key := range p.packages {
		name, ver, _ := strings.Cut(key, "/")
		if strings.EqualFold(name, r.Name) {
			candidates = append(candidates, version.MustParse(ver))
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var best *version.NuGetVersion
	if r.VersionRange != nil {
		best = r.VersionRange.FindBestMatch(candidates)
	} else {
		for _, c := range candidates {
			if best == nil || c.GreaterThan(best) {
				best = c
			}
		}
	}
	if best == nil {
		return nil, nil
	}

	desc := &library.Description{
		Requested: r,
		Identity:  &library.Identity{Name: r.Name, Version: best, IsPlatformReference: r.IsPlatformReference},
		Kind:      p.kind,
		Framework: framework,
		Resolved:  true,
	}
	for _, dep := range p.packages[r.Name+"/"+best.String()] {
		rng, err := library.ParseRange(dep)
		if err != nil {
			return nil, err
		}
		desc.Dependencies = append(desc.Dependencies, library.Dependency{Range: rng, Type: library.DefaultDependencyType})
	}
	return desc, nil
}

func (p *fakeProvider) Initialize(_ context.Context, resolved []*library.Description, _ *frameworks.NuGetFramework, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initialized = append(p.initialized, resolved)
}

func walkModes(t *testing.T, fn func(t *testing.T, walk func(*Walker, string) (*WalkResult, error))) {
	t.Run("sync", func(t *testing.T) {
		fn(t, func(w *Walker, root string) (*WalkResult, error) {
			return w.Walk(context.Background(), root, nil, dnx451)
		})
	})
	t.Run("concurrent", func(t *testing.T) {
		fn(t, func(w *Walker, root string) (*WalkResult, error) {
			return w.WalkConcurrent(context.Background(), root, nil, dnx451)
		})
	})
}

func TestWalker_NearestWins(t *testing.T) {
	walkModes(t, func(t *testing.T, walk func(*Walker, string) (*WalkResult, error)) {
		projects := newFakeProvider("project", map[string][]string{
			"R/1.0.0": {"A 1.0.0", "B 1.0.0"},
		})
		packages := newFakeProvider("package", map[string][]string{
			"A/1.0.0": {"C [1.0.0]"},
			"B/1.0.0": {"C [2.0.0]"},
			"C/1.0.0": nil,
			"C/2.0.0": nil,
		})
		w := NewWalker(Providers{Project: []DependencyProvider{projects}, Local: []DependencyProvider{packages}})

		result, err := walk(w, "R")
		require.NoError(t, err)

		var names []string
		for _, lib := range result.Libraries {
			names = append(names, lib.Identity.String())
		}
		assert.Equal(t, []string{"R/1.0.0", "A/1.0.0", "B/1.0.0", "C/1.0.0"}, names)

		b := result.Root.Children[1]
		require.Len(t, b.Children, 1)
		assert.Equal(t, StateEclipsed, b.Children[0].State)
		assert.Nil(t, b.Children[0].Item)

		// B's edge still requests 2.0.0 but points at the winner.
		bDesc := result.Find("B")
		require.NotNil(t, bDesc)
		assert.Equal(t, "C [2.0.0]", bDesc.Dependencies[0].Range.String())
		assert.Equal(t, "C/1.0.0", bDesc.Dependencies[0].Resolved.String())

		require.Len(t, packages.initialized, 1)
		assert.Len(t, packages.initialized[0], 3)
		require.Len(t, projects.initialized, 1)
		assert.Len(t, projects.initialized[0], 1)
	})
}

func TestWalker_EclipseScansEarlierNodes(t *testing.T) {
	walkModes(t, func(t *testing.T, walk func(*Walker, string) (*WalkResult, error)) {
		// X hangs off A, which is not an ancestor of Y, and still eclipses Y's X.
		projects := newFakeProvider("project", map[string][]string{
			"R/1.0.0": {"A 1.0.0", "B 1.0.0"},
		})
		packages := newFakeProvider("package", map[string][]string{
			"A/1.0.0": {"X [1.0.0]"},
			"B/1.0.0": {"Y 1.0.0"},
			"Y/1.0.0": {"X [2.0.0]"},
			"X/1.0.0": nil,
			"X/2.0.0": nil,
		})
		w := NewWalker(Providers{Project: []DependencyProvider{projects}, Local: []DependencyProvider{packages}})

		result, err := walk(w, "R")
		require.NoError(t, err)

		y := result.Root.Children[1].Children[0]
		require.Len(t, y.Children, 1)
		assert.Equal(t, StateEclipsed, y.Children[0].State)

		x := result.Find("X")
		require.NotNil(t, x)
		assert.Equal(t, "X/1.0.0", x.Identity.String())
		assert.Equal(t, "X/1.0.0", result.Find("Y").Dependencies[0].Resolved.String())
	})
}

func TestWalker_CycleDetection(t *testing.T) {
	walkModes(t, func(t *testing.T, walk func(*Walker, string) (*WalkResult, error)) {
		packages := newFakeProvider("package", map[string][]string{
			"R/1.0.0": {"A 1.0.0"},
			"A/1.0.0": {"B 1.0.0"},
			"B/1.0.0": {"A 1.0.0"},
		})
		w := NewWalker(Providers{Local: []DependencyProvider{packages}})

		result, err := walk(w, "R")
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "R -> A -> B -> A")
		assert.True(t, errors.Is(err, ErrCycleDetected))

		var cycle *CycleError
		require.True(t, errors.As(err, &cycle))
		assert.Equal(t, []string{"R", "A", "B", "A"}, cycle.Chain)
		assert.Empty(t, packages.initialized)
	})
}

func TestWalker_UnresolvedDependency(t *testing.T) {
	walkModes(t, func(t *testing.T, walk func(*Walker, string) (*WalkResult, error)) {
		packages := newFakeProvider("package", map[string][]string{
			"R/1.0.0": {"Missing 2.0.0", "A 1.0.0"},
			"A/1.0.0": nil,
		})
		w := NewWalker(Providers{Local: []DependencyProvider{packages}})

		result, err := walk(w, "R")
		require.NoError(t, err)

		unresolved := result.Unresolved()
		require.Len(t, unresolved, 1)
		assert.Equal(t, "Missing", unresolved[0].Name())
		assert.Equal(t, library.KindUnresolved, unresolved[0].Kind)
		assert.Equal(t, "2.0.0", unresolved[0].Identity.Version.String())
		assert.Equal(t, StateUnresolved, result.Root.Children[0].State)
		assert.Equal(t, StateResolved, result.Root.Children[1].State)

		// The fallback description is not handed to any provider.
		require.Len(t, packages.initialized, 1)
		assert.Len(t, packages.initialized[0], 2)
	})
}

func TestWalker_FallbackProvider(t *testing.T) {
	ctrl := gomock.NewController(t)
	fallback := mocks.NewMockDependencyProvider(ctrl)

	projects := newFakeProvider("project", map[string][]string{
		"App/1.0.0": {"Missing 1.5.0"},
	})
	fallback.EXPECT().
		Describe(gomock.Any(), gomock.Any(), dnx451).
		DoAndReturn(func(_ context.Context, r library.Range, fw *frameworks.NuGetFramework) (*library.Description, error) {
			return library.NewUnresolved(r, fw), nil
		}).
		Times(1)
	fallback.EXPECT().
		Initialize(gomock.Any(), gomock.Len(1), dnx451, "").
		Times(1)

	w := NewWalker(Providers{Project: []DependencyProvider{projects}, Fallback: fallback})
	result, err := w.Walk(context.Background(), "App", nil, dnx451)
	require.NoError(t, err)
	require.Len(t, result.Libraries, 2)

	missing := result.Root.Children[0]
	assert.Equal(t, StateUnresolved, missing.State)
	assert.Equal(t, fallback, missing.Item.Provider)
	assert.Equal(t, "1.5.0", result.Find("Missing").Identity.Version.String())
}

func TestWalker_MemoizesAcrossWalks(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockDependencyProvider(ctrl)

	root := &library.Description{
		Requested: library.NewRange("R", nil),
		Identity:  &library.Identity{Name: "R", Version: version.MustParse("1.0.0")},
		Kind:      library.KindProject,
		Resolved:  true,
	}
	provider.EXPECT().Describe(gomock.Any(), gomock.Any(), dnx451).Return(root, nil).Times(1)
	provider.EXPECT().Initialize(gomock.Any(), gomock.Len(1), dnx451, "").Times(2)

	w := NewWalker(Providers{Project: []DependencyProvider{provider}})
	first, err := w.Walk(context.Background(), "R", nil, dnx451)
	require.NoError(t, err)
	second, err := w.WalkConcurrent(context.Background(), "R", nil, dnx451)
	require.NoError(t, err)

	assert.Same(t, first.Root.Item, second.Root.Item)
	assert.NotSame(t, first.Libraries[0], second.Libraries[0])
	assert.Equal(t, 1, w.ranges.Len())
}

func TestWalker_SharesDescriptionsByIdentity(t *testing.T) {
	packages := newFakeProvider("package", map[string][]string{
		"X/1.0.0": {"C 1.0.0"},
		"Y/1.0.0": {"C [1.0.0]"},
		"C/1.0.0": nil,
	})
	w := NewWalker(Providers{Local: []DependencyProvider{packages}})

	x, err := w.Walk(context.Background(), "X", nil, dnx451)
	require.NoError(t, err)
	y, err := w.Walk(context.Background(), "Y", nil, dnx451)
	require.NoError(t, err)

	assert.Same(t, x.Root.Children[0].Item, y.Root.Children[0].Item)
}

func TestWalker_PlatformReferencesSkipPackageTiers(t *testing.T) {
	ctrl := gomock.NewController(t)
	local := mocks.NewMockDependencyProvider(ctrl)
	platform := newFakeProvider("platform", map[string][]string{
		"System/4.0.0.0": nil,
	})
	platform.kind = library.KindReferenceAssembly
	projects := newFakeProvider("project", map[string][]string{
		"App/1.0.0": {"fx/System"},
	})

	local.EXPECT().Describe(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := NewWalker(Providers{
		Project:  []DependencyProvider{projects},
		Platform: []DependencyProvider{platform},
		Local:    []DependencyProvider{local},
	})
	result, err := w.Walk(context.Background(), "App", nil, dnx451)
	require.NoError(t, err)

	fx := result.Root.Children[0]
	require.NotNil(t, fx.Item)
	assert.True(t, fx.Requested.IsPlatformReference)
	assert.Equal(t, library.KindReferenceAssembly, fx.Item.Description.Kind)
}

func TestWalker_ConcurrentTierSelection(t *testing.T) {
	local := newFakeProvider("local", map[string][]string{
		"Exact/1.0.0":     nil,
		"Float/1.0.1":     nil,
		"Bounded/1.2.0":   nil,
		"LocalOnly/1.0.0": nil,
	})
	remote := newFakeProvider("remote", map[string][]string{
		"Exact/1.0.0":   nil,
		"Float/1.0.5":   nil,
		"Bounded/1.1.0": nil,
		"Remote/3.0.0":  nil,
	})
	projects := newFakeProvider("project", map[string][]string{
		"App/1.0.0": {"Exact 1.0.0", "Float 1.0.*", "Bounded [1.0.0, 2.0.0)", "LocalOnly 1.0.0", "Remote 3.0.0"},
	})
	projects.kind = library.KindProject

	w := NewWalker(Providers{
		Project: []DependencyProvider{projects},
		Local:   []DependencyProvider{local},
		Remote:  []DependencyProvider{remote},
	})
	result, err := w.WalkConcurrent(context.Background(), "App", nil, dnx451)
	require.NoError(t, err)

	want := map[string]string{
		"Exact":     "1.0.0",
		"Float":     "1.0.5",
		"Bounded":   "1.1.0",
		"LocalOnly": "1.0.0",
		"Remote":    "3.0.0",
	}
	for name, ver := range want {
		lib := result.Find(name)
		require.NotNil(t, lib, name)
		assert.Equal(t, ver, lib.Identity.Version.String(), name)
	}
}

// blockingProvider answers only when the lookup is cancelled.
type blockingProvider struct{}

func (blockingProvider) AttemptedPaths(*frameworks.NuGetFramework) []string { return nil }

func (blockingProvider) Describe(ctx context.Context, _ library.Range, _ *frameworks.NuGetFramework) (*library.Description, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) Initialize(context.Context, []*library.Description, *frameworks.NuGetFramework, string) {
}

func TestWalker_ConcurrentExactLocalMatchSkipsRemote(t *testing.T) {
	remote := blockingProvider{}
	local := newFakeProvider("local", map[string][]string{"Exact/1.0.0": nil})
	projects := newFakeProvider("project", map[string][]string{"App/1.0.0": {"Exact [1.0.0]"}})
	projects.kind = library.KindProject

	w := NewWalker(Providers{
		Project: []DependencyProvider{projects},
		Local:   []DependencyProvider{local},
		Remote:  []DependencyProvider{remote},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := w.WalkConcurrent(ctx, "App", nil, dnx451)
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "walk waited for the remote tier")

	exact := result.Find("Exact")
	require.NotNil(t, exact)
	assert.Equal(t, "1.0.0", exact.Identity.Version.String())
	assert.True(t, exact.Resolved)
}

func TestWalker_SyncPrefersLocalTier(t *testing.T) {
	local := newFakeProvider("local", map[string][]string{"Float/1.0.1": nil})
	remote := newFakeProvider("remote", map[string][]string{"Float/1.0.5": nil})
	projects := newFakeProvider("project", map[string][]string{"App/1.0.0": {"Float 1.0.*"}})

	w := NewWalker(Providers{
		Project: []DependencyProvider{projects},
		Local:   []DependencyProvider{local},
		Remote:  []DependencyProvider{remote},
	})
	result, err := w.Walk(context.Background(), "App", nil, dnx451)
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", result.Find("Float").Identity.Version.String())
	assert.Zero(t, remote.calls.Load())
}

func TestWalker_ProviderError(t *testing.T) {
	failing := newFakeProvider("broken", nil)
	failing.err = errors.New("disk on fire")

	w := NewWalker(Providers{Local: []DependencyProvider{failing}})
	_, err := w.Walk(context.Background(), "R", nil, dnx451)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Contains(t, err.Error(), ErrProviderFailed.Error())
}

func TestWalker_ContextCancelled(t *testing.T) {
	packages := newFakeProvider("package", map[string][]string{"R/1.0.0": nil})
	w := NewWalker(Providers{Local: []DependencyProvider{packages}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Walk(ctx, "R", nil, dnx451)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = w.WalkConcurrent(ctx, "R", nil, dnx451)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, packages.calls.Load())
}

func TestWalker_WalkTargetsCollectsErrors(t *testing.T) {
	packages := newFakeProvider("package", map[string][]string{
		"Cyclic/1.0.0": {"Loop 1.0.0"},
		"Loop/1.0.0":   {"Cyclic 1.0.0"},
		"Fine/1.0.0":   nil,
	})
	w := NewWalker(Providers{Local: []DependencyProvider{packages}}, WithMode(ModeConcurrent))

	results, err := w.WalkTargets(context.Background(), []Target{
		{Name: "Cyclic", Framework: dnx451},
		{Name: "Fine", Framework: dnx451, RuntimeIdentifier: "win7-x64"},
		{Name: "Fine", Framework: frameworks.CommonFrameworks.DNXCore50},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycleDetected))
	assert.Contains(t, err.Error(), "Cyclic -> Loop -> Cyclic")

	require.Len(t, results, 3)
	assert.Nil(t, results[0])
	require.NotNil(t, results[1])
	assert.Equal(t, "win7-x64", results[1].RuntimeIdentifier)
	require.NotNil(t, results[2])
	assert.True(t, results[2].Framework.Equals(frameworks.CommonFrameworks.DNXCore50))
}

func TestWalker_RequiresFramework(t *testing.T) {
	w := NewWalker(Providers{})
	_, err := w.Walk(context.Background(), "R", nil, nil)
	assert.Error(t, err)
}

func TestNode_PathFromRoot(t *testing.T) {
	root := &Node{Requested: library.NewRange("R", nil)}
	a := &Node{Requested: library.NewRange("A", nil), Parent: root}
	b := &Node{Requested: library.NewRange("B", nil), Parent: a}
	root.Children = []*Node{a}
	a.Children = []*Node{b}

	assert.Equal(t, []string{"R", "A", "B"}, b.PathFromRoot())

	var visited []string
	root.Visit(func(n *Node) { visited = append(visited, n.Requested.Name) })
	assert.Equal(t, []string{"R", "A", "B"}, visited)
}

func TestNodeState_String(t *testing.T) {
	assert.Equal(t, "eclipsed", StateEclipsed.String())
	assert.Equal(t, "unresolved", StateUnresolved.String())
	assert.Equal(t, "concurrent", ModeConcurrent.String())
	assert.Equal(t, "sync", ModeSync.String())
}
