// Package resolver walks dependency graphs: it asks the dependency
// providers for every requested library, applies nearest-wins conflict
// resolution and cycle detection, and flattens the tree into the final
// library set of a target framework.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/observability"
	"github.com/willibrandon/gorestore/version"
)

// Mode selects how a walk schedules provider lookups.
type Mode int

const (
	// ModeSync resolves one node at a time in breadth-first order.
	ModeSync Mode = iota
	// ModeConcurrent resolves every node of a level concurrently.
	ModeConcurrent
)

func (m Mode) String() string {
	if m == ModeConcurrent {
		return "concurrent"
	}
	return "sync"
}

// Walker builds dependency graphs. A Walker memoizes provider results for
// its lifetime, so one Walker should serve one restore session.
type Walker struct {
	providers Providers
	mode      Mode
	logger    observability.Logger

	ranges     *OperationCache
	identities sync.Map // framework|identity key -> *Item
}

// Option configures a Walker.
type Option func(*Walker)

// WithLogger sets the walker logger.
func WithLogger(logger observability.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// WithMode sets the scheduling mode used by WalkTarget and WalkTargets.
func WithMode(mode Mode) Option {
	return func(w *Walker) {
		w.mode = mode
	}
}

// NewWalker creates a walker over providers.
func NewWalker(providers Providers, opts ...Option) *Walker {
	w := &Walker{
		providers: providers,
		logger:    observability.NewNullLogger(),
		ranges:    NewOperationCache(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk resolves the graph rooted at name one node at a time.
func (w *Walker) Walk(ctx context.Context, name string, ver *version.NuGetVersion, framework *frameworks.NuGetFramework) (*WalkResult, error) {
	return w.walk(ctx, Target{Name: name, Version: ver, Framework: framework}, ModeSync)
}

// WalkConcurrent resolves the graph rooted at name, looking up every node of
// a level concurrently. The result is identical to Walk.
func (w *Walker) WalkConcurrent(ctx context.Context, name string, ver *version.NuGetVersion, framework *frameworks.NuGetFramework) (*WalkResult, error) {
	return w.walk(ctx, Target{Name: name, Version: ver, Framework: framework}, ModeConcurrent)
}

// WalkTarget resolves one target in the walker's mode.
func (w *Walker) WalkTarget(ctx context.Context, target Target) (*WalkResult, error) {
	return w.walk(ctx, target, w.mode)
}

// WalkTargets resolves every target. A failing target does not stop the
// others: its result is nil and its error is joined into the returned
// error.
func (w *Walker) WalkTargets(ctx context.Context, targets []Target) ([]*WalkResult, error) {
	results := make([]*WalkResult, len(targets))
	var errs []error
	for i, target := range targets {
		result, err := w.WalkTarget(ctx, target)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", targetName(target), err))
			continue
		}
		results[i] = result
	}
	return results, errors.Join(errs...)
}

func (w *Walker) walk(ctx context.Context, target Target, mode Mode) (result *WalkResult, err error) {
	if target.Framework == nil {
		return nil, fmt.Errorf("walk %s: framework is required", target.Name)
	}

	start := time.Now()
	ctx, span := observability.StartWalkSpan(ctx, target.Name, target.Framework.String(), mode.String())
	defer func() {
		observability.EndSpanWithError(span, err)
		observability.ObserveWalk(mode.String(), start)
	}()

	var rootRange *version.VersionRange
	if target.Version != nil {
		rootRange = version.NewExactRange(target.Version)
	}
	root := &Node{Requested: library.NewRange(target.Name, rootRange)}

	w.logger.Debug("Walking {Root} for {Framework} ({Mode})", target.Name, target.Framework.String(), mode.String())

	if mode == ModeConcurrent {
		err = w.walkLevels(ctx, root, target.Framework)
	} else {
		err = w.walkQueue(ctx, root, target.Framework)
	}
	if err != nil {
		var cycle *CycleError
		if errors.As(err, &cycle) {
			observability.CyclesTotal.Inc()
			w.logger.Error("Dependency cycle while walking {Root}: {Chain}", target.Name, cycle.Error())
		}
		return nil, err
	}

	result = &WalkResult{
		Root:              root,
		Framework:         target.Framework,
		RuntimeIdentifier: target.RuntimeIdentifier,
	}
	w.populate(ctx, result, w.flatten(root))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recordNodeStates(root)
	return result, nil
}

// walkQueue is the synchronous breadth-first walk.
func (w *Walker) walkQueue(ctx context.Context, root *Node, framework *frameworks.NuGetFramework) error {
	created := map[string]*Node{nodeKey(root.Requested): root}
	queue := []*Node{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if err := w.resolveNode(ctx, node, framework, false); err != nil {
			return err
		}
		children, err := expand(node, created)
		if err != nil {
			return err
		}
		queue = append(queue, children...)
	}
	return nil
}

// walkLevels resolves a whole level concurrently, then expands it in order.
// Cycle and eclipse checks run on the expanding goroutine before the next
// level launches, so the tree matches walkQueue.
func (w *Walker) walkLevels(ctx context.Context, root *Node, framework *frameworks.NuGetFramework) error {
	created := map[string]*Node{nodeKey(root.Requested): root}
	level := []*Node{root}
	for len(level) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		for _, node := range level {
			g.Go(func() error {
				return w.resolveNode(gctx, node, framework, true)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var next []*Node
		for _, node := range level {
			children, err := expand(node, created)
			if err != nil {
				return err
			}
			next = append(next, children...)
		}
		level = next
	}
	return nil
}

func (w *Walker) resolveNode(ctx context.Context, node *Node, framework *frameworks.NuGetFramework, concurrent bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	node.State = StateResolving
	item, err := w.resolveRange(ctx, node.Requested, framework, concurrent)
	if err != nil {
		return err
	}

	node.Item = item
	if item.Description.Resolved {
		node.State = StateResolved
	} else {
		node.State = StateUnresolved
	}
	return nil
}

// expand creates the children of node. A dependency naming an ancestor is a
// cycle. A dependency naming any node created earlier in the walk is
// eclipsed: it is kept as a leaf and not walked.
func expand(node *Node, created map[string]*Node) ([]*Node, error) {
	if node.Item == nil {
		return nil, nil
	}

	var walk []*Node
	for _, dep := range node.Item.Description.Dependencies {
		key := nodeKey(dep.Range)
		for ancestor := node; ancestor != nil; ancestor = ancestor.Parent {
			if nodeKey(ancestor.Requested) == key {
				return nil, &CycleError{Chain: append(node.PathFromRoot(), dep.Range.Name)}
			}
		}

		child := &Node{Requested: dep.Range, Parent: node, Depth: node.Depth + 1}
		node.Children = append(node.Children, child)
		if _, seen := created[key]; seen {
			child.State = StateEclipsed
			continue
		}
		created[key] = child
		walk = append(walk, child)
	}
	return walk, nil
}

// flatten returns the first item per distinct name in walk order.
func (w *Walker) flatten(root *Node) []*Item {
	seen := make(map[string]bool)
	var used []*Item
	root.Visit(func(n *Node) {
		if n.Item == nil {
			return
		}
		key := nodeKey(n.Requested)
		if seen[key] {
			return
		}
		seen[key] = true
		used = append(used, n.Item)
	})
	return used
}

// populate copies the used descriptions into result with every edge
// pointing at the winning identity, then lets each provider initialize the
// descriptions it produced.
func (w *Walker) populate(ctx context.Context, result *WalkResult, used []*Item) {
	winners := make(map[string]*library.Identity, len(used))
	for _, item := range used {
		if id := item.Description.Identity; id != nil {
			winners[nodeKey(library.Range{Name: id.Name, IsPlatformReference: id.IsPlatformReference})] = id
		}
	}

	var order []DependencyProvider
	groups := make(map[DependencyProvider][]*library.Description)
	for _, item := range used {
		desc := *item.Description
		desc.Dependencies = make([]library.Dependency, len(item.Description.Dependencies))
		for i, dep := range item.Description.Dependencies {
			if winner, ok := winners[nodeKey(dep.Range)]; ok {
				id := *winner
				dep.Resolved = &id
			}
			desc.Dependencies[i] = dep
		}
		result.Libraries = append(result.Libraries, &desc)

		if item.Provider == nil {
			continue
		}
		if _, ok := groups[item.Provider]; !ok {
			order = append(order, item.Provider)
		}
		groups[item.Provider] = append(groups[item.Provider], &desc)
	}

	for _, p := range order {
		p.Initialize(ctx, groups[p], result.Framework, result.RuntimeIdentifier)
	}
}

func recordNodeStates(root *Node) {
	root.Visit(func(n *Node) {
		observability.WalkNodesTotal.WithLabelValues(n.State.String()).Inc()
	})
}

func targetName(t Target) string {
	name := t.Name + " " + t.Framework.String()
	if t.RuntimeIdentifier != "" {
		name += "/" + t.RuntimeIdentifier
	}
	return name
}
