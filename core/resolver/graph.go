package resolver

import (
	"strings"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/version"
)

// NodeState tracks a node through a walk.
type NodeState int

const (
	// StatePending - created, not yet resolved
	StatePending NodeState = iota
	// StateResolving - a provider lookup is in flight
	StateResolving
	// StateResolved - a provider supplied a usable description
	StateResolved
	// StateEclipsed - the name was already requested closer to the root
	StateEclipsed
	// StateUnresolved - only an unresolved description could be produced
	StateUnresolved
)

func (s NodeState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateEclipsed:
		return "eclipsed"
	case StateUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Item is a resolved description together with the provider that produced
// it. Items are shared between nodes that settle on the same identity.
type Item struct {
	Description *library.Description
	Provider    DependencyProvider
}

// Node is a vertex of the walk tree.
type Node struct {
	Requested library.Range
	Item      *Item
	Parent    *Node
	Children  []*Node
	State     NodeState
	Depth     int
}

// PathFromRoot returns the requested names from the root to n.
func (n *Node) PathFromRoot() []string {
	var path []string
	for cur := n; cur != nil; cur = cur.Parent {
		path = append(path, cur.Requested.Name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Visit calls fn for every node in breadth-first order.
func (n *Node) Visit(fn func(*Node)) {
	queue := []*Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		fn(cur)
		queue = append(queue, cur.Children...)
	}
}

// Target is one root to resolve for one framework and runtime.
type Target struct {
	Name              string
	Version           *version.NuGetVersion
	Framework         *frameworks.NuGetFramework
	RuntimeIdentifier string
}

// WalkResult is the outcome of one walk.
type WalkResult struct {
	Root              *Node
	Framework         *frameworks.NuGetFramework
	RuntimeIdentifier string

	// Libraries is the flattened library set: one description per distinct
	// name, in walk order, with dependency edges pointing at the winners.
	Libraries []*library.Description
}

// Find returns the winning description for name, or nil.
func (r *WalkResult) Find(name string) *library.Description {
	for _, d := range r.Libraries {
		if strings.EqualFold(d.Name(), name) {
			return d
		}
	}
	return nil
}

// Unresolved returns the libraries no provider could fully resolve.
func (r *WalkResult) Unresolved() []*library.Description {
	var unresolved []*library.Description
	for _, d := range r.Libraries {
		if !d.Resolved {
			unresolved = append(unresolved, d)
		}
	}
	return unresolved
}

// nodeKey is the name key used for cycle and eclipse checks.
func nodeKey(r library.Range) string {
	if r.IsPlatformReference {
		return library.PlatformPrefix + strings.ToLower(r.Name)
	}
	return strings.ToLower(r.Name)
}
