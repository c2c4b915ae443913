// Package dispatch arranges a discovered route manifest into a command
// hierarchy keyed by path segments, resolves user-supplied paths against it,
// and executes the single HTTP call a resolution names. The same tree drives
// shell completion export, so the builder is the one source of truth for
// which invocations exist.
package dispatch

import (
	"sort"
	"strings"

	"ptcli/internal/features/discovery"
)

// Node is one level of the command hierarchy. Nodes exist only along route
// paths, so a node always carries a route, a child, or both.
type Node struct {
	Segment  string                                // literal text or "<name>"
	Children map[string]*Node                      // literal children by segment
	Param    *Node                                 // at most one placeholder child
	Routes   map[string]*discovery.RouteDescriptor // callable endpoints by method
}

func newNode(segment string) *Node {
	return &Node{
		Segment:  segment,
		Children: make(map[string]*Node),
		Routes:   make(map[string]*discovery.RouteDescriptor),
	}
}

// HasRoute reports whether the node is a callable endpoint for any method.
func (n *Node) HasRoute() bool { return len(n.Routes) > 0 }

// SortedChildren returns literal children in lexicographic segment order,
// with the parameter child, if any, last. Exporters depend on this order
// being deterministic.
func (n *Node) SortedChildren() []*Node {
	segs := make([]string, 0, len(n.Children))
	for seg := range n.Children {
		segs = append(segs, seg)
	}
	sort.Strings(segs)

	out := make([]*Node, 0, len(segs)+1)
	for _, seg := range segs {
		out = append(out, n.Children[seg])
	}
	if n.Param != nil {
		out = append(out, n.Param)
	}
	return out
}

// SortedMethods returns the node's route methods in lexicographic order.
func (n *Node) SortedMethods() []string {
	methods := make([]string, 0, len(n.Routes))
	for m := range n.Routes {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Build produces the command tree for a manifest. The root node represents
// the empty path. A second route landing on an already-claimed (path, method)
// node, or a second placeholder name under one parent, is a manifest
// conflict: the builder refuses to silently pick one.
func Build(m *discovery.RouteManifest) (*Node, error) {
	if len(m.Routes) == 0 {
		return nil, discovery.Errf(discovery.EmptyManifest, "manifest from %s has no routes", m.BaseURL)
	}

	root := newNode("")
	for i := range m.Routes {
		route := &m.Routes[i]
		node := root
		for _, seg := range route.Segments() {
			if _, ok := discovery.IsParam(seg); ok {
				if node.Param == nil {
					node.Param = newNode(seg)
				} else if node.Param.Segment != seg {
					return nil, discovery.Errf(discovery.ManifestConflict,
						"route %s: placeholder %s clashes with %s under /%s",
						route.Path, seg, node.Param.Segment, strings.Join(prefixOf(root, node), "/"))
				}
				node = node.Param
				continue
			}
			child, ok := node.Children[seg]
			if !ok {
				child = newNode(seg)
				node.Children[seg] = child
			}
			node = child
		}
		if _, claimed := node.Routes[route.Method]; claimed {
			return nil, discovery.Errf(discovery.ManifestConflict,
				"duplicate route definition for %s %s", route.Method, route.Path)
		}
		node.Routes[route.Method] = route
	}
	return root, nil
}

// prefixOf recovers the segment path from root down to target, for conflict
// messages only.
func prefixOf(root, target *Node) []string {
	var path []string
	var find func(n *Node, trail []string) bool
	find = func(n *Node, trail []string) bool {
		if n == target {
			path = trail
			return true
		}
		for _, c := range n.SortedChildren() {
			if find(c, append(trail, c.Segment)) {
				return true
			}
		}
		return false
	}
	find(root, nil)
	return path
}
