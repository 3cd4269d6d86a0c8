// Package cycles reports apparent cycles in a shader tree. Hosts refuse real
// cycles, but hidden or invalid links can still form loops; traversal in the
// graph package survives them, and this package makes them visible.
package cycles

import (
	"github.com/ritzau/shadergraph/pkg/graph"
)

// LinkCycle is a set of nodes that feed each other in a loop.
type LinkCycle struct {
	Nodes []*graph.Node
}

// Labels returns the display names of the nodes in the cycle.
func (c LinkCycle) Labels() []string {
	out := make([]string, len(c.Nodes))
	for i, n := range c.Nodes {
		out[i] = n.String()
	}
	return out
}

// FindLinkCycles finds every cycle in the tree.
func FindLinkCycles(t *graph.Tree) []LinkCycle {
	return fromComponents(t, newSCCFinder(t.Upstream()).components(), nil)
}

// FindCyclesWithin restricts the search result to cycles that contain at
// least one of the given nodes.
func FindCyclesWithin(t *graph.Tree, nodes []*graph.Node) []LinkCycle {
	within := make(map[graph.NodeID]bool, len(nodes))
	for _, n := range nodes {
		within[n.ID()] = true
	}
	return fromComponents(t, newSCCFinder(t.Upstream()).components(), within)
}

func fromComponents(t *graph.Tree, sccs [][]int64, within map[graph.NodeID]bool) []LinkCycle {
	cycles := make([]LinkCycle, 0)
	for _, scc := range sccs {
		var nodes []*graph.Node
		hit := within == nil
		for _, id := range scc {
			n := t.Node(graph.NodeID(id))
			if n == nil {
				continue
			}
			if within[n.ID()] {
				hit = true
			}
			nodes = append(nodes, n)
		}
		if hit && len(nodes) > 0 {
			cycles = append(cycles, LinkCycle{Nodes: nodes})
		}
	}
	return cycles
}
