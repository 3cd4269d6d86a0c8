package graph

import (
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// view exposes the tree to gonum. Upstream views have edges from each
// consumer to its producers, downstream views the reverse. Several links
// between the same pair of nodes collapse into one edge.
type view struct {
	t    *Tree
	down bool
}

// Upstream returns a gonum view whose edges point from consumers to producers.
func (t *Tree) Upstream() gonum.Directed { return view{t: t} }

// Downstream returns a gonum view whose edges point from producers to consumers.
func (t *Tree) Downstream() gonum.Directed { return view{t: t, down: true} }

// GraphID converts a gonum node id back to a NodeID.
func GraphID(n gonum.Node) NodeID { return NodeID(n.ID()) }

func (v view) Node(id int64) gonum.Node {
	if _, ok := v.t.nodes[NodeID(id)]; !ok {
		return nil
	}
	return simple.Node(id)
}

func (v view) Nodes() gonum.Nodes {
	nodes := v.t.Nodes()
	if len(nodes) == 0 {
		return gonum.Empty
	}
	return iterator.NewOrderedNodes(toGonum(nodes))
}

func (v view) neighbours(id int64, down bool) gonum.Nodes {
	n := v.t.nodes[NodeID(id)]
	if n == nil {
		return gonum.Empty
	}
	var next []*Node
	if down {
		next = n.Parents()
	} else {
		next = n.Children()
	}
	if len(next) == 0 {
		return gonum.Empty
	}
	return iterator.NewOrderedNodes(toGonum(next))
}

func (v view) From(id int64) gonum.Nodes { return v.neighbours(id, v.down) }

func (v view) To(id int64) gonum.Nodes { return v.neighbours(id, !v.down) }

func (v view) HasEdgeFromTo(uid, vid int64) bool {
	n := v.t.nodes[NodeID(uid)]
	if n == nil {
		return false
	}
	next := n.Children()
	if v.down {
		next = n.Parents()
	}
	for _, m := range next {
		if int64(m.id) == vid {
			return true
		}
	}
	return false
}

func (v view) HasEdgeBetween(xid, yid int64) bool {
	return v.HasEdgeFromTo(xid, yid) || v.HasEdgeFromTo(yid, xid)
}

func (v view) Edge(uid, vid int64) gonum.Edge {
	if !v.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return simple.Edge{F: simple.Node(uid), T: simple.Node(vid)}
}

func toGonum(nodes []*Node) []gonum.Node {
	out := make([]gonum.Node, len(nodes))
	for i, n := range nodes {
		out[i] = simple.Node(n.id)
	}
	return out
}

// walker collects nodes in depth-first order. Its seen-set persists across
// walks, so diamonds and hidden cycles are visited once.
type walker struct {
	t     *Tree
	dfs   traverse.DepthFirst
	nodes []*Node
	skip  NodeID
}

func newWalker(t *Tree, skip NodeID) *walker {
	w := &walker{t: t, skip: skip}
	w.dfs.Visit = func(n gonum.Node) {
		if id := GraphID(n); id != w.skip {
			if node := t.nodes[id]; node != nil {
				w.nodes = append(w.nodes, node)
			}
		}
	}
	return w
}

func (w *walker) walk(g gonum.Directed, from *Node) {
	w.dfs.Walk(g, simple.Node(from.id), nil)
}

// Descendants returns every node upstream of n, each once.
func (n *Node) Descendants() []*Node {
	w := newWalker(n.tree, n.id)
	w.walk(n.tree.Upstream(), n)
	return w.nodes
}

// Ancestors returns every node downstream of n, each once.
func (n *Node) Ancestors() []*Node {
	w := newWalker(n.tree, n.id)
	w.walk(n.tree.Downstream(), n)
	return w.nodes
}

// Descendants returns the nodes that feed this socket, transitively. For an
// input that is its producer and everything upstream of it; for an output,
// everything upstream of the owning node.
func (s *Socket) Descendants() []*Node {
	if s.output {
		return s.node.Descendants()
	}
	p := s.Link()
	if p == nil {
		return nil
	}
	w := newWalker(s.node.tree, 0)
	w.walk(s.node.tree.Upstream(), p.node)
	return w.nodes
}

// Ancestors returns the nodes this socket feeds, transitively. For an output
// that is its consumers and everything downstream of them; for an input,
// everything downstream of the owning node.
func (s *Socket) Ancestors() []*Node {
	if !s.output {
		return s.node.Ancestors()
	}
	w := newWalker(s.node.tree, 0)
	g := s.node.tree.Downstream()
	for _, c := range s.Connections() {
		w.walk(g, c.node)
	}
	return w.nodes
}
