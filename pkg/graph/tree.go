// Package graph implements the mutable shader node tree: nodes, sockets and
// the links between them.
//
// Nodes live in an arena keyed by NodeID. Links are stored only in the tree,
// as an input-socket index plus an output fan-out index, so the connection
// lists reported by both endpoints are always symmetric.
package graph

import (
	"fmt"

	"github.com/ritzau/shadergraph/pkg/shader"
)

// NodeID identifies a node within its tree.
type NodeID int64

// SocketRef addresses a socket by owning node, direction and position.
type SocketRef struct {
	Node   NodeID
	Slot   int
	Output bool
}

// LayoutFunc is called whenever a link is made, letting callers move the
// producer next to its consumer. The tree itself never moves nodes.
type LayoutFunc func(producer, consumer *Node)

// Option configures a Tree.
type Option func(*Tree)

// WithLayout installs a layout strategy.
func WithLayout(fn LayoutFunc) Option {
	return func(t *Tree) { t.layout = fn }
}

// WithName sets a descriptive name used in logs.
func WithName(name string) Option {
	return func(t *Tree) { t.Name = name }
}

// Tree owns a set of nodes and all links between them.
type Tree struct {
	Name string

	catalog shader.Catalog
	layout  LayoutFunc

	nodes  map[NodeID]*Node
	order  []NodeID
	nextID NodeID

	links  map[SocketRef]SocketRef   // input -> output
	fanout map[SocketRef][]SocketRef // output -> inputs, in link order

	created []NodeID

	// Interface of a tree used as a group body.
	inputs  []shader.SocketSpec
	outputs []shader.SocketSpec
}

// NewTree creates an empty tree backed by catalog.
func NewTree(catalog shader.Catalog, opts ...Option) *Tree {
	t := &Tree{
		catalog: catalog,
		nodes:   make(map[NodeID]*Node),
		links:   make(map[SocketRef]SocketRef),
		fanout:  make(map[SocketRef][]SocketRef),
		nextID:  1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewGroupTree creates a tree meant to be the body of a group node. inputs
// and outputs define the group's interface; Group-Input and Group-Output
// nodes created in the tree expose them.
func NewGroupTree(catalog shader.Catalog, inputs, outputs []shader.SocketSpec, opts ...Option) *Tree {
	t := NewTree(catalog, opts...)
	t.inputs = append([]shader.SocketSpec(nil), inputs...)
	t.outputs = append([]shader.SocketSpec(nil), outputs...)
	return t
}

// Catalog returns the catalog the tree was built with.
func (t *Tree) Catalog() shader.Catalog { return t.catalog }

// Version returns the host version of the tree's catalog.
func (t *Tree) Version() shader.Version { return t.catalog.Version() }

// Interface returns the group interface of the tree.
func (t *Tree) Interface() (inputs, outputs []shader.SocketSpec) {
	return t.inputs, t.outputs
}

// New creates a node of the given kind with the kind's socket layout.
func (t *Tree) New(kind shader.NodeKind) (*Node, error) {
	layout, ok := t.catalog.Layout(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	ins, outs := layout.Inputs, layout.Outputs
	switch kind {
	case shader.KindGroupInput:
		ins, outs = nil, t.inputs
	case shader.KindGroupOutput:
		ins, outs = t.outputs, nil
	}

	n := &Node{
		tree:  t,
		id:    t.nextID,
		kind:  kind,
		Props: make(map[string]string, len(layout.Props)),
	}
	t.nextID++
	for k, v := range layout.Props {
		n.Props[k] = v
	}
	n.buildSockets(ins, outs)

	t.nodes[n.id] = n
	t.order = append(t.order, n.id)
	t.created = append(t.created, n.id)
	return n, nil
}

// MustNew is like New but panics on an unknown kind. Intended for fixtures.
func (t *Tree) MustNew(kind shader.NodeKind) *Node {
	n, err := t.New(kind)
	if err != nil {
		panic(err)
	}
	return n
}

// NewGroup creates a group node whose sockets mirror inner's interface.
func (t *Tree) NewGroup(inner *Tree) (*Node, error) {
	n, err := t.New(shader.KindGroup)
	if err != nil {
		return nil, err
	}
	n.SetInner(inner)
	return n, nil
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id NodeID) *Node {
	return t.nodes[id]
}

// Nodes returns the live nodes in creation order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.nodes))
	live := t.order[:0]
	for _, id := range t.order {
		if n, ok := t.nodes[id]; ok {
			out = append(out, n)
			live = append(live, id)
		}
	}
	t.order = live
	return out
}

// Len returns the number of live nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Find returns the live nodes of the given kind in creation order.
func (t *Tree) Find(kind shader.NodeKind) []*Node {
	var out []*Node
	for _, n := range t.Nodes() {
		if n.kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Link connects out to in, replacing any existing link into in.
func (t *Tree) Link(out, in *Socket) error {
	if out == nil || in == nil {
		return fmt.Errorf("%w: link with nil socket", ErrInvalidOperation)
	}
	if !out.output || in.output {
		return fmt.Errorf("%w: link must go from an output to an input (%s -> %s)", ErrInvalidOperation, out, in)
	}
	if out.node.tree != t || in.node.tree != t {
		return fmt.Errorf("%w: sockets belong to another tree", ErrInvalidOperation)
	}
	if !out.node.Alive() || !in.node.Alive() {
		return fmt.Errorf("%w: link touches a deleted node", ErrDeleted)
	}

	inRef, outRef := in.ref(), out.ref()
	if old, ok := t.links[inRef]; ok {
		if old == outRef {
			return nil
		}
		t.dropFanout(old, inRef)
	}
	t.links[inRef] = outRef
	t.fanout[outRef] = append(t.fanout[outRef], inRef)

	if t.layout != nil {
		t.layout(out.node, in.node)
	}
	return nil
}

// Unlink removes the link into in, if any.
func (t *Tree) Unlink(in *Socket) error {
	if in.output {
		return fmt.Errorf("%w: cannot disconnect output socket %s", ErrInvalidOperation, in)
	}
	inRef := in.ref()
	old, ok := t.links[inRef]
	if !ok {
		return nil
	}
	delete(t.links, inRef)
	t.dropFanout(old, inRef)
	return nil
}

func (t *Tree) dropFanout(out, in SocketRef) {
	consumers := t.fanout[out]
	for i, r := range consumers {
		if r == in {
			consumers = append(consumers[:i], consumers[i+1:]...)
			break
		}
	}
	if len(consumers) == 0 {
		delete(t.fanout, out)
	} else {
		t.fanout[out] = consumers
	}
}

// LinkCount returns the number of links in the tree.
func (t *Tree) LinkCount() int { return len(t.links) }

func (t *Tree) socket(r SocketRef) *Socket {
	n := t.nodes[r.Node]
	if n == nil {
		return nil
	}
	if r.Output {
		return n.outputs[r.Slot]
	}
	return n.inputs[r.Slot]
}

func (t *Tree) producer(in SocketRef) *Socket {
	out, ok := t.links[in]
	if !ok {
		return nil
	}
	return t.socket(out)
}

func (t *Tree) consumers(out SocketRef) []*Socket {
	refs := t.fanout[out]
	if len(refs) == 0 {
		return nil
	}
	socks := make([]*Socket, 0, len(refs))
	for _, r := range refs {
		if s := t.socket(r); s != nil {
			socks = append(socks, s)
		}
	}
	return socks
}

// DeleteNewNodes deletes every node created through this tree that is still
// alive and starts a fresh session. It returns the number of nodes deleted.
func (t *Tree) DeleteNewNodes() int {
	deleted := 0
	for _, id := range t.created {
		if n := t.nodes[id]; n != nil {
			n.Delete()
			deleted++
		}
	}
	t.created = t.created[:0]
	return deleted
}

// Created returns the live nodes created through this tree, in order.
func (t *Tree) Created() []*Node {
	var out []*Node
	for _, id := range t.created {
		if n := t.nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Scope tracks nodes created from the moment it is opened. Close deletes the
// ones that were not kept, so a failed or finished rewrite leaks no scratch
// nodes. Close is safe to call more than once.
type Scope struct {
	tree   *Tree
	start  int
	keep   map[NodeID]bool
	closed bool
}

// Scope opens a new scope on the tree.
func (t *Tree) Scope() *Scope {
	return &Scope{tree: t, start: len(t.created), keep: make(map[NodeID]bool)}
}

// Keep marks nodes to survive Close.
func (s *Scope) Keep(nodes ...*Node) {
	for _, n := range nodes {
		if n != nil {
			s.keep[n.id] = true
		}
	}
}

// Created returns the live nodes created since the scope was opened.
func (s *Scope) Created() []*Node {
	if s.start > len(s.tree.created) {
		return nil
	}
	var out []*Node
	for _, id := range s.tree.created[s.start:] {
		if n := s.tree.nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Close deletes every live node created in the scope that was not kept and
// returns how many were deleted.
func (s *Scope) Close() int {
	if s.closed {
		return 0
	}
	s.closed = true
	deleted := 0
	for _, n := range s.Created() {
		if !s.keep[n.id] {
			n.Delete()
			deleted++
		}
	}
	return deleted
}

// PlaceLeftOf is a LayoutFunc that moves freshly created producers to the
// left of their consumer.
func PlaceLeftOf(producer, consumer *Node) {
	if producer.Location != (Vec2{}) {
		return
	}
	producer.Location = Vec2{consumer.Location[0] - 200, consumer.Location[1]}
}

// Clone returns an independent copy of the tree with identical node ids,
// links and values. Group bodies are shared, since rewriting never mutates
// them. The clone starts a fresh session.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		Name:    t.Name,
		catalog: t.catalog,
		layout:  t.layout,
		nodes:   make(map[NodeID]*Node, len(t.nodes)),
		links:   make(map[SocketRef]SocketRef, len(t.links)),
		fanout:  make(map[SocketRef][]SocketRef, len(t.fanout)),
		nextID:  t.nextID,
		inputs:  t.inputs,
		outputs: t.outputs,
	}
	for _, n := range t.Nodes() {
		m := &Node{
			Label:    n.Label,
			Location: n.Location,
			Muted:    n.Muted,
			Props:    make(map[string]string, len(n.Props)),
			tree:     c,
			id:       n.id,
			kind:     n.kind,
			inner:    n.inner,
		}
		for k, v := range n.Props {
			m.Props[k] = v
		}
		m.inputs = make([]*Socket, len(n.inputs))
		for i, s := range n.inputs {
			m.inputs[i] = &Socket{node: m, slot: i, spec: s.spec, value: s.value}
		}
		m.outputs = make([]*Socket, len(n.outputs))
		for i, s := range n.outputs {
			m.outputs[i] = &Socket{node: m, slot: i, output: true, spec: s.spec, value: s.value}
		}
		c.nodes[m.id] = m
		c.order = append(c.order, m.id)
	}
	for in, out := range t.links {
		c.links[in] = out
	}
	for out, ins := range t.fanout {
		c.fanout[out] = append([]SocketRef(nil), ins...)
	}
	return c
}

// Socket returns the live socket at ref, or nil.
func (t *Tree) Socket(ref SocketRef) *Socket {
	return t.socket(ref)
}
