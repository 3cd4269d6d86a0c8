package graph

import (
	"fmt"
	"log/slog"

	"github.com/ritzau/shadergraph/pkg/shader"
)

// Vec2 is a cosmetic editor location.
type Vec2 [2]float64

// Node is a typed vertex owning ordered input and output sockets.
type Node struct {
	Label    string
	Location Vec2
	Muted    bool
	Props    map[string]string

	tree    *Tree
	id      NodeID
	kind    shader.NodeKind
	inner   *Tree
	inputs  []*Socket
	outputs []*Socket
}

// ID returns the node's arena id.
func (n *Node) ID() NodeID { return n.id }

// Kind returns the node kind.
func (n *Node) Kind() shader.NodeKind { return n.kind }

// Tree returns the owning tree.
func (n *Node) Tree() *Tree { return n.tree }

// Inner returns the body of a group node, or nil.
func (n *Node) Inner() *Tree { return n.inner }

// Alive reports whether the node is still part of its tree.
func (n *Node) Alive() bool {
	return n.tree != nil && n.tree.nodes[n.id] == n
}

func (n *Node) String() string {
	if n.Label != "" {
		return fmt.Sprintf("%s#%d(%s)", n.kind, n.id, n.Label)
	}
	return fmt.Sprintf("%s#%d", n.kind, n.id)
}

// LogValue logs the node by its short name.
func (n *Node) LogValue() slog.Value { return slog.StringValue(n.String()) }

func (n *Node) buildSockets(ins, outs []shader.SocketSpec) {
	n.inputs = make([]*Socket, len(ins))
	for i, spec := range ins {
		n.inputs[i] = &Socket{node: n, slot: i, spec: spec, value: spec.Default}
	}
	n.outputs = make([]*Socket, len(outs))
	for i, spec := range outs {
		n.outputs[i] = &Socket{node: n, slot: i, output: true, spec: spec, value: spec.Default}
	}
}

// SetInner attaches a group body and rebuilds the node's sockets from the
// body's interface. Existing links of the node are dropped.
func (n *Node) SetInner(inner *Tree) {
	n.unlinkAll()
	n.inner = inner
	var ins, outs []shader.SocketSpec
	if inner != nil {
		ins, outs = inner.Interface()
	}
	n.buildSockets(ins, outs)
}

// Inputs returns the input sockets in order.
func (n *Node) Inputs() []*Socket { return n.inputs }

// Outputs returns the output sockets in order.
func (n *Node) Outputs() []*Socket { return n.outputs }

// Input returns the input socket with the given identifier.
func (n *Node) Input(id string) (*Socket, bool) {
	for _, s := range n.inputs {
		if s.spec.Identifier == id {
			return s, true
		}
	}
	return nil, false
}

// Output returns the output socket with the given identifier.
func (n *Node) Output(id string) (*Socket, bool) {
	for _, s := range n.outputs {
		if s.spec.Identifier == id {
			return s, true
		}
	}
	return nil, false
}

// Out returns the first output socket, or nil when the node has none.
func (n *Node) Out() *Socket {
	if len(n.outputs) == 0 {
		return nil
	}
	return n.outputs[0]
}

// ShaderOutput returns the first Shader-kind output.
func (n *Node) ShaderOutput() (*Socket, bool) {
	for _, s := range n.outputs {
		if s.spec.Kind == shader.KindShader {
			return s, true
		}
	}
	return nil, false
}

// Get returns the effective input: the connected producer when linked,
// otherwise the socket's literal default.
func (n *Node) Get(id string) (Input, bool) {
	s, ok := n.Input(id)
	if !ok {
		return Input{}, false
	}
	return s.Effective(), true
}

// Value returns the literal default of an input, ignoring links.
func (n *Node) Value(id string) (shader.Value, bool) {
	s, ok := n.Input(id)
	if !ok {
		return shader.Value{}, false
	}
	return s.value, true
}

// Set assigns an input. A linked Input connects its producer, replacing any
// link; a literal Input stores the coerced value and always severs an
// existing link.
func (n *Node) Set(id string, in Input) error {
	s, ok := n.Input(id)
	if !ok {
		return fmt.Errorf("%w: %s has no input %q", ErrInvalidOperation, n, id)
	}
	return s.Assign(in)
}

// SetValue is shorthand for Set(id, Literal(v)).
func (n *Node) SetValue(id string, v shader.Value) error {
	return n.Set(id, Literal(v))
}

// SetFloat is shorthand for Set(id, Literal(shader.Float(f))).
func (n *Node) SetFloat(id string, f float64) error {
	return n.Set(id, Literal(shader.Float(f)))
}

// Connect links producer into the named input.
func (n *Node) Connect(id string, producer *Socket) error {
	return n.Set(id, Linked(producer))
}

// Copy creates a node of the same kind sharing the original's upstream
// producers. Labels, properties, mute state and output constants are copied.
func (n *Node) Copy() (*Node, error) {
	if !n.Alive() {
		return nil, fmt.Errorf("%w: copy of %s", ErrDeleted, n)
	}
	var (
		c   *Node
		err error
	)
	if n.kind == shader.KindGroup {
		c, err = n.tree.NewGroup(n.inner)
	} else {
		c, err = n.tree.New(n.kind)
	}
	if err != nil {
		return nil, err
	}
	c.Label = n.Label
	c.Muted = n.Muted
	c.Location = Vec2{n.Location[0], n.Location[1] - 150}
	for k, v := range n.Props {
		c.Props[k] = v
	}
	for i, s := range n.inputs {
		if err := c.inputs[i].Assign(s.Effective()); err != nil {
			return nil, fmt.Errorf("copying input %q of %s: %w", s.Identifier(), n, err)
		}
	}
	for i, s := range n.outputs {
		c.outputs[i].value = s.value
	}
	return c, nil
}

// Children returns the distinct nodes feeding this node's inputs.
func (n *Node) Children() []*Node {
	var out []*Node
	seen := make(map[NodeID]bool)
	for _, s := range n.inputs {
		if p := s.Link(); p != nil && !seen[p.node.id] {
			seen[p.node.id] = true
			out = append(out, p.node)
		}
	}
	return out
}

// Parents returns the distinct nodes consuming this node's outputs.
func (n *Node) Parents() []*Node {
	var out []*Node
	seen := make(map[NodeID]bool)
	for _, s := range n.outputs {
		for _, c := range s.Connections() {
			if !seen[c.node.id] {
				seen[c.node.id] = true
				out = append(out, c.node)
			}
		}
	}
	return out
}

// IsOrphan reports whether the node has outputs and none of them is linked.
func (n *Node) IsOrphan() bool {
	if len(n.outputs) == 0 {
		return false
	}
	for _, s := range n.outputs {
		if s.IsLinked() {
			return false
		}
	}
	return true
}

func (n *Node) unlinkAll() {
	if n.tree == nil {
		return
	}
	for _, s := range n.inputs {
		_ = n.tree.Unlink(s)
	}
	for _, s := range n.outputs {
		for _, c := range s.Connections() {
			_ = n.tree.Unlink(c)
		}
	}
}

// Delete removes the node and every link touching it. It returns the
// distinct nodes that fed its inputs and the distinct nodes that consumed
// its outputs, so callers can prune whatever became orphaned.
func (n *Node) Delete() (children, parents []*Node) {
	if !n.Alive() {
		return nil, nil
	}
	children = n.Children()
	parents = n.Parents()
	n.unlinkAll()
	delete(n.tree.nodes, n.id)
	return children, parents
}

// passThrough picks the input a muted node forwards to out: the first input
// of the same kind, otherwise the first non-shader input. Shader outputs
// only forward shader inputs, so a muted BSDF contributes nothing.
func (n *Node) passThrough(out *Socket) *Socket {
	for _, s := range n.inputs {
		if s.spec.Kind == out.spec.Kind {
			return s
		}
	}
	if out.spec.Kind == shader.KindShader {
		return nil
	}
	for _, s := range n.inputs {
		if s.spec.Kind != shader.KindShader {
			return s
		}
	}
	return nil
}

// Dissolve deletes the node while keeping the graph connected: every
// consumer of an output is relinked to whatever fed the node's pass-through
// input. Unlinked pass-through inputs are materialized as constants first.
// It returns the nodes that fed the dissolved node.
func (n *Node) Dissolve() ([]*Node, error) {
	for _, out := range n.outputs {
		consumers := out.Connections()
		if len(consumers) == 0 {
			continue
		}
		via := n.passThrough(out)
		if via == nil {
			for _, c := range consumers {
				_ = n.tree.Unlink(c)
			}
			continue
		}
		producer, err := via.AsOutput()
		if err != nil {
			return nil, fmt.Errorf("dissolving %s: %w", n, err)
		}
		for _, c := range consumers {
			if err := n.tree.Link(producer, c); err != nil {
				return nil, fmt.Errorf("dissolving %s: %w", n, err)
			}
		}
	}
	children, _ := n.Delete()
	return children, nil
}

// Prune deletes the given nodes when they are orphaned, then keeps going
// with whatever fed them. protect may veto deletion. It returns the number
// of nodes deleted.
func Prune(nodes []*Node, protect func(*Node) bool) int {
	deleted := 0
	queue := append([]*Node(nil), nodes...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if !n.Alive() || !n.IsOrphan() {
			continue
		}
		if protect != nil && protect(n) {
			continue
		}
		children, _ := n.Delete()
		deleted++
		queue = append(queue, children...)
	}
	return deleted
}
