package graph

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ritzau/shadergraph/pkg/shader"
)

// Socket is a typed connection point on a node. Inputs accept at most one
// link; outputs fan out to any number of inputs.
type Socket struct {
	node   *Node
	slot   int
	output bool
	spec   shader.SocketSpec
	value  shader.Value
}

func (s *Socket) ref() SocketRef {
	return SocketRef{Node: s.node.id, Slot: s.slot, Output: s.output}
}

// Ref returns the socket's arena address.
func (s *Socket) Ref() SocketRef { return s.ref() }

// Node returns the owning node.
func (s *Socket) Node() *Node { return s.node }

// Identifier returns the socket identifier, unique per node and direction.
func (s *Socket) Identifier() string { return s.spec.Identifier }

// Kind returns the socket data type.
func (s *Socket) Kind() shader.SocketKind { return s.spec.Kind }

// Arity returns the component count of a vector socket.
func (s *Socket) Arity() int { return s.spec.Arity }

// IsOutput reports the socket direction.
func (s *Socket) IsOutput() bool { return s.output }

// IsDirection reports whether the socket carries a normal or tangent.
func (s *Socket) IsDirection() bool { return s.spec.Direction }

// Default returns the socket's literal value.
func (s *Socket) Default() shader.Value { return s.value }

func (s *Socket) String() string {
	dir := "in"
	if s.output {
		dir = "out"
	}
	return fmt.Sprintf("%s.%s[%s]", s.node, s.spec.Identifier, dir)
}

func (s *Socket) LogValue() slog.Value { return slog.StringValue(s.String()) }

// Link returns the output feeding this input, or nil.
func (s *Socket) Link() *Socket {
	if s.output || s.node.tree == nil {
		return nil
	}
	return s.node.tree.producer(s.ref())
}

// IsLinked reports whether the socket has at least one connection.
func (s *Socket) IsLinked() bool {
	if s.node.tree == nil {
		return false
	}
	if s.output {
		return len(s.node.tree.fanout[s.ref()]) > 0
	}
	_, ok := s.node.tree.links[s.ref()]
	return ok
}

// Connections returns the peer sockets: at most one for an input, every
// consumer for an output.
func (s *Socket) Connections() []*Socket {
	if s.node.tree == nil {
		return nil
	}
	if s.output {
		return s.node.tree.consumers(s.ref())
	}
	if p := s.Link(); p != nil {
		return []*Socket{p}
	}
	return nil
}

// Connect links this socket with other. The two must differ in direction.
// Connecting an input that is already linked replaces the old link.
func (s *Socket) Connect(other *Socket) error {
	if other == nil {
		return fmt.Errorf("%w: connect %s to nil", ErrInvalidOperation, s)
	}
	if s.output == other.output {
		return fmt.Errorf("%w: cannot connect %s to %s", ErrInvalidOperation, s, other)
	}
	if s.output {
		return s.node.tree.Link(s, other)
	}
	return s.node.tree.Link(other, s)
}

// Disconnect removes the link into an input socket. It is a no-op when the
// input is not linked and an error on output sockets.
func (s *Socket) Disconnect() error {
	if s.output {
		return fmt.Errorf("%w: cannot disconnect output socket %s", ErrInvalidOperation, s)
	}
	return s.node.tree.Unlink(s)
}

// SetDefault stores v, coerced to the socket's kind.
func (s *Socket) SetDefault(v shader.Value) error {
	cv, err := shader.Coerce(v, s.spec.Kind, s.spec.Arity)
	if err != nil {
		return fmt.Errorf("setting %s: %w", s, err)
	}
	s.value = cv
	return nil
}

// Effective returns the connected producer, or the literal default.
func (s *Socket) Effective() Input {
	if p := s.Link(); p != nil {
		return Linked(p)
	}
	return Literal(s.value)
}

// Assign applies in to an input socket. Literals sever any existing link.
func (s *Socket) Assign(in Input) error {
	if s.output {
		return fmt.Errorf("%w: cannot assign to output socket %s", ErrInvalidOperation, s)
	}
	if in.Socket != nil {
		return s.Connect(in.Socket)
	}
	if in.Value.IsZero() {
		// shader sockets carry no literal
		return s.Disconnect()
	}
	if err := s.SetDefault(in.Value); err != nil {
		return err
	}
	return s.Disconnect()
}

// AsOutput returns something connectable that yields this socket's value:
// the socket itself for outputs, the producer for linked inputs, and a new
// constant node for unlinked inputs. Direction inputs get the geometry's
// own normal or tangent, and shader or string inputs get a zero value.
func (s *Socket) AsOutput() (*Socket, error) {
	if s.output {
		return s, nil
	}
	if p := s.Link(); p != nil {
		return p, nil
	}
	return s.node.tree.Constant(s.spec, s.value)
}

// Constant creates a node producing v as seen by a socket described by spec.
func (t *Tree) Constant(spec shader.SocketSpec, v shader.Value) (*Socket, error) {
	if spec.Direction {
		geo, err := t.New(shader.KindGeometry)
		if err != nil {
			return nil, err
		}
		id := "Normal"
		if strings.Contains(spec.Identifier, "Tangent") {
			id = "Tangent"
		}
		out, _ := geo.Output(id)
		return out, nil
	}

	var kind shader.NodeKind
	switch spec.Kind {
	case shader.KindColor:
		kind = shader.KindRGB
	case shader.KindVector:
		kind = shader.KindCombineXYZ
	default:
		kind = shader.KindValueInput
	}
	n, err := t.New(kind)
	if err != nil {
		return nil, err
	}
	n.Label = "Constant"

	switch spec.Kind {
	case shader.KindColor:
		n.outputs[0].value = v
	case shader.KindVector:
		for i, id := range []string{"X", "Y", "Z"} {
			if err := n.SetFloat(id, v.At(i)); err != nil {
				return nil, err
			}
		}
	case shader.KindValue:
		n.outputs[0].value = v
	default:
		n.outputs[0].value = shader.Float(0)
	}
	return n.outputs[0], nil
}

// SetOutputValue stores the constant produced by a Value or RGB node.
func (s *Socket) SetOutputValue(v shader.Value) error {
	if !s.output {
		return fmt.Errorf("%w: %s is not an output", ErrInvalidOperation, s)
	}
	cv, err := shader.Coerce(v, s.spec.Kind, s.spec.Arity)
	if err != nil {
		return err
	}
	s.value = cv
	return nil
}

// Input is the effective value of a node input: either a linked producer
// socket or a literal value.
type Input struct {
	Socket *Socket
	Value  shader.Value
}

// Linked wraps a producer socket.
func Linked(s *Socket) Input { return Input{Socket: s} }

// Literal wraps a constant.
func Literal(v shader.Value) Input { return Input{Value: v} }

// IsLinked reports whether the input is a producer socket.
func (in Input) IsLinked() bool { return in.Socket != nil }

// Equal reports whether two inputs are the same producer or equal literals.
func (in Input) Equal(o Input) bool {
	if in.Socket != nil || o.Socket != nil {
		return in.Socket == o.Socket
	}
	return in.Value.Equal(o.Value)
}

func (in Input) String() string {
	if in.Socket != nil {
		return in.Socket.String()
	}
	return in.Value.String()
}
