package rewrite

import (
	"fmt"

	"github.com/ritzau/shadergraph/pkg/graph"
	"github.com/ritzau/shadergraph/pkg/shader"
)

// Math and vector-math operations used by helper nodes.
const (
	opMultiply  = "MULTIPLY"
	opSubtract  = "SUBTRACT"
	opAdd       = "ADD"
	opScale     = "SCALE"
	opNormalize = "NORMALIZE"
)

// kindOf reports what an effective input carries: the producer's socket kind
// when linked, otherwise the literal's shape.
func kindOf(in graph.Input) shader.SocketKind {
	if in.Socket != nil {
		return in.Socket.Kind()
	}
	switch {
	case in.Value.IsText():
		return shader.KindString
	case in.Value.IsColor():
		return shader.KindColor
	case in.Value.Len() >= 2:
		return shader.KindVector
	default:
		return shader.KindValue
	}
}

func isVectorLike(k shader.SocketKind) bool {
	return k == shader.KindVector || k == shader.KindColor
}

// helper creates a labelled helper node and counts it.
func (r *run) helper(kind shader.NodeKind, label string) (*graph.Node, error) {
	n, err := r.tree.New(kind)
	if err != nil {
		return nil, err
	}
	n.Label = label
	r.report.Helpers++
	return n, nil
}

func (r *run) output(n *graph.Node, id string) (*graph.Socket, error) {
	out, ok := n.Output(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no output %q", graph.ErrInvalidOperation, n, id)
	}
	return out, nil
}

// math builds a Math node computing op(a, b).
func (r *run) math(op, label string, a, b graph.Input) (*graph.Socket, error) {
	n, err := r.helper(shader.KindMath, label)
	if err != nil {
		return nil, err
	}
	n.Props[shader.PropOperation] = op
	if err := n.Set("Value", a); err != nil {
		return nil, err
	}
	if err := n.Set("Value_001", b); err != nil {
		return nil, err
	}
	return r.output(n, "Value")
}

// vectorMath builds a Vector-Math node computing op(a, b).
func (r *run) vectorMath(op, label string, a, b graph.Input) (*graph.Socket, error) {
	n, err := r.helper(shader.KindVectorMath, label)
	if err != nil {
		return nil, err
	}
	n.Props[shader.PropOperation] = op
	if err := n.Set("Vector", a); err != nil {
		return nil, err
	}
	if err := n.Set("Vector_001", b); err != nil {
		return nil, err
	}
	return r.output(n, "Vector")
}

// scale builds a Vector-Math SCALE node computing v * s.
func (r *run) scale(label string, v, s graph.Input) (*graph.Socket, error) {
	n, err := r.helper(shader.KindVectorMath, label)
	if err != nil {
		return nil, err
	}
	n.Props[shader.PropOperation] = opScale
	if err := n.Set("Vector", v); err != nil {
		return nil, err
	}
	if err := n.Set("Scale", s); err != nil {
		return nil, err
	}
	return r.output(n, "Vector")
}

// normalize re-normalizes a blended direction.
func (r *run) normalize(label string, v *graph.Socket) (*graph.Socket, error) {
	n, err := r.helper(shader.KindVectorMath, label)
	if err != nil {
		return nil, err
	}
	n.Props[shader.PropOperation] = opNormalize
	if err := n.Connect("Vector", v); err != nil {
		return nil, err
	}
	return r.output(n, "Vector")
}

// multiply multiplies two inputs: plain arithmetic when both are literals,
// otherwise a Math or Vector-Math helper.
func (r *run) multiply(label string, a, b graph.Input) (graph.Input, error) {
	if !a.IsLinked() && !b.IsLinked() {
		return graph.Literal(a.Value.Mul(b.Value)), nil
	}
	ka, kb := kindOf(a), kindOf(b)
	var (
		out *graph.Socket
		err error
	)
	switch {
	case isVectorLike(ka) && isVectorLike(kb):
		out, err = r.vectorMath(opMultiply, label, a, b)
	case isVectorLike(ka):
		out, err = r.scale(label, a, b)
	case isVectorLike(kb):
		out, err = r.scale(label, b, a)
	default:
		out, err = r.math(opMultiply, label, a, b)
	}
	if err != nil {
		return graph.Input{}, err
	}
	return graph.Linked(out), nil
}

// remap maps a [0,1] input onto [lo,hi].
func (r *run) remap(label string, in graph.Input, lo, hi float64) (graph.Input, error) {
	if !in.IsLinked() {
		return graph.Literal(shader.Float(lo + scalarOf(in.Value)*(hi-lo))), nil
	}
	n, err := r.helper(shader.KindMapRange, label)
	if err != nil {
		return graph.Input{}, err
	}
	if err := n.Set("Value", in); err != nil {
		return graph.Input{}, err
	}
	for id, v := range map[string]float64{"From Min": 0, "From Max": 1, "To Min": lo, "To Max": hi} {
		if err := n.SetFloat(id, v); err != nil {
			return graph.Input{}, err
		}
	}
	out, err := r.output(n, "Result")
	if err != nil {
		return graph.Input{}, err
	}
	return graph.Linked(out), nil
}

// oneMinus computes 1 - in.
func (r *run) oneMinus(label string, in graph.Input) (graph.Input, error) {
	if !in.IsLinked() {
		return graph.Literal(shader.Float(1 - scalarOf(in.Value))), nil
	}
	out, err := r.math(opSubtract, label, graph.Literal(shader.Float(1)), in)
	if err != nil {
		return graph.Input{}, err
	}
	return graph.Linked(out), nil
}

// mixDataType maps a socket kind onto the Mix node's data_type and the
// identifiers of its A, B and Result sockets.
func mixDataType(k shader.SocketKind) (dataType, a, b, result string) {
	switch k {
	case shader.KindColor:
		return "RGBA", "A_Color", "B_Color", "Result_Color"
	case shader.KindVector:
		return "VECTOR", "A_Vector", "B_Vector", "Result_Vector"
	default:
		return "FLOAT", "A_Float", "B_Float", "Result_Float"
	}
}

// mix builds a Mix node that yields first when factor is 1 and second when
// it is 0, matching the blend node's own convention.
func (r *run) mix(label string, kind shader.SocketKind, factor, first, second graph.Input) (*graph.Socket, error) {
	n, err := r.helper(shader.KindMix, label)
	if err != nil {
		return nil, err
	}
	dataType, a, b, result := mixDataType(kind)
	n.Props[shader.PropDataType] = dataType
	n.Props[shader.PropBlendType] = "MIX"
	if err := n.Set("Factor", factor); err != nil {
		return nil, err
	}
	if err := n.Set(a, second); err != nil {
		return nil, err
	}
	if err := n.Set(b, first); err != nil {
		return nil, err
	}
	return r.output(n, result)
}

// add builds a helper yielding a + b for the given socket kind.
func (r *run) add(label string, kind shader.SocketKind, a, b graph.Input) (*graph.Socket, error) {
	switch kind {
	case shader.KindColor:
		n, err := r.helper(shader.KindMix, label)
		if err != nil {
			return nil, err
		}
		n.Props[shader.PropDataType] = "RGBA"
		n.Props[shader.PropBlendType] = opAdd
		if err := n.SetFloat("Factor", 1); err != nil {
			return nil, err
		}
		if err := n.Set("A_Color", a); err != nil {
			return nil, err
		}
		if err := n.Set("B_Color", b); err != nil {
			return nil, err
		}
		return r.output(n, "Result_Color")
	case shader.KindVector:
		return r.vectorMath(opAdd, label, a, b)
	default:
		return r.math(opAdd, label, a, b)
	}
}

func scalarOf(v shader.Value) float64 {
	if v.Len() > 1 {
		return v.Luminance()
	}
	return v.Scalar()
}
