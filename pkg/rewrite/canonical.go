package rewrite

import (
	"context"
	"fmt"

	"github.com/ritzau/shadergraph/pkg/graph"
	"github.com/ritzau/shadergraph/pkg/logging"
	"github.com/ritzau/shadergraph/pkg/recipe"
	"github.com/ritzau/shadergraph/pkg/shader"
)

// canonicalize replaces every non-blend shader node upstream of the surface
// with a Principled node built from its recipe.
func (r *run) canonicalize(ctx context.Context) error {
	for _, n := range r.descendants() {
		k := n.Kind()
		if !n.Alive() || !k.IsShader() || k.IsBlend() || k.IsCanonical() {
			continue
		}
		if _, err := r.toCanonical(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// toCanonical converts one node. The new node is labelled with the source
// kind and takes over all of the source's consumers.
func (r *run) toCanonical(ctx context.Context, n *graph.Node) (*graph.Node, error) {
	rec, err := r.conv.table.Lookup(n.Kind())
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", n, err)
	}

	p, err := r.tree.New(shader.KindPrincipled)
	if err != nil {
		return nil, err
	}
	p.Label = n.Kind().String()
	p.Location = n.Location

	for _, e := range rec.Entries {
		in, err := r.eval(e.Target, e.Term, n)
		if err != nil {
			return nil, fmt.Errorf("converting %s input %q: %w", n, e.Target, err)
		}
		if err := p.Set(e.Target, in); err != nil {
			return nil, fmt.Errorf("converting %s: %w", n, err)
		}
	}
	applyAttributes(p, n, rec.Attributes)

	src, ok := n.ShaderOutput()
	if !ok {
		return nil, fmt.Errorf("%w: %s has no shader output", graph.ErrInvalidOperation, n)
	}
	dst, _ := p.ShaderOutput()
	if err := r.relink(src, dst); err != nil {
		return nil, err
	}
	r.remove(n)

	r.report.Canonicalized++
	r.report.addLoss(fmt.Sprintf("%s: %s", n.Kind(), rec.Loss))
	logging.DebugContext(ctx, "canonicalized", "from", n.Kind(), "node", p)
	return p, nil
}

// eval computes a recipe term against the source node. Literal operands are
// folded directly; linked ones get a helper node.
func (r *run) eval(target string, t recipe.Term, src *graph.Node) (graph.Input, error) {
	switch t := t.(type) {
	case recipe.Lit:
		return graph.Literal(t.Value), nil
	case recipe.In:
		in, ok := src.Get(t.ID)
		if !ok {
			return graph.Input{}, fmt.Errorf("%w: %s has no input %q", graph.ErrInvalidOperation, src, t.ID)
		}
		return in, nil
	case recipe.Mul:
		a, err := r.eval(target, t.A, src)
		if err != nil {
			return graph.Input{}, err
		}
		b, err := r.eval(target, t.B, src)
		if err != nil {
			return graph.Input{}, err
		}
		return r.multiply(target, a, b)
	case recipe.Remap:
		in, err := r.eval(target, t.T, src)
		if err != nil {
			return graph.Input{}, err
		}
		return r.remap(target, in, t.Lo, t.Hi)
	case recipe.OneMinus:
		in, err := r.eval(target, t.T, src)
		if err != nil {
			return graph.Input{}, err
		}
		return r.oneMinus(target, in)
	default:
		return graph.Input{}, fmt.Errorf("unknown recipe term %T", t)
	}
}

func applyAttributes(p, src *graph.Node, attrs []recipe.Attribute) {
	for _, a := range attrs {
		v := a.Value
		if a.FromProp != "" {
			if pv, ok := src.Props[a.FromProp]; ok {
				v = pv
			}
		}
		if a.Name == shader.PropDistribution {
			v = recipe.ClampDistribution(v)
		}
		if v != "" {
			p.Props[a.Name] = v
		}
	}
}

func consumerNodes(out *graph.Socket) []*graph.Node {
	var nodes []*graph.Node
	seen := make(map[graph.NodeID]bool)
	for _, c := range out.Connections() {
		if id := c.Node().ID(); !seen[id] {
			seen[id] = true
			nodes = append(nodes, c.Node())
		}
	}
	return nodes
}

// unique clones canonical nodes so each feeds a single consumer node.
func (r *run) unique(ctx context.Context) error {
	for _, n := range r.descendants() {
		if !n.Kind().IsCanonical() {
			continue
		}
		out, _ := n.ShaderOutput()
		consumers := consumerNodes(out)
		for _, c := range consumers[min(1, len(consumers)):] {
			if _, err := r.cloneFor(n, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// cloneFor gives consumer its own copy of canonical node n.
func (r *run) cloneFor(n, consumer *graph.Node) (*graph.Node, error) {
	clone, err := n.Copy()
	if err != nil {
		return nil, err
	}
	from, _ := n.ShaderOutput()
	to, _ := clone.ShaderOutput()
	for _, in := range consumer.Inputs() {
		if in.Link() == from {
			if err := in.Connect(to); err != nil {
				return nil, err
			}
		}
	}
	r.report.Clones++
	return clone, nil
}

// exclusive returns n when blend is its only consumer, otherwise a clone
// owned by blend.
func (r *run) exclusive(n, blend *graph.Node) (*graph.Node, error) {
	out, _ := n.ShaderOutput()
	if len(consumerNodes(out)) <= 1 {
		return n, nil
	}
	return r.cloneFor(n, blend)
}

var white = shader.RGBA(1, 1, 1, 1)

// premultiplyEmission folds emission strength into the emission color so
// that later blending treats both as one quantity. Emission that is off is
// normalized to white at strength zero.
func (r *run) premultiplyEmission(ctx context.Context) error {
	emission := r.conv.table.Resolve("Emission")
	for _, n := range r.descendants() {
		if !n.Kind().IsCanonical() {
			continue
		}
		color, ok := n.Get(emission)
		if !ok {
			continue
		}
		strength, ok := n.Get("Emission Strength")
		if !ok {
			continue
		}
		if err := r.premultiply(n, emission, color, strength); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) premultiply(n *graph.Node, emission string, color, strength graph.Input) error {
	off := (!strength.IsLinked() && scalarOf(strength.Value) == 0) ||
		(!color.IsLinked() && color.Value.IsBlack())
	switch {
	case off:
		if err := n.SetValue(emission, white); err != nil {
			return err
		}
		if err := n.SetFloat("Emission Strength", 0); err != nil {
			return err
		}
		var unused []*graph.Node
		for _, in := range []graph.Input{color, strength} {
			if in.IsLinked() {
				unused = append(unused, in.Socket.Node())
			}
		}
		r.report.Pruned += graph.Prune(unused, nil)
		return nil
	case !strength.IsLinked() && scalarOf(strength.Value) == 1:
		return nil
	case !color.IsLinked() && !strength.IsLinked():
		if err := n.SetValue(emission, color.Value.Scale(scalarOf(strength.Value))); err != nil {
			return err
		}
	default:
		out, err := r.scale(emission, color, strength)
		if err != nil {
			return err
		}
		if err := n.Connect(emission, out); err != nil {
			return err
		}
	}
	r.report.Premultiplied++
	return n.SetFloat("Emission Strength", 1)
}
