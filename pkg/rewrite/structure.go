package rewrite

import (
	"context"
	"fmt"

	"github.com/ritzau/shadergraph/pkg/graph"
	"github.com/ritzau/shadergraph/pkg/logging"
	"github.com/ritzau/shadergraph/pkg/shader"
)

// dissolvable reports whether n is a muted node or a plain reroute.
func (r *run) dissolvable(n *graph.Node) bool {
	if n.Muted {
		return true
	}
	return n.Kind() == shader.KindReroute && !r.isMarker(n)
}

// dissolve removes muted nodes and reroutes upstream of the surface, one at
// a time, since each removal can change what is upstream.
func (r *run) dissolve(ctx context.Context) error {
	for {
		var target *graph.Node
		for _, n := range r.descendants() {
			if r.dissolvable(n) {
				target = n
				break
			}
		}
		if target == nil {
			return nil
		}
		logging.DebugContext(ctx, "dissolving node", "node", target, "muted", target.Muted)
		children, err := target.Dissolve()
		if err != nil {
			return err
		}
		r.report.Dissolved++
		r.report.Pruned += graph.Prune(children, nil)
	}
}

func hasShaderSocket(n *graph.Node) bool {
	for _, s := range n.Inputs() {
		if s.Kind() == shader.KindShader {
			return true
		}
	}
	_, ok := n.ShaderOutput()
	return ok
}

// ungroup flattens shader-carrying groups until none are upstream of the
// surface. Every pass removes one level of nesting.
func (r *run) ungroup(ctx context.Context) error {
	for pass := 0; ; pass++ {
		var groups []*graph.Node
		for _, n := range r.descendants() {
			if n.Kind() == shader.KindGroup && hasShaderSocket(n) {
				groups = append(groups, n)
			}
		}
		if len(groups) == 0 {
			r.report.UngroupPasses = pass
			return nil
		}
		if pass >= r.conv.opts.MaxGroupDepth {
			return fmt.Errorf("%w: groups nested deeper than %d", ErrBudgetExceeded, r.conv.opts.MaxGroupDepth)
		}
		for _, g := range groups {
			logging.DebugContext(ctx, "ungrouping", "group", g, "pass", pass+1)
			copies, feeders, err := r.tree.Ungroup(g)
			if err != nil {
				return err
			}
			r.report.Ungrouped++
			r.report.Pruned += graph.Prune(append(copies, feeders...), nil)
		}
		if err := r.check(ctx); err != nil {
			return err
		}
	}
}

// markFactors puts a marker reroute in front of every linked blend factor.
func (r *run) markFactors(ctx context.Context) error {
	for _, n := range r.descendants() {
		if n.Kind() != shader.KindMixShader {
			continue
		}
		fac, ok := n.Input("Fac")
		if !ok {
			continue
		}
		p := fac.Link()
		if p == nil || r.isMarker(p.Node()) {
			continue
		}
		m, err := r.tree.New(shader.KindReroute)
		if err != nil {
			return err
		}
		m.Label = MarkerLabel
		m.Location = p.Node().Location
		if err := m.Connect("Input", p); err != nil {
			return err
		}
		if err := fac.Connect(m.Out()); err != nil {
			return err
		}
		r.report.Markers++
	}
	return nil
}

// shaderInputs returns the shader inputs of every node upstream of the
// surface, plus the surface itself. The output node's other inputs belong
// to other chains and are left alone.
func (r *run) shaderInputs() []*graph.Socket {
	sockets := []*graph.Socket{r.surface}
	for _, n := range r.descendants() {
		for _, in := range n.Inputs() {
			if in.Kind() == shader.KindShader {
				sockets = append(sockets, in)
			}
		}
	}
	return sockets
}

// fillShaderInputs links an explicit zero into every unlinked shader input.
// A muted shader dissolved straight off the surface leaves the surface
// itself empty, and it gets the same zero.
func (r *run) fillShaderInputs(ctx context.Context) error {
	for _, in := range r.shaderInputs() {
		if in.IsLinked() {
			continue
		}
		out, err := in.AsOutput()
		if err != nil {
			return err
		}
		if err := in.Connect(out); err != nil {
			return err
		}
		r.report.Filled++
	}
	return nil
}

// constantOf returns the literal produced by a constant node, if p is one.
func constantOf(p *graph.Socket) (shader.Value, bool) {
	n := p.Node()
	if n.Label != "Constant" || len(n.Inputs()) != 0 {
		return shader.Value{}, false
	}
	switch n.Kind() {
	case shader.KindValueInput, shader.KindRGB:
		return p.Default(), true
	}
	return shader.Value{}, false
}

// bridge inserts an Emission node wherever a non-shader output feeds a
// shader input, the surface included. Constant producers become literal
// emission colors.
func (r *run) bridge(ctx context.Context) error {
	for _, in := range r.shaderInputs() {
		p := in.Link()
		if p == nil || p.Kind() == shader.KindShader {
			continue
		}
		em, err := r.tree.New(shader.KindEmission)
		if err != nil {
			return err
		}
		em.Location = p.Node().Location
		if v, ok := constantOf(p); ok {
			err = em.SetValue("Color", v)
		} else {
			err = em.Connect("Color", p)
		}
		if err != nil {
			return err
		}
		if err := em.SetFloat("Strength", 1); err != nil {
			return err
		}
		out, _ := em.ShaderOutput()
		if err := in.Connect(out); err != nil {
			return err
		}
		r.report.Bridged++
		r.report.Pruned += graph.Prune([]*graph.Node{p.Node()}, nil)
	}
	return nil
}
