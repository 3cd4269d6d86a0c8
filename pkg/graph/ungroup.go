package graph

import (
	"fmt"

	"github.com/ritzau/shadergraph/pkg/shader"
)

// Ungroup flattens a group node into the tree, erasing the group boundary.
// Unlinked group inputs are materialized as constants first so the body
// still sees their values. The body tree itself is left untouched. Ungroup
// returns the nodes copied out of the body and the nodes that used to feed
// the group, so callers can prune whichever of them ended up unused.
func (t *Tree) Ungroup(g *Node) (copies, feeders []*Node, err error) {
	if g.kind != shader.KindGroup || g.inner == nil {
		return nil, nil, fmt.Errorf("%w: %s is not a group with a body", ErrInvalidOperation, g)
	}
	if g.tree != t || !g.Alive() {
		return nil, nil, fmt.Errorf("%w: %s does not belong to this tree", ErrInvalidOperation, g)
	}

	for _, in := range g.inputs {
		if in.IsLinked() {
			continue
		}
		out, err := in.AsOutput()
		if err != nil {
			return nil, nil, fmt.Errorf("materializing %s: %w", in, err)
		}
		if err := t.Link(out, in); err != nil {
			return nil, nil, err
		}
	}

	body := g.inner
	byID := make(map[NodeID]*Node)
	var order []*Node
	var groupOutputs []*Node
	for _, n := range body.Nodes() {
		switch n.kind {
		case shader.KindGroupInput:
			continue
		case shader.KindGroupOutput:
			groupOutputs = append(groupOutputs, n)
			continue
		}
		c, err := t.copyForeign(n)
		if err != nil {
			return nil, nil, err
		}
		c.Location = Vec2{g.Location[0] + n.Location[0], g.Location[1] + n.Location[1]}
		byID[n.id] = c
		order = append(order, c)
	}

	resolve := func(p *Socket) *Socket {
		if p.node.kind == shader.KindGroupInput {
			if p.slot < len(g.inputs) {
				return g.inputs[p.slot].Link()
			}
			return nil
		}
		if c := byID[p.node.id]; c != nil {
			return c.outputs[p.slot]
		}
		return nil
	}

	for _, n := range body.Nodes() {
		c := byID[n.id]
		if c == nil {
			continue
		}
		for i, in := range n.inputs {
			p := in.Link()
			if p == nil {
				continue
			}
			if src := resolve(p); src != nil {
				if err := t.Link(src, c.inputs[i]); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	for k, out := range g.outputs {
		consumers := out.Connections()
		if len(consumers) == 0 {
			continue
		}
		var src *Socket
		literal := out.spec.Default
		for _, gout := range groupOutputs {
			if k >= len(gout.inputs) {
				continue
			}
			literal = gout.inputs[k].value
			if p := gout.inputs[k].Link(); p != nil {
				src = resolve(p)
			}
		}
		if src == nil {
			src, err = t.Constant(out.spec, literal)
			if err != nil {
				return nil, nil, err
			}
		}
		for _, c := range consumers {
			if err := t.Link(src, c); err != nil {
				return nil, nil, err
			}
		}
	}

	feeders, _ = g.Delete()
	return order, feeders, nil
}

// copyForeign creates a copy of a node from another tree, without links.
func (t *Tree) copyForeign(n *Node) (*Node, error) {
	var (
		c   *Node
		err error
	)
	if n.kind == shader.KindGroup {
		c, err = t.NewGroup(n.inner)
	} else {
		c, err = t.New(n.kind)
	}
	if err != nil {
		return nil, fmt.Errorf("copying %s out of group: %w", n, err)
	}
	c.Label = n.Label
	c.Muted = n.Muted
	for k, v := range n.Props {
		c.Props[k] = v
	}
	for i, s := range n.inputs {
		c.inputs[i].value = s.value
	}
	for i, s := range n.outputs {
		c.outputs[i].value = s.value
	}
	return c, nil
}
