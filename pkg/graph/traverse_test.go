package graph

import (
	"errors"
	"testing"

	"github.com/ritzau/shadergraph/pkg/shader"
)

func ids(nodes []*Node) map[NodeID]bool {
	m := make(map[NodeID]bool, len(nodes))
	for _, n := range nodes {
		m[n.ID()] = true
	}
	return m
}

func TestDescendantsVisitsDiamondOnce(t *testing.T) {
	tree := newTestTree(t)
	v := tree.MustNew(shader.KindValueInput)
	left := tree.MustNew(shader.KindMath)
	right := tree.MustNew(shader.KindMath)
	top := tree.MustNew(shader.KindMath)
	_ = left.Connect("Value", v.Out())
	_ = right.Connect("Value", v.Out())
	_ = top.Connect("Value", left.Out())
	_ = top.Connect("Value_001", right.Out())

	got := top.Descendants()
	if len(got) != 3 {
		t.Fatalf("Expected 3 descendants, got %d: %v", len(got), got)
	}
	seen := ids(got)
	for _, n := range []*Node{v, left, right} {
		if !seen[n.ID()] {
			t.Errorf("Missing descendant %s", n)
		}
	}
	if seen[top.ID()] {
		t.Error("A node is not its own descendant")
	}

	anc := v.Ancestors()
	if len(anc) != 3 || !ids(anc)[top.ID()] {
		t.Errorf("Expected left, right and top as ancestors, got %v", anc)
	}
}

func TestSocketTraversal(t *testing.T) {
	tree := newTestTree(t)
	tex := tree.MustNew(shader.KindImageTexture)
	d := tree.MustNew(shader.KindDiffuse)
	out := tree.MustNew(shader.KindMaterialOutput)
	_ = d.Connect("Color", mustOutput(t, tex, "Color"))
	_ = out.Connect("Surface", d.Out())

	surface := mustInput(t, out, "Surface")
	if got := surface.Descendants(); len(got) != 2 {
		t.Errorf("Expected diffuse and texture upstream of the surface, got %v", got)
	}
	if got := mustInput(t, out, "Volume").Descendants(); len(got) != 0 {
		t.Errorf("Unlinked input has no descendants, got %v", got)
	}
	if got := mustOutput(t, tex, "Color").Ancestors(); len(got) != 2 {
		t.Errorf("Expected diffuse and output downstream, got %v", got)
	}
}

func TestTraversalSurvivesCycles(t *testing.T) {
	tree := newTestTree(t)
	a := tree.MustNew(shader.KindMath)
	b := tree.MustNew(shader.KindMath)
	_ = a.Connect("Value", b.Out())
	_ = b.Connect("Value", a.Out())

	if got := a.Descendants(); len(got) != 1 || got[0] != b {
		t.Errorf("Expected [b], got %v", got)
	}
}

func TestGonumView(t *testing.T) {
	tree := newTestTree(t)
	rgb := tree.MustNew(shader.KindRGB)
	d := tree.MustNew(shader.KindDiffuse)
	_ = d.Connect("Color", rgb.Out())

	up := tree.Upstream()
	if !up.HasEdgeFromTo(int64(d.ID()), int64(rgb.ID())) {
		t.Error("Upstream view should point from consumer to producer")
	}
	down := tree.Downstream()
	if !down.HasEdgeFromTo(int64(rgb.ID()), int64(d.ID())) {
		t.Error("Downstream view should point from producer to consumer")
	}
	if up.Edge(int64(rgb.ID()), int64(d.ID())) != nil {
		t.Error("Upstream view should not have the reverse edge")
	}
	if up.Node(999) != nil {
		t.Error("Unknown id should yield nil")
	}
	if up.Nodes().Len() != 2 {
		t.Errorf("Expected 2 nodes in view, got %d", up.Nodes().Len())
	}
}

// tintGroup builds a body that feeds its "Tint" input into a diffuse color.
func tintGroup(catalog shader.Catalog) *Tree {
	inputs := []shader.SocketSpec{{Identifier: "Tint", Kind: shader.KindColor, Default: shader.RGBA(0, 1, 0, 1)}}
	outputs := []shader.SocketSpec{{Identifier: "Shader", Kind: shader.KindShader}}
	body := NewGroupTree(catalog, inputs, outputs, WithName("tint"))
	in := body.MustNew(shader.KindGroupInput)
	d := body.MustNew(shader.KindDiffuse)
	d.Label = "inner"
	out := body.MustNew(shader.KindGroupOutput)
	tint, _ := in.Output("Tint")
	_ = d.Connect("Color", tint)
	_ = out.Connect("Shader", d.Out())
	return body
}

func TestUngroupLinkedInput(t *testing.T) {
	tree := newTestTree(t)
	body := tintGroup(tree.Catalog())
	rgb := tree.MustNew(shader.KindRGB)
	g, err := tree.NewGroup(body)
	if err != nil {
		t.Fatalf("NewGroup() error = %v", err)
	}
	out := tree.MustNew(shader.KindMaterialOutput)
	_ = g.Connect("Tint", rgb.Out())
	_ = out.Connect("Surface", mustOutput(t, g, "Shader"))

	copies, feeders, err := tree.Ungroup(g)
	if err != nil {
		t.Fatalf("Ungroup() error = %v", err)
	}
	if g.Alive() {
		t.Error("Group node should be gone")
	}
	if len(copies) != 1 || copies[0].Label != "inner" {
		t.Fatalf("Expected the inner diffuse copied out, got %v", copies)
	}
	if len(feeders) != 1 || feeders[0] != rgb {
		t.Errorf("Expected rgb as feeder, got %v", feeders)
	}

	d := copies[0]
	if mustInput(t, out, "Surface").Link() != d.Out() {
		t.Error("Surface should be fed by the copied diffuse")
	}
	if mustInput(t, d, "Color").Link() != rgb.Out() {
		t.Error("Group input should resolve to the outer producer")
	}
	if body.Len() != 3 {
		t.Error("Ungroup must leave the body untouched")
	}
}

func TestUngroupUnlinkedInput(t *testing.T) {
	tree := newTestTree(t)
	g, _ := tree.NewGroup(tintGroup(tree.Catalog()))
	out := tree.MustNew(shader.KindMaterialOutput)
	_ = out.Connect("Surface", mustOutput(t, g, "Shader"))

	copies, _, err := tree.Ungroup(g)
	if err != nil {
		t.Fatalf("Ungroup() error = %v", err)
	}
	p := mustInput(t, copies[0], "Color").Link()
	if p == nil || p.Node().Label != "Constant" {
		t.Fatalf("Expected the group default materialized as a constant, got %v", p)
	}
	if !p.Default().Equal(shader.RGBA(0, 1, 0, 1)) {
		t.Errorf("Expected green, got %s", p.Default())
	}
}

func TestUngroupRejectsNonGroup(t *testing.T) {
	tree := newTestTree(t)
	d := tree.MustNew(shader.KindDiffuse)
	if _, _, err := tree.Ungroup(d); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation, got %v", err)
	}
}
