package graph

import (
	"errors"
	"testing"

	"github.com/ritzau/shadergraph/pkg/shader"
)

func newTestTree(t *testing.T) *Tree {
	t.Helper()
	return NewTree(shader.NewCatalog(shader.DefaultVersion), WithName(t.Name()))
}

func mustInput(t *testing.T, n *Node, id string) *Socket {
	t.Helper()
	s, ok := n.Input(id)
	if !ok {
		t.Fatalf("%s has no input %q", n, id)
	}
	return s
}

func mustOutput(t *testing.T, n *Node, id string) *Socket {
	t.Helper()
	s, ok := n.Output(id)
	if !ok {
		t.Fatalf("%s has no output %q", n, id)
	}
	return s
}

func TestNewNodeLayout(t *testing.T) {
	tree := newTestTree(t)

	n, err := tree.New(shader.KindDiffuse)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(n.Inputs()) != 3 || len(n.Outputs()) != 1 {
		t.Errorf("Expected 3 inputs and 1 output, got %d and %d", len(n.Inputs()), len(n.Outputs()))
	}
	if v, _ := n.Value("Color"); !v.Equal(shader.RGBA(0.8, 0.8, 0.8, 1)) {
		t.Errorf("Expected default color, got %s", v)
	}
	if tree.Len() != 1 {
		t.Errorf("Expected 1 node, got %d", tree.Len())
	}

	if _, err := tree.New(shader.KindUnknown); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got %v", err)
	}
}

func TestLinkIsSymmetric(t *testing.T) {
	tree := newTestTree(t)
	rgb := tree.MustNew(shader.KindRGB)
	d1 := tree.MustNew(shader.KindDiffuse)
	d2 := tree.MustNew(shader.KindDiffuse)

	out := mustOutput(t, rgb, "Color")
	if err := d1.Connect("Color", out); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := mustInput(t, d2, "Color").Connect(out); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if got := out.Connections(); len(got) != 2 {
		t.Fatalf("Expected 2 consumers, got %d", len(got))
	}
	for _, c := range out.Connections() {
		peers := c.Connections()
		if len(peers) != 1 || peers[0] != out {
			t.Errorf("Input %s does not list %s as its producer", c, out)
		}
	}
	if tree.LinkCount() != 2 {
		t.Errorf("Expected 2 links, got %d", tree.LinkCount())
	}
}

func TestLinkReplacesExisting(t *testing.T) {
	tree := newTestTree(t)
	a := tree.MustNew(shader.KindRGB)
	b := tree.MustNew(shader.KindRGB)
	d := tree.MustNew(shader.KindDiffuse)

	_ = d.Connect("Color", a.Out())
	_ = d.Connect("Color", b.Out())

	if a.Out().IsLinked() {
		t.Error("Old producer should have lost its consumer")
	}
	if mustInput(t, d, "Color").Link() != b.Out() {
		t.Error("Input should be linked to the new producer")
	}
	if tree.LinkCount() != 1 {
		t.Errorf("Expected 1 link, got %d", tree.LinkCount())
	}
}

func TestLinkErrors(t *testing.T) {
	tree := newTestTree(t)
	a := tree.MustNew(shader.KindRGB)
	d := tree.MustNew(shader.KindDiffuse)
	in := mustInput(t, d, "Color")

	if err := a.Out().Connect(d.Out()); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("output to output: expected ErrInvalidOperation, got %v", err)
	}
	if err := in.Connect(nil); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("nil peer: expected ErrInvalidOperation, got %v", err)
	}
	if err := a.Out().Disconnect(); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("disconnect output: expected ErrInvalidOperation, got %v", err)
	}
	if err := in.Disconnect(); err != nil {
		t.Errorf("disconnecting an unlinked input should be a no-op, got %v", err)
	}

	other := newTestTree(t).MustNew(shader.KindRGB)
	if err := in.Connect(other.Out()); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("cross tree: expected ErrInvalidOperation, got %v", err)
	}

	a.Delete()
	if err := tree.Link(a.Out(), in); err == nil {
		t.Error("Linking a deleted node should fail")
	}
}

func TestSetLiteralSeversLink(t *testing.T) {
	tree := newTestTree(t)
	rgb := tree.MustNew(shader.KindRGB)
	d := tree.MustNew(shader.KindDiffuse)
	_ = d.Connect("Color", rgb.Out())

	if err := d.SetValue("Color", shader.Vec(0.2, 0.4, 0.6)); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	in, _ := d.Get("Color")
	if in.IsLinked() {
		t.Fatal("Literal assignment should sever the link")
	}
	if !in.Value.Equal(shader.RGBA(0.2, 0.4, 0.6, 1)) {
		t.Errorf("Expected coerced color, got %s", in.Value)
	}

	if err := d.SetValue("Color", shader.Text("red")); !errors.Is(err, shader.ErrUnsupportedCoercion) {
		t.Errorf("Expected ErrUnsupportedCoercion, got %v", err)
	}
	if err := d.SetValue("Nope", shader.Float(1)); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation for unknown input, got %v", err)
	}
}

func TestDeleteReturnsNeighbours(t *testing.T) {
	tree := newTestTree(t)
	rgb := tree.MustNew(shader.KindRGB)
	d := tree.MustNew(shader.KindDiffuse)
	out := tree.MustNew(shader.KindMaterialOutput)
	_ = d.Connect("Color", rgb.Out())
	_ = out.Connect("Surface", d.Out())

	children, parents := d.Delete()
	if len(children) != 1 || children[0] != rgb {
		t.Errorf("Expected children [rgb], got %v", children)
	}
	if len(parents) != 1 || parents[0] != out {
		t.Errorf("Expected parents [output], got %v", parents)
	}
	if d.Alive() {
		t.Error("Deleted node still alive")
	}
	if tree.LinkCount() != 0 {
		t.Errorf("Expected no links left, got %d", tree.LinkCount())
	}
	if !rgb.IsOrphan() {
		t.Error("Producer of a deleted node should be orphaned")
	}

	if c, p := d.Delete(); c != nil || p != nil {
		t.Error("Deleting twice should be a no-op")
	}
}

func TestDissolveReroute(t *testing.T) {
	tree := newTestTree(t)
	rgb := tree.MustNew(shader.KindRGB)
	r := tree.MustNew(shader.KindReroute)
	d1 := tree.MustNew(shader.KindDiffuse)
	d2 := tree.MustNew(shader.KindDiffuse)
	_ = r.Connect("Input", rgb.Out())
	_ = d1.Connect("Color", r.Out())
	_ = d2.Connect("Color", r.Out())

	children, err := r.Dissolve()
	if err != nil {
		t.Fatalf("Dissolve() error = %v", err)
	}
	if len(children) != 1 || children[0] != rgb {
		t.Errorf("Expected rgb as the only child, got %v", children)
	}
	for _, d := range []*Node{d1, d2} {
		if mustInput(t, d, "Color").Link() != rgb.Out() {
			t.Errorf("%s not relinked to the reroute's producer", d)
		}
	}
}

func TestDissolveMaterializesUnlinkedInput(t *testing.T) {
	tree := newTestTree(t)
	r := tree.MustNew(shader.KindReroute)
	_ = r.SetValue("Input", shader.RGBA(0.1, 0.2, 0.3, 1))
	d := tree.MustNew(shader.KindDiffuse)
	_ = d.Connect("Color", r.Out())

	if _, err := r.Dissolve(); err != nil {
		t.Fatalf("Dissolve() error = %v", err)
	}
	p := mustInput(t, d, "Color").Link()
	if p == nil {
		t.Fatal("Consumer lost its link")
	}
	if p.Node().Kind() != shader.KindRGB || p.Node().Label != "Constant" {
		t.Errorf("Expected a Constant RGB node, got %s", p.Node())
	}
	if !p.Default().Equal(shader.RGBA(0.1, 0.2, 0.3, 1)) {
		t.Errorf("Constant carries %s", p.Default())
	}
}

func TestDissolveMutedShaders(t *testing.T) {
	tree := newTestTree(t)
	glass := tree.MustNew(shader.KindGlass)
	velvet := tree.MustNew(shader.KindVelvet)
	mix := tree.MustNew(shader.KindMixShader)
	mix.Muted = true
	out := tree.MustNew(shader.KindMaterialOutput)
	_ = mix.Connect("Shader", glass.Out())
	_ = mix.Connect("Shader_001", velvet.Out())
	_ = out.Connect("Surface", mix.Out())

	if _, err := mix.Dissolve(); err != nil {
		t.Fatalf("Dissolve() error = %v", err)
	}
	surface := mustInput(t, out, "Surface")
	if surface.Link() != glass.Out() {
		t.Fatalf("Muted mix should pass its first shader input, got %v", surface.Link())
	}

	glass.Muted = true
	if _, err := glass.Dissolve(); err != nil {
		t.Fatalf("Dissolve() error = %v", err)
	}
	if surface.IsLinked() {
		t.Error("A muted BSDF contributes nothing; surface should be unlinked")
	}
}

func TestAsOutput(t *testing.T) {
	tree := newTestTree(t)
	d := tree.MustNew(shader.KindDiffuse)

	color, err := mustInput(t, d, "Color").AsOutput()
	if err != nil {
		t.Fatalf("AsOutput() error = %v", err)
	}
	if color.Node().Kind() != shader.KindRGB {
		t.Errorf("Expected RGB constant, got %s", color.Node())
	}

	rough, _ := mustInput(t, d, "Roughness").AsOutput()
	if rough.Node().Kind() != shader.KindValueInput || !rough.Default().Equal(shader.Float(0)) {
		t.Errorf("Expected Value constant 0, got %s = %s", rough.Node(), rough.Default())
	}

	normal, _ := mustInput(t, d, "Normal").AsOutput()
	if normal.Node().Kind() != shader.KindGeometry || normal.Identifier() != "Normal" {
		t.Errorf("Expected geometry normal, got %s", normal)
	}

	if same, _ := d.Out().AsOutput(); same != d.Out() {
		t.Error("AsOutput of an output should return itself")
	}
}

func TestPrune(t *testing.T) {
	tree := newTestTree(t)
	tex := tree.MustNew(shader.KindImageTexture)
	d := tree.MustNew(shader.KindDiffuse)
	kept := tree.MustNew(shader.KindRGB)
	other := tree.MustNew(shader.KindDiffuse)
	guarded := tree.MustNew(shader.KindValueInput)
	_ = d.Connect("Color", mustOutput(t, tex, "Color"))
	_ = other.Connect("Color", kept.Out())

	n := Prune([]*Node{d, kept, guarded}, func(n *Node) bool { return n == guarded })
	if n != 2 {
		t.Errorf("Expected 2 nodes pruned, got %d", n)
	}
	if d.Alive() || tex.Alive() {
		t.Error("Orphaned chain should be pruned")
	}
	if !kept.Alive() || !guarded.Alive() {
		t.Error("Linked and protected nodes must survive")
	}
}

func TestScope(t *testing.T) {
	tree := newTestTree(t)
	before := tree.MustNew(shader.KindDiffuse)

	s := tree.Scope()
	a := tree.MustNew(shader.KindRGB)
	b := tree.MustNew(shader.KindRGB)
	s.Keep(b)
	if got := len(s.Created()); got != 2 {
		t.Errorf("Expected 2 created in scope, got %d", got)
	}
	if n := s.Close(); n != 1 {
		t.Errorf("Expected 1 node deleted, got %d", n)
	}
	if a.Alive() || !b.Alive() || !before.Alive() {
		t.Error("Scope deleted the wrong nodes")
	}
	if n := s.Close(); n != 0 {
		t.Errorf("Second Close should delete nothing, got %d", n)
	}

	if n := tree.DeleteNewNodes(); n != 2 {
		t.Errorf("Expected 2 session nodes deleted, got %d", n)
	}
	if len(tree.Created()) != 0 {
		t.Error("Session should be empty after DeleteNewNodes")
	}
}

func TestClone(t *testing.T) {
	tree := newTestTree(t)
	rgb := tree.MustNew(shader.KindRGB)
	d := tree.MustNew(shader.KindDiffuse)
	d.Label = "base"
	_ = d.Connect("Color", rgb.Out())

	c := tree.Clone()
	if c.Len() != tree.Len() || c.LinkCount() != tree.LinkCount() {
		t.Fatalf("Clone differs: %d/%d nodes, %d/%d links", c.Len(), tree.Len(), c.LinkCount(), tree.LinkCount())
	}
	cd := c.Node(d.ID())
	if cd == nil || cd.Label != "base" || cd == d {
		t.Fatalf("Clone should hold an independent copy of %s", d)
	}
	if p := mustInput(t, cd, "Color").Link(); p == nil || p.Node().ID() != rgb.ID() {
		t.Error("Clone lost the link")
	}

	_ = cd.SetValue("Color", shader.RGBA(1, 0, 0, 1))
	if !mustInput(t, d, "Color").IsLinked() {
		t.Error("Editing the clone changed the original")
	}
	if len(c.Created()) != 0 {
		t.Error("Clone should start a fresh session")
	}
	if s := c.Socket(rgb.Out().Ref()); s == nil || s.Node().Tree() != c {
		t.Error("Socket lookup by ref should resolve inside the clone")
	}
}

func TestCopySharesProducers(t *testing.T) {
	tree := newTestTree(t)
	rgb := tree.MustNew(shader.KindRGB)
	d := tree.MustNew(shader.KindGlossy)
	d.Props[shader.PropDistribution] = "BECKMANN"
	_ = d.Connect("Color", rgb.Out())
	_ = d.SetFloat("Roughness", 0.3)

	c, err := d.Copy()
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if mustInput(t, c, "Color").Link() != rgb.Out() {
		t.Error("Copy should share the producer")
	}
	if v, _ := c.Value("Roughness"); !v.Equal(shader.Float(0.3)) {
		t.Errorf("Expected roughness 0.3, got %s", v)
	}
	if c.Props[shader.PropDistribution] != "BECKMANN" {
		t.Error("Copy lost properties")
	}
	if len(rgb.Out().Connections()) != 2 {
		t.Error("Producer should now feed both nodes")
	}
}
