// Package samples builds small material trees that exercise the rewrite
// engine: the CLI converts them and the tests use them as fixtures.
package samples

import (
	"fmt"
	"sort"

	"github.com/ritzau/shadergraph/pkg/graph"
	"github.com/ritzau/shadergraph/pkg/shader"
)

// Material is a built tree plus the surface input to convert.
type Material struct {
	Tree    *graph.Tree
	Surface *graph.Socket
}

// Sample describes one fixture.
type Sample struct {
	Name        string
	Description string
	build       func(b *builder)
}

// Build creates a fresh tree for the sample.
func (s Sample) Build(catalog shader.Catalog, opts ...graph.Option) (m Material, err error) {
	b := &builder{tree: graph.NewTree(catalog, append([]graph.Option{graph.WithName(s.Name)}, opts...)...)}
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = fmt.Errorf("building sample %s: %w", s.Name, e)
				return
			}
			panic(rec)
		}
	}()
	s.build(b)
	if b.surface == nil {
		return Material{}, fmt.Errorf("sample %s has no surface", s.Name)
	}
	return Material{Tree: b.tree, Surface: b.surface}, nil
}

var registry = map[string]Sample{}

func register(name, description string, build func(b *builder)) {
	registry[name] = Sample{Name: name, Description: description, build: build}
}

// All returns every sample sorted by name.
func All() []Sample {
	out := make([]Sample, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds a sample by name.
func Lookup(name string) (Sample, bool) {
	s, ok := registry[name]
	return s, ok
}

// builder wraps a tree with panicking helpers; errors are recovered in Build.
type builder struct {
	tree    *graph.Tree
	surface *graph.Socket
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func (b *builder) node(kind shader.NodeKind, x, y float64) *graph.Node {
	n, err := b.tree.New(kind)
	check(err)
	n.Location = graph.Vec2{x, y}
	return n
}

func (b *builder) set(n *graph.Node, id string, v shader.Value) {
	check(n.SetValue(id, v))
}

func (b *builder) link(from *graph.Node, out string, to *graph.Node, in string) {
	src, ok := from.Output(out)
	if !ok {
		panic(fmt.Errorf("%s has no output %q", from, out))
	}
	check(to.Connect(in, src))
}

func (b *builder) shader(from *graph.Node, to *graph.Node, in string) {
	src, ok := from.ShaderOutput()
	if !ok {
		panic(fmt.Errorf("%s has no shader output", from))
	}
	check(to.Connect(in, src))
}

// output creates the material output and wires n into its surface.
func (b *builder) output(n *graph.Node) {
	out := b.node(shader.KindMaterialOutput, 400, 0)
	b.shader(n, out, "Surface")
	b.surface, _ = out.Input("Surface")
}

var (
	red  = shader.RGBA(1, 0, 0, 1)
	blue = shader.RGBA(0, 0, 1, 1)
)

func init() {
	register("principled", "already canonical material", func(b *builder) {
		p := b.node(shader.KindPrincipled, 0, 0)
		b.set(p, "Base Color", shader.RGBA(0.8, 0.2, 0.1, 1))
		b.output(p)
	})

	register("mix-diffuse-glossy", "mix of a red diffuse and a blue glossy at 0.3", func(b *builder) {
		d := b.node(shader.KindDiffuse, -400, 100)
		b.set(d, "Color", red)
		g := b.node(shader.KindGlossy, -400, -100)
		b.set(g, "Color", blue)
		b.set(g, "Roughness", shader.Float(0.1))
		mix := b.node(shader.KindMixShader, 0, 0)
		b.set(mix, "Fac", shader.Float(0.3))
		b.shader(d, mix, "Shader")
		b.shader(g, mix, "Shader_001")
		b.output(mix)
	})

	register("fresnel-plastic", "diffuse and glossy blended by fresnel", func(b *builder) {
		fr := b.node(shader.KindFresnel, -400, 200)
		b.set(fr, "IOR", shader.Float(1.45))
		d := b.node(shader.KindDiffuse, -400, 0)
		b.set(d, "Color", shader.RGBA(0.1, 0.4, 0.8, 1))
		g := b.node(shader.KindGlossy, -400, -200)
		b.set(g, "Roughness", shader.Float(0.2))
		mix := b.node(shader.KindMixShader, 0, 0)
		b.link(fr, "Fac", mix, "Fac")
		b.shader(d, mix, "Shader")
		b.shader(g, mix, "Shader_001")
		b.output(mix)
	})

	register("alpha-cutout", "transparent mixed over diffuse by a texture alpha", func(b *builder) {
		tex := b.node(shader.KindImageTexture, -600, 200)
		tex.Props[shader.PropImage] = "leaf.png"
		d := b.node(shader.KindDiffuse, -400, 0)
		b.link(tex, "Color", d, "Color")
		tr := b.node(shader.KindTransparent, -400, -200)
		mix := b.node(shader.KindMixShader, 0, 0)
		b.link(tex, "Alpha", mix, "Fac")
		b.shader(d, mix, "Shader")
		b.shader(tr, mix, "Shader_001")
		b.output(mix)
	})

	register("glowing-add", "emission added onto a diffuse base", func(b *builder) {
		d := b.node(shader.KindDiffuse, -400, 100)
		b.set(d, "Color", shader.RGBA(0.2, 0.2, 0.2, 1))
		strength := b.node(shader.KindValueInput, -600, -100)
		out, _ := strength.Output("Value")
		check(out.SetOutputValue(shader.Float(5)))
		em := b.node(shader.KindEmission, -400, -100)
		b.set(em, "Color", shader.RGBA(1, 0.5, 0, 1))
		b.link(strength, "Value", em, "Strength")
		add := b.node(shader.KindAddShader, 0, 0)
		b.shader(d, add, "Shader")
		b.shader(em, add, "Shader_001")
		b.output(add)
	})

	register("muted-chain", "muted mix and reroutes in front of a glass", func(b *builder) {
		glass := b.node(shader.KindGlass, -600, 0)
		b.set(glass, "IOR", shader.Float(1.5))
		velvet := b.node(shader.KindVelvet, -600, -200)
		mix := b.node(shader.KindMixShader, -400, 0)
		mix.Muted = true
		b.shader(glass, mix, "Shader")
		b.shader(velvet, mix, "Shader_001")
		r1 := b.node(shader.KindReroute, -200, 0)
		b.link(mix, "Shader", r1, "Input")
		r2 := b.node(shader.KindReroute, -100, 0)
		b.link(r1, "Output", r2, "Input")
		out := b.node(shader.KindMaterialOutput, 400, 0)
		b.link(r2, "Output", out, "Surface")
		b.surface, _ = out.Input("Surface")
	})

	register("skin", "subsurface mixed with velvet sheen", func(b *builder) {
		sss := b.node(shader.KindSubsurface, -400, 100)
		b.set(sss, "Color", shader.RGBA(0.9, 0.6, 0.5, 1))
		b.set(sss, "Radius", shader.Vec(1, 0.4, 0.2))
		v := b.node(shader.KindVelvet, -400, -100)
		b.set(v, "Sigma", shader.Float(0.6))
		mix := b.node(shader.KindMixShader, 0, 0)
		b.set(mix, "Fac", shader.Float(0.8))
		b.shader(sss, mix, "Shader")
		b.shader(v, mix, "Shader_001")
		b.output(mix)
	})

	register("texture-tap", "image color wired straight into the surface", func(b *builder) {
		tex := b.node(shader.KindImageTexture, -200, 0)
		tex.Props[shader.PropImage] = "sign.png"
		out := b.node(shader.KindMaterialOutput, 400, 0)
		b.link(tex, "Color", out, "Surface")
		b.surface, _ = out.Input("Surface")
	})

	register("nested-groups", "three levels of groups, each holding a shader", func(b *builder) {
		inner := nestedGroups(b.tree.Catalog(), 3)
		g, err := b.tree.NewGroup(inner)
		check(err)
		b.output(g)
	})
}

// nestedGroups builds depth levels of group bodies. Each level mixes its
// own diffuse with the level below; the innermost holds a glossy.
func nestedGroups(catalog shader.Catalog, depth int) *graph.Tree {
	outputs := []shader.SocketSpec{{Identifier: "Shader", Kind: shader.KindShader}}
	body := graph.NewGroupTree(catalog, nil, outputs, graph.WithName(fmt.Sprintf("level-%d", depth)))
	b := &builder{tree: body}
	out := b.node(shader.KindGroupOutput, 200, 0)
	if depth <= 1 {
		g := b.node(shader.KindGlossy, 0, 0)
		b.set(g, "Roughness", shader.Float(0.25))
		b.shader(g, out, "Shader")
		return body
	}
	d := b.node(shader.KindDiffuse, -200, 100)
	b.set(d, "Color", shader.RGBA(0.1*float64(depth), 0.5, 0.5, 1))
	child, err := body.NewGroup(nestedGroups(catalog, depth-1))
	check(err)
	mix := b.node(shader.KindMixShader, 0, 0)
	b.set(mix, "Fac", shader.Float(0.5))
	b.shader(d, mix, "Shader")
	b.shader(child, mix, "Shader_001")
	b.shader(mix, out, "Shader")
	return body
}
