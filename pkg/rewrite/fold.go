package rewrite

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/shadergraph/pkg/graph"
	"github.com/ritzau/shadergraph/pkg/logging"
	"github.com/ritzau/shadergraph/pkg/shader"
)

// Labels that canonical nodes carry from their source kind.
var (
	labelDiffuse     = shader.KindDiffuse.String()
	labelGlossy      = shader.KindGlossy.String()
	labelTransparent = shader.KindTransparent.String()
	labelSubsurface  = shader.KindSubsurface.String()
	labelEmission    = shader.KindEmission.String()
	labelBackground  = shader.KindBackground.String()
)

// fold collapses blend nodes until none is left upstream of the surface.
func (r *run) fold(ctx context.Context) error {
	for {
		b := r.nextFoldable()
		if b == nil {
			return nil
		}
		if err := r.foldBlend(ctx, b); err != nil {
			return err
		}
		if err := r.check(ctx); err != nil {
			return err
		}
	}
}

// nextFoldable returns the deepest blend node whose two shader inputs are
// both fed by canonical nodes.
func (r *run) nextFoldable() *graph.Node {
	within := make(map[graph.NodeID]bool)
	for _, n := range r.descendants() {
		within[n.ID()] = true
	}

	// Producers sort before consumers. Nodes on a cycle come back as nil
	// and are skipped.
	sorted, _ := topo.Sort(r.tree.Downstream())
	for _, gn := range sorted {
		if gn == nil {
			continue
		}
		n := r.tree.Node(graph.GraphID(gn))
		if n == nil || !within[n.ID()] || !n.Kind().IsBlend() {
			continue
		}
		if _, _, ok := blendSides(n); ok {
			return n
		}
	}
	return nil
}

// blendSides returns the canonical nodes feeding a blend's first and second
// shader input.
func blendSides(b *graph.Node) (first, second *graph.Node, ok bool) {
	side := func(id string) *graph.Node {
		in, found := b.Input(id)
		if !found {
			return nil
		}
		p := in.Link()
		if p == nil || !p.Node().Kind().IsCanonical() {
			return nil
		}
		return p.Node()
	}
	first, second = side("Shader"), side("Shader_001")
	return first, second, first != nil && second != nil
}

func (r *run) foldBlend(ctx context.Context, b *graph.Node) error {
	s1, s2, ok := blendSides(b)
	if !ok {
		return fmt.Errorf("%w: %s is not foldable", graph.ErrInvalidOperation, b)
	}

	var (
		survivor *graph.Node
		rule     FoldRule
		err      error
	)
	if b.Kind() == shader.KindMixShader {
		fac, _ := b.Get("Fac")
		survivor, rule, err = r.foldMix(b, fac, s1, s2)
	} else {
		survivor, rule, err = r.foldAdd(b, s1, s2)
	}
	if err != nil {
		return fmt.Errorf("folding %s: %w", b, err)
	}

	out, _ := b.ShaderOutput()
	dst, _ := survivor.ShaderOutput()
	if err := r.relink(out, dst); err != nil {
		return err
	}
	r.remove(b)
	r.report.Folds[rule]++
	logging.DebugContext(ctx, "folded", "blend", b, "rule", string(rule), "into", survivor)
	return nil
}

func (r *run) foldMix(b *graph.Node, fac graph.Input, s1, s2 *graph.Node) (*graph.Node, FoldRule, error) {
	if s1 == s2 || sameCanonical(s1, s2) {
		return s1, FoldSelf, nil
	}
	if !fac.IsLinked() {
		// the host clamps Fac to [0,1], so literals past either end act
		// like the end itself
		switch f := scalarOf(fac.Value); {
		case f <= 0:
			return s2, FoldConstant, nil
		case f >= 1:
			return s1, FoldConstant, nil
		}
	}

	s1, s2, err := r.exclusivePair(b, s1, s2)
	if err != nil {
		return nil, "", err
	}

	if survivor, ok, err := r.foldTransparent(fac, s1, s2); err != nil || ok {
		return survivor, FoldTransparent, err
	}

	rule := FoldMix
	switch {
	case isFresnelIdiom(fac, s1, s2):
		diffuse, glossy := s1, s2
		if s1.Label == labelGlossy {
			diffuse, glossy = s2, s1
		}
		if err := r.alignFresnel(diffuse, glossy); err != nil {
			return nil, "", err
		}
		rule = FoldFresnel
	case (s1.Label == labelSubsurface) != (s2.Label == labelSubsurface):
		sss, other := s1, s2
		if s2.Label == labelSubsurface {
			sss, other = s2, s1
		}
		if err := r.alignSubsurface(sss, other); err != nil {
			return nil, "", err
		}
		rule = FoldSubsurface
	}

	survivor, err := r.mixInputs(b, fac, s1, s2)
	return survivor, rule, err
}

func (r *run) foldAdd(b *graph.Node, s1, s2 *graph.Node) (*graph.Node, FoldRule, error) {
	if s1 == s2 || sameCanonical(s1, s2) {
		return s1, FoldSelf, nil
	}
	s1, s2, err := r.exclusivePair(b, s1, s2)
	if err != nil {
		return nil, "", err
	}

	emissive := func(n *graph.Node) bool { return n.Label == labelEmission || n.Label == labelBackground }
	surface := func(n *graph.Node) bool { return n.Label == labelDiffuse || n.Label == labelGlossy }
	switch {
	case emissive(s1) && surface(s2):
		return s2, FoldAddEmission, r.addEmission(s2, s1)
	case emissive(s2) && surface(s1):
		return s1, FoldAddEmission, r.addEmission(s1, s2)
	}

	survivor, err := r.addInputs(b, s1, s2)
	return survivor, FoldAdd, err
}

func (r *run) exclusivePair(b, s1, s2 *graph.Node) (*graph.Node, *graph.Node, error) {
	s1, err := r.exclusive(s1, b)
	if err != nil {
		return nil, nil, err
	}
	s2, err = r.exclusive(s2, b)
	if err != nil {
		return nil, nil, err
	}
	return s1, s2, nil
}

// sameCanonical reports whether two canonical nodes would shade identically:
// equal properties and equal effective inputs.
func sameCanonical(a, b *graph.Node) bool {
	if a.Kind() != b.Kind() || len(a.Props) != len(b.Props) {
		return false
	}
	for k, v := range a.Props {
		if b.Props[k] != v {
			return false
		}
	}
	bi := b.Inputs()
	for i, in := range a.Inputs() {
		if !in.Effective().Equal(bi[i].Effective()) {
			return false
		}
	}
	return true
}

func copyInput(dst, src *graph.Node, id string) error {
	in, ok := src.Get(id)
	if !ok {
		return nil
	}
	return dst.Set(id, in)
}

// isTransparent matches an untouched Transparent conversion: white base
// color, nothing linked into it.
func isTransparent(n *graph.Node) bool {
	if n.Label != labelTransparent {
		return false
	}
	bc, ok := n.Get("Base Color")
	return ok && !bc.IsLinked() && bc.Value.At(0) == 1 && bc.Value.At(1) == 1 && bc.Value.At(2) == 1
}

func isOpaque(n *graph.Node) bool {
	a, ok := n.Get("Alpha")
	return ok && !a.IsLinked() && scalarOf(a.Value) == 1
}

// foldTransparent turns a mix with an untouched Transparent side into alpha
// on the other side. The factor weights the first input, so the survivor's
// alpha is the factor when it is first and its complement when second.
func (r *run) foldTransparent(fac graph.Input, s1, s2 *graph.Node) (*graph.Node, bool, error) {
	t1, t2 := isTransparent(s1), isTransparent(s2)
	if t1 == t2 {
		return nil, false, nil
	}
	survivor := s1
	if t1 {
		survivor = s2
	}
	if !isOpaque(survivor) {
		return nil, false, nil
	}

	alpha := fac
	if survivor == s2 {
		var err error
		if alpha, err = r.oneMinus("Alpha", fac); err != nil {
			return nil, false, err
		}
	}
	if err := survivor.Set("Alpha", alpha); err != nil {
		return nil, false, err
	}
	return survivor, true, nil
}

// isFresnelIdiom matches the classic fake-specular mix: a Diffuse and a
// Glossy conversion blended by a Fresnel or Layer-Weight factor with no
// texture involved.
func isFresnelIdiom(fac graph.Input, s1, s2 *graph.Node) bool {
	pair := (s1.Label == labelDiffuse && s2.Label == labelGlossy) ||
		(s1.Label == labelGlossy && s2.Label == labelDiffuse)
	if !pair || !fac.IsLinked() {
		return false
	}
	src := fac.Socket.Node()
	fresnel := false
	for _, n := range append([]*graph.Node{src}, src.Descendants()...) {
		switch {
		case n.Kind().IsTexture():
			return false
		case n.Kind() == shader.KindFresnel || n.Kind() == shader.KindLayerWeight:
			fresnel = true
		}
	}
	return fresnel
}

// alignFresnel makes both sides of the fresnel idiom describe the same
// dielectric: the glossy lobe's roughness and specular level, the diffuse
// base color and metalness.
func (r *run) alignFresnel(diffuse, glossy *graph.Node) error {
	for _, id := range []string{"Roughness", r.conv.table.Resolve("Specular")} {
		if err := copyInput(diffuse, glossy, id); err != nil {
			return err
		}
	}
	for _, id := range []string{"Metallic", "Base Color"} {
		if err := copyInput(glossy, diffuse, id); err != nil {
			return err
		}
	}
	return nil
}

// alignSubsurface keeps the other side's roughness on the subsurface side;
// before 4.0 the subsurface color also moves across.
func (r *run) alignSubsurface(sss, other *graph.Node) error {
	if err := copyInput(sss, other, "Roughness"); err != nil {
		return err
	}
	if !r.tree.Version().AtLeast(4, 0) {
		return copyInput(other, sss, "Subsurface Color")
	}
	return nil
}

// addEmission folds an emission-only side into the other side's emission.
func (r *run) addEmission(dst, em *graph.Node) error {
	for _, id := range []string{r.conv.table.Resolve("Emission"), "Emission Strength"} {
		if err := copyInput(dst, em, id); err != nil {
			return err
		}
	}
	return nil
}

// mixInputs blends every differing input of s2 into s1 with a Mix helper
// weighted by fac.
func (r *run) mixInputs(b *graph.Node, fac graph.Input, s1, s2 *graph.Node) (*graph.Node, error) {
	return r.blendInputs(b, s1, s2, func(in *graph.Socket, a, c graph.Input) (*graph.Socket, error) {
		return r.mix(in.Identifier(), in.Kind(), fac, a, c)
	})
}

// addInputs sums every differing input of s2 into s1.
func (r *run) addInputs(b *graph.Node, s1, s2 *graph.Node) (*graph.Node, error) {
	return r.blendInputs(b, s1, s2, func(in *graph.Socket, a, c graph.Input) (*graph.Socket, error) {
		return r.add(in.Identifier(), in.Kind(), a, c)
	})
}

type combineFunc func(in *graph.Socket, a, c graph.Input) (*graph.Socket, error)

func (r *run) blendInputs(b *graph.Node, s1, s2 *graph.Node, combine combineFunc) (*graph.Node, error) {
	emission := r.conv.table.Resolve("Emission")
	off1, off2 := emissionOff(s1), emissionOff(s2)
	other := s2.Inputs()
	for i, in := range s1.Inputs() {
		a, c := in.Effective(), other[i].Effective()
		if in.Identifier() == emission && off1 != off2 {
			// an emission that is off has no color; the lit side's color
			// carries and only the strengths blend
			if off1 {
				a = c
			} else {
				c = a
			}
		}
		if a.Equal(c) {
			if !a.Equal(in.Effective()) {
				if err := in.Assign(a); err != nil {
					return nil, err
				}
			}
			continue
		}
		out, err := combine(in, a, c)
		if err != nil {
			return nil, err
		}
		if in.IsDirection() {
			if out, err = r.normalize(in.Identifier(), out); err != nil {
				return nil, err
			}
		}
		if err := in.Connect(out); err != nil {
			return nil, err
		}
	}
	s1.Label = b.Kind().String()
	return s1, nil
}

// emissionOff reports whether n emits nothing: a literal zero strength, as
// premultiplication leaves every unlit surface.
func emissionOff(n *graph.Node) bool {
	s, ok := n.Get("Emission Strength")
	return ok && !s.IsLinked() && scalarOf(s.Value) == 0
}
