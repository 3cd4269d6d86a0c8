// Package recipe holds the conversion table that expresses each supported
// shader node kind as inputs of the canonical Principled node.
//
// Every recipe is a best-effort approximation; Loss documents what is given
// up. Recipes are written against generic (pre-4.0) socket identifiers and
// resolved for a host version once, when a Table is built.
package recipe

import (
	"errors"
	"fmt"

	"github.com/ritzau/shadergraph/pkg/shader"
)

var (
	// ErrUnsupportedNodeKind marks a shader-producing kind with no recipe.
	ErrUnsupportedNodeKind = errors.New("unsupported shader node kind")

	// ErrNotShader marks a kind that does not produce a shader at all.
	ErrNotShader = errors.New("node kind does not produce a shader")
)

// Calibration constants. The diffuse range in particular has no derivation
// and should be reviewed before reuse with another target shading model.
const (
	DiffuseRoughnessMin = 0.90
	DiffuseRoughnessMax = 1.33

	// VelvetCoatWeight is the coat added to fake the velvet rim.
	VelvetCoatWeight = 0.1

	// SpecularColorToLevel scales an F0 color (0.04 for common dielectrics)
	// into the canonical specular level (0.5 for the same dielectric).
	SpecularColorToLevel = 12.5
)

// Attribute describes a non-socket property of the canonical node. The
// value is read from the source node's FromProp when set, otherwise Value
// is used.
type Attribute struct {
	Name     string
	FromProp string
	Value    string
}

// Entry assigns one canonical input.
type Entry struct {
	Target string
	Term   Term
}

// Recipe describes how to rewrite one source kind.
type Recipe struct {
	Kind       shader.NodeKind
	Entries    []Entry
	Attributes []Attribute
	Loss       string
}

// Target returns the term assigned to a canonical input.
func (r Recipe) Target(id string) (Term, bool) {
	for _, e := range r.Entries {
		if e.Target == id {
			return e.Term, true
		}
	}
	return nil, false
}

// ClampDistribution maps any microfacet distribution the canonical node
// cannot represent to GGX.
func ClampDistribution(d string) string {
	switch d {
	case "GGX", "MULTI_GGX":
		return d
	default:
		return "GGX"
	}
}

var (
	black = Color(0, 0, 0, 1)
	zero  = Const(0)
	one   = Const(1)

	distribution = Attribute{Name: shader.PropDistribution, FromProp: shader.PropDistribution}
)

// For returns the generic recipe for kind.
func For(kind shader.NodeKind) (Recipe, error) {
	r := Recipe{Kind: kind}
	switch kind {
	case shader.KindPrincipled:
		r.Loss = "canonical kind, nothing to convert"

	case shader.KindDiffuse:
		r.Entries = []Entry{
			{"Base Color", In{"Color"}},
			{"Roughness", Remap{T: In{"Roughness"}, Lo: DiffuseRoughnessMin, Hi: DiffuseRoughnessMax}},
			{"Metallic", zero},
			{"Specular", zero},
			{"Normal", In{"Normal"}},
		}
		r.Loss = "Oren-Nayar roughness is remapped onto the microfacet roughness range"

	case shader.KindGlossy:
		r.Entries = []Entry{
			{"Base Color", In{"Color"}},
			{"Metallic", one},
			{"Roughness", In{"Roughness"}},
			{"Anisotropic", In{"Anisotropy"}},
			{"Anisotropic Rotation", In{"Rotation"}},
			{"Normal", In{"Normal"}},
			{"Tangent", In{"Tangent"}},
		}
		r.Attributes = []Attribute{distribution}
		r.Loss = "Ashikhmin-Shirley and sharp distributions fall back to GGX"

	case shader.KindGlass:
		r.Entries = []Entry{
			{"Base Color", In{"Color"}},
			{"Roughness", In{"Roughness"}},
			{"IOR", In{"IOR"}},
			{"Metallic", zero},
			{"Transmission", one},
			{"Normal", In{"Normal"}},
		}
		r.Attributes = []Attribute{distribution}
		r.Loss = "Beckmann distribution falls back to GGX"

	case shader.KindRefraction:
		r.Entries = []Entry{
			{"Base Color", In{"Color"}},
			{"Roughness", In{"Roughness"}},
			{"IOR", In{"IOR"}},
			{"Metallic", zero},
			{"Specular", zero},
			{"Transmission", one},
			{"Normal", In{"Normal"}},
		}
		r.Attributes = []Attribute{distribution}
		r.Loss = "the reflection lobe cannot be fully removed"

	case shader.KindTranslucent:
		r.Entries = []Entry{
			{"Base Color", In{"Color"}},
			{"Roughness", one},
			{"Transmission", one},
			{"Normal", In{"Normal"}},
		}
		r.Loss = "diffuse transmission is approximated by fully rough transmission"

	case shader.KindTransparent:
		r.Entries = []Entry{
			{"Base Color", In{"Color"}},
			{"Alpha", zero},
		}
		r.Loss = "colored transparency loses its tint"

	case shader.KindEmission, shader.KindBackground:
		r.Entries = []Entry{
			{"Base Color", black},
			{"Specular", zero},
			{"Roughness", one},
			{"Emission", In{"Color"}},
			{"Emission Strength", In{"Strength"}},
		}
		r.Loss = "a black diffuse base is still shaded"

	case shader.KindSubsurface:
		r.Entries = []Entry{
			{"Base Color", In{"Color"}},
			{"Subsurface", one},
			{"Subsurface Color", In{"Color"}},
			{"Subsurface Radius", Mul{A: In{"Radius"}, B: In{"Scale"}}},
			{"Subsurface Scale", one},
			{"Roughness", In{"Roughness"}},
			{"Normal", In{"Normal"}},
		}
		r.Attributes = []Attribute{{Name: shader.PropSubsurfaceMethod, FromProp: shader.PropSubsurfaceMethod}}
		r.Loss = "adds a specular layer the pure BSSRDF does not have"

	case shader.KindVelvet:
		r.Entries = []Entry{
			{"Base Color", In{"Color"}},
			{"Roughness", one},
			{"Specular", zero},
			{"Sheen", one},
			{"Sheen Tint", one},
			{"Sheen Roughness", In{"Sigma"}},
			{"Clearcoat", Const(VelvetCoatWeight)},
			{"Clearcoat Roughness", In{"Sigma"}},
			{"Normal", In{"Normal"}},
		}
		r.Loss = "velvet has no exact equivalent; approximated with sheen and a faint coat"

	case shader.KindSpecular:
		r.Entries = []Entry{
			{"Base Color", In{"Base Color"}},
			{"Specular", Mul{A: In{"Specular"}, B: Const(SpecularColorToLevel)}},
			{"Roughness", In{"Roughness"}},
			{"Emission", In{"Emissive Color"}},
			{"Emission Strength", one},
			{"Alpha", OneMinus{T: In{"Transparency"}}},
			{"Normal", In{"Normal"}},
			{"Clearcoat", In{"Clear Coat"}},
			{"Clearcoat Roughness", In{"Clear Coat Roughness"}},
			{"Clearcoat Normal", In{"Clear Coat Normal"}},
		}
		r.Loss = "specular color tint is reduced to its luminance"

	case shader.KindMixShader, shader.KindAddShader:
		return Recipe{}, fmt.Errorf("%w: %s is folded, not converted", ErrUnsupportedNodeKind, kind)

	default:
		if kind.IsShader() {
			return Recipe{}, fmt.Errorf("%w: %s", ErrUnsupportedNodeKind, kind)
		}
		return Recipe{}, fmt.Errorf("%w: %s", ErrNotShader, kind)
	}
	return r, nil
}
