package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/shadergraph/pkg/shader"
)

var (
	modern = shader.Version{Major: 4, Minor: 1}
	legacy = shader.Version{Major: 3, Minor: 6}
)

func TestForUnsupportedKinds(t *testing.T) {
	for _, k := range []shader.NodeKind{
		shader.KindToon, shader.KindHair, shader.KindHoldout, shader.KindPrincipledVolume,
		shader.KindMixShader, shader.KindAddShader,
	} {
		_, err := For(k)
		assert.ErrorIs(t, err, ErrUnsupportedNodeKind, k.String())
	}

	for _, k := range []shader.NodeKind{shader.KindMath, shader.KindImageTexture, shader.KindReroute} {
		_, err := For(k)
		assert.ErrorIs(t, err, ErrNotShader, k.String())
	}
}

func TestForSupportedKinds(t *testing.T) {
	for _, k := range []shader.NodeKind{
		shader.KindPrincipled, shader.KindDiffuse, shader.KindGlossy, shader.KindGlass,
		shader.KindRefraction, shader.KindTranslucent, shader.KindTransparent,
		shader.KindEmission, shader.KindBackground, shader.KindSubsurface,
		shader.KindVelvet, shader.KindSpecular,
	} {
		r, err := For(k)
		require.NoError(t, err, k.String())
		assert.Equal(t, k, r.Kind)
		assert.NotEmpty(t, r.Loss, "%s should document its loss", k)
	}
}

func TestDiffuseRecipe(t *testing.T) {
	r, err := For(shader.KindDiffuse)
	require.NoError(t, err)

	term, ok := r.Target("Roughness")
	require.True(t, ok)
	remap, ok := term.(Remap)
	require.True(t, ok, "roughness should be remapped, got %T", term)
	assert.Equal(t, DiffuseRoughnessMin, remap.Lo)
	assert.Equal(t, DiffuseRoughnessMax, remap.Hi)
	assert.Equal(t, []string{"Roughness"}, Inputs(term))

	metallic, _ := r.Target("Metallic")
	assert.Equal(t, Const(0), metallic)
}

func TestTableResolvesRenames(t *testing.T) {
	tm := NewTable(shader.NewCatalog(modern))
	r, err := tm.Lookup(shader.KindEmission)
	require.NoError(t, err)
	_, ok := r.Target("Emission Color")
	assert.True(t, ok, "4.x emission target should be renamed")
	_, ok = r.Target("Emission")
	assert.False(t, ok)
	assert.Equal(t, "Emission Color", tm.Resolve("Emission"))

	tl := NewTable(shader.NewCatalog(legacy))
	r, err = tl.Lookup(shader.KindEmission)
	require.NoError(t, err)
	_, ok = r.Target("Emission")
	assert.True(t, ok, "3.x emission target keeps its generic name")
	assert.Equal(t, legacy, tl.Version())
}

func TestTableDropsMissingSockets(t *testing.T) {
	tm := NewTable(shader.NewCatalog(modern))
	tl := NewTable(shader.NewCatalog(legacy))

	glossy, _ := tl.Lookup(shader.KindGlossy)
	_, ok := glossy.Target("Anisotropic")
	assert.False(t, ok, "3.x glossy has no anisotropy input")
	glossy, _ = tm.Lookup(shader.KindGlossy)
	_, ok = glossy.Target("Anisotropic")
	assert.True(t, ok)

	sss, _ := tm.Lookup(shader.KindSubsurface)
	_, ok = sss.Target("Subsurface Color")
	assert.False(t, ok, "4.x canonical node has no subsurface color")
	_, ok = sss.Target("Subsurface Scale")
	assert.True(t, ok)
	_, ok = sss.Target("Subsurface Weight")
	assert.True(t, ok)

	sss, _ = tl.Lookup(shader.KindSubsurface)
	_, ok = sss.Target("Roughness")
	assert.False(t, ok, "3.x subsurface has no roughness input")
	_, ok = sss.Target("Subsurface Color")
	assert.True(t, ok)

	velvet, _ := tl.Lookup(shader.KindVelvet)
	_, ok = velvet.Target("Sheen Roughness")
	assert.False(t, ok)
}

func TestTableTargetsExist(t *testing.T) {
	for _, v := range []shader.Version{legacy, modern} {
		catalog := shader.NewCatalog(v)
		canonical, _ := catalog.Layout(shader.KindPrincipled)
		table := NewTable(catalog)
		for _, k := range table.Kinds() {
			r, err := table.Lookup(k)
			require.NoError(t, err)
			source, _ := catalog.Layout(k)
			for _, e := range r.Entries {
				_, ok := canonical.Input(e.Target)
				assert.True(t, ok, "%s %s: target %q missing", v, k, e.Target)
				for _, id := range Inputs(e.Term) {
					_, ok := source.Input(id)
					assert.True(t, ok, "%s %s: source input %q missing", v, k, id)
				}
			}
		}
	}
}

func TestTableLookupErrors(t *testing.T) {
	table := NewTable(shader.NewCatalog(modern))

	_, err := table.Lookup(shader.KindToon)
	assert.ErrorIs(t, err, ErrUnsupportedNodeKind)
	_, err = table.Lookup(shader.KindMixShader)
	assert.ErrorIs(t, err, ErrUnsupportedNodeKind)
	_, err = table.Lookup(shader.KindMath)
	assert.ErrorIs(t, err, ErrNotShader)

	assert.NotContains(t, table.Kinds(), shader.KindToon)
	assert.Contains(t, table.Kinds(), shader.KindDiffuse)
}

func TestClampDistribution(t *testing.T) {
	assert.Equal(t, "GGX", ClampDistribution("GGX"))
	assert.Equal(t, "MULTI_GGX", ClampDistribution("MULTI_GGX"))
	assert.Equal(t, "GGX", ClampDistribution("BECKMANN"))
	assert.Equal(t, "GGX", ClampDistribution("ASHIKHMIN_SHIRLEY"))
	assert.Equal(t, "GGX", ClampDistribution(""))
}

func TestTermString(t *testing.T) {
	term := OneMinus{T: Mul{A: In{"Radius"}, B: Const(2)}}
	assert.Equal(t, "1 - in(Radius) * 2", term.String())
	assert.Equal(t, []string{"Radius"}, Inputs(term))
	assert.Equal(t, "remap(in(Roughness), 0.9, 1.33)",
		Remap{T: In{"Roughness"}, Lo: DiffuseRoughnessMin, Hi: DiffuseRoughnessMax}.String())
}
