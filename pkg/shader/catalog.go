package shader

// SocketSpec describes one socket of a node kind.
type SocketSpec struct {
	Identifier string
	Kind       SocketKind
	Arity      int   // vector sockets only
	Default    Value // zero for shader sockets
	Direction  bool  // normal/tangent input; unconnected means "use the geometry"
}

// Layout is the fixed socket layout of a node kind plus its default properties.
type Layout struct {
	Inputs  []SocketSpec
	Outputs []SocketSpec
	Props   map[string]string
}

// Input returns the input spec with the given identifier.
func (l Layout) Input(id string) (SocketSpec, bool) {
	for _, s := range l.Inputs {
		if s.Identifier == id {
			return s, true
		}
	}
	return SocketSpec{}, false
}

// Catalog answers node-kind metadata queries for one host version.
type Catalog interface {
	Layout(kind NodeKind) (Layout, bool)
	Version() Version
}

// Property names understood by the engine.
const (
	PropDistribution     = "distribution"
	PropSubsurfaceMethod = "subsurface_method"
	PropOperation        = "operation"
	PropDataType         = "data_type"
	PropBlendType        = "blend_type"
	PropImage            = "image"
	PropAttributeName    = "attribute_name"
)

// StandardCatalog is the built-in catalog of node layouts.
type StandardCatalog struct {
	version Version
	layouts map[NodeKind]Layout
}

// NewCatalog builds the standard catalog for a host version.
func NewCatalog(v Version) *StandardCatalog {
	c := &StandardCatalog{version: v, layouts: make(map[NodeKind]Layout)}
	c.build()
	return c
}

// Version returns the host version the catalog was built for.
func (c *StandardCatalog) Version() Version { return c.version }

// Layout returns the layout for kind. Group kinds have an empty layout;
// their sockets come from the group's interface.
func (c *StandardCatalog) Layout(kind NodeKind) (Layout, bool) {
	l, ok := c.layouts[kind]
	return l, ok
}

func val(id string, f float64) SocketSpec {
	return SocketSpec{Identifier: id, Kind: KindValue, Default: Float(f)}
}

func vec(id string, x, y, z float64) SocketSpec {
	return SocketSpec{Identifier: id, Kind: KindVector, Arity: 3, Default: Vec(x, y, z)}
}

func col(id string, r, g, b, a float64) SocketSpec {
	return SocketSpec{Identifier: id, Kind: KindColor, Default: RGBA(r, g, b, a)}
}

func dir(id string) SocketSpec {
	s := vec(id, 0, 0, 0)
	s.Direction = true
	return s
}

func sh(id string) SocketSpec {
	return SocketSpec{Identifier: id, Kind: KindShader}
}

func (c *StandardCatalog) add(kind NodeKind, ins, outs []SocketSpec, props map[string]string) {
	c.layouts[kind] = Layout{Inputs: ins, Outputs: outs, Props: props}
}

func (c *StandardCatalog) build() {
	v := c.version
	modern := v.AtLeast(4, 0)
	r := func(generic string) string { return Resolve(generic, v) }

	ior := 1.45
	if modern {
		ior = 1.5
	}

	principled := []SocketSpec{
		col("Base Color", 0.8, 0.8, 0.8, 1),
		val(r("Subsurface"), 0),
		vec("Subsurface Radius", 1, 0.2, 0.1),
	}
	if modern {
		principled = append(principled, val("Subsurface Scale", 0.05))
	} else {
		principled = append(principled, col("Subsurface Color", 0.8, 0.8, 0.8, 1))
	}
	principled = append(principled,
		val("Metallic", 0),
		val(r("Specular"), 0.5),
	)
	if modern {
		principled = append(principled, col("Specular Tint", 1, 1, 1, 1))
	} else {
		principled = append(principled, val("Specular Tint", 0))
	}
	principled = append(principled,
		val("Roughness", 0.5),
		val("Anisotropic", 0),
		val("Anisotropic Rotation", 0),
		val(r("Sheen"), 0),
	)
	if modern {
		principled = append(principled, col("Sheen Tint", 1, 1, 1, 1), val("Sheen Roughness", 0.5))
	} else {
		principled = append(principled, val("Sheen Tint", 0.5))
	}
	principled = append(principled,
		val(r("Clearcoat"), 0),
		val(r("Clearcoat Roughness"), 0.03),
		val("IOR", ior),
		val(r("Transmission"), 0),
	)
	if !modern {
		principled = append(principled, val("Transmission Roughness", 0))
	}
	if modern {
		principled = append(principled, col(r("Emission"), 1, 1, 1, 1), val("Emission Strength", 0))
	} else {
		principled = append(principled, col(r("Emission"), 0, 0, 0, 1), val("Emission Strength", 1))
	}
	principled = append(principled,
		val("Alpha", 1),
		dir("Normal"),
		dir(r("Clearcoat Normal")),
		dir("Tangent"),
	)
	c.add(KindPrincipled, principled, []SocketSpec{sh("BSDF")},
		map[string]string{PropDistribution: "GGX", PropSubsurfaceMethod: "RANDOM_WALK"})

	c.add(KindDiffuse, []SocketSpec{
		col("Color", 0.8, 0.8, 0.8, 1), val("Roughness", 0), dir("Normal"),
	}, []SocketSpec{sh("BSDF")}, nil)

	glossy := []SocketSpec{col("Color", 0.8, 0.8, 0.8, 1), val("Roughness", 0.5)}
	if modern {
		glossy = append(glossy, val("Anisotropy", 0), val("Rotation", 0))
	}
	glossy = append(glossy, dir("Normal"))
	if modern {
		glossy = append(glossy, dir("Tangent"))
	}
	c.add(KindGlossy, glossy, []SocketSpec{sh("BSDF")}, map[string]string{PropDistribution: "GGX"})

	c.add(KindGlass, []SocketSpec{
		col("Color", 1, 1, 1, 1), val("Roughness", 0), val("IOR", ior), dir("Normal"),
	}, []SocketSpec{sh("BSDF")}, map[string]string{PropDistribution: "BECKMANN"})
	c.add(KindRefraction, []SocketSpec{
		col("Color", 1, 1, 1, 1), val("Roughness", 0), val("IOR", ior), dir("Normal"),
	}, []SocketSpec{sh("BSDF")}, map[string]string{PropDistribution: "BECKMANN"})
	c.add(KindTranslucent, []SocketSpec{
		col("Color", 0.8, 0.8, 0.8, 1), dir("Normal"),
	}, []SocketSpec{sh("BSDF")}, nil)
	c.add(KindTransparent, []SocketSpec{
		col("Color", 1, 1, 1, 1),
	}, []SocketSpec{sh("BSDF")}, nil)
	c.add(KindEmission, []SocketSpec{
		col("Color", 1, 1, 1, 1), val("Strength", 1),
	}, []SocketSpec{sh("Emission")}, nil)
	c.add(KindBackground, []SocketSpec{
		col("Color", 0.8, 0.8, 0.8, 1), val("Strength", 1),
	}, []SocketSpec{sh("Background")}, nil)

	sss := []SocketSpec{col("Color", 0.8, 0.8, 0.8, 1)}
	if modern {
		sss = append(sss, val("Scale", 0.05))
	} else {
		sss = append(sss, val("Scale", 1))
	}
	sss = append(sss, vec("Radius", 1, 0.2, 0.1))
	if modern {
		sss = append(sss, val("IOR", 1.4), val("Roughness", 1))
	}
	sss = append(sss, dir("Normal"))
	c.add(KindSubsurface, sss, []SocketSpec{sh("BSSRDF")},
		map[string]string{PropSubsurfaceMethod: "RANDOM_WALK"})

	c.add(KindVelvet, []SocketSpec{
		col("Color", 0.8, 0.8, 0.8, 1), val("Sigma", 1), dir("Normal"),
	}, []SocketSpec{sh("BSDF")}, nil)
	c.add(KindSpecular, []SocketSpec{
		col("Base Color", 0.8, 0.8, 0.8, 1),
		col("Specular", 0.03, 0.03, 0.03, 1),
		val("Roughness", 0.2),
		col("Emissive Color", 0, 0, 0, 1),
		val("Transparency", 0),
		dir("Normal"),
		val("Clear Coat", 0),
		val("Clear Coat Roughness", 0),
		dir("Clear Coat Normal"),
	}, []SocketSpec{sh("BSDF")}, nil)
	c.add(KindToon, []SocketSpec{
		col("Color", 0.8, 0.8, 0.8, 1), val("Size", 0.5), val("Smooth", 0), dir("Normal"),
	}, []SocketSpec{sh("BSDF")}, nil)
	c.add(KindHair, []SocketSpec{
		col("Color", 0.8, 0.8, 0.8, 1), val("Offset", 0), val("RoughnessU", 0.1),
		val("RoughnessV", 1), dir("Tangent"),
	}, []SocketSpec{sh("BSDF")}, nil)
	c.add(KindHoldout, nil, []SocketSpec{sh("Holdout")}, nil)
	c.add(KindPrincipledVolume, []SocketSpec{
		col("Color", 0.5, 0.5, 0.5, 1), val("Density", 1),
	}, []SocketSpec{sh("Volume")}, nil)

	c.add(KindMixShader, []SocketSpec{
		val("Fac", 0.5), sh("Shader"), sh("Shader_001"),
	}, []SocketSpec{sh("Shader")}, nil)
	c.add(KindAddShader, []SocketSpec{
		sh("Shader"), sh("Shader_001"),
	}, []SocketSpec{sh("Shader")}, nil)

	c.add(KindGroup, nil, nil, nil)
	c.add(KindGroupInput, nil, nil, nil)
	c.add(KindGroupOutput, nil, nil, nil)
	displacement := vec("Displacement", 0, 0, 0)
	c.add(KindMaterialOutput, []SocketSpec{
		sh("Surface"), sh("Volume"), displacement,
	}, nil, nil)
	c.add(KindReroute, []SocketSpec{col("Input", 0, 0, 0, 1)}, []SocketSpec{col("Output", 0, 0, 0, 1)}, nil)

	c.add(KindValueInput, nil, []SocketSpec{val("Value", 0.5)}, nil)
	c.add(KindRGB, nil, []SocketSpec{col("Color", 0.5, 0.5, 0.5, 1)}, nil)
	c.add(KindCombineXYZ, []SocketSpec{
		val("X", 0), val("Y", 0), val("Z", 0),
	}, []SocketSpec{vec("Vector", 0, 0, 0)}, nil)
	c.add(KindMath, []SocketSpec{
		val("Value", 0.5), val("Value_001", 0.5), val("Value_002", 0.5),
	}, []SocketSpec{val("Value", 0)}, map[string]string{PropOperation: "ADD"})
	c.add(KindVectorMath, []SocketSpec{
		vec("Vector", 0, 0, 0), vec("Vector_001", 0, 0, 0), vec("Vector_002", 0, 0, 0), val("Scale", 1),
	}, []SocketSpec{vec("Vector", 0, 0, 0), val("Value", 0)}, map[string]string{PropOperation: "ADD"})
	c.add(KindMix, []SocketSpec{
		val("Factor", 0.5),
		val("A_Float", 0), val("B_Float", 0),
		vec("A_Vector", 0, 0, 0), vec("B_Vector", 0, 0, 0),
		col("A_Color", 0.5, 0.5, 0.5, 1), col("B_Color", 0.5, 0.5, 0.5, 1),
	}, []SocketSpec{
		val("Result_Float", 0), vec("Result_Vector", 0, 0, 0), col("Result_Color", 0, 0, 0, 1),
	}, map[string]string{PropDataType: "FLOAT", PropBlendType: "MIX"})
	c.add(KindMapRange, []SocketSpec{
		val("Value", 1), val("From Min", 0), val("From Max", 1), val("To Min", 0), val("To Max", 1),
	}, []SocketSpec{val("Result", 0)}, nil)
	c.add(KindImageTexture, []SocketSpec{
		vec("Vector", 0, 0, 0),
	}, []SocketSpec{col("Color", 0, 0, 0, 1), val("Alpha", 1)}, map[string]string{PropImage: ""})
	c.add(KindNoiseTexture, []SocketSpec{
		vec("Vector", 0, 0, 0), val("Scale", 5), val("Detail", 2),
	}, []SocketSpec{val("Fac", 0), col("Color", 0, 0, 0, 1)}, nil)
	c.add(KindFresnel, []SocketSpec{
		val("IOR", ior), dir("Normal"),
	}, []SocketSpec{val("Fac", 0)}, nil)
	c.add(KindLayerWeight, []SocketSpec{
		val("Blend", 0.5), dir("Normal"),
	}, []SocketSpec{val("Fresnel", 0), val("Facing", 0)}, nil)
	c.add(KindNormalMap, []SocketSpec{
		val("Strength", 1), col("Color", 0.5, 0.5, 1, 1),
	}, []SocketSpec{vec("Normal", 0, 0, 0)}, nil)
	c.add(KindBump, []SocketSpec{
		val("Strength", 1), val("Distance", 1), val("Height", 1), dir("Normal"),
	}, []SocketSpec{vec("Normal", 0, 0, 0)}, nil)
	c.add(KindTexCoord, nil, []SocketSpec{
		vec("Generated", 0, 0, 0), vec("Normal", 0, 0, 0), vec("UV", 0, 0, 0), vec("Object", 0, 0, 0),
	}, nil)
	c.add(KindGeometry, nil, []SocketSpec{
		vec("Position", 0, 0, 0), vec("Normal", 0, 0, 0), vec("Tangent", 0, 0, 0),
	}, nil)
	c.add(KindAttribute, nil, []SocketSpec{
		col("Color", 0, 0, 0, 1), vec("Vector", 0, 0, 0), val("Fac", 0),
	}, map[string]string{PropAttributeName: ""})
}
