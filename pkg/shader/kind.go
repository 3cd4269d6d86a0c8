package shader

// SocketKind is the data type carried by a socket.
type SocketKind int

const (
	KindValue SocketKind = iota
	KindVector
	KindColor
	KindShader
	KindString
)

func (k SocketKind) String() string {
	switch k {
	case KindValue:
		return "Value"
	case KindVector:
		return "Vector"
	case KindColor:
		return "Color"
	case KindShader:
		return "Shader"
	case KindString:
		return "String"
	default:
		return "unknown"
	}
}

// NodeKind identifies the type of a node. The set is closed; anything the
// catalog does not know about parses to KindUnknown.
type NodeKind int

const (
	KindUnknown NodeKind = iota

	// Shader-producing kinds
	KindPrincipled
	KindDiffuse
	KindGlossy
	KindGlass
	KindRefraction
	KindTranslucent
	KindTransparent
	KindEmission
	KindBackground
	KindSubsurface
	KindVelvet
	KindSpecular
	KindToon
	KindHair
	KindHoldout
	KindPrincipledVolume

	// Blend kinds
	KindMixShader
	KindAddShader

	// Structural kinds
	KindGroup
	KindGroupInput
	KindGroupOutput
	KindMaterialOutput
	KindReroute

	// Utility kinds
	KindValueInput
	KindRGB
	KindCombineXYZ
	KindMath
	KindVectorMath
	KindMix
	KindMapRange
	KindImageTexture
	KindNoiseTexture
	KindFresnel
	KindLayerWeight
	KindNormalMap
	KindBump
	KindTexCoord
	KindGeometry
	KindAttribute

	kindCount
)

var kindNames = [...]string{
	KindUnknown:          "Unknown",
	KindPrincipled:       "Principled-BSDF",
	KindDiffuse:          "Diffuse-BSDF",
	KindGlossy:           "Glossy-BSDF",
	KindGlass:            "Glass-BSDF",
	KindRefraction:       "Refraction-BSDF",
	KindTranslucent:      "Translucent-BSDF",
	KindTransparent:      "Transparent-BSDF",
	KindEmission:         "Emission",
	KindBackground:       "Background",
	KindSubsurface:       "Subsurface-Scattering",
	KindVelvet:           "Velvet-BSDF",
	KindSpecular:         "Specular-BSDF",
	KindToon:             "Toon-BSDF",
	KindHair:             "Hair-BSDF",
	KindHoldout:          "Holdout",
	KindPrincipledVolume: "Principled-Volume",
	KindMixShader:        "Mix-Shader",
	KindAddShader:        "Add-Shader",
	KindGroup:            "Group",
	KindGroupInput:       "Group-Input",
	KindGroupOutput:      "Group-Output",
	KindMaterialOutput:   "Material-Output",
	KindReroute:          "Reroute",
	KindValueInput:       "Value",
	KindRGB:              "RGB",
	KindCombineXYZ:       "Combine-XYZ",
	KindMath:             "Math",
	KindVectorMath:       "Vector-Math",
	KindMix:              "Mix",
	KindMapRange:         "Map-Range",
	KindImageTexture:     "Image-Texture",
	KindNoiseTexture:     "Noise-Texture",
	KindFresnel:          "Fresnel",
	KindLayerWeight:      "Layer-Weight",
	KindNormalMap:        "Normal-Map",
	KindBump:             "Bump",
	KindTexCoord:         "Texture-Coordinate",
	KindGeometry:         "Geometry",
	KindAttribute:        "Attribute",
}

var kindsByName = func() map[string]NodeKind {
	m := make(map[string]NodeKind, len(kindNames))
	for k, name := range kindNames {
		m[name] = NodeKind(k)
	}
	return m
}()

func (k NodeKind) String() string {
	if k < 0 || k >= kindCount {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// ParseKind maps an identifier such as "Diffuse-BSDF" to its kind.
func ParseKind(name string) NodeKind {
	if k, ok := kindsByName[name]; ok {
		return k
	}
	return KindUnknown
}

// Kinds returns every known kind except KindUnknown, in declaration order.
func Kinds() []NodeKind {
	out := make([]NodeKind, 0, kindCount-1)
	for k := KindUnknown + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// IsShader reports whether the kind produces a shading contribution.
func (k NodeKind) IsShader() bool {
	return k >= KindPrincipled && k <= KindAddShader
}

// IsBlend reports whether the kind combines two shaders.
func (k NodeKind) IsBlend() bool {
	return k == KindMixShader || k == KindAddShader
}

// IsCanonical reports whether the kind is the canonical Principled node.
func (k NodeKind) IsCanonical() bool {
	return k == KindPrincipled
}

// IsTexture reports whether the kind samples a texture.
func (k NodeKind) IsTexture() bool {
	return k == KindImageTexture || k == KindNoiseTexture
}

// IsEmissive reports whether the kind only emits light.
func (k NodeKind) IsEmissive() bool {
	return k == KindEmission || k == KindBackground
}
