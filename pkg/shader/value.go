package shader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedCoercion is returned when a value cannot be stored on a socket of a given kind.
var ErrUnsupportedCoercion = errors.New("unsupported coercion")

// Luminance weights used when a vector or color is reduced to a scalar.
const (
	LumaR = 0.2126
	LumaG = 0.7152
	LumaB = 0.0722
)

// Value is the default value held by a socket: a scalar, a 2/3-vector, an
// RGBA color or a string.
type Value struct {
	n   int // number of numeric components, 0 for strings
	c   [4]float64
	str string
	txt bool
}

// Float returns a scalar value.
func Float(f float64) Value {
	return Value{n: 1, c: [4]float64{f}}
}

// Vec returns a vector value with 2 or 3 components.
func Vec(comps ...float64) Value {
	v := Value{n: len(comps)}
	copy(v.c[:], comps)
	if v.n > 3 {
		v.n = 3
	}
	return v
}

// RGBA returns a color value.
func RGBA(r, g, b, a float64) Value {
	return Value{n: 4, c: [4]float64{r, g, b, a}}
}

// Text returns a string value.
func Text(s string) Value {
	return Value{str: s, txt: true}
}

// Len reports the number of numeric components.
func (v Value) Len() int { return v.n }

// IsZero reports whether v holds nothing at all.
func (v Value) IsZero() bool { return v.n == 0 && !v.txt }

// IsText reports whether v is a string value.
func (v Value) IsText() bool { return v.txt }

// IsScalar reports whether v is a single number.
func (v Value) IsScalar() bool { return v.n == 1 }

// IsColor reports whether v is an RGBA color.
func (v Value) IsColor() bool { return v.n == 4 }

// At returns component i, or 0 when out of range.
func (v Value) At(i int) float64 {
	if i < 0 || i >= v.n {
		return 0
	}
	return v.c[i]
}

// Scalar returns the first component.
func (v Value) Scalar() float64 { return v.c[0] }

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.txt {
		return strconv.Quote(v.str)
	}
	if v.n == 1 {
		return strconv.FormatFloat(v.c[0], 'g', -1, 64)
	}
	parts := make([]string, v.n)
	for i := 0; i < v.n; i++ {
		parts[i] = strconv.FormatFloat(v.c[i], 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Text returns the string payload.
func (v Value) Text() string { return v.str }

// Components returns a copy of the numeric components.
func (v Value) Components() []float64 {
	out := make([]float64, v.n)
	copy(out, v.c[:v.n])
	return out
}

// Equal reports exact equality of kind and components.
func (v Value) Equal(o Value) bool {
	if v.txt || o.txt {
		return v.txt == o.txt && v.str == o.str
	}
	if v.n != o.n {
		return false
	}
	for i := 0; i < v.n; i++ {
		if v.c[i] != o.c[i] {
			return false
		}
	}
	return true
}

// Luminance reduces the RGB part of a vector or color to a scalar.
func (v Value) Luminance() float64 {
	return v.At(0)*LumaR + v.At(1)*LumaG + v.At(2)*LumaB
}

// IsBlack reports whether every RGB component is zero.
func (v Value) IsBlack() bool {
	return v.At(0) == 0 && v.At(1) == 0 && v.At(2) == 0
}

// Scale multiplies every numeric component, alpha excluded.
func (v Value) Scale(f float64) Value {
	out := v
	n := v.n
	if v.n == 4 {
		n = 3
	}
	for i := 0; i < n; i++ {
		out.c[i] *= f
	}
	return out
}

// Mul multiplies two values component-wise, broadcasting scalars.
func (v Value) Mul(o Value) Value {
	switch {
	case v.n == 1 && o.n == 1:
		return Float(v.c[0] * o.c[0])
	case o.n == 1:
		return v.Scale(o.c[0])
	case v.n == 1:
		return o.Scale(v.c[0])
	}
	out := v
	for i := 0; i < v.n && i < 3; i++ {
		out.c[i] = v.c[i] * o.At(i)
	}
	return out
}

// Coerce converts v into the representation stored by a socket of the given
// kind. arity is the component count of vector sockets (2 or 3).
func Coerce(v Value, kind SocketKind, arity int) (Value, error) {
	switch kind {
	case KindValue:
		switch {
		case v.n == 1:
			return v, nil
		case v.n >= 2:
			return Float(v.Luminance()), nil
		}
	case KindColor:
		switch {
		case v.n == 1:
			return RGBA(v.c[0], v.c[0], v.c[0], 1), nil
		case v.n == 2 || v.n == 3:
			return RGBA(v.c[0], v.c[1], v.c[2], 1), nil
		case v.n == 4:
			return v, nil
		}
	case KindVector:
		if arity != 2 {
			arity = 3
		}
		switch {
		case v.n == 1:
			out := Value{n: arity}
			for i := 0; i < arity; i++ {
				out.c[i] = v.c[0]
			}
			return out, nil
		case v.n >= 2:
			out := Value{n: arity}
			for i := 0; i < arity; i++ {
				out.c[i] = v.At(i)
			}
			return out, nil
		}
	case KindString:
		if v.txt {
			return v, nil
		}
	}
	return Value{}, fmt.Errorf("%w: %s into %s socket", ErrUnsupportedCoercion, v.describe(), kind)
}

func (v Value) describe() string {
	switch {
	case v.txt:
		return "string"
	case v.n == 0:
		return "empty value"
	case v.n == 1:
		return "scalar"
	case v.n == 4:
		return "color"
	default:
		return fmt.Sprintf("%d-vector", v.n)
	}
}
