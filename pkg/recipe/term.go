package recipe

import (
	"fmt"

	"github.com/ritzau/shadergraph/pkg/shader"
)

// Term is an expression over a source node's inputs that yields one input of
// the canonical node. The set of terms is closed.
type Term interface {
	fmt.Stringer
	inputs() []string
}

// Lit is a literal value.
type Lit struct{ Value shader.Value }

// In passes a source input through: its producer when linked, otherwise its value.
type In struct{ ID string }

// Mul multiplies two terms component-wise, broadcasting scalars.
type Mul struct{ A, B Term }

// Remap linearly maps a [0,1] term onto [Lo,Hi].
type Remap struct {
	T      Term
	Lo, Hi float64
}

// OneMinus computes 1 - T.
type OneMinus struct{ T Term }

// Const is shorthand for a scalar literal.
func Const(f float64) Lit { return Lit{Value: shader.Float(f)} }

// Color is shorthand for an RGBA literal.
func Color(r, g, b, a float64) Lit { return Lit{Value: shader.RGBA(r, g, b, a)} }

func (t Lit) String() string      { return t.Value.String() }
func (t In) String() string       { return fmt.Sprintf("in(%s)", t.ID) }
func (t Mul) String() string      { return fmt.Sprintf("%s * %s", t.A, t.B) }
func (t Remap) String() string    { return fmt.Sprintf("remap(%s, %g, %g)", t.T, t.Lo, t.Hi) }
func (t OneMinus) String() string { return fmt.Sprintf("1 - %s", t.T) }

func (Lit) inputs() []string        { return nil }
func (t In) inputs() []string       { return []string{t.ID} }
func (t Mul) inputs() []string      { return append(t.A.inputs(), t.B.inputs()...) }
func (t Remap) inputs() []string    { return t.T.inputs() }
func (t OneMinus) inputs() []string { return t.T.inputs() }

// Inputs lists the source inputs a term reads.
func Inputs(t Term) []string { return t.inputs() }
