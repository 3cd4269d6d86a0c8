package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ritzau/shadergraph/pkg/graph"
	"github.com/ritzau/shadergraph/pkg/recipe"
	"github.com/ritzau/shadergraph/pkg/rewrite"
	"github.com/ritzau/shadergraph/pkg/shader"
)

// InputDoc is one node input in a machine-readable report.
type InputDoc struct {
	ID    string `yaml:"id"`
	Value string `yaml:"value"`
}

// NodeDoc describes the resulting canonical node.
type NodeDoc struct {
	Kind   string            `yaml:"kind"`
	Label  string            `yaml:"label,omitempty"`
	Props  map[string]string `yaml:"props,omitempty"`
	Inputs []InputDoc        `yaml:"inputs"`
}

// ConversionDoc is the YAML form of a Conversion.
type ConversionDoc struct {
	Name   string          `yaml:"name"`
	Error  string          `yaml:"error,omitempty"`
	Node   *NodeDoc        `yaml:"node,omitempty"`
	Report *rewrite.Report `yaml:"report,omitempty"`
}

// RecipeDoc is the YAML form of one recipe.
type RecipeDoc struct {
	Kind       string            `yaml:"kind"`
	Inputs     map[string]string `yaml:"inputs"`
	Attributes []string          `yaml:"attributes,omitempty"`
	Loss       string            `yaml:"loss,omitempty"`
}

// NodeInputs renders a node's effective inputs: literals by value, links
// by producer.
func NodeInputs(n *graph.Node) []InputDoc {
	docs := make([]InputDoc, 0, len(n.Inputs()))
	for _, s := range n.Inputs() {
		in := s.Effective()
		v := in.Value.String()
		if in.IsLinked() {
			v = "<- " + in.Socket.Node().String() + "." + in.Socket.Identifier()
		}
		docs = append(docs, InputDoc{ID: s.Identifier(), Value: v})
	}
	return docs
}

// NewConversionDoc builds the YAML document for a conversion.
func NewConversionDoc(c Conversion) ConversionDoc {
	doc := ConversionDoc{Name: c.Name, Report: c.Report}
	if c.Err != nil {
		doc.Error = c.Err.Error()
	}
	if c.Node != nil {
		doc.Node = &NodeDoc{
			Kind:   c.Node.Kind().String(),
			Label:  c.Node.Label,
			Props:  c.Node.Props,
			Inputs: NodeInputs(c.Node),
		}
	}
	return doc
}

// NewRecipeDocs builds the YAML form of a recipe table.
func NewRecipeDocs(t *recipe.Table) []RecipeDoc {
	var docs []RecipeDoc
	for _, kind := range t.Kinds() {
		rec, _ := t.Lookup(kind)
		doc := RecipeDoc{Kind: kind.String(), Inputs: make(map[string]string), Loss: rec.Loss}
		for _, e := range rec.Entries {
			doc.Inputs[e.Target] = e.Term.String()
		}
		for _, a := range rec.Attributes {
			doc.Attributes = append(doc.Attributes, a.Name)
		}
		docs = append(docs, doc)
	}
	return docs
}

// WriteYAML encodes v as a YAML document.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// WriteConversions writes conversions as a YAML sequence.
func WriteConversions(w io.Writer, cs []Conversion) error {
	docs := make([]ConversionDoc, len(cs))
	for i, c := range cs {
		docs[i] = NewConversionDoc(c)
	}
	return WriteYAML(w, docs)
}

// WriteRenames writes the rename table as YAML.
func WriteRenames(w io.Writer, renames []shader.Rename) error {
	return WriteYAML(w, renames)
}
