package recipe

import (
	"github.com/ritzau/shadergraph/pkg/shader"
)

// Table holds every recipe resolved for one host version. It is read-only
// once built and safe to share between goroutines.
type Table struct {
	catalog shader.Catalog
	recipes map[shader.NodeKind]Recipe
	errs    map[shader.NodeKind]error
}

// NewTable resolves all recipes against catalog. Target identifiers go
// through the version rename table; entries whose target does not exist on
// the canonical node, or that read a source input the kind lacks in this
// version, are dropped.
func NewTable(catalog shader.Catalog) *Table {
	t := &Table{
		catalog: catalog,
		recipes: make(map[shader.NodeKind]Recipe),
		errs:    make(map[shader.NodeKind]error),
	}
	canonical, _ := catalog.Layout(shader.KindPrincipled)
	v := catalog.Version()

	for _, kind := range shader.Kinds() {
		generic, err := For(kind)
		if err != nil {
			t.errs[kind] = err
			continue
		}
		source, _ := catalog.Layout(kind)
		resolved := Recipe{Kind: kind, Loss: generic.Loss, Attributes: generic.Attributes}
		for _, e := range generic.Entries {
			target := shader.Resolve(e.Target, v)
			if _, ok := canonical.Input(target); !ok {
				continue
			}
			if !readsExisting(e.Term, source) {
				continue
			}
			resolved.Entries = append(resolved.Entries, Entry{Target: target, Term: e.Term})
		}
		t.recipes[kind] = resolved
	}
	return t
}

func readsExisting(term Term, source shader.Layout) bool {
	for _, id := range term.inputs() {
		if _, ok := source.Input(id); !ok {
			return false
		}
	}
	return true
}

// Catalog returns the catalog the table was resolved against.
func (t *Table) Catalog() shader.Catalog { return t.catalog }

// Version returns the host version of the table.
func (t *Table) Version() shader.Version { return t.catalog.Version() }

// Lookup returns the resolved recipe for kind, or ErrUnsupportedNodeKind /
// ErrNotShader.
func (t *Table) Lookup(kind shader.NodeKind) (Recipe, error) {
	if r, ok := t.recipes[kind]; ok {
		return r, nil
	}
	if err, ok := t.errs[kind]; ok {
		return Recipe{}, err
	}
	_, err := For(kind)
	return Recipe{}, err
}

// Resolve maps a generic canonical input identifier for the table's version.
func (t *Table) Resolve(generic string) string {
	return shader.Resolve(generic, t.catalog.Version())
}

// Kinds returns the kinds that have a recipe, in declaration order.
func (t *Table) Kinds() []shader.NodeKind {
	var out []shader.NodeKind
	for _, k := range shader.Kinds() {
		if _, ok := t.recipes[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
