package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/shadergraph/pkg/graph"
	"github.com/ritzau/shadergraph/pkg/recipe"
	"github.com/ritzau/shadergraph/pkg/rewrite"
	"github.com/ritzau/shadergraph/pkg/shader"
)

// Conversion is the outcome of converting one material, as printed.
type Conversion struct {
	Name   string
	Node   *graph.Node
	Report *rewrite.Report
	Err    error
}

// PrintConversion prints a nicely formatted conversion report with colors
func PrintConversion(w io.Writer, c Conversion) {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintf(w, "Material: %s\n", c.Name)
	bold.Fprintln(w, strings.Repeat("=", len(c.Name)+10))

	rep := c.Report
	if rep != nil {
		fmt.Fprintf(w, "Version: %s  Run: %s\n", rep.Version, shortID(rep.RunID))
		fmt.Fprintf(w, "Nodes: %d -> %d\n", rep.NodesBefore, rep.NodesAfter)
	}

	if c.Err != nil {
		red.Fprintf(w, "FAILED: %v\n", c.Err)
		if rep != nil && rep.Discarded > 0 {
			yellow.Fprintf(w, "Rolled back %d scratch node(s)\n", rep.Discarded)
		}
		return
	}
	fmt.Fprintln(w)

	// Steps that did something
	if rep != nil {
		steps := []struct {
			name  string
			count int
		}{
			{"dissolved", rep.Dissolved},
			{"ungrouped", rep.Ungrouped},
			{"markers", rep.Markers},
			{"filled", rep.Filled},
			{"bridged", rep.Bridged},
			{"canonicalized", rep.Canonicalized},
			{"clones", rep.Clones},
			{"premultiplied", rep.Premultiplied},
			{"helpers", rep.Helpers},
			{"pruned", rep.Pruned},
		}
		for _, s := range steps {
			if s.count > 0 {
				fmt.Fprintf(w, "  %-14s %d\n", s.name, s.count)
			}
		}
		for _, rule := range rep.FoldRules() {
			cyan.Fprintf(w, "  fold %-9s %d\n", rule, rep.Folds[rule])
		}
		for _, cyc := range rep.Cycles {
			yellow.Fprintf(w, "  cycle: %s\n", strings.Join(cyc, " -> "))
		}
		if len(rep.Losses) > 0 {
			fmt.Fprintln(w)
			yellow.Fprintln(w, "APPROXIMATIONS:")
			for _, l := range rep.Losses {
				fmt.Fprintf(w, "  %s\n", l)
			}
		}
		fmt.Fprintln(w)
	}

	// Result node
	if c.Node != nil {
		green.Fprintf(w, "✓ %s\n", c.Node)
		for _, in := range NodeInputs(c.Node) {
			fmt.Fprintf(w, "    %-24s %s\n", in.ID, in.Value)
		}
	}
}

// PrintSummary prints one line per conversion and a colored total.
func PrintSummary(w io.Writer, cs []Conversion) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	failed := 0
	for _, c := range cs {
		if c.Err != nil {
			failed++
			red.Fprintf(w, "✗ %s: %v\n", c.Name, c.Err)
			continue
		}
		folds := 0
		if c.Report != nil {
			folds = c.Report.FoldCount()
		}
		green.Fprintf(w, "✓ %s", c.Name)
		fmt.Fprintf(w, " (%d folds)\n", folds)
	}

	summaryColor := green
	if failed > 0 {
		summaryColor = red
	}
	summaryColor.Fprintf(w, "Summary: %d/%d converted\n", len(cs)-failed, len(cs))
}

// PrintRecipes lists the recipe table.
func PrintRecipes(w io.Writer, t *recipe.Table) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	bold.Fprintf(w, "Recipes for host version %s\n", t.Version())
	for _, kind := range t.Kinds() {
		rec, _ := t.Lookup(kind)
		fmt.Fprintln(w)
		cyan.Fprintln(w, kind)
		for _, e := range rec.Entries {
			fmt.Fprintf(w, "  %-24s <- %s\n", e.Target, e.Term)
		}
		for _, a := range rec.Attributes {
			fmt.Fprintf(w, "  [%s] from %s\n", a.Name, a.FromProp)
		}
		if rec.Loss != "" {
			yellow.Fprintf(w, "  loss: %s\n", rec.Loss)
		}
	}
}

// PrintRenames lists the socket rename table.
func PrintRenames(w io.Writer, renames []shader.Rename) {
	bold := color.New(color.Bold)
	bold.Fprintln(w, "Socket renames")
	for _, r := range renames {
		fmt.Fprintf(w, "  %-22s -> %-22s since %s\n", r.Generic, r.Concrete, r.Since)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
