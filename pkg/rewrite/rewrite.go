// Package rewrite collapses the shader graph feeding a surface input into a
// single canonical Principled node.
//
// Convert runs these steps in order, each on the current set of nodes that
// feed the surface input:
//
//  1. Dissolve muted and reroute nodes, keeping the graph connected.
//  2. Ungroup shader-carrying groups until none are left.
//  3. Dissolve whatever ungrouping exposed.
//  4. Tag linked blend factors with a marker node.
//  5. Fill unlinked shader inputs with an explicit zero.
//  6. Bridge non-shader outputs into shader inputs with an Emission node.
//  7. Replace every shader node with a Principled node via the recipe table.
//  8. Clone Principled nodes that feed more than one consumer.
//  9. Fold emission strength into the emission color.
//  10. Fold blend nodes pairwise until one Principled node remains.
//  11. Check that the surface is fed by exactly one Principled node.
//
// The context and the node budget are checked between steps and between
// folds, never in the middle of one.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ritzau/shadergraph/pkg/cycles"
	"github.com/ritzau/shadergraph/pkg/graph"
	"github.com/ritzau/shadergraph/pkg/logging"
	"github.com/ritzau/shadergraph/pkg/recipe"
	"github.com/ritzau/shadergraph/pkg/shader"
)

var (
	// ErrIncomplete means the surface was not reduced to one canonical node.
	// It indicates a bug in the engine, not bad input.
	ErrIncomplete = errors.New("rewrite did not converge to a single canonical node")

	// ErrBudgetExceeded is returned when the tree grows past Options.MaxNodes
	// or groups nest deeper than Options.MaxGroupDepth.
	ErrBudgetExceeded = errors.New("rewrite budget exceeded")

	// ErrEmptySurface is returned when nothing is linked into the surface.
	ErrEmptySurface = errors.New("surface input is not linked")

	// ErrVersionMismatch is returned when the tree and the recipe table were
	// built for different host versions.
	ErrVersionMismatch = errors.New("tree and recipe table versions differ")
)

// MarkerLabel tags the reroute inserted in front of a linked blend factor.
const MarkerLabel = "Blend Factor"

// DefaultMaxGroupDepth bounds the ungroup fixed point.
const DefaultMaxGroupDepth = 64

// Options tune a Converter. The zero value means no node budget.
type Options struct {
	// MaxNodes aborts a conversion once the tree holds more nodes. Zero
	// disables the check.
	MaxNodes int

	// MaxGroupDepth bounds the number of ungroup passes.
	MaxGroupDepth int
}

// Converter rewrites shader trees. It holds no per-run state and may be
// shared between goroutines as long as each works on its own tree.
type Converter struct {
	table *recipe.Table
	opts  Options
}

// New creates a converter using table.
func New(table *recipe.Table, opts Options) *Converter {
	if opts.MaxGroupDepth <= 0 {
		opts.MaxGroupDepth = DefaultMaxGroupDepth
	}
	return &Converter{table: table, opts: opts}
}

// Table returns the recipe table in use.
func (c *Converter) Table() *recipe.Table { return c.table }

// Convert rewrites everything feeding surface into one Principled node and
// returns it. Scratch nodes created by a failed run are deleted again;
// structural changes already made stay, so callers wanting atomicity should
// convert a Clone of the tree.
func (c *Converter) Convert(ctx context.Context, t *graph.Tree, surface *graph.Socket) (*graph.Node, *Report, error) {
	if err := c.validate(t, surface); err != nil {
		return nil, nil, err
	}

	var (
		result *graph.Node
		report = newReport(t)
	)
	err := logging.Run(ctx, "convert", func(ctx context.Context) error {
		report.RunID = logging.GetRunID(ctx)
		start := time.Now()
		defer func() { report.Duration = time.Since(start) }()

		r := &run{
			conv:    c,
			tree:    t,
			surface: surface,
			report:  report,
			scope:   t.Scope(),
		}
		var err error
		result, err = r.execute(ctx)
		r.finish(err)
		report.NodesAfter = t.Len()
		return err
	}, "tree", t.Name, "version", t.Version().String())
	if err != nil {
		return nil, report, err
	}
	return result, report, nil
}

func (c *Converter) validate(t *graph.Tree, surface *graph.Socket) error {
	if t == nil || surface == nil {
		return fmt.Errorf("%w: nil tree or surface", graph.ErrInvalidOperation)
	}
	if surface.IsOutput() || surface.Kind() != shader.KindShader {
		return fmt.Errorf("%w: surface %s must be a shader input", graph.ErrInvalidOperation, surface)
	}
	if surface.Node().Tree() != t || !surface.Node().Alive() {
		return fmt.Errorf("%w: surface %s does not belong to tree %q", graph.ErrInvalidOperation, surface, t.Name)
	}
	if t.Version() != c.table.Version() {
		return fmt.Errorf("%w: tree %s, table %s", ErrVersionMismatch, t.Version(), c.table.Version())
	}
	return nil
}

// run holds the state of one Convert call.
type run struct {
	conv    *Converter
	tree    *graph.Tree
	surface *graph.Socket
	report  *Report
	scope   *graph.Scope
}

type step struct {
	name string
	fn   func(context.Context) error
}

func (r *run) execute(ctx context.Context) (*graph.Node, error) {
	if !r.surface.IsLinked() {
		return nil, ErrEmptySurface
	}

	for _, cyc := range cycles.FindCyclesWithin(r.tree, r.descendants()) {
		r.report.Cycles = append(r.report.Cycles, cyc.Labels())
		logging.WarnContext(ctx, "cycle among surface nodes", "nodes", len(cyc.Nodes))
	}

	steps := []step{
		{"dissolve", r.dissolve},
		{"ungroup", r.ungroup},
		{"dissolve exposed", r.dissolve},
		{"mark factors", r.markFactors},
		{"fill shader inputs", r.fillShaderInputs},
		{"bridge", r.bridge},
		{"canonicalize", r.canonicalize},
		{"unique", r.unique},
		{"premultiply emission", r.premultiplyEmission},
		{"fold", r.fold},
	}
	for _, s := range steps {
		if err := r.check(ctx); err != nil {
			return nil, fmt.Errorf("before %s: %w", s.name, err)
		}
		if err := s.fn(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		logging.DebugContext(ctx, "step done", "step", s.name, "nodes", r.tree.Len())
	}
	return r.verify()
}

// check enforces cancellation and the node budget.
func (r *run) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if limit := r.conv.opts.MaxNodes; limit > 0 && r.tree.Len() > limit {
		return fmt.Errorf("%w: %d nodes, limit %d", ErrBudgetExceeded, r.tree.Len(), limit)
	}
	return nil
}

// finish settles the scope: on success unused scratch nodes are pruned and
// the rest kept, on failure every scratch node is deleted.
func (r *run) finish(err error) {
	if err == nil {
		r.report.Pruned += graph.Prune(r.scope.Created(), nil)
		r.scope.Keep(r.scope.Created()...)
	}
	r.report.Discarded = r.scope.Close()
}

// verify checks that the surface is fed directly by a canonical node and
// that no other shader node is left upstream of it.
func (r *run) verify() (*graph.Node, error) {
	p := r.surface.Link()
	if p == nil || !p.Node().Kind().IsCanonical() {
		return nil, fmt.Errorf("%w: surface fed by %v", ErrIncomplete, p)
	}
	for _, n := range p.Node().Descendants() {
		if n.Kind().IsShader() {
			return nil, fmt.Errorf("%w: %s left upstream", ErrIncomplete, n)
		}
	}
	return p.Node(), nil
}

func (r *run) descendants() []*graph.Node {
	return r.surface.Descendants()
}

func (r *run) isMarker(n *graph.Node) bool {
	return n.Kind() == shader.KindReroute && n.Label == MarkerLabel
}

// relink moves every consumer of from over to to.
func (r *run) relink(from, to *graph.Socket) error {
	for _, c := range from.Connections() {
		if err := r.tree.Link(to, c); err != nil {
			return err
		}
	}
	return nil
}

// remove deletes n and prunes whatever fed it and became unused.
func (r *run) remove(n *graph.Node) {
	children, _ := n.Delete()
	r.report.Pruned += graph.Prune(children, nil)
}
