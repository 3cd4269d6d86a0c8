package rewrite

import (
	"sort"
	"time"

	"github.com/ritzau/shadergraph/pkg/graph"
)

// FoldRule names the rule that folded a blend node.
type FoldRule string

const (
	FoldSelf        FoldRule = "self"
	FoldConstant    FoldRule = "constant-factor"
	FoldTransparent FoldRule = "transparent"
	FoldFresnel     FoldRule = "fresnel"
	FoldSubsurface  FoldRule = "subsurface"
	FoldMix         FoldRule = "mix"
	FoldAddEmission FoldRule = "add-emission"
	FoldAdd         FoldRule = "add"
)

// Report carries metrics about one conversion.
type Report struct {
	RunID    string        `yaml:"run_id"`
	Tree     string        `yaml:"tree"`
	Version  string        `yaml:"version"`
	Duration time.Duration `yaml:"duration"`

	NodesBefore int `yaml:"nodes_before"`
	NodesAfter  int `yaml:"nodes_after"`

	Dissolved     int `yaml:"dissolved"`
	Ungrouped     int `yaml:"ungrouped"`
	UngroupPasses int `yaml:"ungroup_passes"`
	Markers       int `yaml:"markers"`
	Filled        int `yaml:"filled"`
	Bridged       int `yaml:"bridged"`
	Canonicalized int `yaml:"canonicalized"`
	Clones        int `yaml:"clones"`
	Premultiplied int `yaml:"premultiplied"`
	Helpers       int `yaml:"helpers"`
	Pruned        int `yaml:"pruned"`
	Discarded     int `yaml:"discarded"`

	Folds  map[FoldRule]int `yaml:"folds,omitempty"`
	Losses []string         `yaml:"losses,omitempty"`
	Cycles [][]string       `yaml:"cycles,omitempty"`
}

func newReport(t *graph.Tree) *Report {
	return &Report{
		Tree:        t.Name,
		Version:     t.Version().String(),
		NodesBefore: t.Len(),
		Folds:       make(map[FoldRule]int),
	}
}

// FoldCount returns the total number of folds.
func (r *Report) FoldCount() int {
	total := 0
	for _, n := range r.Folds {
		total += n
	}
	return total
}

// FoldRules returns the rules that fired, sorted by name.
func (r *Report) FoldRules() []FoldRule {
	rules := make([]FoldRule, 0, len(r.Folds))
	for rule := range r.Folds {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i] < rules[j] })
	return rules
}

func (r *Report) addLoss(loss string) {
	if loss == "" {
		return
	}
	for _, l := range r.Losses {
		if l == loss {
			return
		}
	}
	r.Losses = append(r.Losses, loss)
}
