package cycles

import (
	"sort"

	"gonum.org/v1/gonum/graph"
)

// sccFinder finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in ascending id order so results are stable.
type sccFinder struct {
	g       graph.Directed
	counter int
	stack   []int64
	onStack map[int64]bool
	index   map[int64]int
	low     map[int64]int
	found   [][]int64
}

func newSCCFinder(g graph.Directed) *sccFinder {
	return &sccFinder{
		g:       g,
		onStack: make(map[int64]bool),
		index:   make(map[int64]int),
		low:     make(map[int64]int),
	}
}

// components returns every component with more than one node, plus single
// nodes that link to themselves.
func (f *sccFinder) components() [][]int64 {
	for _, id := range sortedIDs(f.g.Nodes()) {
		if _, seen := f.index[id]; !seen {
			f.connect(id)
		}
	}
	return f.found
}

func (f *sccFinder) connect(id int64) {
	f.index[id] = f.counter
	f.low[id] = f.counter
	f.counter++
	f.stack = append(f.stack, id)
	f.onStack[id] = true

	for _, next := range sortedIDs(f.g.From(id)) {
		if _, seen := f.index[next]; !seen {
			f.connect(next)
			f.low[id] = min(f.low[id], f.low[next])
		} else if f.onStack[next] {
			f.low[id] = min(f.low[id], f.index[next])
		}
	}

	if f.low[id] != f.index[id] {
		return
	}
	var scc []int64
	for {
		top := f.stack[len(f.stack)-1]
		f.stack = f.stack[:len(f.stack)-1]
		f.onStack[top] = false
		scc = append(scc, top)
		if top == id {
			break
		}
	}
	if len(scc) > 1 || f.g.HasEdgeFromTo(id, id) {
		sort.Slice(scc, func(i, j int) bool { return scc[i] < scc[j] })
		f.found = append(f.found, scc)
	}
}

func sortedIDs(it graph.Nodes) []int64 {
	var ids []int64
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
