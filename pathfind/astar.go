// Package pathfind holds the bounded grid searches the bot runs inside a
// simulation tick. Every search has a hard node cap so a tick can never stall.
package pathfind

import (
	"container/heap"

	"github.com/nstehr/deadeye/model"
)

const (
	// StraightCost and DiagonalCost keep the 1.5x diagonal penalty in integers.
	StraightCost = 10
	DiagonalCost = 15

	// DefaultBudget is the explored-node cap used when Options.Budget is zero.
	DefaultBudget = 2048
)

// Grid is the map view a search runs over.
type Grid interface {
	InBounds(c model.Cell) bool
	Passable(c model.Cell) bool
}

// Options tunes a single FindPath call.
type Options struct {
	// Budget caps how many nodes are expanded before the search gives up
	// and returns its best partial path.
	Budget int
	// Hazards are known hazard cells (planted mines). When set, every cell
	// within Chebyshev distance 1 of a hazard is treated as blocked.
	Hazards []model.Cell
}

var neighbours = [8]model.Cell{
	{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0},
	{X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: -1},
}

type node struct {
	cell   model.Cell
	g      int
	h      int
	parent *node
	seq    int
	index  int
	closed bool
}

type openSet []*node

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	fi, fj := o[i].g+o[i].h, o[j].g+o[j].h
	if fi != fj {
		return fi < fj
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*o)
	*o = append(*o, n)
}
func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*o = old[:len(old)-1]
	n.index = -1
	return n
}

// Heuristic is the octile distance in path-cost units.
func Heuristic(a, b model.Cell) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	lo, hi := min(dx, dy), max(dx, dy)
	return DiagonalCost*lo + StraightCost*(hi-lo)
}

// FindPath runs a best-first search ordered by cost so far plus heuristic.
// The returned path starts at from. If the goal is not reached within the
// budget, or is unreachable, the path leads to the explored node with the
// smallest heuristic distance to the goal instead. The result is never empty.
func FindPath(g Grid, from, to model.Cell, opts Options) []model.Cell {
	path, _ := search(g, from, to, opts)
	return path
}

// Unreachable reports whether a search proved there is no route: the
// frontier emptied before the goal was reached. A search cut short by its
// budget proves nothing and reports false.
func Unreachable(g Grid, from, to model.Cell, opts Options) bool {
	path, drained := search(g, from, to, opts)
	return drained && !Reached(path, to)
}

func search(g Grid, from, to model.Cell, opts Options) (path []model.Cell, drained bool) {
	budget := opts.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	var hazard map[model.Cell]bool
	if len(opts.Hazards) > 0 {
		hazard = make(map[model.Cell]bool, len(opts.Hazards)*9)
		for _, h := range opts.Hazards {
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					hazard[model.Cell{X: h.X + dx, Y: h.Y + dy}] = true
				}
			}
		}
	}

	passable := func(c model.Cell) bool {
		if !g.InBounds(c) || hazard[c] {
			return false
		}
		return c == to || g.Passable(c)
	}

	start := &node{cell: from, h: Heuristic(from, to)}
	nodes := map[model.Cell]*node{from: start}
	open := &openSet{}
	heap.Push(open, start)
	best := start
	seq := 0

	for expanded := 0; open.Len() > 0 && expanded < budget; expanded++ {
		cur := heap.Pop(open).(*node)
		cur.closed = true
		if cur.h < best.h {
			best = cur
		}
		if cur.cell == to {
			best = cur
			break
		}

		for i, d := range neighbours {
			next := cur.cell.Add(d)
			if !passable(next) {
				continue
			}
			cost := StraightCost
			if i >= 4 {
				// Diagonals may not squeeze between two blocked orthogonals.
				a := model.Cell{X: cur.cell.X + d.X, Y: cur.cell.Y}
				b := model.Cell{X: cur.cell.X, Y: cur.cell.Y + d.Y}
				if !passable(a) && !passable(b) {
					continue
				}
				cost = DiagonalCost
			}
			ng := cur.g + cost
			n, seen := nodes[next]
			if seen {
				if n.closed || ng >= n.g {
					continue
				}
				n.g = ng
				n.parent = cur
				heap.Fix(open, n.index)
				continue
			}
			seq++
			n = &node{cell: next, g: ng, h: Heuristic(next, to), parent: cur, seq: seq}
			nodes[next] = n
			heap.Push(open, n)
		}
	}

	return unwind(best), open.Len() == 0
}

func unwind(n *node) []model.Cell {
	var rev []model.Cell
	for ; n != nil; n = n.parent {
		rev = append(rev, n.cell)
	}
	path := make([]model.Cell, len(rev))
	for i, c := range rev {
		path[len(rev)-1-i] = c
	}
	return path
}

// Reached reports whether path ends at goal.
func Reached(path []model.Cell, goal model.Cell) bool {
	return len(path) > 0 && path[len(path)-1] == goal
}
