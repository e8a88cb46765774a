package model

// Cell is a single map grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Cell) Add(o Cell) Cell { return Cell{X: c.X + o.X, Y: c.Y + o.Y} }
func (c Cell) Sub(o Cell) Cell { return Cell{X: c.X - o.X, Y: c.Y - o.Y} }

// DistSq is the squared euclidean distance, used for nearest-neighbour
// comparisons where the root is never needed.
func (c Cell) DistSq(o Cell) int {
	dx := c.X - o.X
	dy := c.Y - o.Y
	return dx*dx + dy*dy
}

// Chebyshev returns the king-move distance between two cells.
func (c Cell) Chebyshev(o Cell) int {
	return max(abs(c.X-o.X), abs(c.Y-o.Y))
}

// Manhattan returns the taxicab distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Within reports whether o lies inside the euclidean radius r of c.
func (c Cell) Within(o Cell, r int) bool {
	return c.DistSq(o) <= r*r
}

// Rect is an axis-aligned block of cells anchored at its top-left corner.
type Rect struct {
	Origin Cell
	Size   int
}

// Contains reports whether c lies inside the rect.
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.Origin.X && c.X < r.Origin.X+r.Size &&
		c.Y >= r.Origin.Y && c.Y < r.Origin.Y+r.Size
}

// Center returns the cell nearest the middle of the rect.
func (r Rect) Center() Cell {
	return Cell{X: r.Origin.X + r.Size/2, Y: r.Origin.Y + r.Size/2}
}

// Nearest returns the cell of the rect closest to c.
func (r Rect) Nearest(c Cell) Cell {
	return Cell{
		X: clampInt(c.X, r.Origin.X, r.Origin.X+r.Size-1),
		Y: clampInt(c.Y, r.Origin.Y, r.Origin.Y+r.Size-1),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
