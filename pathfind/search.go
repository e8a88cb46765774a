package pathfind

import "github.com/nstehr/deadeye/model"

// Ring returns the cells at exactly Chebyshev distance r from center, walking
// the perimeter clockwise from the top-left corner.
func Ring(center model.Cell, r int) []model.Cell {
	if r <= 0 {
		return []model.Cell{center}
	}
	out := make([]model.Cell, 0, 8*r)
	x0, y0 := center.X-r, center.Y-r
	x1, y1 := center.X+r, center.Y+r
	for x := x0; x < x1; x++ {
		out = append(out, model.Cell{X: x, Y: y0})
	}
	for y := y0; y < y1; y++ {
		out = append(out, model.Cell{X: x1, Y: y})
	}
	for x := x1; x > x0; x-- {
		out = append(out, model.Cell{X: x, Y: y1})
	}
	for y := y1; y > y0; y-- {
		out = append(out, model.Cell{X: x0, Y: y})
	}
	return out
}

// Scorer rates a candidate cell. ok=false rejects the cell outright.
type Scorer func(c model.Cell) (score int, ok bool)

// BestInRings scans perimeters from minR to maxR around center and returns
// the highest scoring cell. Ties keep the earliest cell visited, so closer
// rings win. With stopAtFirstRing set, the scan ends after the first ring
// that produced any acceptable cell.
func BestInRings(center model.Cell, minR, maxR int, stopAtFirstRing bool, score Scorer) (model.Cell, bool) {
	var best model.Cell
	bestScore := 0
	found := false
	for r := minR; r <= maxR; r++ {
		for _, c := range Ring(center, r) {
			s, ok := score(c)
			if !ok {
				continue
			}
			if !found || s > bestScore {
				best, bestScore, found = c, s, true
			}
		}
		if found && stopAtFirstRing {
			break
		}
	}
	return best, found
}

// Flood runs a breadth-first search over passable cells from start and
// returns the first cell accepted by match. At most limit cells are visited.
func Flood(g Grid, start model.Cell, limit int, match func(model.Cell) bool) (model.Cell, bool) {
	if limit <= 0 {
		limit = DefaultBudget
	}
	seen := map[model.Cell]bool{start: true}
	queue := []model.Cell{start}
	for visited := 0; len(queue) > 0 && visited < limit; visited++ {
		cur := queue[0]
		queue = queue[1:]
		if match(cur) {
			return cur, true
		}
		for _, d := range neighbours[:4] {
			next := cur.Add(d)
			if seen[next] || !g.InBounds(next) || !g.Passable(next) {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return model.Cell{}, false
}
