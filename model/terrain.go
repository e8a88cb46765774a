package model

// TileKind classifies a single map cell.
type TileKind byte

const (
	Ground  TileKind = 0 // passable
	Water   TileKind = 1 // impassable to ground units
	Blocked TileKind = 2 // rock, tree, cliff face
	Ramp    TileKind = 3 // passable link between elevations
)

// Tile is one map cell. Elevation is only meaningful for Ground and Ramp.
type Tile struct {
	Kind      TileKind `json:"kind"`
	Elevation int8     `json:"elevation"`
}

// Map is the static, row-major tile grid of a match.
type Map struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"tiles"`
}

// InBounds reports whether c lies on the map.
func (m *Map) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < m.Width && c.Y < m.Height
}

// At returns the tile at c. Out-of-bounds cells read as Blocked.
func (m *Map) At(c Cell) Tile {
	if !m.InBounds(c) || len(m.Tiles) != m.Width*m.Height {
		return Tile{Kind: Blocked}
	}
	return m.Tiles[c.Y*m.Width+c.X]
}

// Index returns the row-major index of an in-bounds cell.
func (m *Map) Index(c Cell) int { return c.Y*m.Width + c.X }

// Elevation returns the height level at c.
func (m *Map) Elevation(c Cell) int { return int(m.At(c).Elevation) }

// Walkable reports whether a ground unit can stand on c, ignoring entities.
func (m *Map) Walkable(c Cell) bool {
	k := m.At(c).Kind
	return k == Ground || k == Ramp
}

// Buildable reports whether a building footprint cell may sit on c.
// Ramps are walkable but never buildable.
func (m *Map) Buildable(c Cell) bool {
	return m.At(c).Kind == Ground
}
