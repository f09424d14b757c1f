package world

// TerrainType determines the visual palette for terrain tiles.
type TerrainType uint8

const (
	TerrainTemperate TerrainType = iota // green/brown
	TerrainSnow                         // cyan/white
	TerrainDesert                       // yellow/brown
	TerrainVolcanic                     // red/black
)

// TileKind represents the surface type of a cell.
type TileKind uint8

const (
	TileVoid  TileKind = iota // outside the playable map
	TileClear                 // open ground
	TileRough                 // rough ground, passable
	TileRock                  // impassable rock
	TileWater                 // water
	TileRoad                  // paved road
	TileOre                   // harvestable ore field
	TileCliff                 // elevation change
)

// Tile represents a single map cell.
type Tile struct {
	Kind   TileKind
	Height uint8 // elevation in HeightStep units
}

// Map is a 2D grid of terrain tiles.
type Map struct {
	Name    string
	Terrain TerrainType
	Width   int
	Height  int
	Tiles   []Tile
}

// NewMap creates an empty map filled with clear ground.
func NewMap(name string, w, h int, terrain TerrainType) *Map {
	tiles := make([]Tile, w*h)
	for i := range tiles {
		tiles[i] = Tile{Kind: TileClear}
	}
	return &Map{
		Name:    name,
		Terrain: terrain,
		Width:   w,
		Height:  h,
		Tiles:   tiles,
	}
}

// Contains reports whether c lies inside the map.
func (m *Map) Contains(c CPos) bool {
	return c.X >= 0 && c.X < m.Width && c.Y >= 0 && c.Y < m.Height
}

// Get returns the tile at c. Out-of-bounds returns void.
func (m *Map) Get(c CPos) Tile {
	if !m.Contains(c) {
		return Tile{Kind: TileVoid}
	}
	return m.Tiles[c.Y*m.Width+c.X]
}

// Set writes a tile at c. Out-of-bounds writes are ignored.
func (m *Map) Set(c CPos, t Tile) {
	if m.Contains(c) {
		m.Tiles[c.Y*m.Width+c.X] = t
	}
}

// CenterOfCell returns the center of c raised to the cell's terrain height.
func (m *Map) CenterOfCell(c CPos) WPos {
	p := CenterOfCell(c)
	p.Z = int32(m.Get(c).Height) * HeightStep
	return p
}

// TopLeft returns the world position of the map's top-left corner.
func (m *Map) TopLeft() WPos { return WPos{} }

// BottomRight returns the world position of the map's bottom-right corner.
func (m *Map) BottomRight() WPos {
	return WPos{X: int32(m.Width * TileScale), Y: int32(m.Height * TileScale)}
}

// ClampCell returns c moved to the nearest cell inside the map.
func (m *Map) ClampCell(c CPos) CPos {
	c.X = clamp(c.X, 0, m.Width-1)
	c.Y = clamp(c.Y, 0, m.Height-1)
	return c
}

// IsPassable returns true if ground units can occupy c.
func (m *Map) IsPassable(c CPos) bool {
	switch m.Get(c).Kind {
	case TileClear, TileRough, TileRoad, TileOre:
		return true
	default:
		return false
	}
}

// RaisedRows returns how many rows below a cell can still be drawn over it
// once raised to the highest elevation on the map.
func (m *Map) RaisedRows() int {
	var top int
	for _, t := range m.Tiles {
		top = max(top, int(t.Height))
	}
	return (top*HeightStep + TileScale - 1) / TileScale
}

// Describe returns a human-readable description of a tile.
func (t Tile) Describe() string {
	return tileDescriptions[t.Kind]
}

var tileDescriptions = map[TileKind]string{
	TileVoid:  "Outside the map",
	TileClear: "Clear ground",
	TileRough: "Rough ground",
	TileRock:  "Rock formation",
	TileWater: "Water",
	TileRoad:  "Road",
	TileOre:   "Ore field",
	TileCliff: "Cliff",
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
