package world

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidLayout is returned when a map layout fails validation.
var ErrInvalidLayout = errors.New("invalid map layout")

// MapLayout is the JSON-serializable definition of a skirmish map.
type MapLayout struct {
	Name    string   `json:"name"`
	Terrain string   `json:"terrain"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Tiles   []string `json:"tiles"`
	Heights []string `json:"heights,omitempty"` // optional, one digit per cell
	Spawns  [][2]int `json:"spawns"`
}

// LoadMapLayout parses a MapLayout from JSON bytes.
func LoadMapLayout(data []byte) (*MapLayout, error) {
	var layout MapLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("parse map layout: %w", err)
	}
	if layout.Width <= 0 || layout.Height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidLayout, layout.Width, layout.Height)
	}
	if len(layout.Tiles) != layout.Height {
		return nil, fmt.Errorf("%w: tile rows (%d) != declared height (%d)", ErrInvalidLayout, len(layout.Tiles), layout.Height)
	}
	if layout.Heights != nil && len(layout.Heights) != layout.Height {
		return nil, fmt.Errorf("%w: height rows (%d) != declared height (%d)", ErrInvalidLayout, len(layout.Heights), layout.Height)
	}
	if _, ok := terrainNames[layout.Terrain]; !ok && layout.Terrain != "" {
		return nil, fmt.Errorf("%w: unknown terrain %q", ErrInvalidLayout, layout.Terrain)
	}
	return &layout, nil
}

// ToMap converts a MapLayout into a Map.
func (l *MapLayout) ToMap() *Map {
	m := NewMap(l.Name, l.Width, l.Height, terrainNames[l.Terrain])
	for y, row := range l.Tiles {
		for x, ch := range row {
			if x >= l.Width {
				break
			}
			m.Set(CPos{X: x, Y: y}, Tile{Kind: charToTile(ch)})
		}
	}
	for y, row := range l.Heights {
		for x, ch := range row {
			if x >= l.Width {
				break
			}
			if ch >= '0' && ch <= '9' {
				c := CPos{X: x, Y: y}
				t := m.Get(c)
				t.Height = uint8(ch - '0')
				m.Set(c, t)
			}
		}
	}
	return m
}

// SpawnCells returns the player start cells.
func (l *MapLayout) SpawnCells() []CPos {
	cells := make([]CPos, 0, len(l.Spawns))
	for _, s := range l.Spawns {
		cells = append(cells, CPos{X: s[0], Y: s[1]})
	}
	return cells
}

// ParseTerrain returns the terrain type with the given name.
func ParseTerrain(name string) (TerrainType, bool) {
	t, ok := terrainNames[name]
	return t, ok
}

var terrainNames = map[string]TerrainType{
	"temperate": TerrainTemperate,
	"snow":      TerrainSnow,
	"desert":    TerrainDesert,
	"volcanic":  TerrainVolcanic,
}

func charToTile(ch rune) TileKind {
	switch ch {
	case '.':
		return TileClear
	case ',':
		return TileRough
	case '#':
		return TileRock
	case '~':
		return TileWater
	case '=':
		return TileRoad
	case '$':
		return TileOre
	case '^':
		return TileCliff
	default:
		return TileVoid
	}
}
