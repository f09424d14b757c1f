package world

import "math/rand/v2"

// GenerateMap builds a deterministic skirmish map from seed.
func GenerateMap(name string, seed uint64, w, h int, terrain TerrainType) *Map {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	m := NewMap(name, w, h, terrain)

	// Scatter rough ground (10-15%)
	roughDensity := 0.10 + rng.Float64()*0.05
	scatter(m, rng, TileClear, TileRough, roughDensity)

	// Scatter rocks (4-8%)
	rockDensity := 0.04 + rng.Float64()*0.04
	scatter(m, rng, TileClear, TileRock, rockDensity)

	// Raised plateaus, ringed by cliffs
	numPlateaus := 1 + rng.IntN(3)
	for i := 0; i < numPlateaus; i++ {
		pw := 4 + rng.IntN(5)
		ph := 3 + rng.IntN(4)
		if w <= pw+2 || h <= ph+2 {
			break
		}
		px := 1 + rng.IntN(w-pw-1)
		py := 1 + rng.IntN(h-ph-1)
		placePlateau(m, px, py, pw, ph)
	}

	// Ore fields
	numFields := 2 + rng.IntN(2)
	for i := 0; i < numFields; i++ {
		placeOreField(m, rng.IntN(w), rng.IntN(h), 2+rng.IntN(2), rng)
	}

	// One road across the map
	roadY := h / 2
	for x := 0; x < w; x++ {
		c := CPos{X: x, Y: roadY}
		if m.Get(c).Height == 0 {
			m.Set(c, Tile{Kind: TileRoad})
		}
	}

	// Water only on temperate maps
	if terrain == TerrainTemperate {
		lakeX, lakeY := rng.IntN(w), rng.IntN(h)
		placeBlob(m, lakeX, lakeY, 2+rng.IntN(2), TileWater)
	}
	return m
}

func scatter(m *Map, rng *rand.Rand, from, to TileKind, density float64) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := CPos{X: x, Y: y}
			if m.Get(c).Kind == from && rng.Float64() < density {
				m.Set(c, Tile{Kind: to})
			}
		}
	}
}

// placePlateau raises a rectangle one height level and marks its rim as cliff.
func placePlateau(m *Map, x, y, w, h int) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			kind := TileClear
			if dy == 0 || dy == h-1 || dx == 0 || dx == w-1 {
				kind = TileCliff
			}
			m.Set(CPos{X: x + dx, Y: y + dy}, Tile{Kind: kind, Height: 1})
		}
	}
}

func placeOreField(m *Map, cx, cy, r int, rng *rand.Rand) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r || rng.Float64() < 0.25 {
				continue
			}
			c := CPos{X: cx + dx, Y: cy + dy}
			if m.IsPassable(c) {
				t := m.Get(c)
				t.Kind = TileOre
				m.Set(c, t)
			}
		}
	}
}

func placeBlob(m *Map, cx, cy, r int, kind TileKind) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c := CPos{X: cx + dx, Y: cy + dy}
				if m.Get(c).Height == 0 {
					m.Set(c, Tile{Kind: kind})
				}
			}
		}
	}
}
