package render

import "github.com/spacehole-rogue/skirmish/internal/world"

// Tileset maps terrain tiles to sprites. Sprites are anchored at their
// top-left corner and span one cell.
type Tileset interface {
	TileSprite(t world.Tile, terrain world.TerrainType) *Sprite
}

// TerrainRenderer draws the map cells under the viewport.
type TerrainRenderer struct {
	m       *world.Map
	tileset Tileset
	palette *PaletteReference

	// extra rows below the view that can still reach it when raised
	raisedRows int
}

// NewTerrainRenderer creates the terrain pass for m.
func NewTerrainRenderer(m *world.Map, ts Tileset, pal *PaletteReference) *TerrainRenderer {
	return &TerrainRenderer{
		m:          m,
		tileset:    ts,
		palette:    pal,
		raisedRows: m.RaisedRows(),
	}
}

// Draw issues one sprite per visible cell, back row first. It returns the
// number of cells drawn.
func (tr *TerrainRenderer) Draw(wr *WorldRenderer) int {
	vp := wr.Viewport()
	tl := tr.m.ClampCell(vp.TopLeft().Cell())
	br := vp.BottomRight().Cell()
	br.Y += tr.raisedRows
	br = tr.m.ClampCell(br)

	s := wr.Surface()
	drawn := 0
	for y := tl.Y; y <= br.Y; y++ {
		for x := tl.X; x <= br.X; x++ {
			c := world.CPos{X: x, Y: y}
			t := tr.m.Get(c)
			sprite := tr.tileset.TileSprite(t, tr.m.Terrain)
			if sprite == nil {
				continue
			}
			pos := world.TopLeftOfCell(c)
			pos.Z = int32(t.Height) * world.HeightStep
			scale := float32(wr.Transform().TileSize) / float32(sprite.Size().X)
			s.DrawSprite(sprite, wr.ScreenPosition(pos), tr.palette, scale, 1)
			drawn++
		}
	}
	return drawn
}
