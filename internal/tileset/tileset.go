// Package tileset turns CP437 glyphs into palette-indexed terrain and unit sprites.
package tileset

import (
	"image"

	"github.com/spacehole-rogue/skirmish/internal/glyph"
	"github.com/spacehole-rogue/skirmish/internal/render"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

// Unit glyphs.
const (
	GlyphTank     byte = 30  // ▲
	GlyphHarvest  byte = 254 // ■
	GlyphBuilding byte = 127 // ⌂
	GlyphInfantry byte = 'i'
	GlyphCrater   byte = 176 // ░
)

// unitShade is the remap entry used for unit glyphs.
const unitShade = render.RemapStart + render.RemapSize*3/4

type glyphKey struct {
	code   byte
	fg, bg uint8
}

type tileKey struct {
	kind    world.TileKind
	terrain world.TerrainType
	raised  bool
}

// Tileset caches glyph sprites. It is not safe for concurrent use.
type Tileset struct {
	atlas    *glyph.Atlas
	glyphs   map[glyphKey]*render.Sprite
	centered map[glyphKey]*render.Sprite
	tiles    map[tileKey]*render.Sprite
}

// New creates a tileset drawing from atlas.
func New(atlas *glyph.Atlas) *Tileset {
	return &Tileset{
		atlas:    atlas,
		glyphs:   make(map[glyphKey]*render.Sprite),
		centered: make(map[glyphKey]*render.Sprite),
		tiles:    make(map[tileKey]*render.Sprite),
	}
}

// Glyph returns glyph code colored with palette indices fg and bg, anchored
// at its top-left corner. A zero bg leaves the background transparent.
func (ts *Tileset) Glyph(code byte, fg, bg uint8) *render.Sprite {
	k := glyphKey{code: code, fg: fg, bg: bg}
	if s, ok := ts.glyphs[k]; ok {
		return s
	}
	img := image.NewPaletted(image.Rect(0, 0, glyph.Width, glyph.Height), nil)
	for y := 0; y < glyph.Height; y++ {
		for x := 0; x < glyph.Width; x++ {
			if ts.atlas.Covered(code, x, y) {
				img.SetColorIndex(x, y, fg)
			} else {
				img.SetColorIndex(x, y, bg)
			}
		}
	}
	s := &render.Sprite{Image: img}
	ts.glyphs[k] = s
	return s
}

// TileSprite returns the sprite of t on the given terrain, or nil for void cells.
func (ts *Tileset) TileSprite(t world.Tile, terrain world.TerrainType) *render.Sprite {
	if t.Kind == world.TileVoid {
		return nil
	}
	k := tileKey{kind: t.Kind, terrain: terrain, raised: t.Height > 0}
	if s, ok := ts.tiles[k]; ok {
		return s
	}
	code, fg, bg := tileVisuals(t, terrain)
	s := ts.Glyph(code, fg, bg)
	ts.tiles[k] = s
	return s
}

// Centered returns the same art as Glyph anchored at its center. It shares
// the image of the top-left anchored glyph.
func (ts *Tileset) Centered(code byte, fg, bg uint8) *render.Sprite {
	k := glyphKey{code: code, fg: fg, bg: bg}
	if s, ok := ts.centered[k]; ok {
		return s
	}
	g := ts.Glyph(code, fg, bg)
	s := &render.Sprite{Image: g.Image, Anchor: image.Pt(glyph.Width/2, glyph.Height/2)}
	ts.centered[k] = s
	return s
}

// UnitSprite returns a unit glyph in team colors, anchored at its center.
func (ts *Tileset) UnitSprite(code byte) *render.Sprite {
	return ts.Centered(code, unitShade, render.ColorTransparent)
}

// ShadowSprite returns the shadow drawn under units.
func (ts *Tileset) ShadowSprite() *render.Sprite {
	return ts.Centered(GlyphCrater, render.ColorShadow, render.ColorTransparent)
}

// opaque maps CGA black, which is transparent in every palette, to the opaque entry.
func opaque(c uint8) uint8 {
	if c == render.ColorTransparent {
		return render.ColorOpaqueBlack
	}
	return c
}

func tileVisuals(t world.Tile, terrain world.TerrainType) (code byte, fg, bg uint8) {
	switch t.Kind {
	case world.TileClear:
		code, fg, bg = terrainGround(terrain)
	case world.TileRough:
		code, fg, bg = terrainRough(terrain)
	case world.TileRock:
		code, fg, bg = terrainRock(terrain)
	case world.TileWater:
		code, fg, bg = terrainWater(terrain)
	case world.TileRoad:
		code, fg, bg = '=', render.ColorLightGray, render.ColorDarkGray
	case world.TileOre:
		code, fg, bg = '$', render.ColorYellow, render.ColorBrown
	case world.TileCliff:
		code, fg, bg = 178, render.ColorDarkGray, render.ColorBrown // ▓
	default:
		code, fg, bg = ' ', render.ColorTransparent, render.ColorTransparent
	}
	// plateaus read lighter than the lowland around them
	if t.Height > 0 && t.Kind != world.TileCliff {
		fg = brighter(fg)
	}
	return code, opaque(fg), opaque(bg)
}

func terrainGround(terrain world.TerrainType) (byte, uint8, uint8) {
	switch terrain {
	case world.TerrainSnow:
		return '.', render.ColorLightGray, render.ColorWhite
	case world.TerrainDesert:
		return '.', render.ColorBrown, render.ColorYellow
	case world.TerrainVolcanic:
		return '.', render.ColorRed, render.ColorTransparent
	default:
		return '.', render.ColorLightGreen, render.ColorGreen
	}
}

func terrainRough(terrain world.TerrainType) (byte, uint8, uint8) {
	switch terrain {
	case world.TerrainSnow:
		return ',', render.ColorLightCyan, render.ColorWhite
	case world.TerrainDesert:
		return ',', render.ColorBrown, render.ColorYellow
	case world.TerrainVolcanic:
		return ',', render.ColorBrown, render.ColorTransparent
	default:
		return ',', render.ColorBrown, render.ColorGreen
	}
}

func terrainRock(terrain world.TerrainType) (byte, uint8, uint8) {
	switch terrain {
	case world.TerrainSnow:
		return '#', render.ColorWhite, render.ColorCyan
	case world.TerrainVolcanic:
		return '#', render.ColorBrown, render.ColorRed
	default:
		return '#', render.ColorLightGray, render.ColorDarkGray
	}
}

func terrainWater(terrain world.TerrainType) (byte, uint8, uint8) {
	switch terrain {
	case world.TerrainSnow:
		return '~', render.ColorWhite, render.ColorLightBlue // ice floes
	case world.TerrainVolcanic:
		return '~', render.ColorYellow, render.ColorRed // lava
	default:
		return '~', render.WaterStart + render.WaterSize - 1, render.WaterStart + 1
	}
}

// brighter returns the light variant of a dark CGA color.
func brighter(c uint8) uint8 {
	switch {
	case c >= render.ColorBlue && c <= render.ColorBrown:
		return c + 8
	case c == render.ColorLightGray:
		return render.ColorWhite
	case c == render.ColorDarkGray:
		return render.ColorLightGray
	default:
		return c
	}
}
