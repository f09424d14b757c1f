package game

import (
	"image"
	"image/color"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacehole-rogue/skirmish/internal/glyph"
	"github.com/spacehole-rogue/skirmish/internal/render"
	"github.com/spacehole-rogue/skirmish/internal/tileset"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

func TestInitRegistersPalettes(t *testing.T) {
	s, blue, red := newTestSim(t)
	s.AddPalette(PaletteFromRemap{Name: "neutral", Remap: render.CGA[render.ColorLightGray]})
	wr, _ := newTestRenderer(t, s, render.Settings{})

	for _, name := range []string{PaletteTerrain, PaletteEffect, PaletteShadow, "neutral", blue.PaletteName(), red.PaletteName()} {
		_, err := wr.Palette(name)
		assert.NoError(t, err, name)
	}
}

func TestDrawUnitsAndTerrain(t *testing.T) {
	s, blue, red := newTestSim(t)
	s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	s.Spawn(UnitTank, red, world.CPos{X: 4, Y: 2})    // in sight
	s.Spawn(UnitTank, red, world.CPos{X: 13, Y: 13}) // under the shroud
	wr, surf := newTestRenderer(t, s, render.Settings{})

	require.NoError(t, wr.Draw())

	assert.Equal(t, 256, wr.Stats().TerrainCells)
	assert.Equal(t, 256, surf.sprites(PaletteTerrain))
	assert.Equal(t, 1, surf.sprites(blue.PaletteName()))
	assert.Equal(t, 1, surf.sprites(red.PaletteName()), "the far tank is hidden")
	assert.Equal(t, 2, surf.sprites(PaletteShadow))
}

func TestShadowsDrawBeforeUnits(t *testing.T) {
	s, blue, _ := newTestSim(t)
	s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	wr, surf := newTestRenderer(t, s, render.Settings{})
	require.NoError(t, wr.Draw())

	shadow := slices.IndexFunc(surf.calls, func(c drawCall) bool { return c.palette == PaletteShadow })
	unit := slices.IndexFunc(surf.calls, func(c drawCall) bool { return c.palette == blue.PaletteName() })
	require.NotEqual(t, -1, shadow)
	assert.Less(t, shadow, unit)
}

func TestShroudOverlay(t *testing.T) {
	s, blue, _ := newTestSim(t)
	tank := s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	wr, surf := newTestRenderer(t, s, render.Settings{})

	require.NoError(t, wr.Draw())
	unexplored := surf.colored("fill", fogUnexplored)
	assert.Positive(t, unexplored)
	assert.Zero(t, surf.colored("fill", fogHidden))

	tankCell := wr.ScreenPosition(world.TopLeftOfCell(world.CPos{X: 2, Y: 2}))
	assert.Zero(t, surf.count(func(c drawCall) bool { return c.kind == "fill" && c.at == tankCell }))

	// driving away leaves explored cells behind
	s.Select(tank)
	s.IssueMove(world.CenterOfCell(world.CPos{X: 14, Y: 2}))
	for range 300 {
		s.Tick()
	}
	surf.reset()
	require.NoError(t, wr.Draw())
	assert.Positive(t, surf.colored("fill", fogHidden))
	assert.Less(t, surf.colored("fill", fogUnexplored), unexplored)

	// fog is drawn inside the scissor
	last := slices.IndexFunc(surf.calls, func(c drawCall) bool { return c.kind == "unscissor" })
	for i, c := range surf.calls {
		if c.kind == "fill" && (c.color == fogHidden || c.color == fogUnexplored) {
			assert.Less(t, i, last)
		}
	}
}

func TestDisabledShroudDrawsNoFog(t *testing.T) {
	s, blue, red := newTestSim(t)
	s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	s.Spawn(UnitTank, red, world.CPos{X: 13, Y: 13})
	blue.Shroud.Disable(true)
	wr, surf := newTestRenderer(t, s, render.Settings{})

	require.NoError(t, wr.Draw())
	assert.Zero(t, surf.colored("fill", fogUnexplored))
	assert.Equal(t, 1, surf.sprites(red.PaletteName()))
}

func TestSelectionAndRolloverOverlays(t *testing.T) {
	s, blue, red := newTestSim(t)
	mine := s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	theirs := s.Spawn(UnitInfantry, red, world.CPos{X: 4, Y: 2})
	s.Select(mine)
	s.SetRolloverAt(screenPx(s, theirs))
	s.Damage(theirs, 30) // a quarter left

	wr, surf := newTestRenderer(t, s, render.Settings{ShowRollovers: true})
	require.NoError(t, wr.Draw())

	unscissor := slices.IndexFunc(surf.calls, func(c drawCall) bool { return c.kind == "unscissor" })
	text := slices.IndexFunc(surf.calls, func(c drawCall) bool { return c.kind == "text" && c.text == "Rifleman" })
	require.NotEqual(t, -1, text)
	assert.Greater(t, text, unscissor, "overlays are drawn outside the scissor")

	assert.Equal(t, 4, surf.colored("line", selectionColor), "selection box")
	assert.Equal(t, 2, surf.colored("fill", healthBack))
	assert.Equal(t, 1, surf.colored("fill", healthGood))
	assert.Equal(t, 1, surf.colored("fill", healthCritical))
	assert.Equal(t, 6, wr.Stats().Overlays)
}

func TestRolloverHiddenWhenSelected(t *testing.T) {
	s, blue, _ := newTestSim(t)
	mine := s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	s.Select(mine)
	s.SetRolloverAt(screenPx(s, mine))

	wr, surf := newTestRenderer(t, s, render.Settings{ShowRollovers: true})
	require.NoError(t, wr.Draw())
	assert.Zero(t, surf.count(func(c drawCall) bool { return c.kind == "text" }))
}

func TestContrailAndOrderPreview(t *testing.T) {
	s, blue, _ := newTestSim(t)
	scout := s.Spawn(UnitScout, blue, world.CPos{X: 1, Y: 1})
	tank := s.Spawn(UnitTank, blue, world.CPos{X: 1, Y: 3})
	s.Select(scout)
	s.IssueMove(world.CenterOfCell(world.CPos{X: 10, Y: 1}))
	for range 4 {
		s.Tick()
	}

	s.Select(scout, tank)
	s.Orders().SetTarget(world.CenterOfCell(world.CPos{X: 6, Y: 6}))
	wr, surf := newTestRenderer(t, s, render.Settings{})
	require.NoError(t, wr.Draw())

	assert.Equal(t, 3, surf.colored("line", contrailColor))
	assert.Equal(t, 2, surf.colored("line", orderLineColor))

	ghost := surf.count(func(c drawCall) bool {
		return c.kind == "sprite" && c.palette == blue.PaletteName() && c.alpha == ghostAlpha
	})
	assert.Equal(t, 1, ghost, "only sprite units leave a ghost")

	unscissor := slices.IndexFunc(surf.calls, func(c drawCall) bool { return c.kind == "unscissor" })
	cross := 0
	for _, c := range surf.calls[:unscissor] {
		if c.kind == "line" && c.color == cursorColor {
			cross++
		}
	}
	assert.Equal(t, 2, cross)
}

func TestVoxelUnitsRasterize(t *testing.T) {
	s, blue, _ := newTestSim(t)
	s.Spawn(UnitDepot, blue, world.CPos{X: 5, Y: 5})
	wr, surf := newTestRenderer(t, s, render.Settings{})

	require.NoError(t, wr.Draw())
	assert.Equal(t, 1, surf.sprites(blue.PaletteName()))
}

func TestEffectsDrawOnTop(t *testing.T) {
	s, blue, red := newTestSim(t)
	gun := s.Spawn(UnitTank, blue, world.CPos{X: 1, Y: 1})
	s.Spawn(UnitTank, red, world.CPos{X: 4, Y: 4})
	s.Fire(gun, world.CenterOfCell(world.CPos{X: 4, Y: 1}), 10)
	s.Tick()
	s.Tick()

	wr, surf := newTestRenderer(t, s, render.Settings{})
	require.NoError(t, wr.Draw())

	require.Equal(t, 2, wr.Stats().Effects, "shell sprite and tracer")
	shell := slices.IndexFunc(surf.calls, func(c drawCall) bool { return c.palette == PaletteEffect })
	lastUnit := -1
	for i, c := range surf.calls {
		if c.palette == red.PaletteName() || c.palette == blue.PaletteName() {
			lastUnit = i
		}
	}
	require.NotEqual(t, -1, shell)
	assert.Greater(t, shell, lastUnit)
	assert.Equal(t, 1, surf.colored("line", tracerColor))
}

func TestPaletteModifiers(t *testing.T) {
	s, blue, red := newTestSim(t)
	enemy := s.Spawn(UnitTank, red, world.CPos{X: 4, Y: 4})
	s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	wr, _ := newTestRenderer(t, s, render.Settings{})

	require.NoError(t, wr.Draw())
	base, err := wr.Palettes().Bank().GetPalette(red.PaletteName())
	require.NoError(t, err)
	assert.Equal(t, base[render.RemapStart], entry(t, wr, red.PaletteName(), render.RemapStart))

	s.Damage(enemy, 1)
	require.NoError(t, wr.Draw())
	flashed := entry(t, wr, red.PaletteName(), render.RemapStart)
	assert.Greater(t, flashed.R, base[render.RemapStart].R, "hit flash")

	terrain, err := wr.Palettes().Bank().GetPalette(PaletteTerrain)
	require.NoError(t, err)
	for range rotationPeriod {
		s.Tick()
	}
	require.NoError(t, wr.Draw())
	assert.Equal(t, base[render.RemapStart], entry(t, wr, red.PaletteName(), render.RemapStart), "flash wore off")
	assert.Equal(t, terrain[render.WaterStart+render.WaterSize-1], entry(t, wr, PaletteTerrain, render.WaterStart), "water cycles")

	blue.Defeated = true
	require.NoError(t, wr.Draw())
	c := entry(t, wr, red.PaletteName(), render.RemapStart)
	assert.Equal(t, c.R, c.G, "defeat grays out the world")
	assert.Equal(t, c.G, c.B)
}

// entry returns color i of the named palette as uploaded to the bank.
func entry(t *testing.T, wr *render.WorldRenderer, name string, i int) color.RGBA {
	t.Helper()
	bank := wr.Palettes().Bank()
	idx, err := bank.GetPaletteIndex(name)
	require.NoError(t, err)
	return bank.Row(idx)[i]
}

func TestShellmapHidden(t *testing.T) {
	s, blue, _ := newTestSim(t)
	s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	s.SetType(render.WorldTypeShellmap)
	wr, surf := newTestRenderer(t, s, render.Settings{})

	require.NoError(t, wr.Draw())
	assert.Zero(t, surf.count(func(c drawCall) bool { return c.kind == "sprite" }))
}

func TestRolloverSkipsEnemiesUnderShroud(t *testing.T) {
	s, blue, red := newTestSim(t)
	s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	fogged := s.Spawn(UnitTank, red, world.CPos{X: 13, Y: 13})
	s.SetRolloverAt(screenPx(s, fogged))
	assert.Empty(t, s.Rollover())

	wr, surf := newTestRenderer(t, s, render.Settings{ShowRollovers: true})
	require.NoError(t, wr.Draw())
	assert.Zero(t, surf.count(func(c drawCall) bool { return c.kind == "text" }))
	assert.Zero(t, wr.Stats().Overlays)
	assert.Zero(t, surf.colored("fill", healthBack))
}

func TestOverlaysHiddenWhenEnemyLeavesSight(t *testing.T) {
	s, blue, red := newTestSim(t)
	s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	theirs := s.Spawn(UnitTank, red, world.CPos{X: 4, Y: 2})
	s.SetRolloverAt(screenPx(s, theirs))
	require.Len(t, s.Rollover(), 1)

	blue.Shroud.ResetVisibility()
	wr, surf := newTestRenderer(t, s, render.Settings{ShowRollovers: true})
	require.NoError(t, wr.Draw())
	assert.Zero(t, surf.count(func(c drawCall) bool { return c.kind == "text" }))
	assert.Zero(t, wr.Stats().Overlays)
}

func TestEnemyContrailHiddenUnderShroud(t *testing.T) {
	s, blue, red := newTestSim(t)
	s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	scout := s.Spawn(UnitScout, red, world.CPos{X: 12, Y: 12})
	trail := s.trails.Get(scout.Entity())
	for i := range 3 {
		trail.Push(world.CenterOfCell(world.CPos{X: 10 + i, Y: 12}))
	}

	wr, surf := newTestRenderer(t, s, render.Settings{})
	require.NoError(t, wr.Draw())
	assert.Zero(t, surf.colored("line", contrailColor))

	blue.Shroud.Disable(true)
	surf.reset()
	require.NoError(t, wr.Draw())
	assert.Equal(t, 2, surf.colored("line", contrailColor))
}

func TestShroudCoversRaisedRowsBelowView(t *testing.T) {
	m := world.NewMap("plateau", 16, 16, world.TerrainTemperate)
	for i := range m.Tiles {
		m.Tiles[i] = world.Tile{Kind: world.TileClear, Height: 4}
	}
	s := NewSim(m, tileset.New(glyph.NewAtlas()), render.NewTransform(testTileSize))
	s.AddPlayer("Blue", blue, true)

	surf := &recordingSurface{}
	vp := render.NewViewport(s.transform, m, image.Pt(256, 128), 1)
	wr, err := render.NewWorldRenderer(s, surf, vp, render.Options{Tileset: s.art})
	require.NoError(t, err)
	require.NoError(t, wr.Draw())

	tiles := make(map[render.Float2]bool)
	fog := make(map[render.Float2]bool)
	for _, c := range surf.calls {
		switch {
		case c.kind == "sprite" && c.palette == PaletteTerrain:
			tiles[c.at] = true
		case c.kind == "fill" && c.color == fogUnexplored:
			fog[c.at] = true
		}
	}
	require.NotEmpty(t, tiles)
	assert.Less(t, wr.Stats().TerrainCells, 256, "only part of the map is in view")
	assert.Equal(t, tiles, fog, "every drawn cell is fogged")
}
