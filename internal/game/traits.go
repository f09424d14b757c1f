package game

import (
	"image"
	"image/color"

	"github.com/spacehole-rogue/skirmish/internal/glyph"
	"github.com/spacehole-rogue/skirmish/internal/render"
	"github.com/spacehole-rogue/skirmish/internal/voxel"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

var (
	selectionColor = color.RGBA{255, 255, 255, 255}
	healthBack     = color.RGBA{32, 32, 32, 255}
	healthGood     = color.RGBA{0, 200, 0, 255}
	healthHurt     = color.RGBA{230, 200, 0, 255}
	healthCritical = color.RGBA{220, 0, 0, 255}
	rolloverText   = color.RGBA{255, 255, 255, 255}
	contrailColor  = color.RGBA{200, 200, 200, 160}
	fogUnexplored  = color.RGBA{0, 0, 0, 255}
	fogHidden      = color.RGBA{0, 0, 0, 128}
)

// RenderSprites draws a unit glyph in team colors with a shadow on the ground
// below it.
type RenderSprites struct {
	Glyph byte
	Scale float32
}

func (r RenderSprites) Render(self render.Actor, wr *render.WorldRenderer) ([]render.Renderable, error) {
	a, ok := self.(*Actor)
	if !ok || a.owner == nil {
		return nil, nil
	}
	pal, err := wr.Palette(a.owner.PaletteName())
	if err != nil {
		return nil, err
	}
	shadowPal, err := wr.Palette(PaletteShadow)
	if err != nil {
		return nil, err
	}
	scale := glyphScale(wr, r.Scale)
	pos := a.CenterPosition()
	ground := a.sim.terrain.CenterOfCell(pos.Cell())
	ground.X, ground.Y = pos.X, pos.Y
	return []render.Renderable{
		render.NewSpriteRenderable(a.sim.art.ShadowSprite(), ground, world.WVec{}, -1, shadowPal, scale),
		render.NewSpriteRenderable(a.sim.art.UnitSprite(r.Glyph), pos, world.WVec{}, 0, pal, scale),
	}, nil
}

// glyphScale stretches a glyph to cover one tile, times s.
func glyphScale(wr *render.WorldRenderer, s float32) float32 {
	if s == 0 {
		s = 1
	}
	return s * float32(wr.Transform().TileSize) / glyph.Width
}

// RenderVoxels draws a voxel model turned to the actor's facing.
type RenderVoxels struct {
	Model *voxel.Model
	Scale float32
}

func (r RenderVoxels) Render(self render.Actor, wr *render.WorldRenderer) ([]render.Renderable, error) {
	a, ok := self.(*Actor)
	if !ok || a.owner == nil || r.Model == nil {
		return nil, nil
	}
	pal, err := wr.Palette(a.owner.PaletteName())
	if err != nil {
		return nil, err
	}
	scale := r.Scale
	if scale == 0 {
		scale = 1
	}
	return []render.Renderable{
		render.NewVoxelRenderable(r.Model, a.CenterPosition(), 0, a.Facing(), scale, pal),
	}, nil
}

// SelectionDecorations draws the selection box, health bar and the rollover
// name tag.
type SelectionDecorations struct{}

func (SelectionDecorations) RenderSelection(self render.Actor, wr *render.WorldRenderer) []render.Renderable {
	a, ok := self.(*Actor)
	if !ok || a.sim.hiddenFromLocal(a) {
		return nil
	}
	r := a.radius
	pos := a.CenterPosition()
	box := image.Rect(-r, -r, r, r)
	out := []render.Renderable{render.NewRectRenderable(pos, box, selectionColor, false)}
	return append(out, healthBar(a, pos)...)
}

func (SelectionDecorations) RenderRollover(self render.Actor, wr *render.WorldRenderer) []render.Renderable {
	a, ok := self.(*Actor)
	if !ok || a.sim.hiddenFromLocal(a) {
		return nil
	}
	pos := a.CenterPosition()
	out := healthBar(a, pos)
	label := image.Pt(-a.radius, -a.radius-4-glyph.Height)
	return append(out, render.NewTextRenderable(pos, label, a.name, rolloverText))
}

func healthBar(a *Actor, pos world.WPos) []render.Renderable {
	if a.maxHealth <= 0 {
		return nil
	}
	r := a.radius
	back := image.Rect(-r, -r-4, r, -r-2)
	fill := back
	fill.Max.X = fill.Min.X + back.Dx()*max(a.health, 0)/a.maxHealth
	c := healthGood
	switch {
	case a.health*4 <= a.maxHealth:
		c = healthCritical
	case a.health*2 <= a.maxHealth:
		c = healthHurt
	}
	return []render.Renderable{
		render.NewRectRenderable(pos, back, healthBack, true),
		render.NewRectRenderable(pos, fill, c, true),
	}
}

// Contrail draws the recent path of an actor after the world pass. Trails of
// enemies out of sight are not drawn.
type Contrail struct {
	Width float32
}

func (c Contrail) RenderAfterWorld(self render.Actor, wr *render.WorldRenderer) {
	a, ok := self.(*Actor)
	if !ok || !a.body || !a.sim.trails.Has(a.entity) || a.sim.hiddenFromLocal(a) {
		return
	}
	pts := a.sim.trails.Get(a.entity).Recent()
	width := c.Width
	if width == 0 {
		width = 1
	}
	s := wr.Surface()
	for i := 1; i < len(pts); i++ {
		s.DrawLine(wr.ScreenPosition(pts[i-1]), wr.ScreenPosition(pts[i]), width, contrailColor)
	}
}

// HiddenUnderShroud drops the renderables of enemy actors standing on cells
// the rendering player cannot see.
type HiddenUnderShroud struct{}

func (HiddenUnderShroud) ModifyRender(self render.Actor, wr *render.WorldRenderer, r []render.Renderable) []render.Renderable {
	a, ok := self.(*Actor)
	if ok && a.sim.hiddenFromLocal(a) {
		return nil
	}
	return r
}

// ShroudOverlay blacks out unexplored cells and darkens explored cells that
// are out of sight. It covers the same rows as the terrain pass, including
// raised cells below the view.
type ShroudOverlay struct{}

func (ShroudOverlay) RenderShroud(wr *render.WorldRenderer, shroud *world.Shroud) {
	if shroud == nil {
		return
	}
	m := wr.World().Map()
	vp := wr.Viewport()
	tl := m.ClampCell(vp.TopLeft().Cell())
	br := vp.BottomRight().Cell()
	br.Y += m.RaisedRows()
	br = m.ClampCell(br)
	size := render.Float2{X: float32(wr.Transform().TileSize), Y: float32(wr.Transform().TileSize)}
	s := wr.Surface()
	for y := tl.Y; y <= br.Y; y++ {
		for x := tl.X; x <= br.X; x++ {
			c := world.CPos{X: x, Y: y}
			var fog color.RGBA
			switch {
			case !shroud.IsExplored(c):
				fog = fogUnexplored
			case !shroud.IsVisible(c):
				fog = fogHidden
			default:
				continue
			}
			p := world.TopLeftOfCell(c)
			p.Z = int32(m.Get(c).Height) * world.HeightStep
			at := wr.ScreenPosition(p)
			s.FillRect(at, at.Add(size), fog)
		}
	}
}
