package game

import (
	"image/color"

	"github.com/spacehole-rogue/skirmish/internal/render"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

var (
	orderLineColor = color.RGBA{0, 220, 0, 255}
	cursorColor    = color.RGBA{255, 255, 255, 255}
)

// ghostAlpha is the opacity of the preview sprites at the move target.
const ghostAlpha = 0.5

// MoveOrderGenerator previews a move command for the current selection: a
// line from each unit to the target, a translucent ghost of the unit at the
// target and a cross under the cursor.
type MoveOrderGenerator struct {
	sim    *Sim
	target world.WPos
	active bool
}

// NewMoveOrderGenerator creates an idle generator for s.
func NewMoveOrderGenerator(s *Sim) *MoveOrderGenerator {
	return &MoveOrderGenerator{sim: s}
}

// SetTarget points the preview at p.
func (g *MoveOrderGenerator) SetTarget(p world.WPos) {
	g.target = p
	g.active = true
}

// Clear hides the preview.
func (g *MoveOrderGenerator) Clear() { g.active = false }

// Target returns the previewed destination and whether the preview is shown.
func (g *MoveOrderGenerator) Target() (world.WPos, bool) { return g.target, g.active }

func (g *MoveOrderGenerator) units() []*Actor {
	var out []*Actor
	for _, a := range g.sim.selected {
		if a.destroyed || !a.body || a.owner != g.sim.local {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (g *MoveOrderGenerator) Render(wr *render.WorldRenderer, w render.World) ([]render.Renderable, error) {
	if !g.active {
		return nil, nil
	}
	var out []render.Renderable
	for _, a := range g.units() {
		from := a.CenterPosition()
		to := g.target
		to.Z = from.Z
		out = append(out, render.NewLineRenderable([]world.WPos{from, to}, 1, orderLineColor, 1))
		for _, t := range a.traits {
			rs, ok := t.(RenderSprites)
			if !ok {
				continue
			}
			pal, err := wr.Palette(a.owner.PaletteName())
			if err != nil {
				return nil, err
			}
			ghost := render.NewSpriteRenderable(g.sim.art.UnitSprite(rs.Glyph), to, world.WVec{}, 0, pal, glyphScale(wr, rs.Scale))
			out = append(out, ghost.WithAlpha(ghostAlpha))
		}
	}
	return out, nil
}

func (g *MoveOrderGenerator) RenderAfterWorld(wr *render.WorldRenderer, w render.World) {
	if !g.active {
		return
	}
	c := wr.ScreenPosition(g.target)
	const arm = 4
	s := wr.Surface()
	s.DrawLine(render.Float2{X: c.X - arm, Y: c.Y}, render.Float2{X: c.X + arm, Y: c.Y}, 1, cursorColor)
	s.DrawLine(render.Float2{X: c.X, Y: c.Y - arm}, render.Float2{X: c.X, Y: c.Y + arm}, 1, cursorColor)
}
