package game

import (
	"image/color"

	"github.com/spacehole-rogue/skirmish/internal/render"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

// Effect is a short-lived visual owned by the simulation.
type Effect interface {
	render.EffectRenderer
	// Tick advances the effect and reports whether it is still alive.
	Tick(s *Sim) bool
}

const explosionGlyph byte = '*'

// Explosion is a blast that grows and fades over its lifetime.
type Explosion struct {
	Pos      world.WPos
	Lifetime int

	sim *Sim
	age int
}

// NewExplosion creates a blast at pos.
func NewExplosion(s *Sim, pos world.WPos, lifetime int) *Explosion {
	return &Explosion{Pos: pos, Lifetime: max(lifetime, 1), sim: s}
}

func (e *Explosion) Tick(*Sim) bool {
	e.age++
	return e.age < e.Lifetime
}

func (e *Explosion) Render(wr *render.WorldRenderer) ([]render.Renderable, error) {
	pal, err := wr.Palette(PaletteEffect)
	if err != nil {
		return nil, err
	}
	fg := uint8(render.ColorYellow)
	if e.age*2 >= e.Lifetime {
		fg = render.ColorLightRed
	}
	sp := e.sim.art.Centered(explosionGlyph, fg, render.ColorTransparent)
	progress := float32(e.age) / float32(e.Lifetime)
	r := render.NewSpriteRenderable(sp, e.Pos, world.WVec{}, 0, pal, glyphScale(wr, 1+progress))
	return []render.Renderable{r.WithAlpha(1 - progress*0.75)}, nil
}

// projectileGlyph is a small square.
const projectileGlyph byte = 254

var tracerColor = color.RGBA{255, 220, 120, 255}

// Projectile flies from From to To on a ballistic arc and explodes on impact.
type Projectile struct {
	From, To world.WPos
	Flight   int
	Arc      int32 // peak height above the straight line
	Damage   int

	sim *Sim
	age int
}

// NewProjectile creates a shell travelling for flight ticks.
func NewProjectile(s *Sim, from, to world.WPos, flight, damage int) *Projectile {
	return &Projectile{From: from, To: to, Flight: max(flight, 1), Arc: world.TileScale, Damage: damage, sim: s}
}

// Position returns the shell's position after t ticks.
func (p *Projectile) Position(t int) world.WPos {
	pos := world.Lerp(p.From, p.To, int32(t), int32(p.Flight))
	f := int64(p.Flight)
	pos.Z += int32(4 * int64(p.Arc) * int64(t) * (f - int64(t)) / (f * f))
	return pos
}

func (p *Projectile) Tick(s *Sim) bool {
	p.age++
	if p.age < p.Flight {
		return true
	}
	s.impact(p.To, p.Damage)
	return false
}

func (p *Projectile) Render(wr *render.WorldRenderer) ([]render.Renderable, error) {
	pal, err := wr.Palette(PaletteEffect)
	if err != nil {
		return nil, err
	}
	pos := p.Position(p.age)
	sp := p.sim.art.Centered(projectileGlyph, render.ColorWhite, render.ColorTransparent)
	out := []render.Renderable{
		render.NewSpriteRenderable(sp, pos, world.WVec{}, 0, pal, glyphScale(wr, 0.5)),
	}
	if p.age > 0 {
		trail := []world.WPos{p.Position(max(p.age-2, 0)), pos}
		out = append(out, render.NewLineRenderable(trail, 1, tracerColor, 0))
	}
	return out, nil
}
