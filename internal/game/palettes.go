package game

import (
	"image/color"

	"github.com/spacehole-rogue/skirmish/internal/render"
)

// Palette names registered by the world actor.
const (
	PaletteTerrain = render.DefaultTerrainPalette
	PaletteEffect  = "effect"
	PaletteShadow  = "shadow"
)

// PaletteFromBase registers a palette built from the base colors.
type PaletteFromBase struct {
	Name       string
	Modifiable bool
}

func (p PaletteFromBase) InitPalette(wr *render.WorldRenderer) error {
	return wr.AddPalette(p.Name, render.BasePalette(), p.Modifiable)
}

// PlayerColorPalette registers the owner's team palette: the base colors
// with the remap range recolored.
type PlayerColorPalette struct {
	Player *Player
}

func (p PlayerColorPalette) InitPalette(wr *render.WorldRenderer) error {
	return PaletteFromRemap{Name: p.Player.PaletteName(), Remap: p.Player.Color, Modifiable: true}.InitPalette(wr)
}

// PaletteFromRemap registers the base colors with the remap range recolored
// from Remap.
type PaletteFromRemap struct {
	Name       string
	Remap      color.RGBA
	Modifiable bool
}

func (p PaletteFromRemap) InitPalette(wr *render.WorldRenderer) error {
	pal := render.BasePalette()
	render.RemapRamp(&pal, p.Remap)
	return wr.AddPalette(p.Name, pal, p.Modifiable)
}

// FlashModifier turns a palette's remap range white while a flash is active.
type FlashModifier struct {
	remaining map[string]int
}

// NewFlashModifier returns a modifier with no active flashes.
func NewFlashModifier() *FlashModifier {
	return &FlashModifier{remaining: make(map[string]int)}
}

// Flash whitens palette for the next ticks ticks.
func (f *FlashModifier) Flash(palette string, ticks int) {
	f.remaining[palette] = max(f.remaining[palette], ticks)
}

// Active reports whether palette is flashing.
func (f *FlashModifier) Active(palette string) bool { return f.remaining[palette] > 0 }

// Tick advances every flash by one tick.
func (f *FlashModifier) Tick() {
	for name, n := range f.remaining {
		if n <= 1 {
			delete(f.remaining, name)
			continue
		}
		f.remaining[name] = n - 1
	}
}

func (f *FlashModifier) AdjustPalette(pals map[string]*render.MutablePalette) {
	for name := range f.remaining {
		p, ok := pals[name]
		if !ok {
			continue
		}
		for i := render.RemapStart; i < render.RemapStart+render.RemapSize; i++ {
			c := p.Color(i)
			p.SetColor(i, color.RGBA{R: blend(c.R), G: blend(c.G), B: blend(c.B), A: c.A})
		}
	}
}

func blend(v uint8) uint8 { return uint8((uint16(v) + 255*3) / 4) }

// GrayscaleModifier drains the color from every modifiable palette once the
// player is defeated.
type GrayscaleModifier struct {
	Player *Player
}

func (g GrayscaleModifier) AdjustPalette(pals map[string]*render.MutablePalette) {
	if g.Player == nil || !g.Player.Defeated {
		return
	}
	for _, p := range pals {
		for i := 1; i < render.PaletteSize; i++ {
			c := p.Color(i)
			l := uint8((299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000)
			p.SetColor(i, color.RGBA{R: l, G: l, B: l, A: c.A})
		}
	}
}

// RotationModifier cycles a range of palette entries, one step every Period
// ticks of the simulation clock.
type RotationModifier struct {
	Palette string
	Start   int
	Length  int
	Period  uint64
	Clock   func() uint64
}

func (r RotationModifier) AdjustPalette(pals map[string]*render.MutablePalette) {
	p, ok := pals[r.Palette]
	if !ok || r.Length <= 1 || r.Period == 0 {
		return
	}
	shift := int(r.Clock()/r.Period) % r.Length
	if shift == 0 {
		return
	}
	orig := make([]color.RGBA, r.Length)
	for i := range orig {
		orig[i] = p.Color(r.Start + i)
	}
	for i := range orig {
		p.SetColor(r.Start+(i+shift)%r.Length, orig[i])
	}
}
