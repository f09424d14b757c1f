// Package graphics is the Ebitengine backend of the world renderer.
package graphics

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/spacehole-rogue/skirmish/internal/glyph"
	"github.com/spacehole-rogue/skirmish/internal/render"
)

// textAdvance is the horizontal advance of one character of overlay text.
// Font glyphs occupy the middle 8 pixels of their atlas cell.
const textAdvance = 8

type drawCmd func(dst *ebiten.Image)

var _ render.Surface = (*Surface)(nil)

// Surface implements render.Surface on top of an Ebitengine image. Draw calls
// are queued and issued to the target on Flush.
type Surface struct {
	target *ebiten.Image
	dst    *ebiten.Image

	palettes *paletteCache
	sprites  *spriteCache
	text     map[byte]*ebiten.Image
	atlas    *glyph.Atlas
	pixel    *ebiten.Image // 1x1 white pixel for filled rectangles

	scroll render.Float2
	zoom   float32

	pending []drawCmd
	drawn   int
}

// NewSurface creates a surface that draws text with atlas.
func NewSurface(atlas *glyph.Atlas) *Surface {
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)
	return &Surface{
		palettes: newPaletteCache(),
		sprites:  newSpriteCache(),
		text:     make(map[byte]*ebiten.Image),
		atlas:    atlas,
		pixel:    pixel,
		zoom:     1,
	}
}

// Begin starts a frame drawing to screen.
func (s *Surface) Begin(screen *ebiten.Image) {
	s.target = screen
	s.dst = screen
	s.pending = s.pending[:0]
	s.drawn = 0
	s.sprites.evict()
}

// Drawn returns the number of draw calls issued since Begin.
func (s *Surface) Drawn() int { return s.drawn }

// CachedSprites returns the number of converted sprites held by the cache.
func (s *Surface) CachedSprites() int { return s.sprites.len() }

func (s *Surface) SetPalette(bank render.PaletteSource) {
	s.palettes.update(bank)
}

func (s *Surface) SetViewport(scroll render.Float2, zoom float32) {
	s.scroll = scroll
	s.zoom = zoom
}

func (s *Surface) EnableScissor(r image.Rectangle) {
	s.Flush()
	if s.target == nil {
		return
	}
	s.dst = s.target.SubImage(r.Add(s.target.Bounds().Min)).(*ebiten.Image)
}

func (s *Surface) DisableScissor() {
	s.Flush()
	s.dst = s.target
}

func (s *Surface) DrawSprite(sp *render.Sprite, pos render.Float2, pal *render.PaletteReference, scale, alpha float32) {
	row := pal.Index()
	gen := s.palettes.generation(row)
	img := s.sprites.get(sp, row, gen, func() []color.RGBA { return s.palettes.row(row) })
	op := &ebiten.DrawImageOptions{}
	op.GeoM = spriteGeoM(sp, pos, scale, s.scroll, s.zoom)
	if alpha < 1 {
		op.ColorScale.ScaleAlpha(alpha)
	}
	s.queue(func(dst *ebiten.Image) { dst.DrawImage(img, op) })
}

func (s *Surface) DrawLine(a, b render.Float2, width float32, c color.RGBA) {
	wa, wb := s.toWindow(a), s.toWindow(b)
	w := max(width*s.zoom, 1)
	s.queue(func(dst *ebiten.Image) {
		vector.StrokeLine(dst, wa.X, wa.Y, wb.X, wb.Y, w, c, false)
	})
}

func (s *Surface) FillRect(tl, br render.Float2, c color.RGBA) {
	wtl, wbr := s.toWindow(tl), s.toWindow(br)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(wbr.X-wtl.X), float64(wbr.Y-wtl.Y))
	op.GeoM.Translate(float64(wtl.X), float64(wtl.Y))
	op.ColorScale.ScaleWithColor(c)
	s.queue(func(dst *ebiten.Image) { dst.DrawImage(s.pixel, op) })
}

// DrawText draws text at its natural size regardless of zoom.
func (s *Surface) DrawText(text string, pos render.Float2, c color.RGBA) {
	at := s.toWindow(pos)
	for i, ch := range []byte(text) {
		g := s.textGlyph(ch)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(at.X)+float64(i*textAdvance), float64(at.Y))
		op.ColorScale.ScaleWithColor(c)
		s.queue(func(dst *ebiten.Image) { dst.DrawImage(g, op) })
	}
}

// Flush issues every queued draw call to the current target.
func (s *Surface) Flush() {
	if s.dst == nil {
		s.pending = s.pending[:0]
		return
	}
	for _, cmd := range s.pending {
		cmd(s.dst)
	}
	s.drawn += len(s.pending)
	s.pending = s.pending[:0]
}

func (s *Surface) queue(cmd drawCmd) {
	s.pending = append(s.pending, cmd)
}

func (s *Surface) toWindow(p render.Float2) render.Float2 {
	return p.Sub(s.scroll).Scale(s.zoom)
}

func (s *Surface) textGlyph(code byte) *ebiten.Image {
	if g, ok := s.text[code]; ok {
		return g
	}
	r := s.atlas.Bounds(code)
	r.Min.X += (glyph.Width - textAdvance) / 2
	r.Max.X = r.Min.X + textAdvance
	g := ebiten.NewImageFromImage(s.atlas.Image().SubImage(r))
	s.text[code] = g
	return g
}

// spriteGeoM places sprite pixels so that the anchor lands on pos, scaled by
// scale, then applies the view scroll and zoom.
func spriteGeoM(sp *render.Sprite, pos render.Float2, scale float32, scroll render.Float2, zoom float32) ebiten.GeoM {
	anchor := sp.Anchor.Sub(sp.Image.Rect.Min)
	var g ebiten.GeoM
	g.Translate(-float64(anchor.X), -float64(anchor.Y))
	g.Scale(float64(scale), float64(scale))
	g.Translate(float64(pos.X-scroll.X), float64(pos.Y-scroll.Y))
	g.Scale(float64(zoom), float64(zoom))
	return g
}
