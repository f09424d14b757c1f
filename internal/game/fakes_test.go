package game

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacehole-rogue/skirmish/internal/glyph"
	"github.com/spacehole-rogue/skirmish/internal/render"
	"github.com/spacehole-rogue/skirmish/internal/tileset"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

const testTileSize = 16

type drawCall struct {
	kind    string
	palette string
	alpha   float32
	color   color.RGBA
	text    string
	at      render.Float2
}

// recordingSurface logs draw calls instead of drawing.
type recordingSurface struct {
	calls []drawCall
}

func (s *recordingSurface) SetPalette(render.PaletteSource)    {}
func (s *recordingSurface) SetViewport(render.Float2, float32) {}
func (s *recordingSurface) EnableScissor(image.Rectangle)      { s.add(drawCall{kind: "scissor"}) }
func (s *recordingSurface) DisableScissor()                    { s.add(drawCall{kind: "unscissor"}) }
func (s *recordingSurface) Flush()                             {}
func (s *recordingSurface) add(c drawCall)                     { s.calls = append(s.calls, c) }
func (s *recordingSurface) reset()                             { s.calls = nil }

func (s *recordingSurface) DrawSprite(_ *render.Sprite, pos render.Float2, pal *render.PaletteReference, _, alpha float32) {
	s.add(drawCall{kind: "sprite", palette: pal.Name(), alpha: alpha, at: pos})
}

func (s *recordingSurface) DrawLine(a, _ render.Float2, _ float32, c color.RGBA) {
	s.add(drawCall{kind: "line", color: c, at: a})
}

func (s *recordingSurface) FillRect(tl, _ render.Float2, c color.RGBA) {
	s.add(drawCall{kind: "fill", color: c, at: tl})
}

func (s *recordingSurface) DrawText(text string, pos render.Float2, c color.RGBA) {
	s.add(drawCall{kind: "text", text: text, color: c, at: pos})
}

func (s *recordingSurface) count(match func(drawCall) bool) int {
	n := 0
	for _, c := range s.calls {
		if match(c) {
			n++
		}
	}
	return n
}

func (s *recordingSurface) sprites(palette string) int {
	return s.count(func(c drawCall) bool { return c.kind == "sprite" && c.palette == palette })
}

func (s *recordingSurface) colored(kind string, col color.RGBA) int {
	return s.count(func(c drawCall) bool { return c.kind == kind && c.color == col })
}

var (
	blue = color.RGBA{60, 100, 255, 255}
	red  = color.RGBA{224, 60, 40, 255}
)

// newTestSim returns a 16x16 clear map with a local blue player and a red
// opponent.
func newTestSim(t *testing.T) (*Sim, *Player, *Player) {
	t.Helper()
	m := world.NewMap("test", 16, 16, world.TerrainTemperate)
	s := NewSim(m, tileset.New(glyph.NewAtlas()), render.NewTransform(testTileSize))
	return s, s.AddPlayer("Blue", blue, true), s.AddPlayer("Red", red, false)
}

// newTestRenderer draws s through a recording surface with the whole map in view.
func newTestRenderer(t *testing.T, s *Sim, settings render.Settings) (*render.WorldRenderer, *recordingSurface) {
	t.Helper()
	surf := &recordingSurface{}
	m := s.Map()
	window := image.Pt(m.Width*testTileSize, m.Height*testTileSize)
	vp := render.NewViewport(s.transform, m, window, 1)
	wr, err := render.NewWorldRenderer(s, surf, vp, render.Options{
		Settings: settings,
		Tileset:  s.art,
	})
	require.NoError(t, err)
	return wr, surf
}

// screenPx returns the world-screen pixel of a's center.
func screenPx(s *Sim, a *Actor) image.Point {
	return s.transform.ScreenPxPosition(a.CenterPosition())
}
