package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/spacehole-rogue/skirmish/internal/voxel"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

// recordingSurface logs every backend call in order, together with whether
// the scissor was active at the time.
type recordingSurface struct {
	calls     []string
	scissored []bool
	scissorOn bool
	scissor   image.Rectangle
	bank      PaletteSource
}

func (s *recordingSurface) record(call string) {
	s.calls = append(s.calls, call)
	s.scissored = append(s.scissored, s.scissorOn)
}

func (s *recordingSurface) SetPalette(bank PaletteSource) {
	s.bank = bank
	s.record("palette")
}

func (s *recordingSurface) SetViewport(Float2, float32) { s.record("viewport") }

func (s *recordingSurface) EnableScissor(r image.Rectangle) {
	s.record("enable")
	s.scissorOn = true
	s.scissor = r
}

func (s *recordingSurface) DisableScissor() {
	s.scissorOn = false
	s.record("disable")
}

func (s *recordingSurface) DrawSprite(*Sprite, Float2, *PaletteReference, float32, float32) {
	s.record("sprite")
}

func (s *recordingSurface) DrawLine(Float2, Float2, float32, color.RGBA) { s.record("line") }
func (s *recordingSurface) FillRect(Float2, Float2, color.RGBA)          { s.record("rect") }
func (s *recordingSurface) DrawText(text string, _ Float2, _ color.RGBA) { s.record(text) }
func (s *recordingSurface) Flush()                                       { s.record("flush") }

func (s *recordingSurface) reset() {
	s.calls = nil
	s.scissored = nil
}

// scissoredCalls returns whether each call named name ran inside the scissor.
func (s *recordingSurface) scissoredCalls(name string) []bool {
	var out []bool
	for i, c := range s.calls {
		if c == name {
			out = append(out, s.scissored[i])
		}
	}
	return out
}

func (s *recordingSurface) withPrefix(prefix string) []string {
	var out []string
	for _, c := range s.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// fakeVoxels logs frame boundaries into the surface log.
type fakeVoxels struct {
	s    *recordingSurface
	open bool
}

func (v *fakeVoxels) BeginFrame() {
	v.open = true
	v.s.record("voxel-begin")
}

func (v *fakeVoxels) Rasterize(m *voxel.Model, _ mgl32.Mat4) (*image.Paletted, image.Point, error) {
	if !v.open {
		return nil, image.Point{}, fmt.Errorf("rasterize %q: %w", m.Name, voxel.ErrFrameClosed)
	}
	return image.NewPaletted(image.Rect(0, 0, 1, 1), nil), image.Point{}, nil
}

func (v *fakeVoxels) EndFrame() {
	v.open = false
	v.s.record("voxel-end")
}

// tagRenderable draws its tag as text so the draw order can be read back.
type tagRenderable struct {
	pos world.WPos
	z   int
	tag string
}

func (r tagRenderable) Pos() world.WPos { return r.pos }
func (r tagRenderable) ZOffset() int    { return r.z }

func (r tagRenderable) Render(wr *WorldRenderer) {
	wr.Surface().DrawText(r.tag, wr.ScreenPosition(r.pos), color.RGBA{})
}

func (r tagRenderable) RenderDebugGeometry(wr *WorldRenderer) {
	wr.Surface().DrawText("debug:"+r.tag, wr.ScreenPosition(r.pos), color.RGBA{})
}

func tagAt(tag string, y int32) tagRenderable {
	return tagRenderable{pos: world.NewWPos(512, y, 0), tag: tag}
}

type failingRenderable struct {
	tagRenderable
	err error
}

func (r failingRenderable) BeforeRender(*WorldRenderer) error { return r.err }

type fakeActor struct {
	id        uint32
	pos       world.WPos
	outside   bool
	destroyed bool
	traits    []any
}

func (a *fakeActor) ID() uint32                 { return a.id }
func (a *fakeActor) CenterPosition() world.WPos { return a.pos }
func (a *fakeActor) IsInWorld() bool            { return !a.outside }
func (a *fakeActor) Destroyed() bool            { return a.destroyed }
func (a *fakeActor) Traits() []any              { return a.traits }

type fakeWorld struct {
	typ        WorldType
	m          *world.Map
	actors     []Actor
	worldActor Actor
	local      Actor
	effects    []any
	order      OrderGenerator
	selection  []Actor
	rollover   []Actor
	shroud     *world.Shroud
}

func (w *fakeWorld) Type() WorldType                     { return w.typ }
func (w *fakeWorld) Map() *world.Map                     { return w.m }
func (w *fakeWorld) ActorsInBox(_, _ world.WPos) []Actor { return w.actors }
func (w *fakeWorld) Actors() []Actor                     { return w.actors }
func (w *fakeWorld) WorldActor() Actor                   { return w.worldActor }
func (w *fakeWorld) LocalPlayerActor() Actor             { return w.local }
func (w *fakeWorld) Effects() []any                      { return w.effects }
func (w *fakeWorld) OrderGenerator() OrderGenerator      { return w.order }
func (w *fakeWorld) Selection() []Actor                  { return w.selection }
func (w *fakeWorld) Rollover() []Actor                   { return w.rollover }
func (w *fakeWorld) RenderShroud() *world.Shroud         { return w.shroud }

// staticRenderer returns the same renderables every frame.
type staticRenderer struct{ items []Renderable }

func (r staticRenderer) Render(Actor, *WorldRenderer) ([]Renderable, error) { return r.items, nil }

// paletteLookup resolves a palette while rendering.
type paletteLookup struct{ name string }

func (r paletteLookup) Render(_ Actor, wr *WorldRenderer) ([]Renderable, error) {
	if _, err := wr.Palette(r.name); err != nil {
		return nil, err
	}
	return nil, nil
}

type hideAll struct{}

func (hideAll) ModifyRender(Actor, *WorldRenderer, []Renderable) []Renderable { return nil }

type postTag struct{ tag string }

func (p postTag) RenderAfterWorld(_ Actor, wr *WorldRenderer) {
	wr.Surface().DrawText("post:"+p.tag, Float2{}, color.RGBA{})
}

type shroudTag struct{}

func (shroudTag) RenderShroud(wr *WorldRenderer, _ *world.Shroud) {
	wr.Surface().DrawText("shroud", Float2{}, color.RGBA{})
}

type decorations struct{ tag string }

func (d decorations) RenderSelection(a Actor, _ *WorldRenderer) []Renderable {
	return []Renderable{tagRenderable{pos: a.CenterPosition(), tag: "select:" + d.tag}}
}

func (d decorations) RenderRollover(a Actor, _ *WorldRenderer) []Renderable {
	return []Renderable{tagRenderable{pos: a.CenterPosition(), tag: "rollover:" + d.tag}}
}

type paletteTrait struct {
	name       string
	modifiable bool
}

func (p paletteTrait) InitPalette(wr *WorldRenderer) error {
	return wr.AddPalette(p.name, BasePalette(), p.modifiable)
}

type effectTag struct{ items []Renderable }

func (e effectTag) Render(*WorldRenderer) ([]Renderable, error) { return e.items, nil }

type fakeOrderGenerator struct{ items []Renderable }

func (o fakeOrderGenerator) Render(*WorldRenderer, World) ([]Renderable, error) { return o.items, nil }

func (o fakeOrderGenerator) RenderAfterWorld(wr *WorldRenderer, _ World) {
	wr.Surface().DrawText("order-after", Float2{}, color.RGBA{})
}

// solidTileset returns one 16x16 sprite for every tile.
type solidTileset struct{ sprite *Sprite }

func newSolidTileset() solidTileset {
	img := image.NewPaletted(image.Rect(0, 0, 16, 16), nil)
	for i := range img.Pix {
		img.Pix[i] = ColorGreen
	}
	return solidTileset{sprite: &Sprite{Image: img}}
}

func (ts solidTileset) TileSprite(world.Tile, world.TerrainType) *Sprite { return ts.sprite }

// newFakeWorld returns a 2x2 cell world whose world actor registers the
// terrain palette.
func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		m: world.NewMap("test", 2, 2, world.TerrainTemperate),
		worldActor: &fakeActor{id: 0, traits: []any{
			paletteTrait{name: DefaultTerrainPalette},
		}},
	}
}

// newTestRenderer builds a renderer with a 32x32 window over w.
func newTestRenderer(t *testing.T, w *fakeWorld, opts Options) (*WorldRenderer, *recordingSurface) {
	t.Helper()
	s := &recordingSurface{}
	if opts.Voxels == nil {
		opts.Voxels = &fakeVoxels{s: s}
	}
	vp := NewViewport(NewTransform(16), w.m, image.Pt(32, 32), 1)
	wr, err := NewWorldRenderer(w, s, vp, opts)
	require.NoError(t, err)
	return wr, s
}
